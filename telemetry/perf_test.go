package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseRank)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseReproduce)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseRank]; !ok {
		t.Error("expected rank phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseReproduce]; !ok {
		t.Error("expected reproduce phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSteer)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseRank:      10,
			PhaseReproduce: 80,
			PhaseSteer:     10,
		},
	}

	row := stats.ToCSV(42)
	if row.Generation != 42 || row.AvgTickUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.ReproducePct != 80 || row.TelemetryPct != 0 {
		t.Errorf("phase pct = %v / %v, want 80 / 0", row.ReproducePct, row.TelemetryPct)
	}
}
