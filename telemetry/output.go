package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/blobs/config"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir             string
	generationsFile *os.File
	perfFile        *os.File

	// Track if headers have been written
	generationsHeaderWritten bool
	perfHeaderWritten        bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	om.generationsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.generationsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow writes a window stats record to generations.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.generationsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generations: %w", err)
		}
		om.generationsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generations: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(generation)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteSeries saves the full best-cost history to fitness.csv.
func (om *OutputManager) WriteSeries(s *Series) error {
	if om == nil || s == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, "fitness.csv"))
	if err != nil {
		return fmt.Errorf("creating fitness.csv: %w", err)
	}
	defer f.Close()

	points := s.Points()
	if err := gocsv.Marshal(&points, f); err != nil {
		return fmt.Errorf("writing fitness: %w", err)
	}
	return nil
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.generationsFile != nil {
		if err := om.generationsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
