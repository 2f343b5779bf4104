package evolution

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/pthm-cable/blobs/genome"
)

func newPopulation(rng *rand.Rand, size, length int) []*genome.Genome[genome.RGB] {
	pop := make([]*genome.Genome[genome.RGB], size)
	for i := range pop {
		pop[i] = genome.New[genome.RGB](length, rng)
	}
	return pop
}

// redCost prefers genomes with a low first red channel.
func redCost(g *genome.Genome[genome.RGB]) float64 {
	return float64(g.At(0).R)
}

func TestNewEngineValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		params Params[genome.RGB]
		rng    genome.Rand
	}{
		{"missing cost", Params[genome.RGB]{}, rng},
		{"rho one", Params[genome.RGB]{Cost: redCost, Rho: 1}, rng},
		{"rho two", Params[genome.RGB]{Cost: redCost, Rho: 2}, rng},
		{"rho three", Params[genome.RGB]{Cost: redCost, Rho: 3}, rng},
		{"negative rho", Params[genome.RGB]{Cost: redCost, Rho: -3}, rng},
		{"rho overflows donor", Params[genome.RGB]{Cost: redCost, Rho: genome.MaxDonors}, rng},
		{"missing rng", Params[genome.RGB]{Cost: redCost}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.params, tt.rng)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(Params[genome.RGB]{Cost: redCost}, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.params.Rho != DefaultRho {
		t.Errorf("rho = %d, want %d", e.params.Rho, DefaultRho)
	}
	if got := e.params.Diversity(64); got != 32 {
		t.Errorf("diversity(64) = %d, want 32", got)
	}
	if got := e.params.Diversity(1); got != 2 {
		t.Errorf("diversity(1) = %d, want 2", got)
	}
	if got := e.ExpectedMutations(100); got != DefaultExpectedMutations {
		t.Errorf("expected mutations = %d, want %d", got, DefaultExpectedMutations)
	}
}

func TestRank(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rng)
	pop := newPopulation(rng, 20, 4)

	costs := e.Rank(pop)

	if len(costs) != len(pop) {
		t.Fatalf("got %d costs for %d genomes", len(costs), len(pop))
	}
	if !sort.Float64sAreSorted(costs) {
		t.Errorf("costs not ascending: %v", costs)
	}
	for i, g := range pop {
		if redCost(g) != costs[i] {
			t.Errorf("cost %d not aligned with genome: %v vs %v", i, costs[i], redCost(g))
		}
	}
}

func TestSampleFathersFavoursFront(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rng)

	ranked := make([]*genome.Genome[genome.RGB], 10)
	for i := range ranked {
		ranked[i] = genome.Filled(1, genome.RGB{R: uint8(i)})
	}

	counts := make([]int, len(ranked))
	for i := 0; i < 2000; i++ {
		fathers, err := e.SampleFathers(ranked, 4, 5)
		if err != nil {
			t.Fatalf("SampleFathers failed: %v", err)
		}
		if len(fathers) != 4 {
			t.Fatalf("got %d fathers, want 4", len(fathers))
		}
		for _, f := range fathers {
			counts[f.At(0).R]++
		}
	}

	if counts[0] <= counts[1] || counts[1] <= counts[2] {
		t.Errorf("front of ranking should be favoured: %v", counts)
	}
	t.Logf("father index counts: %v", counts)
}

func TestSampleFathersAreCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rng)
	ranked := []*genome.Genome[genome.RGB]{genome.Filled(4, genome.Black)}

	fathers, err := e.SampleFathers(ranked, 2, 2)
	if err != nil {
		t.Fatalf("SampleFathers failed: %v", err)
	}
	if err := fathers[0].MutateAt(0, rng); err != nil {
		t.Fatal(err)
	}
	fathers[0].Set(1, 1, genome.RGB{R: 200})

	if !ranked[0].Equal(genome.Filled(4, genome.Black)) {
		t.Error("modifying a sampled father changed the ranked genome")
	}
}

func TestBuildIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rng)

	donorOf, err := e.BuildIndices(1000, 4)
	if err != nil {
		t.Fatalf("BuildIndices failed: %v", err)
	}
	if len(donorOf) != 1000 {
		t.Fatalf("got %d donor ids, want 1000", len(donorOf))
	}

	counts := make([]int, 5)
	for _, d := range donorOf {
		if d > 4 {
			t.Fatalf("donor id %d outside [0, 4]", d)
		}
		counts[d]++
	}
	if counts[0] <= counts[1] {
		t.Errorf("donor 0 should dominate: %v", counts)
	}
}

func TestBuildIndicesErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rng)

	for _, fathers := range []int{1, 2, 3} {
		if _, err := e.BuildIndices(9, fathers); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%d fathers: expected ErrInvalidParams, got %v", fathers, err)
		}
	}
	if _, err := e.BuildIndices(9, genome.MaxDonors); !errors.Is(err, genome.ErrDonorOverflow) {
		t.Errorf("too many fathers: expected ErrDonorOverflow, got %v", err)
	}
}

func TestExpectedMutationsClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		policy MutationPolicy
		length int
		want   int
	}{
		{"constant on single locus", ConstantMutations(2), 1, 2},
		{"large on two loci", ConstantMutations(9), 2, 2},
		{"constant", ConstantMutations(2), 9, 2},
		{"zero clamps up", ConstantMutations(0), 9, 2},
		{"one clamps up", ConstantMutations(1), 64, 2},
		{"large clamps down", ConstantMutations(1000), 9, 8},
		{"fraction", FractionMutations(0.5), 100, 50},
		{"tiny fraction", FractionMutations(0.001), 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := NewEngine(Params[genome.RGB]{Cost: redCost, Mutations: tt.policy}, rng)
			if got := e.ExpectedMutations(tt.length); got != tt.want {
				t.Errorf("ExpectedMutations(%d) = %d, want %d", tt.length, got, tt.want)
			}
		})
	}
}

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost, Mutations: ConstantMutations(2)}, rng)

	var total int
	for i := 0; i < 2000; i++ {
		g := genome.Filled(16, genome.Black)
		n, err := e.Mutate(g)
		if err != nil {
			t.Fatalf("Mutate failed: %v", err)
		}
		total += n
	}

	// expected = 2 -> mean 1 mutation per call
	mean := float64(total) / 2000
	if mean < 0.85 || mean > 1.15 {
		t.Errorf("mean mutations %.3f, want ~1", mean)
	}

	empty := genome.Filled[genome.RGB](0, genome.Black)
	if n, err := e.Mutate(empty); n != 0 || err != nil {
		t.Errorf("Mutate on empty genome = %d, %v", n, err)
	}
}

func TestEvolvePreservesShape(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cost := SumUnits(DarknessCost(15))

	var ranked int
	e, err := NewEngine(Params[genome.RGB]{
		Cost: cost,
		OnRanked: func(pop []*genome.Genome[genome.RGB], costs []float64) {
			ranked++
			if !sort.Float64sAreSorted(costs) {
				t.Errorf("OnRanked costs not ascending: %v", costs)
			}
		},
	}, rng)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	pop := newPopulation(rng, 8, 9)
	before := e.Rank(pop)

	if err := e.Evolve(pop); err != nil {
		t.Fatalf("Evolve failed: %v", err)
	}

	if len(pop) != 8 {
		t.Errorf("population size changed to %d", len(pop))
	}
	for i, g := range pop {
		if g.Len() != 9 {
			t.Errorf("genome %d length changed to %d", i, g.Len())
		}
	}
	if ranked != 1 {
		t.Errorf("OnRanked called %d times, want 1", ranked)
	}
	if e.Generation() != 1 {
		t.Errorf("generation = %d, want 1", e.Generation())
	}

	after := e.Rank(pop)
	// Mutation can regress fitness, so the best cost is only observed.
	t.Logf("best cost before %.0f, after %.0f", before[0], after[0])
}

func TestEvolveEmptyPopulation(t *testing.T) {
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost}, rand.New(rand.NewSource(42)))
	if err := e.Evolve(nil); err != nil {
		t.Errorf("Evolve(nil) = %v", err)
	}
}

func TestEvolveReproducible(t *testing.T) {
	run := func() []*genome.Genome[genome.RGB] {
		rng := rand.New(rand.NewSource(7))
		e, _ := NewEngine(Params[genome.RGB]{Cost: SumUnits(DarknessCost(15))}, rng)
		pop := newPopulation(rng, 8, 16)
		for i := 0; i < 5; i++ {
			if err := e.Evolve(pop); err != nil {
				t.Fatalf("Evolve failed: %v", err)
			}
		}
		return pop
	}

	a, b := run(), run()
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("genome %d differs between runs with the same seed", i)
		}
	}
}

func TestEvolveImprovesTowardReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ref, err := QuadrantReference(4, genome.Right, genome.RGB{R: 255})
	if err != nil {
		t.Fatal(err)
	}
	cost := TargetCost(ref)

	e, _ := NewEngine(Params[genome.RGB]{Cost: cost}, rng)
	pop := newPopulation(rng, 16, 16)

	meanCost := func() float64 {
		var sum float64
		for _, g := range pop {
			sum += cost(g)
		}
		return sum / float64(len(pop))
	}

	initial := meanCost()
	for i := 0; i < 200; i++ {
		if err := e.Evolve(pop); err != nil {
			t.Fatalf("generation %d: %v", i, err)
		}
	}
	final := meanCost()

	if final >= initial {
		t.Errorf("mean cost did not improve: %.3f -> %.3f", initial, final)
	}
	t.Logf("mean cost %.3f -> %.3f", initial, final)
}

// scriptedRand replays fixed Float64 draws, then returns 0 forever.
type scriptedRand struct {
	floats []float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(int) int { return 0 }

func TestEvolveReadsReproducedGenomes(t *testing.T) {
	const length = 4

	// With diversity and donor knobs of 2, p = 0.5: a draw of 0 ends a
	// geometric count at 0, a draw of 0.9 adds one.
	var script []float64
	// Worst mother, reproduced first: 4 fathers at index 0, 4 loci from
	// father 0, no mutation.
	script = append(script, make([]float64, 4+length+1)...)
	// Best mother: 4 fathers at index 1, the slot just reproduced.
	for i := 0; i < 4; i++ {
		script = append(script, 0.9, 0)
	}
	rng := &scriptedRand{floats: script}

	e, err := NewEngine(Params[genome.RGB]{
		Cost:      redCost,
		Rho:       4,
		Diversity: func(int) int { return 2 },
		Mutations: ConstantMutations(2),
	}, rng)
	if err != nil {
		t.Fatal(err)
	}

	red := genome.Filled(length, genome.RGB{R: 255})
	black := genome.Filled(length, genome.Black)
	pop := []*genome.Genome[genome.RGB]{red.Clone(), black.Clone()}

	if err := e.Evolve(pop); err != nil {
		t.Fatalf("Evolve failed: %v", err)
	}
	if len(rng.floats) != 0 {
		t.Fatalf("%d scripted draws left unused", len(rng.floats))
	}

	// The worst slot became a copy of the best. The best mother then drew
	// every father from that slot, so it inherits black, not the red genome
	// the slot held when the generation was ranked.
	if !pop[1].Equal(black) {
		t.Errorf("worst slot = %v, want all black", pop[1].Units())
	}
	if !pop[0].Equal(black) {
		t.Errorf("best slot = %v, want all black from the reproduced slot", pop[0].Units())
	}
}

func TestMutateNeverSaturates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, _ := NewEngine(Params[genome.RGB]{Cost: redCost, Mutations: ConstantMutations(1)}, rng)

	g := genome.Filled(64, genome.Black)
	for i := 0; i < 500; i++ {
		n, err := e.Mutate(g)
		if err != nil {
			t.Fatal(err)
		}
		if n >= 100 {
			t.Fatalf("Mutate applied %d mutations with a knob of 1", n)
		}
	}
}
