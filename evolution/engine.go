package evolution

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pthm-cable/blobs/genome"
)

// ErrInvalidParams is returned by NewEngine for unusable parameters.
var ErrInvalidParams = errors.New("evolution: invalid parameters")

// Defaults
const (
	DefaultRho               = 4 // fathers sampled per mother
	DefaultExpectedMutations = 2
	DefaultTopN              = 6 // ranked costs included in debug logs
)

// Lower bounds that keep every geometric knob at 2 or more. A knob of 1 has
// success probability zero and saturates at MaxGeometricCount.
const (
	MinRho               = 4 // donor draws use rho/2
	MinDiversity         = 2
	MinExpectedMutations = 2
)

// MutationPolicy returns the expected-mutation knob for a genome length.
// The engine clamps the result to [MinExpectedMutations, length-1].
type MutationPolicy func(length int) int

// ConstantMutations ignores the genome length.
func ConstantMutations(n int) MutationPolicy {
	return func(int) int { return n }
}

// FractionMutations scales with the genome length.
func FractionMutations(fraction float64) MutationPolicy {
	return func(length int) int { return int(fraction * float64(length)) }
}

// DefaultDiversity biases father sampling by half the population size.
func DefaultDiversity(populationSize int) int {
	return max(MinDiversity, populationSize/2)
}

// Params configures an Engine. Each strategy is a plain function value so
// variants are built by swapping fields rather than overriding methods.
type Params[U genome.Unit[U]] struct {
	// Cost ranks genomes, lower is better. Required.
	Cost CostFunc[U]

	// Rho is the number of fathers sampled with replacement per mother.
	// Zero selects DefaultRho. Must be at least MinRho.
	Rho int

	// Diversity returns the geometric knob used to pick father indices.
	// Nil selects DefaultDiversity.
	Diversity func(populationSize int) int

	// Mutations returns the expected-mutation knob. Nil selects
	// ConstantMutations(DefaultExpectedMutations).
	Mutations MutationPolicy

	// OnRanked observes the ranked population and its costs right after
	// ranking, before any genome is modified. The slices are only valid for
	// the duration of the call.
	OnRanked func(ranked []*genome.Genome[U], costs []float64)

	// TopN ranked costs are logged at debug level each step. Zero selects DefaultTopN.
	TopN int
}

// Engine evolves a population in place, one generation per Evolve call.
// It is not safe for concurrent use.
type Engine[U genome.Unit[U]] struct {
	params     Params[U]
	rng        genome.Rand
	generation int
}

// NewEngine validates params, fills in defaults and returns an engine drawing from rng.
func NewEngine[U genome.Unit[U]](params Params[U], rng genome.Rand) (*Engine[U], error) {
	if params.Cost == nil {
		return nil, fmt.Errorf("%w: cost function is required", ErrInvalidParams)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidParams)
	}
	if params.Rho == 0 {
		params.Rho = DefaultRho
	}
	if params.Rho < MinRho || params.Rho > genome.MaxDonors-1 {
		return nil, fmt.Errorf("%w: rho %d outside [%d, %d]", ErrInvalidParams, params.Rho, MinRho, genome.MaxDonors-1)
	}
	if params.Diversity == nil {
		params.Diversity = DefaultDiversity
	}
	if params.Mutations == nil {
		params.Mutations = ConstantMutations(DefaultExpectedMutations)
	}
	if params.TopN == 0 {
		params.TopN = DefaultTopN
	}

	return &Engine[U]{params: params, rng: rng}, nil
}

// Generation returns the number of completed Evolve calls.
func (e *Engine[U]) Generation() int {
	return e.generation
}

// Cost evaluates the configured cost function.
func (e *Engine[U]) Cost(g *genome.Genome[U]) float64 {
	return e.params.Cost(g)
}

// ranking sorts genomes and their precomputed costs together.
type ranking[U genome.Unit[U]] struct {
	genomes []*genome.Genome[U]
	costs   []float64
}

func (r ranking[U]) Len() int           { return len(r.genomes) }
func (r ranking[U]) Less(i, j int) bool { return r.costs[i] < r.costs[j] }
func (r ranking[U]) Swap(i, j int) {
	r.genomes[i], r.genomes[j] = r.genomes[j], r.genomes[i]
	r.costs[i], r.costs[j] = r.costs[j], r.costs[i]
}

// Rank sorts pop ascending by cost, best first, and returns the costs in the
// new order. Each cost is evaluated once. The sort is not stable.
func (e *Engine[U]) Rank(pop []*genome.Genome[U]) []float64 {
	costs := make([]float64, len(pop))
	for i, g := range pop {
		costs[i] = e.params.Cost(g)
	}
	sort.Sort(ranking[U]{genomes: pop, costs: costs})
	return costs
}

// SampleFathers draws rho fathers with replacement from ranked. Index
// Geometric(diversity) mod len(ranked) favours the front of the ranking.
// Fathers are copies taken at sampling time.
func (e *Engine[U]) SampleFathers(ranked []*genome.Genome[U], rho, diversity int) ([]*genome.Genome[U], error) {
	if len(ranked) == 0 {
		return nil, nil
	}
	fathers := make([]*genome.Genome[U], 0, rho)
	for len(fathers) < rho {
		k, err := Geometric(e.rng, diversity)
		if err != nil {
			return nil, fmt.Errorf("sampling father: %w", err)
		}
		fathers = append(fathers, ranked[k%len(ranked)].Clone())
	}
	return fathers, nil
}

// BuildIndices maps every locus to a donor: Geometric(fathers/2) mod (fathers+1).
// Small draws repeat, so neighbouring loci tend to share a donor in runs.
// The value fathers itself means "keep the mother's unit". Fewer than MinRho
// fathers is rejected with ErrInvalidParams.
func (e *Engine[U]) BuildIndices(length, fathers int) ([]genome.Donor, error) {
	if fathers < MinRho {
		return nil, fmt.Errorf("%w: %d fathers, need %d", ErrInvalidParams, fathers, MinRho)
	}
	if fathers >= genome.MaxDonors {
		return nil, fmt.Errorf("%w: %d fathers", genome.ErrDonorOverflow, fathers)
	}
	donorOf := make([]genome.Donor, length)
	for i := range donorOf {
		k, err := Geometric(e.rng, fathers/2)
		if err != nil {
			return nil, fmt.Errorf("building donor index: %w", err)
		}
		donorOf[i] = genome.Donor(k % (fathers + 1))
	}
	return donorOf, nil
}

// ExpectedMutations applies the mutation policy and clamps it to
// [MinExpectedMutations, length-1]. Genomes of three loci or fewer always
// get MinExpectedMutations.
func (e *Engine[U]) ExpectedMutations(length int) int {
	upper := max(length-1, MinExpectedMutations)
	return min(max(e.params.Mutations(length), MinExpectedMutations), upper)
}

// Mutate applies Geometric(ExpectedMutations) random point mutations to g
// and returns how many were applied.
func (e *Engine[U]) Mutate(g *genome.Genome[U]) (int, error) {
	if g.Len() == 0 {
		return 0, nil
	}
	count, err := Geometric(e.rng, e.ExpectedMutations(g.Len()))
	if err != nil {
		return 0, fmt.Errorf("drawing mutation count: %w", err)
	}
	for i := 0; i < count; i++ {
		if err := g.MutateAt(e.rng.Intn(g.Len()), e.rng); err != nil {
			return i, err
		}
	}
	return count, nil
}

// Evolve runs one generation on pop in place.
//
// pop is ranked best first, then every genome from the worst to the best is
// replaced by a crossover of itself with fathers sampled from pop and mutated.
// There is a single buffer: fathers for a mother may already have been
// reproduced earlier in the same pass. pop keeps its length and every genome
// keeps its length. On error the step stops and pop is left partially evolved.
func (e *Engine[U]) Evolve(pop []*genome.Genome[U]) error {
	if len(pop) == 0 {
		return nil
	}

	costs := e.Rank(pop)
	e.logRanking(costs)
	if e.params.OnRanked != nil {
		e.params.OnRanked(pop, costs)
	}

	diversity := e.params.Diversity(len(pop))
	for idx := len(pop) - 1; idx >= 0; idx-- {
		if err := e.reproduce(pop, idx, diversity); err != nil {
			return fmt.Errorf("generation %d, rank %d: %w", e.generation, idx, err)
		}
	}

	e.generation++
	return nil
}

// reproduce overwrites ranked[idx] with its offspring.
func (e *Engine[U]) reproduce(ranked []*genome.Genome[U], idx, diversity int) error {
	fathers, err := e.SampleFathers(ranked, e.params.Rho, diversity)
	if err != nil {
		return err
	}

	mother := ranked[idx]
	donorOf, err := e.BuildIndices(mother.Len(), len(fathers))
	if err != nil {
		return err
	}
	if err := mother.Combine(fathers, donorOf); err != nil {
		return err
	}

	_, err = e.Mutate(mother)
	return err
}

func (e *Engine[U]) logRanking(costs []float64) {
	top := costs[:min(e.params.TopN, len(costs))]
	slog.Debug("ranked",
		"generation", e.generation,
		"best", costs[0],
		"worst", costs[len(costs)-1],
		"top", top,
	)
}
