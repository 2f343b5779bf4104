package sim

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/genome"
)

// Population is the fixed set of creatures living in an ECS world.
// Entities are never added or removed after spawning, so the spawn order
// is the population order.
type Population struct {
	world *ecs.World

	creatureMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Creature,
	]
	creatureFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Creature,
	]

	// Individual component mappers for lookups
	posMap  *ecs.Map1[components.Position]
	bodyMap *ecs.Map1[components.Body]
	idMap   *ecs.Map1[components.Creature]

	entities []ecs.Entity
}

// NewPopulation creates an empty population in world.
func NewPopulation(world *ecs.World) *Population {
	return &Population{
		world: world,
		creatureMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Creature,
		](world),
		creatureFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Creature,
		](world),
		posMap:  ecs.NewMap1[components.Position](world),
		bodyMap: ecs.NewMap1[components.Body](world),
		idMap:   ecs.NewMap1[components.Creature](world),
	}
}

// Spawn creates one creature per position, each with a random genome of the
// given length.
func (p *Population) Spawn(rng genome.Rand, positions []r2.Vec, genomeLength int, size float64) {
	for _, at := range positions {
		pos := &components.Position{X: at.X, Y: at.Y}
		vel := &components.Velocity{}
		body := &components.Body{
			Genome: genome.New[genome.RGB](genomeLength, rng),
			Size:   size,
		}
		creature := &components.Creature{ID: uint32(len(p.entities))}

		p.entities = append(p.entities, p.creatureMapper.NewEntity(pos, vel, body, creature))
	}
}

// Len returns the number of creatures.
func (p *Population) Len() int {
	return len(p.entities)
}

// Genomes extracts a reference to every creature's genome in population
// order. Reordering the returned slice does not reorder the creatures.
func (p *Population) Genomes() []*genome.Genome[genome.RGB] {
	genomes := make([]*genome.Genome[genome.RGB], 0, len(p.entities))
	for _, e := range p.entities {
		genomes = append(genomes, p.bodyMap.Get(e).Genome)
	}
	return genomes
}

// Each visits every creature in population order.
func (p *Population) Each(fn func(id uint32, pos components.Position, g *genome.Genome[genome.RGB])) {
	for _, e := range p.entities {
		fn(p.idMap.Get(e).ID, *p.posMap.Get(e), p.bodyMap.Get(e).Genome)
	}
}

// Move sets every creature's velocity from velocityOf and translates it.
func (p *Population) Move(velocityOf func(g *genome.Genome[genome.RGB]) r2.Vec) {
	query := p.creatureFilter.Query()
	for query.Next() {
		pos, vel, body, _ := query.Get()
		*vel = components.VelocityFrom(velocityOf(body.Genome))
		pos.Translate(*vel)
	}
}
