package population

import (
	"math/rand/v2"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/population/rosomaxa"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/telemetry"
)

// Rosomaxa wraps a growing self-organizing map over solution fitness
// vectors (spec.md §4.11 "Rosomaxa"): Add trains the network on each
// incoming solution's fitness vector and deposits it in the resulting
// node's small elitism-like sub-population; Select draws from diverse
// nodes while exploring and converges to the best node's members once
// OnGeneration's stagnation check flips the phase to Exploitation.
type Rosomaxa struct {
	Goal             *goal.Goal
	StagnationWindow int
	StagnationStdev  float64
	SelectionSize    int

	net   *rosomaxa.Network[*solution.Solution]
	phase Phase
	rng   *rand.Rand
}

// NewRosomaxa builds a Rosomaxa population whose network dimensionality
// matches g's objective count.
func NewRosomaxa(g *goal.Goal, selectionSize int) *Rosomaxa {
	dims := 0
	for _, f := range g.Features() {
		if f.Objective != nil {
			dims++
		}
	}
	if selectionSize < 1 {
		selectionSize = 1
	}
	p := &Rosomaxa{
		Goal:             g,
		StagnationWindow: 5,
		StagnationStdev:  1e-6,
		SelectionSize:    selectionSize,
		phase:            Exploration,
		rng:              rand.New(rand.NewPCG(1, 1)),
	}
	p.net = rosomaxa.New[*solution.Solution](dims, func(a, b []float64) bool {
		return compareFitness(a, b) < 0
	})
	return p
}

func compareFitness(a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Add implements Population.
func (p *Rosomaxa) Add(sol *solution.Solution) {
	p.net.Train(p.Goal.FitnessVector(sol), sol)
}

// AddAll implements Population.
func (p *Rosomaxa) AddAll(sols []*solution.Solution) {
	for _, s := range sols {
		p.Add(s)
	}
}

// Select implements Population: during Exploitation it returns the best
// node's members (padded by repetition up to SelectionSize); during
// Exploration it samples SelectionSize solutions spread across
// distinct nodes, so parents span diverse regions of fitness space.
func (p *Rosomaxa) Select() []*solution.Solution {
	if p.phase == Exploitation {
		best := p.net.BestNode()
		if best == nil || len(best.Members()) == 0 {
			return nil
		}
		out := make([]*solution.Solution, p.SelectionSize)
		for i := range out {
			out[i] = best.Members()[i%len(best.Members())]
		}
		return out
	}

	nodes := p.net.Nodes()
	var withMembers []*rosomaxa.Node[*solution.Solution]
	for _, n := range nodes {
		if len(n.Members()) > 0 {
			withMembers = append(withMembers, n)
		}
	}
	if len(withMembers) == 0 {
		return nil
	}
	out := make([]*solution.Solution, 0, p.SelectionSize)
	for i := 0; i < p.SelectionSize; i++ {
		node := withMembers[p.rng.IntN(len(withMembers))]
		members := node.Members()
		out = append(out, members[p.rng.IntN(len(members))])
	}
	return out
}

// Ranked implements Population: every member across every node, sorted
// best-first by the goal comparator.
func (p *Rosomaxa) Ranked() []*solution.Solution {
	all := p.All()
	out := append([]*solution.Solution(nil), all...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && p.Goal.Compare(out[j], out[j-1]) < 0; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// All implements Population.
func (p *Rosomaxa) All() []*solution.Solution {
	var out []*solution.Solution
	for _, n := range p.net.Nodes() {
		out = append(out, n.Members()...)
	}
	return out
}

// rosomaxaDecimationStep is the row/column modulus Contract removes on
// each shrink pass (spec.md §4.11 "decimate rows/columns").
const rosomaxaDecimationStep = 3

// OnGeneration implements Population: flips the selection phase based
// on the stats' recent fitness stdev, the "termination-estimate ratio
// and median-improvement signal" phase transition named in spec.md
// §4.11, simplified to a single windowed-stdev stagnation check. Once
// stagnant and the network has outgrown a small multiple of the
// selection width, it decimates the network back down instead of
// letting growth run unbounded (spec.md §4.11 "the network may grow …
// or contract").
func (p *Rosomaxa) OnGeneration(stats *telemetry.Stats) {
	if stats == nil {
		return
	}
	stats.RecordPopulationSize(p.Size())

	stagnant := stats.StdevLastW(p.StagnationWindow) <= p.StagnationStdev
	if stagnant {
		p.phase = Exploitation
	} else {
		p.phase = Exploration
	}

	sizeCap := (p.SelectionSize + 1) * (p.SelectionSize + 1)
	if stagnant && p.net.Size() > sizeCap && p.StagnationWindow > 0 && stats.Generation%p.StagnationWindow == 0 {
		p.net.Contract(rosomaxaDecimationStep)
	}
}

// Cmp implements Population.
func (p *Rosomaxa) Cmp(a, b *solution.Solution) int { return p.Goal.Compare(a, b) }

// SelectionPhase implements Population.
func (p *Rosomaxa) SelectionPhase() Phase { return p.phase }

// Size implements Population.
func (p *Rosomaxa) Size() int { return len(p.All()) }
