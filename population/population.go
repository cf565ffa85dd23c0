// Package population implements the three population variants of
// spec.md §4.11: Greedy, Elitism, and Rosomaxa, all behind the same
// interface so evolution.Run is agnostic to which one it drives.
package population

import (
	"sort"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/population/nsga2"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/telemetry"
)

// Phase distinguishes a population's current selection behavior, read
// by the hyper-heuristic's slow-search detector (spec.md §4.10).
type Phase int

const (
	// Exploration favors diversity: selection spreads across the
	// population rather than converging on the current best.
	Exploration Phase = iota
	// Exploitation favors convergence: selection concentrates around
	// the current best-known solution(s).
	Exploitation
)

// Population is implemented by Greedy, Elitism, and Rosomaxa.
type Population interface {
	Add(sol *solution.Solution)
	AddAll(sols []*solution.Solution)
	Select() []*solution.Solution
	Ranked() []*solution.Solution
	All() []*solution.Solution
	OnGeneration(stats *telemetry.Stats)
	Cmp(a, b *solution.Solution) int
	SelectionPhase() Phase
	Size() int
}

// Greedy keeps only the single best-known solution (spec.md §4.11
// "Greedy"); Select yields it SelectionSize times so callers that
// expect a batch of parents still get one.
type Greedy struct {
	Goal          *goal.Goal
	SelectionSize int

	best *solution.Solution
}

// NewGreedy builds a Greedy population driven by g's comparator.
func NewGreedy(g *goal.Goal, selectionSize int) *Greedy {
	if selectionSize < 1 {
		selectionSize = 1
	}
	return &Greedy{Goal: g, SelectionSize: selectionSize}
}

// Add implements Population.
func (p *Greedy) Add(sol *solution.Solution) {
	if p.best == nil || p.Goal.Compare(sol, p.best) < 0 {
		p.best = sol
	}
}

// AddAll implements Population.
func (p *Greedy) AddAll(sols []*solution.Solution) {
	for _, s := range sols {
		p.Add(s)
	}
}

// Select implements Population.
func (p *Greedy) Select() []*solution.Solution {
	if p.best == nil {
		return nil
	}
	out := make([]*solution.Solution, p.SelectionSize)
	for i := range out {
		out[i] = p.best
	}
	return out
}

// Ranked implements Population.
func (p *Greedy) Ranked() []*solution.Solution { return p.All() }

// All implements Population.
func (p *Greedy) All() []*solution.Solution {
	if p.best == nil {
		return nil
	}
	return []*solution.Solution{p.best}
}

// OnGeneration implements Population; Greedy carries no per-generation
// state.
func (p *Greedy) OnGeneration(stats *telemetry.Stats) {
	if stats != nil {
		stats.RecordPopulationSize(p.Size())
	}
}

// Cmp implements Population, delegating to the shared goal comparator.
func (p *Greedy) Cmp(a, b *solution.Solution) int { return p.Goal.Compare(a, b) }

// SelectionPhase implements Population; Greedy is always exploiting.
func (p *Greedy) SelectionPhase() Phase { return Exploitation }

// Size implements Population.
func (p *Greedy) Size() int {
	if p.best == nil {
		return 0
	}
	return 1
}

// Elitism is a bounded ordered set under the goal's hierarchical
// comparator; on overflow it drops the worst member, breaking ties
// within the last dominance front by NSGA-II crowding distance (spec.md
// §4.11 "Elitism").
type Elitism struct {
	Goal     *goal.Goal
	Capacity int

	members []*solution.Solution
}

// NewElitism builds an Elitism population bounded to capacity members.
func NewElitism(g *goal.Goal, capacity int) *Elitism {
	if capacity < 1 {
		capacity = 1
	}
	return &Elitism{Goal: g, Capacity: capacity}
}

// Add implements Population.
func (p *Elitism) Add(sol *solution.Solution) {
	p.members = append(p.members, sol)
	if len(p.members) > p.Capacity {
		p.trim()
	}
}

// AddAll implements Population.
func (p *Elitism) AddAll(sols []*solution.Solution) {
	p.members = append(p.members, sols...)
	if len(p.members) > p.Capacity {
		p.trim()
	}
}

// trim re-sorts the full member set by dominance front then crowding
// distance within the last surviving front, keeping the first Capacity.
func (p *Elitism) trim() {
	ranked := make([]nsga2.Ranked[*solution.Solution], len(p.members))
	for i, m := range p.members {
		ranked[i] = nsga2.Ranked[*solution.Solution]{Fitness: p.Goal.FitnessVector(m), Value: m}
	}
	fronts := nsga2.Sort(ranked)

	var kept []*solution.Solution
	for _, front := range fronts {
		if len(kept)+len(front) <= p.Capacity {
			for _, r := range front {
				kept = append(kept, r.Value)
			}
			continue
		}
		// This front overflows the remaining budget: keep the
		// highest-crowding-distance members first.
		distances := nsga2.CrowdingDistance(front)
		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return distances[order[a]] > distances[order[b]] })
		remaining := p.Capacity - len(kept)
		for _, idx := range order[:remaining] {
			kept = append(kept, front[idx].Value)
		}
		break
	}
	p.members = kept
}

// Select implements Population: returns every surviving member, ranked
// best-first, as candidate parents.
func (p *Elitism) Select() []*solution.Solution { return p.Ranked() }

// Ranked implements Population, returning members sorted by the goal's
// hierarchical comparator.
func (p *Elitism) Ranked() []*solution.Solution {
	out := append([]*solution.Solution(nil), p.members...)
	sort.Slice(out, func(i, j int) bool { return p.Goal.Compare(out[i], out[j]) < 0 })
	return out
}

// All implements Population.
func (p *Elitism) All() []*solution.Solution { return p.members }

// OnGeneration implements Population.
func (p *Elitism) OnGeneration(stats *telemetry.Stats) {
	if stats != nil {
		stats.RecordPopulationSize(p.Size())
	}
}

// Cmp implements Population.
func (p *Elitism) Cmp(a, b *solution.Solution) int { return p.Goal.Compare(a, b) }

// SelectionPhase implements Population; Elitism always explores its
// bounded front rather than collapsing to one solution.
func (p *Elitism) SelectionPhase() Phase { return Exploration }

// Size implements Population.
func (p *Elitism) Size() int { return len(p.members) }
