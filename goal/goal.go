// Package goal implements the Goal/pipeline component (spec.md §4.5):
// an ordered list of features that together define legality (via their
// constraint half) and preference (via their objective half, ordered
// for lexicographic comparison) over a Solution.
package goal

import (
	"math"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Goal owns the ordered feature list. Order is significant twice over:
// constraint evaluation runs in order (first violation wins) and
// objective features build the fitness vector in order (lexicographic
// comparison, most important first).
type Goal struct {
	features []*feature.Feature
}

// New builds a Goal over features in pipeline order.
func New(features ...*feature.Feature) *Goal {
	return &Goal{features: features}
}

// Features returns the ordered feature list.
func (g *Goal) Features() []*feature.Feature { return g.features }

// EvaluateConstraints runs every feature's constraint in order against
// ctx and returns the first violation encountered, or nil if the move
// is legal under every constraint feature.
func (g *Goal) EvaluateConstraints(ctx feature.MoveContext) *feature.Violation {
	for _, f := range g.features {
		if f.Constraint == nil {
			continue
		}
		if v := f.Constraint.Evaluate(ctx); v != nil {
			return v
		}
	}
	return nil
}

// EstimateIncrement sums estimate() across every objective feature, in
// pipeline order. This is used only for local insertion-search
// decisions; it need not match the delta of Fitness exactly (spec.md
// §4.5).
func (g *Goal) EstimateIncrement(ctx feature.MoveContext) float64 {
	var total float64
	for _, f := range g.features {
		if f.Objective == nil {
			continue
		}
		total += f.Objective.Estimate(ctx)
	}
	return total
}

// FitnessVector builds the ordered fitness tuple for sol: one component
// per objective feature, in pipeline order.
func (g *Goal) FitnessVector(sol *solution.Solution) []float64 {
	out := make([]float64, 0, len(g.features))
	for _, f := range g.features {
		if f.Objective == nil {
			continue
		}
		out = append(out, f.Objective.Fitness(sol))
	}
	return out
}

// Compare performs the lexicographic, tolerance-aware comparison
// described in spec.md §4.5: components are compared in objective
// order, each against its own feature's Tolerance, and the first
// component that isn't "tied" decides. Returns -1 if a is better
// (lower), +1 if b is better, 0 if every component ties.
func (g *Goal) Compare(a, b *solution.Solution) int {
	av, bv := g.FitnessVector(a), g.FitnessVector(b)
	idx := 0
	for _, f := range g.features {
		if f.Objective == nil {
			continue
		}
		if idx >= len(av) || idx >= len(bv) {
			break
		}
		if !withinTolerance(av[idx], bv[idx], f.Tolerance) {
			switch {
			case av[idx] < bv[idx]:
				return -1
			case av[idx] > bv[idx]:
				return 1
			}
		}
		idx++
	}
	return 0
}

func withinTolerance(x, y, tolerance float64) bool {
	if tolerance <= 0 {
		return x == y
	}
	denom := math.Max(math.Abs(x), math.Abs(y))
	if denom == 0 {
		return true
	}
	return math.Abs(x-y)/denom <= tolerance
}

// Dominates reports Pareto dominance (spec.md §4.5): a ≺ b iff a is no
// worse than b on every objective and strictly better on at least one.
// The populations do not call it: they read FitnessVector and rank with
// their own comparisons (population/nsga2's dominance for Elitism, a
// lexicographic order for Rosomaxa).
func (g *Goal) Dominates(a, b *solution.Solution) bool {
	av, bv := g.FitnessVector(a), g.FitnessVector(b)
	n := len(av)
	if len(bv) < n {
		n = len(bv)
	}
	strictlyBetter := false
	for i := 0; i < n; i++ {
		switch {
		case av[i] < bv[i]:
			strictlyBetter = true
		case av[i] > bv[i]:
			return false
		}
	}
	return strictlyBetter
}

// AcceptInsertion fans a committed job insertion out to every feature's
// state writer.
func (g *Goal) AcceptInsertion(sol *solution.Solution, routeIdx int, job model.Job) {
	for _, f := range g.features {
		if f.StateWriter == nil {
			continue
		}
		f.StateWriter.AcceptInsertion(sol, routeIdx, job)
	}
}

// AcceptRouteState fans a stale-route recompute out to every feature's
// state writer, then marks the route fresh. Writers flagged
// SchedulePriority run first, in pipeline order, ahead of every other
// writer: time_window's forward/backward pass rewrites
// Activity.Schedule in place, and every other writer that reads
// Activity.Schedule (transport cost's tour duration, overdue, fleet
// usage's arrival objective) must see that correction within the same
// pass rather than one AcceptRouteState call behind, whatever position
// the caller registered it at.
func (g *Goal) AcceptRouteState(rc *solution.RouteContext) {
	for _, f := range g.features {
		if f.StateWriter == nil || !f.SchedulePriority {
			continue
		}
		f.StateWriter.AcceptRouteState(rc)
	}
	for _, f := range g.features {
		if f.StateWriter == nil || f.SchedulePriority {
			continue
		}
		f.StateWriter.AcceptRouteState(rc)
	}
	rc.State.MarkFresh()
}

// AcceptSolutionState fans a bulk solution change out to every
// feature's state writer.
func (g *Goal) AcceptSolutionState(sol *solution.Solution) {
	for _, f := range g.features {
		if f.StateWriter == nil {
			continue
		}
		f.StateWriter.AcceptSolutionState(sol)
	}
}
