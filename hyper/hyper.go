// Package hyper implements the adaptive hyper-heuristic (spec.md
// §4.10): given a batch of parent solutions, select one (ruin,
// recreate) operator pair per parent and apply it to produce a child.
// The hyper-heuristic never mutates the population itself; it only
// returns children for the caller (evolution.Run) to hand to local
// search and then to population.Add.
package hyper

import (
	"context"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/population"
	"github.com/nexaroute/vrpcore/recreate"
	"github.com/nexaroute/vrpcore/ruin"
	"github.com/nexaroute/vrpcore/solution"
)

// RNG is the minimal randomness surface both selective strategies need,
// matching ruin.RNG so a single environment-derived stream can back
// every operator in a generation.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// Pair names one ruin operator and one recreate operator to run in
// sequence, the unit the hyper-heuristic chooses between.
type Pair struct {
	Label    string
	Ruin     ruin.Operator
	Recreate recreate.Operator
}

// SearchContext carries the per-generation inputs a heuristic needs
// beyond the parent solutions themselves: a cancellable context for
// quota polling, and the population's current selection phase, which
// the dynamic strategy's slow-search detector reads (spec.md §4.10,
// §4.11 "selection_phase").
type SearchContext struct {
	Ctx   context.Context
	Phase population.Phase
}

// Heuristic is implemented by StaticSelective and DynamicSelective.
type Heuristic interface {
	// Search returns one child per parent, each an independent clone
	// ruined and recreated by whichever pair this call selected.
	Search(sc SearchContext, parents []*solution.Solution) []*solution.Solution
}

// applyPair clones parent, ruins it in place up to removalLimit, then
// recreates it, returning the resulting child.
func applyPair(ctx context.Context, pair Pair, parent *solution.Solution, ev *insertion.Evaluator, removalLimit int) *solution.Solution {
	child := parent.Clone()
	pair.Ruin.Ruin(ctx, child, removalLimit)
	pair.Recreate.Recreate(ctx, child, ev)
	return child
}
