package hyper

import (
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/population"
	"github.com/nexaroute/vrpcore/solution"
)

// StaticSelective picks a (ruin, recreate) pair per child from a fixed
// probability distribution over Pairs (spec.md §4.10 "Static
// Selective").
type StaticSelective struct {
	Pairs        []Pair
	Weights      []float64 // parallel to Pairs; need not sum to 1
	Evaluator    *insertion.Evaluator
	RemovalLimit int
	Rand         RNG
}

// Search implements Heuristic.
func (h *StaticSelective) Search(sc SearchContext, parents []*solution.Solution) []*solution.Solution {
	children := make([]*solution.Solution, 0, len(parents))
	total := 0.0
	for _, w := range h.Weights {
		total += w
	}
	for _, parent := range parents {
		pair := h.choose(total)
		children = append(children, applyPair(sc.Ctx, pair, parent, h.Evaluator, h.RemovalLimit))
	}
	return children
}

// choose draws a pair from the weight distribution via inverse-CDF
// sampling; falls back to the first pair if weights are degenerate.
func (h *StaticSelective) choose(total float64) Pair {
	if len(h.Pairs) == 0 {
		return Pair{}
	}
	if total <= 0 {
		return h.Pairs[h.Rand.IntN(len(h.Pairs))]
	}
	target := h.Rand.Float64() * total
	cum := 0.0
	for i, w := range h.Weights {
		cum += w
		if target < cum {
			return h.Pairs[i]
		}
	}
	return h.Pairs[len(h.Pairs)-1]
}
