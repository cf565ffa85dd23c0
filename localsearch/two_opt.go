package localsearch

import (
	"context"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/solution"
)

// TwoOpt runs one deterministic first-improvement 2-opt pass within a
// single randomly chosen route, adapted directly from the donor
// tsp.TwoOpt first-improvement scan: for each candidate segment [i,k]
// it reverses the activities in place, recomputes route state, and
// keeps the reversal the first time it strictly improves the goal;
// otherwise it un-reverses and keeps scanning (spec.md §4.13 "2-opt
// within a route").
type TwoOpt struct {
	Rand RNG
}

// Apply implements Move.
func (m TwoOpt) Apply(ctx context.Context, g *goal.Goal, ev *insertion.Evaluator, sol *solution.Solution) bool {
	if len(sol.Routes) == 0 {
		return false
	}
	routeIdx := m.Rand.IntN(len(sol.Routes))
	rc := sol.Routes[routeIdx]
	acts := rc.Tour.All()
	n := len(acts)
	// acts[0] and acts[n-1] are the synthetic start/end bookends;
	// reversible interior spans at least two job activities.
	if n < 4 {
		return false
	}

	before := sol.Clone()

	for i := 1; i <= n-3; i++ {
		for k := i + 1; k <= n-2; k++ {
			for x, y := i, k; x < y; x, y = x+1, y-1 {
				rc.Tour.Set(x, acts[y])
				rc.Tour.Set(y, acts[x])
			}
			rc.State.MarkStale()
			g.AcceptRouteState(rc)

			if g.Compare(sol, before) < 0 {
				return true
			}

			// Not an improvement: undo this reversal before trying the
			// next candidate segment.
			for x, y := i, k; x < y; x, y = x+1, y-1 {
				rc.Tour.Set(x, acts[x])
				rc.Tour.Set(y, acts[y])
			}
			rc.State.MarkStale()
			g.AcceptRouteState(rc)
		}
	}

	restore(sol, before)
	return false
}
