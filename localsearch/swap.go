package localsearch

import (
	"context"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/solution"
)

// Swap exchanges two placed jobs' positions by removing both and
// letting the evaluator re-place each in turn, intra- or inter-route
// depending on where the evaluator finds their best legal slot
// (spec.md §4.13 "swap two activities, intra or inter route").
type Swap struct {
	Rand RNG
}

// Apply implements Move.
func (m Swap) Apply(ctx context.Context, g *goal.Goal, ev *insertion.Evaluator, sol *solution.Solution) bool {
	jobs := placedJobs(sol)
	if len(jobs) < 2 {
		return false
	}
	i := m.Rand.IntN(len(jobs))
	j := m.Rand.IntN(len(jobs))
	if i == j {
		j = (j + 1) % len(jobs)
	}
	a, b := jobs[i], jobs[j]

	before := sol.Clone()
	removeJob(sol, a)
	removeJob(sol, b)

	okB := tryReinsert(ctx, ev, sol, b)
	okA := tryReinsert(ctx, ev, sol, a)

	if !okA || !okB || g.Compare(sol, before) >= 0 {
		restore(sol, before)
		return false
	}
	return true
}
