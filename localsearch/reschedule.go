package localsearch

import (
	"context"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/solution"
)

// Reschedule picks one placed job, removes it, and lets the evaluator
// re-derive its best legal (position, place-variant, departure) triple
// from scratch (spec.md §4.13 "reschedule departure times"). Since a
// job's departure schedule is entirely a function of where and in
// which place-variant it is seated (routestate's forward schedule
// propagation, §4.3), forcing a fresh placement is the natural way to
// let a job's schedule drift toward a better one without hand-rolling
// a separate time-shift search over the same space insertion already
// searches.
type Reschedule struct {
	Rand RNG
}

// Apply implements Move.
func (m Reschedule) Apply(ctx context.Context, g *goal.Goal, ev *insertion.Evaluator, sol *solution.Solution) bool {
	jobs := placedJobs(sol)
	if len(jobs) == 0 {
		return false
	}
	job := jobs[m.Rand.IntN(len(jobs))]

	before := sol.Clone()
	removeJob(sol, job)

	if !tryReinsert(ctx, ev, sol, job) || g.Compare(sol, before) >= 0 {
		restore(sol, before)
		return false
	}
	return true
}
