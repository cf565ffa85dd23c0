// Package localsearch implements the low-probability per-generation
// improvement moves named in spec.md §4.13: Swap, TwoOpt, Reschedule,
// Redistribute. Every move is accepted iff the goal strictly improves
// on the solution it started from; a rejected move leaves the solution
// exactly as it found it.
//
// Rather than re-deriving constraint/time-window/capacity feasibility
// from scratch for an arbitrary tour edit, every move here composes the
// already-built insertion evaluator for re-placement: it removes the
// job(s) a move touches and lets insertion.Evaluator.EvaluateJob re-run
// the full constraint and objective pipeline on the way back in, the
// same machinery recreate operators already trust.
package localsearch

import (
	"context"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// RNG is the minimal randomness surface every move needs.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// Move is implemented by every local search operator.
type Move interface {
	// Apply attempts one mutation of sol and reports whether it was
	// kept. On a rejected attempt sol is left unchanged.
	Apply(ctx context.Context, g *goal.Goal, ev *insertion.Evaluator, sol *solution.Solution) bool
}

// placedJobs returns every non-locked job currently seated in some
// route, deduplicated (a Multi's singles all resolve to the same Job).
func placedJobs(sol *solution.Solution) []model.Job {
	seen := make(map[model.JobID]struct{})
	var out []model.Job
	for _, rc := range sol.Routes {
		for _, a := range rc.Tour.All() {
			if a.Job == nil {
				continue
			}
			id := a.Job.ID()
			if sol.IsLocked(id) {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			job, ok := sol.Problem.JobByID(id)
			if !ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, job)
		}
	}
	return out
}

// removeJob pulls every activity belonging to job out of whichever
// route carries it and pushes it back into Required, mirroring ruin's
// removal bookkeeping.
func removeJob(sol *solution.Solution, job model.Job) {
	for _, rc := range sol.Routes {
		if rc.Tour.RemoveJob(job.ID()) > 0 {
			rc.State.MarkStale()
		}
	}
	sol.Required[job.ID()] = job
	delete(sol.Unassigned, job.ID())
}

// tryReinsert asks the evaluator for job's best legal placement and
// commits it. Reports false (leaving job in Required) if no route can
// legally take it.
func tryReinsert(ctx context.Context, ev *insertion.Evaluator, sol *solution.Solution, job model.Job) bool {
	res, _ := ev.EvaluateJob(ctx, sol, job)
	if res == nil {
		return false
	}
	ev.Commit(sol, job, res)
	return true
}

// restore overwrites sol's fields with snapshot's, discarding any
// mutation attempted since snapshot was taken. Snapshot must have come
// from sol.Clone(), so every field is an independent deep copy.
func restore(sol, snapshot *solution.Solution) {
	*sol = *snapshot
}
