// Package ruin implements the ruin operators (spec.md §4.9): each one
// removes a bounded number of unlocked jobs from a Solution's routes
// and pushes them back into Required, for a following recreate pass to
// replace.
package ruin

import (
	"context"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Operator is implemented by every ruin policy.
type Operator interface {
	Ruin(ctx context.Context, sol *solution.Solution, limit int)
}

// RNG is the minimal randomness source ruin operators need, kept
// decoupled from a specific math/rand version the same way
// recreate.Perturbation is.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// removable returns every (job, route) pair currently seated on a
// route and not locked, in deterministic order.
func removable(sol *solution.Solution) []placement {
	var out []placement
	for ri, rc := range sol.Routes {
		for _, a := range rc.Tour.All() {
			if a.Job == nil {
				continue
			}
			id := a.Job.ID()
			if sol.IsLocked(id) {
				continue
			}
			job, ok := sol.Problem.JobByID(id)
			if !ok {
				continue
			}
			out = append(out, placement{routeIdx: ri, job: job})
		}
	}
	return out
}

type placement struct {
	routeIdx int
	job      model.Job
}

// remove pulls a job off whichever route currently carries it and
// pushes it back into Required, marking every route touched as stale
// so the next evaluation recomputes its cached state.
func remove(sol *solution.Solution, job model.Job) {
	for _, rc := range sol.Routes {
		removedAny := false
		for _, single := range job.Singles() {
			if rc.Tour.RemoveJob(single.ID()) > 0 {
				removedAny = true
			}
		}
		if removedAny {
			rc.State.MarkStale()
		}
	}
	sol.Required[job.ID()] = job
	delete(sol.Unassigned, job.ID())
}

// dedupJobs collapses a placement slice to its distinct jobs, keeping
// first-seen order.
func dedupJobs(ps []placement) []model.Job {
	seen := make(map[model.JobID]struct{}, len(ps))
	out := make([]model.Job, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.job.ID()]; ok {
			continue
		}
		seen[p.job.ID()] = struct{}{}
		out = append(out, p.job)
	}
	return out
}
