// Package recreate implements the recreate operators (spec.md §4.8):
// given a Solution whose Required set is non-empty, place as many of
// those jobs as legally possible, consulting the Goal for every
// candidate placement and writing state via Commit after each one.
package recreate

import (
	"context"
	"sort"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Operator is implemented by every recreate policy.
type Operator interface {
	Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator)
}

// ensureOpenRoutes appends an empty RouteContext for every available
// actor not yet represented in sol.Routes, so the insertion evaluator
// can consider opening a fresh vehicle (spec.md §4.7 "Empty routes must
// still be evaluated"). Each new route's cache is primed immediately
// so the evaluator never reads a stale, zero-length cache.
func ensureOpenRoutes(sol *solution.Solution, ev *insertion.Evaluator) {
	for _, actor := range sol.Registry.Available() {
		if sol.RouteFor(actor.ID) != nil {
			continue
		}
		shift := actor.Shift()
		start := model.Place{Location: shift.StartLocation}
		end := model.Place{Location: shift.EndLocation}
		tour := solution.NewTour(start, end, shift.HasEnd, shift.StartEarliest)
		rc := solution.NewRouteContext(actor, tour)
		ev.Goal.AcceptRouteState(rc)
		sol.Routes = append(sol.Routes, rc)
	}
}

// requiredJobs returns sol.Required as a slice in deterministic
// (sorted-by-id) order, since Go map iteration order is randomized and
// operators must behave reproducibly given a fixed seed.
func requiredJobs(sol *solution.Solution) []model.Job {
	out := make([]model.Job, 0, len(sol.Required))
	for _, j := range sol.Required {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// commit applies a winning placement and binds its actor if this was
// the actor's first job.
func commit(sol *solution.Solution, ev *insertion.Evaluator, job model.Job, res *insertion.Result) {
	ev.Commit(sol, job, res)
	_ = sol.Registry.Use(sol.Routes[res.RouteIdx].Actor.ID)
}

// failAll marks every remaining required job as unassigned with its
// most specific known failure code, used when an operator can make no
// further progress.
func failAll(sol *solution.Solution, jobs []model.Job, codes map[model.JobID]string) {
	for _, j := range jobs {
		code := codes[j.ID()]
		if code == "" {
			code = "NO_CANDIDATE_ROUTE"
		}
		sol.MarkUnassigned(j.ID(), solution.UnassignedInfo{Code: code})
	}
}
