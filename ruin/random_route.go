package ruin

import (
	"context"

	"github.com/nexaroute/vrpcore/solution"
)

// RandomRoute empties one randomly chosen route entirely, up to limit
// jobs (spec.md §4.9 "Random-route"), leaving the vehicle available for
// a subsequent recreate pass to reuse or leave idle.
type RandomRoute struct {
	Rand RNG
}

// Ruin implements Operator.
func (o RandomRoute) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	candidates := make([]int, 0, len(sol.Routes))
	for ri, rc := range sol.Routes {
		if routeHasUnlockedJob(sol, rc) {
			candidates = append(candidates, ri)
		}
	}
	if len(candidates) == 0 {
		return
	}
	ri := candidates[o.Rand.IntN(len(candidates))]
	rc := sol.Routes[ri]

	removed := 0
	for _, a := range rc.Tour.All() {
		if removed >= limit {
			break
		}
		if a.Job == nil {
			continue
		}
		id := a.Job.ID()
		if sol.IsLocked(id) {
			continue
		}
		if job, ok := sol.Problem.JobByID(id); ok {
			remove(sol, job)
			removed++
		}
	}
}

func routeHasUnlockedJob(sol *solution.Solution, rc *solution.RouteContext) bool {
	for _, a := range rc.Tour.All() {
		if a.Job != nil && !sol.IsLocked(a.Job.ID()) {
			return true
		}
	}
	return false
}
