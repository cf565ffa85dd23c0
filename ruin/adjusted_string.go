package ruin

import (
	"context"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// AdjustedString picks a seed route, removes a contiguous run of its
// jobs, and with SpreadProbability also removes a shorter matching run
// from other routes whose seed activity lies near the same spatial
// region (spec.md §4.9 "Adjusted String Removal") — the string-removal
// operator from Shaw-style large neighbourhood search, generalized
// across the whole fleet instead of one route.
type AdjustedString struct {
	Rand              RNG
	SpreadProbability float64
}

// Ruin implements Operator.
func (o AdjustedString) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	routesWithJobs := make([]int, 0, len(sol.Routes))
	for ri, rc := range sol.Routes {
		if routeHasUnlockedJob(sol, rc) {
			routesWithJobs = append(routesWithJobs, ri)
		}
	}
	if len(routesWithJobs) == 0 {
		return
	}
	seedRoute := routesWithJobs[o.Rand.IntN(len(routesWithJobs))]

	removed := 0
	removed += removeString(sol, seedRoute, limit-removed, o.Rand)

	anchor := seedAnchor(sol, seedRoute)
	if anchor == nil {
		return
	}
	for _, ri := range routesWithJobs {
		if removed >= limit {
			break
		}
		if ri == seedRoute {
			continue
		}
		if o.Rand.Float64() > o.SpreadProbability {
			continue
		}
		if !nearAnchor(sol, ri, *anchor) {
			continue
		}
		removed += removeString(sol, ri, limit-removed, o.Rand)
	}
}

// removeString removes a contiguous run of unlocked job activities
// starting at a random offset within rc's tour, up to max jobs.
func removeString(sol *solution.Solution, routeIdx, max int, rand RNG) int {
	if max <= 0 {
		return 0
	}
	rc := sol.Routes[routeIdx]
	acts := rc.Tour.All()

	var jobIdxs []int
	for i, a := range acts {
		if a.Job != nil && !sol.IsLocked(a.Job.ID()) {
			jobIdxs = append(jobIdxs, i)
		}
	}
	if len(jobIdxs) == 0 {
		return 0
	}

	start := rand.IntN(len(jobIdxs))
	removed := 0
	for i := start; i < len(jobIdxs) && removed < max; i++ {
		a := rc.Tour.At(jobIdxs[i])
		if a.Job == nil {
			continue
		}
		job, ok := sol.Problem.JobByID(a.Job.ID())
		if !ok {
			continue
		}
		remove(sol, job)
		removed++
	}
	return removed
}

// seedAnchor returns the location of the first job activity remaining
// on the seed route after its string removal, used as the spatial
// reference point for deciding which other routes are "nearby".
func seedAnchor(sol *solution.Solution, routeIdx int) *model.Location {
	rc := sol.Routes[routeIdx]
	for _, a := range rc.Tour.All() {
		if a.Job != nil {
			loc := a.Place.Location
			return &loc
		}
	}
	return nil
}

// nearAnchor reports whether route ri has any job activity within
// nearbyRadius of anchor, measured with the route's own profile.
func nearAnchor(sol *solution.Solution, ri int, anchor model.Location) bool {
	rc := sol.Routes[ri]
	profile := rc.Actor.Vehicle.Profile
	for _, a := range rc.Tour.All() {
		if a.Job == nil {
			continue
		}
		d := sol.Problem.Transport.Distance(profile, anchor, a.Place.Location)
		if d <= nearbyRadius(sol, profile) {
			return true
		}
	}
	return false
}

// nearbyRadius derives a "nearby" cutoff from the problem's own scale:
// twice the mean nearest-neighbour distance across every job, read
// straight off the shared jobs index rather than a hand-tuned constant.
func nearbyRadius(sol *solution.Solution, profile model.ProfileIndex) float64 {
	index := sol.Problem.Index
	jobs := sol.Problem.Jobs
	if index == nil || len(jobs) < 2 {
		return 1 << 30
	}
	var sum float64
	var n int
	for _, j := range jobs {
		nearest := index.Neighbors(profile, j.ID(), 1)
		if len(nearest) == 0 {
			continue
		}
		other, ok := sol.Problem.JobByID(nearest[0])
		if !ok {
			continue
		}
		a, b := j.Singles(), other.Singles()
		if len(a) == 0 || len(b) == 0 || len(a[0].Places) == 0 || len(b[0].Places) == 0 {
			continue
		}
		sum += sol.Problem.Transport.Distance(profile, a[0].Places[0].Location, b[0].Places[0].Location)
		n++
	}
	if n == 0 {
		return 1 << 30
	}
	return (sum / float64(n)) * 2
}
