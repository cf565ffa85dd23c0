package ruin

import (
	"context"
	"sort"

	"github.com/nexaroute/vrpcore/solution"
)

// WorstJob removes up to limit unlocked jobs in descending order of how
// much their insertion point inflates its route's travel distance
// (spec.md §4.9 "Worst-job"): the contribution of an activity is the
// detour its presence forces — dist(prev,it)+dist(it,next) minus the
// direct prev-to-next distance.
type WorstJob struct{}

// Ruin implements Operator.
func (WorstJob) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	type scored struct {
		routeIdx int
		idx      int
		id       string
		detour   float64
	}
	var all []scored
	for ri, rc := range sol.Routes {
		profile := rc.Actor.Vehicle.Profile
		acts := rc.Tour.All()
		for i, a := range acts {
			if a.Job == nil || sol.IsLocked(a.Job.ID()) {
				continue
			}
			if i == 0 || i == len(acts)-1 {
				continue
			}
			prev, next := acts[i-1], acts[i+1]
			direct := sol.Problem.Transport.Distance(profile, prev.Place.Location, next.Place.Location)
			via := sol.Problem.Transport.Distance(profile, prev.Place.Location, a.Place.Location) +
				sol.Problem.Transport.Distance(profile, a.Place.Location, next.Place.Location)
			all = append(all, scored{routeIdx: ri, idx: i, id: string(a.Job.ID()), detour: via - direct})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].detour > all[j].detour })

	removedIDs := make(map[string]struct{}, limit)
	for _, s := range all {
		if len(removedIDs) >= limit {
			break
		}
		if _, done := removedIDs[s.id]; done {
			continue
		}
		rc := sol.Routes[s.routeIdx]
		a := rc.Tour.At(s.idx)
		if a.Job == nil {
			continue
		}
		job, ok := sol.Problem.JobByID(a.Job.ID())
		if !ok {
			continue
		}
		remove(sol, job)
		removedIDs[s.id] = struct{}{}
	}
}
