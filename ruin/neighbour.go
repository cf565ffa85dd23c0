package ruin

import (
	"context"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Neighbour picks a random seated job and removes it plus its K nearest
// neighbours by the problem's jobs index, regardless of which routes
// currently carry them (spec.md §4.9 "Neighbour Removal").
type Neighbour struct {
	Rand RNG
	K    int
}

// Ruin implements Operator.
func (o Neighbour) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	pool := dedupJobs(removable(sol))
	if len(pool) == 0 {
		return
	}
	seed := pool[o.Rand.IntN(len(pool))]

	k := o.K
	if limit > 0 && k > limit {
		k = limit
	}
	ring := ringFor(sol, seed, k)

	removed := 0
	consider := append([]model.Job{seed}, ring...)
	for _, job := range consider {
		if limit > 0 && removed >= limit {
			break
		}
		if sol.IsLocked(job.ID()) {
			continue
		}
		if _, required := sol.Required[job.ID()]; required {
			continue
		}
		remove(sol, job)
		removed++
	}
}

// ringFor resolves a job's K nearest jobs index neighbours (profile 0)
// down to Job values, skipping ids the problem can no longer resolve.
func ringFor(sol *solution.Solution, seed model.Job, k int) []model.Job {
	index := sol.Problem.Index
	if index == nil {
		return nil
	}
	ids := index.Neighbors(0, seed.ID(), k)
	out := make([]model.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := sol.Problem.JobByID(id); ok {
			out = append(out, j)
		}
	}
	return out
}
