package ruin

import (
	"context"
	"sort"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Cluster groups removable jobs by travel proximity (a DBSCAN-style
// region growth, spec.md §4.9 "Cluster Removal") and removes one whole
// cluster, up to limit jobs. Epsilon is estimated as the mean distance
// to each job's MinPts-th nearest neighbour, the same k-NN-average
// heuristic the spec calls for, rather than a fixed constant.
//
// The region-growing pass itself mirrors the donor bfs package's
// queue-plus-visited-set traversal, walked over an implicit
// epsilon-radius graph instead of core.Graph's explicit edges.
type Cluster struct {
	Rand   RNG
	MinPts int
}

// Ruin implements Operator.
func (o Cluster) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	pool := dedupJobs(removable(sol))
	if len(pool) < 2 {
		return
	}
	minPts := o.MinPts
	if minPts < 1 {
		minPts = 3
	}

	profile := model.ProfileIndex(0)
	locOf := make(map[model.JobID]model.Location, len(pool))
	for _, j := range pool {
		if singles := j.Singles(); len(singles) > 0 && len(singles[0].Places) > 0 {
			locOf[j.ID()] = singles[0].Places[0].Location
		}
	}

	eps := estimateEpsilon(sol, profile, pool, locOf, minPts)

	seed := pool[o.Rand.IntN(len(pool))]
	region := growRegion(sol, profile, seed, pool, locOf, eps)

	removed := 0
	for _, job := range region {
		if removed >= limit {
			break
		}
		if sol.IsLocked(job.ID()) {
			continue
		}
		remove(sol, job)
		removed++
	}
}

// estimateEpsilon averages, over every job, the distance to its minPts-th
// nearest neighbour within pool — the k-NN-average heuristic DBSCAN
// implementations commonly use to pick a radius without a user-tuned
// constant.
func estimateEpsilon(sol *solution.Solution, profile model.ProfileIndex, pool []model.Job, locOf map[model.JobID]model.Location, minPts int) float64 {
	if len(pool) <= minPts {
		return 0
	}
	var sum float64
	var n int
	for _, j := range pool {
		from, ok := locOf[j.ID()]
		if !ok {
			continue
		}
		dists := make([]float64, 0, len(pool)-1)
		for _, other := range pool {
			if other.ID() == j.ID() {
				continue
			}
			to, ok := locOf[other.ID()]
			if !ok {
				continue
			}
			dists = append(dists, sol.Problem.Transport.Distance(profile, from, to))
		}
		if len(dists) < minPts {
			continue
		}
		sort.Float64s(dists)
		sum += dists[minPts-1]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// growRegion performs a BFS-style expansion from seed, connecting any
// two pool jobs within eps of each other.
func growRegion(sol *solution.Solution, profile model.ProfileIndex, seed model.Job, pool []model.Job, locOf map[model.JobID]model.Location, eps float64) []model.Job {
	visited := map[model.JobID]bool{seed.ID(): true}
	queue := []model.Job{seed}
	out := []model.Job{seed}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		from, ok := locOf[cur.ID()]
		if !ok {
			continue
		}
		for _, cand := range pool {
			if visited[cand.ID()] {
				continue
			}
			to, ok := locOf[cand.ID()]
			if !ok {
				continue
			}
			if sol.Problem.Transport.Distance(profile, from, to) <= eps {
				visited[cand.ID()] = true
				queue = append(queue, cand)
				out = append(out, cand)
			}
		}
	}
	return out
}
