package localsearch

import (
	"context"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Redistribute removes a small spatially-clustered group of jobs (a
// seed plus its ClusterSize-1 nearest jobs-index neighbours) and lets
// the evaluator scatter them back across whichever routes now offer
// the best legal slot, accepting the result only if it strictly
// improves the goal (spec.md §4.13 "redistribute a small cluster of
// jobs").
type Redistribute struct {
	Rand        RNG
	ClusterSize int
}

// Apply implements Move.
func (m Redistribute) Apply(ctx context.Context, g *goal.Goal, ev *insertion.Evaluator, sol *solution.Solution) bool {
	jobs := placedJobs(sol)
	if len(jobs) == 0 {
		return false
	}
	seed := jobs[m.Rand.IntN(len(jobs))]

	size := m.ClusterSize
	if size < 1 {
		size = 1
	}
	cluster := []model.Job{seed}
	if index := sol.Problem.Index; index != nil && size > 1 {
		for _, id := range index.Neighbors(0, seed.ID(), size-1) {
			if j, ok := sol.Problem.JobByID(id); ok && !sol.IsLocked(id) {
				cluster = append(cluster, j)
			}
		}
	}

	before := sol.Clone()
	for _, job := range cluster {
		removeJob(sol, job)
	}

	allPlaced := true
	for _, job := range cluster {
		if !tryReinsert(ctx, ev, sol, job) {
			allPlaced = false
		}
	}

	if !allPlaced || g.Compare(sol, before) >= 0 {
		restore(sol, before)
		return false
	}
	return true
}
