package ruin

import (
	"context"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// RandomJob removes up to limit unlocked jobs chosen uniformly at
// random across the whole solution (spec.md §4.9 "Random-job").
type RandomJob struct {
	Rand RNG
}

// Ruin implements Operator.
func (o RandomJob) Ruin(ctx context.Context, sol *solution.Solution, limit int) {
	pool := dedupJobs(removable(sol))
	shuffle(o.Rand, pool)
	if limit > len(pool) {
		limit = len(pool)
	}
	for _, job := range pool[:limit] {
		remove(sol, job)
	}
}

// shuffle applies a Fisher-Yates shuffle in place using rng.
func shuffle(rng RNG, jobs []model.Job) {
	for i := len(jobs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}
}
