package recreate

import (
	"context"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// RNG is the minimal randomness source Perturbation needs, satisfied
// by both math/rand's *Rand and environment's deterministic per-worker
// stream — this package stays agnostic to which one a caller wires in.
type RNG interface {
	Float64() float64
}

// Perturbation behaves like Cheapest but scores each candidate cost
// through a bounded multiplicative noise factor before comparing,
// diversifying the recreate pass so repeated ruin/recreate cycles don't
// always converge to the same local optimum (spec.md §4.8
// "Perturbation" variant).
type Perturbation struct {
	Rand     RNG
	Strength float64 // noise half-width as a fraction of cost, e.g. 0.1 for ±10%
}

// Recreate implements Operator.
func (p Perturbation) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))

		var bestJob model.Job
		var bestRes *insertion.Result
		bestScore := 0.0

		for _, j := range jobs {
			res, failure := ev.EvaluateJob(ctx, sol, j)
			if failure != nil {
				codes[j.ID()] = failure.Code
				continue
			}
			if res == nil {
				continue
			}
			noise := 1 + p.Strength*(2*p.Rand.Float64()-1)
			score := res.Cost * noise
			if bestRes == nil || score < bestScore {
				bestScore, bestJob, bestRes = score, j, res
			}
		}

		if bestRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, bestJob, bestRes)
	}
}
