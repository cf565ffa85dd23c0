package recreate

import (
	"context"
	"sort"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Regret computes, for every required job, the gap between its k-th
// best and best insertion cost across all candidate routes, and places
// the job with the maximum gap first (spec.md §4.8): the intuition is
// that a job with a large regret has the most to lose if its best slot
// is taken by something else first.
type Regret struct {
	K int
}

// Recreate implements Operator.
func (r Regret) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	k := r.K
	if k < 2 {
		k = 2
	}
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))

		var bestJob model.Job
		var bestRes *insertion.Result
		bestRegret := -1.0

		for _, j := range jobs {
			candidates := ev.EvaluateJobPerRoute(ctx, sol, j)
			var costs []float64
			var cheapest *insertion.Result
			for _, c := range candidates {
				if c.Result == nil {
					if c.Code != "" {
						codes[j.ID()] = c.Code
					}
					continue
				}
				costs = append(costs, c.Result.Cost)
				if cheapest == nil || c.Result.Cost < cheapest.Cost {
					cheapest = c.Result
				}
			}
			if cheapest == nil {
				continue
			}
			sort.Float64s(costs)
			kth := costs[len(costs)-1]
			if k-1 < len(costs) {
				kth = costs[k-1]
			}
			regret := kth - costs[0]

			if regret > bestRegret {
				bestRegret = regret
				bestJob, bestRes = j, cheapest
			}
		}

		if bestRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, bestJob, bestRes)
	}
}
