package recreate

import (
	"context"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Cheapest repeatedly picks the (job, route, position) triple with
// globally minimum incremental cost (spec.md §4.8).
type Cheapest struct{}

// Recreate implements Operator.
func (Cheapest) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))

		var bestJob model.Job
		var bestRes *insertion.Result
		for _, j := range jobs {
			res, failure := ev.EvaluateJob(ctx, sol, j)
			if res != nil && (bestRes == nil || res.Cost < bestRes.Cost) {
				bestJob, bestRes = j, res
			}
			if failure != nil {
				codes[j.ID()] = failure.Code
			}
		}

		if bestRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, bestJob, bestRes)
	}
}
