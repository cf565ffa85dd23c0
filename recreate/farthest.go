package recreate

import (
	"context"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Farthest inverts Cheapest's polarity (spec.md §4.8): among jobs that
// have at least one legal placement, pick the one whose cheapest
// insertion cost is largest, then place it there. This tends to seat
// hard-to-place jobs first, while they still have the most route
// capacity to choose from.
type Farthest struct{}

// Recreate implements Operator.
func (Farthest) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))

		var worstJob model.Job
		var worstRes *insertion.Result
		for _, j := range jobs {
			res, failure := ev.EvaluateJob(ctx, sol, j)
			if res != nil && (worstRes == nil || res.Cost > worstRes.Cost) {
				worstJob, worstRes = j, res
			}
			if failure != nil {
				codes[j.ID()] = failure.Code
			}
		}

		if worstRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, worstJob, worstRes)
	}
}
