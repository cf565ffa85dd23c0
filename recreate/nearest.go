package recreate

import (
	"context"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Nearest biases selection by spatial proximity to already-placed work
// (spec.md §4.8 "Nearest-neighbor" variant): among required jobs with a
// legal placement, prefer the one closest (by the shared jobs index) to
// any job already on a route, falling back to cheapest-insertion-cost
// once no job has been placed yet.
type Nearest struct {
	Index model.JobsIndex
}

// Recreate implements Operator.
func (n Nearest) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))
		placed := placedJobIDs(sol)

		var chosenJob model.Job
		var chosenRes *insertion.Result
		bestRank := -1

		for _, j := range jobs {
			res, failure := ev.EvaluateJob(ctx, sol, j)
			if failure != nil {
				codes[j.ID()] = failure.Code
				continue
			}
			if res == nil {
				continue
			}
			rank := proximityRank(n.Index, j, placed)
			if chosenRes == nil || rank < bestRank || (rank == bestRank && res.Cost < chosenRes.Cost) {
				bestRank, chosenJob, chosenRes = rank, j, res
			}
		}

		if chosenRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, chosenJob, chosenRes)
	}
}

func placedJobIDs(sol *solution.Solution) []model.JobID {
	var out []model.JobID
	for _, rc := range sol.Routes {
		for _, a := range rc.Tour.All() {
			if a.Job != nil {
				out = append(out, a.Job.ID())
			}
		}
	}
	return out
}

// proximityRank returns the smallest neighbor-ring position of job
// among any placed job's neighbor ordering, or a large sentinel when
// nothing is placed yet or the index carries no relation between them.
func proximityRank(index model.JobsIndex, job model.Job, placed []model.JobID) int {
	const unranked = 1 << 30
	if index == nil || len(placed) == 0 {
		return unranked
	}
	best := unranked
	for _, p := range placed {
		ring := index.Neighbors(0, p, 0)
		for rank, id := range ring {
			if id == job.ID() && rank < best {
				best = rank
			}
		}
	}
	return best
}
