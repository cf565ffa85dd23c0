package recreate

import (
	"context"
	"time"

	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Gaps biases selection by temporal slack (spec.md §4.8 "Gaps / Slack"
// variant): jobs whose candidate places carry the narrowest time
// window are seated first, since they have the least room to be
// rescheduled around later. Jobs with no time window at all are
// treated as maximally flexible and seated last.
type Gaps struct{}

// Recreate implements Operator.
func (Gaps) Recreate(ctx context.Context, sol *solution.Solution, ev *insertion.Evaluator) {
	ensureOpenRoutes(sol, ev)

	for len(sol.Required) > 0 {
		jobs := requiredJobs(sol)
		codes := make(map[model.JobID]string, len(jobs))

		var tightestJob model.Job
		var tightestRes *insertion.Result
		tightestSlack := time.Duration(-1)

		for _, j := range jobs {
			res, failure := ev.EvaluateJob(ctx, sol, j)
			if failure != nil {
				codes[j.ID()] = failure.Code
				continue
			}
			if res == nil {
				continue
			}
			slack := minWindowWidth(j)
			if tightestRes == nil || slack < tightestSlack {
				tightestSlack = slack
				tightestJob, tightestRes = j, res
			}
		}

		if tightestRes == nil {
			failAll(sol, jobs, codes)
			return
		}
		commit(sol, ev, tightestJob, tightestRes)
	}
}

// minWindowWidth returns the narrowest candidate time window across
// every place of every sub-activity of job, or a large sentinel
// duration if none of them declare a window.
func minWindowWidth(job model.Job) time.Duration {
	const unconstrained = time.Duration(1<<63 - 1)
	best := unconstrained
	for _, single := range job.Singles() {
		for _, place := range single.Places {
			for _, w := range place.Times {
				width := w.End.Sub(w.Start)
				if width < best {
					best = width
				}
			}
		}
	}
	return best
}
