package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// CodeMissingBreak is the violation code for a completed route whose
// shift defines a break that was never scheduled.
const CodeMissingBreak = "BREAK_CONSTRAINT"

// NewBreaks builds the vehicle-break feature. It rejects no move: its
// Evaluate always returns nil and its state callbacks keep no state, so
// a shift whose breaks are never scheduled is neither rejected nor
// penalized by the goal. MissingBreaks reports such shifts, counting
// only shifts that ended up with at least one job activity.
func NewBreaks() *Feature {
	b := &breaksConstraint{}
	return &Feature{FeatureName: "breaks", Constraint: b, StateWriter: b}
}

type breaksConstraint struct{}

func (b *breaksConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove {
		return nil
	}
	// Route gate: every route is accepted, whether or not its shift's
	// breaks can be fitted. A missing break is not rejected here or by
	// any other callback of this feature; only MissingBreaks reports it.
	return nil
}

func (b *breaksConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

func (b *breaksConstraint) AcceptInsertion(*solution.Solution, int, model.Job) {}

func (b *breaksConstraint) AcceptRouteState(rc *solution.RouteContext) {}

func (b *breaksConstraint) AcceptSolutionState(*solution.Solution) {}

// MissingBreaks reports, for diagnostic/telemetry use, the routes whose
// shift defines at least one break but whose tour has fewer scheduled
// break activities than defined breaks, restricted to shifts that
// performed at least one job.
func MissingBreaks(sol *solution.Solution) []model.ActorID {
	var out []model.ActorID
	for _, rc := range sol.Routes {
		shift := rc.Actor.Shift()
		if len(shift.Breaks) == 0 || rc.Tour.JobCount() == 0 {
			continue
		}
		scheduled := len(rc.Tour.IndexesOfKind(solution.KindBreak))
		if scheduled < len(shift.Breaks) {
			out = append(out, rc.Actor.ID)
		}
	}
	return out
}
