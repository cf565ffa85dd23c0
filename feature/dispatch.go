package feature

import (
	"github.com/nexaroute/vrpcore/model"
)

// CodeDispatch is the violation code for a route whose first activity
// departs before the shift's dispatch time (SPEC_FULL.md §6.1).
const CodeDispatch = "DISPATCH_CONSTRAINT"

// NewDispatch builds the dispatch-activity constraint: when a shift
// defines DispatchEarliest, the actor must wait at the start location
// until that time even though accounting otherwise treats the shift as
// starting at StartEarliest.
func NewDispatch() *Feature {
	return &Feature{FeatureName: "dispatch", Constraint: &dispatchConstraint{}, StateWriter: noopState{}}
}

type dispatchConstraint struct{}

func (dispatchConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove {
		return nil
	}
	dispatch := ctx.Route.Actor.Shift().DispatchEarliest
	if dispatch == nil {
		return nil
	}
	start := ctx.Route.Tour.At(0)
	if start.Schedule.Departure.Before(*dispatch) {
		return &Violation{Code: CodeDispatch, Stopped: true}
	}
	return nil
}

func (dispatchConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
