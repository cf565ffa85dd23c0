package feature

import "github.com/nexaroute/vrpcore/model"

// CodeTourSize is the violation code for an insertion that would push a
// route past its vehicle's tour-size limit.
const CodeTourSize = "TOUR_SIZE_CONSTRAINT"

// NewTourSize builds the tour-size-limit constraint (spec.md scenario
// 5): a vehicle with Limits.MaxTourSize > 0 may carry at most that many
// job activities.
func NewTourSize() *Feature {
	return &Feature{FeatureName: "tour_size", Constraint: &tourSizeConstraint{}, StateWriter: noopState{}}
}

type tourSizeConstraint struct{}

func (tourSizeConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	limit := ctx.Route.Actor.Vehicle.Limits.MaxTourSize
	if limit <= 0 {
		return nil
	}
	if ctx.Route.Tour.JobCount()+len(ctx.Job.Singles()) > limit {
		return &Violation{Code: CodeTourSize, Stopped: true}
	}
	return nil
}

func (tourSizeConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
