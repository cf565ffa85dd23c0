package feature

import "github.com/nexaroute/vrpcore/model"

// CodeDistanceLimit / CodeTimeLimit are the violation codes for the
// distance- and shift-time-limit constraints.
const (
	CodeDistanceLimit = "DISTANCE_LIMIT_CONSTRAINT"
	CodeTimeLimit     = "TIME_LIMIT_CONSTRAINT"
)

// NewLimits builds the distance/shift-time limit constraint: a
// candidate route's projected total distance, with the target spliced
// into its leg, must not exceed Limits.MaxDistance, and the time from
// tour start to the target's departure must not exceed
// Limits.MaxShiftTime. The delay an insertion adds to the activities
// after it is not counted against MaxShiftTime.
func NewLimits() *Feature {
	return &Feature{FeatureName: "limits", Constraint: &limitsConstraint{}, StateWriter: noopState{}}
}

type limitsConstraint struct{}

func (limitsConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != ActivityMove {
		return nil
	}
	limits := ctx.Route.Actor.Vehicle.Limits

	if limits.MaxDistance > 0 {
		projected := ctx.Route.State.TotalDistance()
		if ctx.Solution != nil && ctx.Solution.Problem != nil {
			tr, p := ctx.Solution.Problem.Transport, ctx.Route.Actor.Vehicle.Profile
			prev, target, next := ctx.Prev.Place.Location, ctx.Target.Place.Location, ctx.Next.Place.Location
			projected += tr.Distance(p, prev, target) + tr.Distance(p, target, next) - tr.Distance(p, prev, next)
		}
		if projected > limits.MaxDistance {
			return &Violation{Code: CodeDistanceLimit, Stopped: true}
		}
	}
	if limits.MaxShiftTime > 0 {
		elapsed := ctx.Departure.Sub(ctx.Route.Tour.At(0).Schedule.Arrival)
		if elapsed > limits.MaxShiftTime {
			return &Violation{Code: CodeTimeLimit, Stopped: true}
		}
	}
	return nil
}

func (limitsConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
