package feature

import "github.com/nexaroute/vrpcore/model"

// CodeLocked is the violation code for attempting to move a job whose
// placement is locked.
const CodeLocked = "LOCKED_CONSTRAINT"

// NewLocking builds the locking constraint: a job in Solution.Locked may
// only be "inserted" back into the exact route/position it already
// occupies — in practice this feature exists to reject any route-level
// candidate other than the job's current route once it is locked,
// since ruin operators already refuse to remove locked jobs (spec.md
// §4.9) and recreate never sees a locked job in Required.
func NewLocking() *Feature {
	return &Feature{FeatureName: "locking", Constraint: &lockingConstraint{}, StateWriter: noopState{}}
}

type lockingConstraint struct{}

func (lockingConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	if !ctx.Solution.IsLocked(ctx.Job.ID()) {
		return nil
	}
	current := ctx.Solution.RouteFor(ctx.Route.Actor.ID)
	if current == nil || len(current.Tour.IndexOfJob(ctx.Job.ID())) == 0 {
		return &Violation{Code: CodeLocked, Stopped: true}
	}
	return nil
}

func (lockingConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
