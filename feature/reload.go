package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// NewReload builds the reload feature. Reload stops are already
// accounted for by the capacity feature splitting reload intervals
// (spec.md §4.3); this feature only checks that a route never carries
// more scheduled reload activities than its shift defines, since
// recreate/localsearch are free to propose a reload at any position
// but must not invent extra ones beyond the shift's Reloads list.
func NewReload() *Feature {
	return &Feature{FeatureName: "reload", Constraint: &reloadConstraint{}, StateWriter: noopState{}}
}

// CodeReload is the violation code for a route with too many reload
// stops for its shift.
const CodeReload = "RELOAD_CONSTRAINT"

type reloadConstraint struct{}

func (reloadConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove {
		return nil
	}
	max := len(ctx.Route.Actor.Shift().Reloads)
	if len(ctx.Route.Tour.IndexesOfKind(solution.KindReload)) > max {
		return &Violation{Code: CodeReload, Stopped: true}
	}
	return nil
}

func (reloadConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
