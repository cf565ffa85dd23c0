package feature

import (
	"github.com/nexaroute/vrpcore/model"
)

// CodeGroup is the violation code for a job whose Group must be served
// by a single route but whose group-mates are already committed
// elsewhere.
const CodeGroup = "GROUP_CONSTRAINT"

// NewGroups builds the group constraint: all singles sharing a non-empty
// Group tag must end up on the same route.
func NewGroups() *Feature {
	return &Feature{FeatureName: "groups", Constraint: &groupsConstraint{}, StateWriter: noopState{}}
}

type groupsConstraint struct{}

func (groupsConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	for _, single := range ctx.Job.Singles() {
		if single.Group == "" {
			continue
		}
		if groupAlreadyOnOtherRoute(ctx, single.Group) {
			return &Violation{Code: CodeGroup, Stopped: false}
		}
	}
	return nil
}

// groupAlreadyOnOtherRoute reports whether any single tagged with group
// is already committed to a route other than the candidate route.
func groupAlreadyOnOtherRoute(ctx MoveContext, group string) bool {
	for _, rc := range ctx.Solution.Routes {
		if rc == ctx.Route {
			continue
		}
		for _, a := range rc.Tour.All() {
			if a.Job != nil && a.Job.Group == group {
				return true
			}
		}
	}
	return false
}

func (groupsConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
