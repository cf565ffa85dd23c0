package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// CodeSkills is the violation code for a job requiring a skill the
// candidate actor's vehicle does not carry.
const CodeSkills = "SKILL_CONSTRAINT"

// NewSkills builds the route-level skill-compatibility constraint: a
// job's required skills must be a subset of its candidate actor's
// vehicle skills. This is a route gate (spec.md §4.7 "Route gate"),
// evaluated once per candidate route rather than per activity.
func NewSkills() *Feature {
	return &Feature{FeatureName: "skills", Constraint: &skillsConstraint{}}
}

type skillsConstraint struct{}

func (skillsConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	have := make(map[string]struct{}, len(ctx.Route.Actor.Vehicle.Skills))
	for _, s := range ctx.Route.Actor.Vehicle.Skills {
		have[s] = struct{}{}
	}
	for _, single := range ctx.Job.Singles() {
		for _, need := range single.Skills {
			if _, ok := have[need]; !ok {
				return &Violation{Code: CodeSkills, Stopped: true}
			}
		}
	}
	return nil
}

func (skillsConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

var _ State = noopState{}

// noopState is embedded by Features with no cache requirements, saving
// each of them a handful of empty method bodies.
type noopState struct{}

func (noopState) AcceptInsertion(*solution.Solution, int, model.Job) {}
func (noopState) AcceptRouteState(*solution.RouteContext)            {}
func (noopState) AcceptSolutionState(*solution.Solution)             {}
