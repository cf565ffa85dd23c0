package feature

import "github.com/nexaroute/vrpcore/model"

// CodeArea is the violation code for a job whose AreaTag is not among
// the candidate vehicle's AreaTags (SPEC_FULL.md §6.1).
const CodeArea = "AREA_CONSTRAINT"

// NewArea builds the area-membership constraint: a job with a non-empty
// AreaTag may only be served by a vehicle whose AreaTags includes it.
// An empty AreaTag, or a vehicle with no AreaTags at all, means
// unconstrained.
func NewArea() *Feature {
	return &Feature{FeatureName: "area", Constraint: &areaConstraint{}, StateWriter: noopState{}}
}

type areaConstraint struct{}

func (areaConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	vehicleAreas := ctx.Route.Actor.Vehicle.AreaTags
	if len(vehicleAreas) == 0 {
		return nil
	}
	for _, single := range ctx.Job.Singles() {
		if single.AreaTag == "" {
			continue
		}
		if !containsTag(vehicleAreas, single.AreaTag) {
			return &Violation{Code: CodeArea, Stopped: true}
		}
	}
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (areaConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }
