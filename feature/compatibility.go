package feature

import (
	"errors"

	"github.com/nexaroute/vrpcore/model"
)

// CodeCompatibility is the violation code for two jobs with
// incompatible tags sharing a tour.
const CodeCompatibility = "COMPATIBILITY_CONSTRAINT"

// ErrIncompatibleMerge is returned by Merge when two jobs carry
// different compatibility tags; per spec.md §9 the conservative default
// is to refuse rather than guess intent.
var ErrIncompatibleMerge = errors.New("feature: jobs have incompatible tags")

// NewCompatibility builds the tag-based compatibility constraint: a
// route may not simultaneously carry two singles whose
// CompatibilityTag values differ and are both non-empty (e.g. "food"
// vs "chemicals").
func NewCompatibility() *Feature {
	return &Feature{FeatureName: "compatibility", Constraint: &compatibilityConstraint{}, StateWriter: noopState{}}
}

type compatibilityConstraint struct{}

func (compatibilityConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != RouteMove || ctx.Job == nil {
		return nil
	}
	routeTag := ""
	for _, a := range ctx.Route.Tour.All() {
		if a.Job != nil && a.Job.CompatibilityTag != "" {
			routeTag = a.Job.CompatibilityTag
			break
		}
	}
	if routeTag == "" {
		return nil
	}
	for _, single := range ctx.Job.Singles() {
		if single.CompatibilityTag != "" && single.CompatibilityTag != routeTag {
			return &Violation{Code: CodeCompatibility, Stopped: true}
		}
	}
	return nil
}

// Merge conservatively refuses to combine jobs with differing,
// non-empty compatibility tags (spec.md §9 ambiguity: "the original
// code conservatively refuses").
func (compatibilityConstraint) Merge(source, candidate model.Job) (model.Job, error) {
	srcTag, candTag := "", ""
	for _, s := range source.Singles() {
		if s.CompatibilityTag != "" {
			srcTag = s.CompatibilityTag
			break
		}
	}
	for _, s := range candidate.Singles() {
		if s.CompatibilityTag != "" {
			candTag = s.CompatibilityTag
			break
		}
	}
	if srcTag != "" && candTag != "" && srcTag != candTag {
		return nil, ErrIncompatibleMerge
	}
	return source, nil
}
