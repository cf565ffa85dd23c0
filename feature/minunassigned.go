package feature

import (
	"github.com/nexaroute/vrpcore/solution"
)

// NewMinUnassigned builds the objective that penalizes leaving jobs
// unassigned, usually placed first in the goal hierarchy so no other
// objective can trade off coverage for a cheaper tour.
func NewMinUnassigned(penalty float64) *Feature {
	return &Feature{FeatureName: "min_unassigned", Objective: &minUnassignedObjective{penalty: penalty}}
}

type minUnassignedObjective struct{ penalty float64 }

func (m *minUnassignedObjective) Estimate(MoveContext) float64 { return 0 }

func (m *minUnassignedObjective) Fitness(sol *solution.Solution) float64 {
	return float64(len(sol.Unassigned)) * m.penalty
}
