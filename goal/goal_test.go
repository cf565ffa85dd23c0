package goal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

func newTestSolution(t *testing.T, unassigned int) *solution.Solution {
	t.Helper()
	jobs := make([]model.Job, 0, unassigned)
	for i := 0; i < unassigned; i++ {
		jobs = append(jobs, &model.Single{JobID: model.JobID("j")})
	}
	problem := &model.Problem{Jobs: jobs}
	sol := solution.NewEmpty(problem)
	for _, j := range jobs {
		sol.MarkUnassigned(j.ID(), solution.UnassignedInfo{Code: "TEST"})
	}
	return sol
}

func TestGoalConstraintShortCircuit(t *testing.T) {
	stop := &feature.Feature{FeatureName: "stop", Constraint: fixedViolation{code: "A", stopped: true}}
	skip := &feature.Feature{FeatureName: "skip", Constraint: fixedViolation{code: "B", stopped: false}}
	g := goal.New(stop, skip)

	v := g.EvaluateConstraints(feature.MoveContext{Kind: feature.RouteMove})
	require.NotNil(t, v)
	assert.Equal(t, "A", v.Code)
}

func TestGoalCompareLexicographicWithTolerance(t *testing.T) {
	obj1 := &feature.Feature{FeatureName: "primary", Objective: constFitness{5}, Tolerance: 0.1}
	obj2 := &feature.Feature{FeatureName: "secondary", Objective: constFitness{10}}
	g := goal.New(obj1, obj2)

	a := newTestSolution(t, 0)
	b := newTestSolution(t, 0)

	assert.Equal(t, 0, g.Compare(a, b))
}

func TestGoalDominates(t *testing.T) {
	obj := &feature.Feature{FeatureName: "min_unassigned", Objective: feature.NewMinUnassigned(1).Objective}
	g := goal.New(obj)

	better := newTestSolution(t, 0)
	worse := newTestSolution(t, 2)

	assert.True(t, g.Dominates(better, worse))
	assert.False(t, g.Dominates(worse, better))
}

type fixedViolation struct {
	code    string
	stopped bool
}

func (f fixedViolation) Evaluate(feature.MoveContext) *feature.Violation {
	return &feature.Violation{Code: f.code, Stopped: f.stopped}
}

func (f fixedViolation) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

type constFitness struct{ v float64 }

func (c constFitness) Estimate(feature.MoveContext) float64 { return 0 }
func (c constFitness) Fitness(*solution.Solution) float64   { return c.v }
