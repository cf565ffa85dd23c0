package recreate_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/recreate"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/transport"
)

func buildProblem(t *testing.T, n int) (*model.Problem, *model.Actor) {
	t.Helper()
	durations, err := transport.NewDense(n)
	require.NoError(t, err)
	distances, err := transport.NewDense(n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := float64(j - i)
			if d < 0 {
				d = -d
			}
			require.NoError(t, durations.Set(i, j, d*float64(time.Minute)))
			require.NoError(t, distances.Set(i, j, d))
		}
	}
	costs := transport.NewCosts()
	costs.AddMatrix(0, time.Time{}, durations, distances)
	activity := transport.NewActivityCosts()

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	vehicle := &model.Vehicle{VehicleID: "v1", Capacity: model.Demand{1000}}
	actor := &model.Actor{ID: "a1", Vehicle: vehicle, ShiftIndex: 0}
	vehicle.Shifts = []model.Shift{{
		StartEarliest: base, StartLocation: 0, EndLocation: n - 1,
		EndLatest: base.Add(24 * time.Hour), HasEnd: true,
	}}

	problem := &model.Problem{
		Fleet:     model.Fleet{Actors: []*model.Actor{actor}},
		Transport: costs,
		Activity:  activity,
	}
	return problem, actor
}

func TestCheapestPlacesAllJobs(t *testing.T) {
	problem, _ := buildProblem(t, 5)
	jobs := []model.Job{
		&model.Single{JobID: "j1", Places: []model.Place{{Location: 2}}, Demand: model.Demand{1}},
		&model.Single{JobID: "j2", Places: []model.Place{{Location: 3}}, Demand: model.Demand{1}},
	}
	problem.Jobs = jobs

	sol := solution.NewEmpty(problem)
	g := goal.New(feature.NewTransportCost(problem), feature.NewCapacity())
	ev := insertion.New(problem, g)

	recreate.Cheapest{}.Recreate(context.Background(), sol, ev)

	assert.Empty(t, sol.Required)
	assert.Empty(t, sol.Unassigned)
	require.NoError(t, sol.Validate())
}

func TestRegretPlacesAllJobs(t *testing.T) {
	problem, _ := buildProblem(t, 5)
	jobs := []model.Job{
		&model.Single{JobID: "j1", Places: []model.Place{{Location: 2}}, Demand: model.Demand{1}},
		&model.Single{JobID: "j2", Places: []model.Place{{Location: 3}}, Demand: model.Demand{1}},
		&model.Single{JobID: "j3", Places: []model.Place{{Location: 1}}, Demand: model.Demand{1}},
	}
	problem.Jobs = jobs

	sol := solution.NewEmpty(problem)
	g := goal.New(feature.NewTransportCost(problem), feature.NewCapacity())
	ev := insertion.New(problem, g)

	recreate.Regret{K: 2}.Recreate(context.Background(), sol, ev)

	assert.Empty(t, sol.Required)
	require.NoError(t, sol.Validate())
}

func TestPerturbationPlacesAllJobs(t *testing.T) {
	problem, _ := buildProblem(t, 5)
	jobs := []model.Job{
		&model.Single{JobID: "j1", Places: []model.Place{{Location: 2}}, Demand: model.Demand{1}},
	}
	problem.Jobs = jobs

	sol := solution.NewEmpty(problem)
	g := goal.New(feature.NewTransportCost(problem))
	ev := insertion.New(problem, g)

	op := recreate.Perturbation{Rand: rand.New(rand.NewSource(1)), Strength: 0.2}
	op.Recreate(context.Background(), sol, ev)

	assert.Empty(t, sol.Required)
}
