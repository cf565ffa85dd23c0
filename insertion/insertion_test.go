package insertion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/transport"
)

func TestEvaluatorPlacesSingleOnBestLeg(t *testing.T) {
	durations, err := transport.NewDense(3)
	require.NoError(t, err)
	distances, err := transport.NewDense(3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
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
	vehicle := &model.Vehicle{VehicleID: "v1", Capacity: model.Demand{100}}
	actor := &model.Actor{ID: "a1", Vehicle: vehicle, ShiftIndex: 0}
	vehicle.Shifts = []model.Shift{{StartEarliest: base, StartLocation: 0, EndLocation: 2, EndLatest: base.Add(4 * time.Hour), HasEnd: true}}

	tour := solution.NewTour(model.Place{Location: 0}, model.Place{Location: 2}, true, base)
	rc := solution.NewRouteContext(actor, tour)

	job := &model.Single{JobID: "j1", Places: []model.Place{{Location: 1}}, Demand: model.Demand{10}}
	problem := &model.Problem{Transport: costs, Activity: activity}
	sol := &solution.Solution{Problem: problem, Routes: []*solution.RouteContext{rc}}

	g := goal.New(feature.NewTransportCost(problem))
	ev := insertion.New(problem, g)

	res, failure := ev.EvaluateJob(context.Background(), sol, job)
	require.Nil(t, failure)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.RouteIdx)
	assert.Equal(t, 1, res.Positions[0])
}

func TestEvaluatorReportsConstraintFailure(t *testing.T) {
	durations, err := transport.NewDense(2)
	require.NoError(t, err)
	distances, err := transport.NewDense(2)
	require.NoError(t, err)
	costs := transport.NewCosts()
	costs.AddMatrix(0, time.Time{}, durations, distances)
	activity := transport.NewActivityCosts()

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	vehicle := &model.Vehicle{VehicleID: "v1", Capacity: model.Demand{1}}
	actor := &model.Actor{ID: "a1", Vehicle: vehicle, ShiftIndex: 0}
	vehicle.Shifts = []model.Shift{{StartEarliest: base, StartLocation: 0, EndLocation: 1, EndLatest: base.Add(time.Hour), HasEnd: true}}

	tour := solution.NewTour(model.Place{Location: 0}, model.Place{Location: 1}, true, base)
	rc := solution.NewRouteContext(actor, tour)

	job := &model.Single{JobID: "j1", Places: []model.Place{{Location: 0}}, Demand: model.Demand{5}}
	problem := &model.Problem{Transport: costs, Activity: activity}
	sol := &solution.Solution{Problem: problem, Routes: []*solution.RouteContext{rc}}
	rc.State.Reset(2)
	rc.State.SetMaxFutureCapacity(0, int64(0))

	g := goal.New(feature.NewCapacity())
	ev := insertion.New(problem, g)

	res, failure := ev.EvaluateJob(context.Background(), sol, job)
	assert.Nil(t, res)
	require.NotNil(t, failure)
	assert.Equal(t, feature.CodeCapacity, failure.Code)
}
