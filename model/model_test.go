package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/capacity"
	"github.com/nexaroute/vrpcore/model"
)

type fixedTransport struct{}

func (fixedTransport) Duration(model.ProfileIndex, model.Location, model.Location, time.Time) time.Duration {
	return time.Minute
}
func (fixedTransport) Distance(model.ProfileIndex, model.Location, model.Location) float64 { return 1 }

type fixedActivity struct{}

func (fixedActivity) EstimateDeparture(*model.Actor, model.Place, time.Time) time.Time {
	return time.Time{}
}

func newFleet(t *testing.T) model.Fleet {
	t.Helper()
	v := &model.Vehicle{
		VehicleID: "v1",
		Profile:   0,
		Capacity:  capacity.New[int64](10),
		Shifts: []model.Shift{{
			StartEarliest: time.Unix(0, 0),
			StartLocation: 0,
		}},
	}
	return model.Fleet{Actors: []*model.Actor{{ID: "a1", Vehicle: v, ShiftIndex: 0}}}
}

func TestNewProblemRejectsEmptyPlaceList(t *testing.T) {
	jobs := []model.Job{&model.Single{JobID: "j1"}}
	_, err := model.NewProblem(newFleet(t), jobs, fixedTransport{}, fixedActivity{}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEmptyPlaceList)
}

func TestNewProblemAggregatesMultipleErrors(t *testing.T) {
	jobs := []model.Job{
		&model.Single{JobID: "j1"},
		&model.Single{JobID: "j1", Places: []model.Place{{}}},
	}
	_, err := model.NewProblem(model.Fleet{}, jobs, nil, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoActors)
	assert.ErrorIs(t, err, model.ErrNilTransportCost)
	assert.ErrorIs(t, err, model.ErrNilActivityCost)
	assert.ErrorIs(t, err, model.ErrEmptyPlaceList)
	assert.ErrorIs(t, err, model.ErrDuplicateJobID)
}

func TestMultiAllowsOrder(t *testing.T) {
	p1 := &model.Single{JobID: "p1", Places: []model.Place{{}}}
	p2 := &model.Single{JobID: "p2", Places: []model.Place{{}}}
	d := &model.Single{JobID: "d", Places: []model.Place{{}}}
	multi := &model.Multi{
		JobID:        "m1",
		Parts:        []*model.Single{p1, p2, d},
		Permutations: []model.MultiPermutation{{0, 1, 2}, {1, 0, 2}},
	}
	assert.True(t, multi.AllowsOrder([]int{0, 1, 2}))
	assert.True(t, multi.AllowsOrder([]int{1, 0, 2}))
	assert.False(t, multi.AllowsOrder([]int{0, 2, 1}))
}

func TestNewProblemSuccess(t *testing.T) {
	jobs := []model.Job{&model.Single{JobID: "j1", Places: []model.Place{{}}}}
	goal := []model.FeatureHandle{}
	p, err := model.NewProblem(newFleet(t), jobs, fixedTransport{}, fixedActivity{}, nil, goal)
	require.NoError(t, err)
	got, ok := p.JobByID("j1")
	require.True(t, ok)
	assert.Equal(t, model.JobID("j1"), got.ID())
}
