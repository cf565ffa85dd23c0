package localsearch_test

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
	"github.com/nexaroute/vrpcore/jobsindex"
	"github.com/nexaroute/vrpcore/localsearch"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/recreate"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/transport"
)

type rngAdapter struct{ r *rand.Rand }

func (a rngAdapter) Float64() float64 { return a.r.Float64() }
func (a rngAdapter) IntN(n int) int   { return a.r.Intn(n) }

func buildPopulatedSolution(t *testing.T, n int, jobLocations []model.Location) (*solution.Solution, *insertion.Evaluator, *goal.Goal) {
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

	jobs := make([]model.Job, 0, len(jobLocations))
	for i, loc := range jobLocations {
		jobs = append(jobs, &model.Single{
			JobID:  model.JobID(string(rune('a' + i))),
			Places: []model.Place{{Location: loc}},
			Demand: model.Demand{1},
		})
	}

	index := jobsindex.Build(costs, jobs, []model.ProfileIndex{0})
	problem, err := model.NewProblem(model.Fleet{Actors: []*model.Actor{actor}}, jobs, costs, activity, index, nil)
	require.NoError(t, err)

	sol := solution.NewEmpty(problem)
	g := goal.New(feature.NewTransportCost(problem), feature.NewCapacity())
	ev := insertion.New(problem, g)

	recreate.Cheapest{}.Recreate(context.Background(), sol, ev)
	require.Empty(t, sol.Required)

	return sol, ev, g
}

func placedJobCount(sol *solution.Solution) int {
	n := 0
	for _, rc := range sol.Routes {
		for _, a := range rc.Tour.All() {
			if a.Job != nil {
				n++
			}
		}
	}
	return n
}

func TestSwapLeavesSolutionValidWhetherAcceptedOrNot(t *testing.T) {
	sol, ev, g := buildPopulatedSolution(t, 10, []model.Location{1, 2, 3, 4, 5})
	rng := rngAdapter{rand.New(rand.NewSource(5))}

	before := placedJobCount(sol)
	localsearch.Swap{Rand: rng}.Apply(context.Background(), g, ev, sol)

	require.NoError(t, sol.Validate())
	assert.Equal(t, before, placedJobCount(sol))
}

func TestTwoOptLeavesSolutionValid(t *testing.T) {
	sol, ev, g := buildPopulatedSolution(t, 10, []model.Location{4, 1, 3, 2})
	rng := rngAdapter{rand.New(rand.NewSource(6))}

	localsearch.TwoOpt{Rand: rng}.Apply(context.Background(), g, ev, sol)

	require.NoError(t, sol.Validate())
}

func TestRescheduleLeavesSolutionValid(t *testing.T) {
	sol, ev, g := buildPopulatedSolution(t, 10, []model.Location{1, 2, 3})
	rng := rngAdapter{rand.New(rand.NewSource(7))}

	before := placedJobCount(sol)
	localsearch.Reschedule{Rand: rng}.Apply(context.Background(), g, ev, sol)

	require.NoError(t, sol.Validate())
	assert.Equal(t, before, placedJobCount(sol))
}

func TestRedistributeLeavesSolutionValid(t *testing.T) {
	sol, ev, g := buildPopulatedSolution(t, 20, []model.Location{1, 2, 3, 15, 16})
	rng := rngAdapter{rand.New(rand.NewSource(8))}

	before := placedJobCount(sol)
	localsearch.Redistribute{Rand: rng, ClusterSize: 2}.Apply(context.Background(), g, ev, sol)

	require.NoError(t, sol.Validate())
	assert.Equal(t, before, placedJobCount(sol))
}
