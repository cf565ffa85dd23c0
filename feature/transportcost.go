package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// NewTransportCost builds the transport-cost objective: the dominant
// term in almost every VRP objective hierarchy. Estimate prices an
// insertion's extra distance (PerDistance), extra travel plus service
// time (PerTime) and service time (PerService). Fitness sums, per
// route, the fixed cost of a used vehicle, total distance times
// PerDistance and total tour duration times PerTime. PerWaiting is not
// priced separately, and Fitness has no PerService term.
func NewTransportCost(problem *model.Problem) *Feature {
	tc := &transportCostObjective{problem: problem}
	return &Feature{FeatureName: "transport_cost", Objective: tc, StateWriter: tc}
}

type transportCostObjective struct {
	problem *model.Problem
}

func (t *transportCostObjective) Estimate(ctx MoveContext) float64 {
	if ctx.Kind != ActivityMove {
		return 0
	}
	actor := ctx.Route.Actor
	profile := actor.Vehicle.Profile
	costs := actor.Vehicle.Costs

	prevLoc := ctx.Prev.Place.Location
	nextLoc := ctx.Next.Place.Location
	targetLoc := ctx.Target.Place.Location

	distOld := t.problem.Transport.Distance(profile, prevLoc, nextLoc)
	distNew := t.problem.Transport.Distance(profile, prevLoc, targetLoc) + t.problem.Transport.Distance(profile, targetLoc, nextLoc)

	durOld := t.problem.Transport.Duration(profile, prevLoc, nextLoc, ctx.Prev.Schedule.Departure)
	durToTarget := t.problem.Transport.Duration(profile, prevLoc, targetLoc, ctx.Prev.Schedule.Departure)
	durFromTarget := t.problem.Transport.Duration(profile, targetLoc, nextLoc, ctx.Departure)

	serviceTime := ctx.Target.Place.Duration

	deltaDistance := distNew - distOld
	deltaDuration := (durToTarget + durFromTarget - durOld) + serviceTime

	return deltaDistance*costs.PerDistance + deltaDuration.Seconds()*costs.PerTime + serviceTime.Seconds()*costs.PerService
}

func (t *transportCostObjective) Fitness(sol *solution.Solution) float64 {
	var total float64
	for _, rc := range sol.Routes {
		costs := rc.Actor.Vehicle.Costs
		if rc.Tour.JobCount() > 0 {
			total += costs.Fixed
		}
		total += rc.State.TotalDistance() * costs.PerDistance
		total += float64(rc.State.TotalDuration()) / 1e9 * costs.PerTime
	}
	return total
}

// AcceptInsertion implements State; transport cost has no per-insertion
// bookkeeping beyond what AcceptRouteState recomputes.
func (t *transportCostObjective) AcceptInsertion(*solution.Solution, int, model.Job) {}

// AcceptRouteState implements State: total distance/duration are pure
// functions of the committed schedule, recomputed whenever the route is
// stale.
func (t *transportCostObjective) AcceptRouteState(rc *solution.RouteContext) {
	acts := rc.Tour.All()
	profile := rc.Actor.Vehicle.Profile

	var distance float64
	for i := 0; i+1 < len(acts); i++ {
		distance += t.problem.Transport.Distance(profile, acts[i].Place.Location, acts[i+1].Place.Location)
	}
	var duration int64
	if len(acts) > 0 {
		duration = acts[len(acts)-1].Schedule.Departure.Sub(acts[0].Schedule.Arrival).Nanoseconds()
	}
	rc.State.SetTotalDistance(distance)
	rc.State.SetTotalDuration(duration)
}

// AcceptSolutionState implements State; transport cost has no
// solution-wide bookkeeping.
func (t *transportCostObjective) AcceptSolutionState(*solution.Solution) {}
