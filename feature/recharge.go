package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/routestate"
	"github.com/nexaroute/vrpcore/solution"
)

// CodeRecharge is the violation code for a projected distance since the
// last recharge (or shift start) exceeding the shift's recharge range,
// per SPEC_FULL.md §6.1.
const CodeRecharge = "RECHARGE_CONSTRAINT"

// NewRecharge builds the recharge constraint: gated by accumulated
// distance rather than load, it mirrors the capacity feature's reload-
// interval bookkeeping but keys intervals off KindRecharge activities
// and a running distance total instead of a running load.
func NewRecharge(problem *model.Problem, registry *routestate.Registry) *Feature {
	r := &rechargeConstraint{problem: problem, key: registry.Allocate()}
	return &Feature{FeatureName: "recharge", Constraint: r, StateWriter: r}
}

type rechargeConstraint struct {
	problem *model.Problem
	key     routestate.StateKey
}

func (r *rechargeConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != ActivityMove {
		return nil
	}
	maxDistance := minRechargeRange(ctx.Route.Actor.Shift().Recharges)
	if maxDistance <= 0 {
		return nil
	}

	distSoFar, ok := ctx.Route.State.PerTour(r.key).(float64)
	if !ok {
		return nil
	}
	leg := r.problem.Transport.Distance(ctx.Route.Actor.Vehicle.Profile, ctx.Prev.Place.Location, ctx.Target.Place.Location)
	if distSoFar+leg > maxDistance {
		return &Violation{Code: CodeRecharge, Stopped: false}
	}
	return nil
}

func minRechargeRange(recharges []model.Recharge) float64 {
	if len(recharges) == 0 {
		return 0
	}
	min := recharges[0].MaxDistance
	for _, rc := range recharges[1:] {
		if rc.MaxDistance < min {
			min = rc.MaxDistance
		}
	}
	return min
}

func (r *rechargeConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

func (r *rechargeConstraint) AcceptInsertion(*solution.Solution, int, model.Job) {}

// AcceptRouteState recomputes the distance traveled from the most
// recent KindRecharge activity (or tour start) to the end of the tour,
// stored as a single per-tour value.
func (r *rechargeConstraint) AcceptRouteState(rc *solution.RouteContext) {
	acts := rc.Tour.All()
	n := len(acts)
	if n == 0 {
		return
	}
	profile := rc.Actor.Vehicle.Profile

	var running float64
	for i := 1; i < n; i++ {
		if acts[i-1].Kind == solution.KindRecharge {
			running = 0
		}
		running += r.problem.Transport.Distance(profile, acts[i-1].Place.Location, acts[i].Place.Location)
	}
	rc.State.SetPerTour(r.key, running)
}

func (r *rechargeConstraint) AcceptSolutionState(*solution.Solution) {}
