package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/routestate"
	"github.com/nexaroute/vrpcore/solution"
)

// CodeCapacity is the violation code for a load that exceeds vehicle
// capacity within a reload interval.
const CodeCapacity = "CAPACITY_CONSTRAINT"

// NewCapacity builds the capacity constraint over the single-dimension
// monomorphized fast path (capacity.Scalar, spec.md §9). Multi-
// dimensional problems compose an equivalent feature over capacity.Value
// the same way; the single-dimension path is kept separate because it
// is, in practice, the overwhelming majority of real instances and
// deserves to skip slice allocation entirely.
func NewCapacity() *Feature {
	c := &capacityConstraint{}
	return &Feature{FeatureName: "capacity", Constraint: c, StateWriter: c}
}

type capacityConstraint struct{}

func demandOf(single *model.Single) int64 {
	if single == nil || len(single.Demand) == 0 {
		return 0
	}
	return single.Demand[0]
}

func (c *capacityConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != ActivityMove || ctx.Target.Job == nil {
		return nil
	}
	capLimit := int64(0)
	if len(ctx.Route.Actor.Vehicle.Capacity) > 0 {
		capLimit = ctx.Route.Actor.Vehicle.Capacity[0]
	}

	delta := demandOf(ctx.Target.Job)
	interval := ctx.Route.State.IntervalOf(ctx.PrevIndex)

	// Every activity in [interval.Start, PrevIndex] already carries the
	// committed running load; adding delta at the insertion point means
	// every activity from the insertion point through interval.End must
	// still fit. The cached max-future-capacity from the insertion point
	// gives this in O(1).
	maxFuture := int64(0)
	if mf := ctx.Route.State.MaxFutureCapacity(ctx.PrevIndex); mf != nil {
		maxFuture = mf.(int64)
	}
	if maxFuture+delta > capLimit {
		return &Violation{Code: CodeCapacity, Stopped: false}
	}

	// A negative delta (e.g. a delivery reducing an already-picked-up
	// load) must never push the running load below zero in any
	// dimension downstream of the insertion point either.
	minFuture := int64(0)
	if mf := ctx.Route.State.MinFutureCapacity(ctx.PrevIndex); mf != nil {
		minFuture = mf.(int64)
	}
	if minFuture+delta < 0 {
		return &Violation{Code: CodeCapacity, Stopped: false}
	}

	_ = interval
	return nil
}

func (c *capacityConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

func (c *capacityConstraint) AcceptInsertion(*solution.Solution, int, model.Job) {}

// AcceptRouteState recomputes current/max-future/max-past capacity per
// reload interval (spec.md §4.3).
func (c *capacityConstraint) AcceptRouteState(rc *solution.RouteContext) {
	acts := rc.Tour.All()
	n := len(acts)
	if n == 0 {
		return
	}

	intervals := splitReloadIntervals(acts)
	rc.State.SetReloadIntervals(intervals)

	running := make([]int64, n)
	for _, iv := range intervals {
		var load int64
		for i := iv.Start; i <= iv.End; i++ {
			if acts[i].Job != nil {
				load += demandOf(acts[i].Job)
			}
			running[i] = load
			rc.State.SetCurrentCapacity(i, load)
		}

		var maxFuture int64 = running[iv.End]
		minFuture := running[iv.End]
		for i := iv.End; i >= iv.Start; i-- {
			if running[i] > maxFuture {
				maxFuture = running[i]
			}
			if running[i] < minFuture {
				minFuture = running[i]
			}
			rc.State.SetMaxFutureCapacity(i, maxFuture)
			rc.State.SetMinFutureCapacity(i, minFuture)
		}

		var maxPast int64
		for i := iv.Start; i <= iv.End; i++ {
			if running[i] > maxPast {
				maxPast = running[i]
			}
			rc.State.SetMaxPastCapacity(i, maxPast)
		}
	}
}

func splitReloadIntervals(acts []solution.Activity) []routestate.ReloadInterval {
	var out []routestate.ReloadInterval
	start := 0
	for i, a := range acts {
		if a.Kind == solution.KindReload {
			out = append(out, routestate.ReloadInterval{Start: start, End: i})
			start = i
		}
	}
	out = append(out, routestate.ReloadInterval{Start: start, End: len(acts) - 1})
	return out
}

func (c *capacityConstraint) AcceptSolutionState(*solution.Solution) {}
