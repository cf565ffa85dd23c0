package feature

import (
	"time"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// CodeTimeWindow is the violation code for an insertion that misses
// every candidate time window of the target activity or makes a
// downstream activity miss its own window.
const CodeTimeWindow = "TIME_WINDOW_CONSTRAINT"

// NewTimeWindow builds the time-window constraint described in
// spec.md §4.7 "leg scan": checks the target activity's own window,
// then uses the cached latest-arrival at the next activity to decide
// whether the insertion's extra duration is absorbable.
func NewTimeWindow(problem *model.Problem) *Feature {
	tw := &timeWindowConstraint{problem: problem}
	return &Feature{FeatureName: "time_window", Constraint: tw, StateWriter: tw, SchedulePriority: true}
}

type timeWindowConstraint struct {
	problem *model.Problem
}

func (tw *timeWindowConstraint) Evaluate(ctx MoveContext) *Violation {
	if ctx.Kind != ActivityMove {
		return nil
	}

	// The inserted activity must itself fit one of its place's windows.
	if !ctx.Target.Place.TimeWindowsContain(ctx.Target.Schedule.Arrival) {
		// If the target arrives after every window has closed, further
		// shifting later in the tour cannot help: stop scanning this
		// route entirely.
		stopped := afterEveryWindow(ctx.Target.Place, ctx.Target.Schedule.Arrival)
		return &Violation{Code: CodeTimeWindow, Stopped: stopped}
	}

	// The insertion must not push the next activity past its cached
	// latest feasible arrival (spec.md §4.7 "Δ" check).
	latest := ctx.Route.State.LatestArrival(ctx.NextIndex)
	nextArrival := ctx.Departure.Add(
		tw.problem.Transport.Duration(ctx.Route.Actor.Vehicle.Profile, ctx.Target.Place.Location, ctx.Next.Place.Location, ctx.Departure),
	)
	if latest != 0 && nextArrival.UnixNano() > latest {
		return &Violation{Code: CodeTimeWindow, Stopped: true}
	}

	return nil
}

func afterEveryWindow(place model.Place, arrival time.Time) bool {
	if len(place.Times) == 0 {
		return false
	}
	latest := place.Times[0].End
	for _, w := range place.Times[1:] {
		if w.End.After(latest) {
			latest = w.End
		}
	}
	return arrival.After(latest)
}

func (tw *timeWindowConstraint) Merge(source, _ model.Job) (model.Job, error) { return source, nil }

// AcceptInsertion implements State; the forward/backward schedule is
// fully recomputed by AcceptRouteState, so nothing incremental happens
// here.
func (tw *timeWindowConstraint) AcceptInsertion(*solution.Solution, int, model.Job) {}

// AcceptRouteState recomputes the forward (earliest arrival, waiting)
// and backward (latest arrival) schedule caches for the whole route,
// per spec.md §4.3.
func (tw *timeWindowConstraint) AcceptRouteState(rc *solution.RouteContext) {
	acts := rc.Tour.All()
	n := len(acts)
	rc.State.Reset(n)
	if n == 0 {
		return
	}

	profile := rc.Actor.Vehicle.Profile

	// Forward pass. Every recomputed arrival/departure is written back
	// into the Tour's own Activity.Schedule as it is derived, not just
	// into the cache: an insertion ahead of activity i shifts i's true
	// arrival, and every consumer (bestPositionAfter, transport cost,
	// min-overdue, fleet usage, the exported solution) reads
	// Activity.Schedule directly rather than this cache.
	rc.State.SetEarliestArrival(0, acts[0].Schedule.Arrival.UnixNano())
	prevDeparture := acts[0].Schedule.Departure
	for i := 1; i < n; i++ {
		travel := tw.problem.Transport.Duration(profile, acts[i-1].Place.Location, acts[i].Place.Location, prevDeparture)
		arrival := prevDeparture.Add(travel)
		rc.State.SetEarliestArrival(i, arrival.UnixNano())

		earliestStart := arrival
		if len(acts[i].Place.Times) > 0 {
			w := acts[i].Place.Times[0]
			for _, ww := range acts[i].Place.Times[1:] {
				if ww.Start.Before(w.Start) {
					w = ww
				}
			}
			if earliestStart.Before(w.Start) {
				earliestStart = w.Start
			}
		}
		wait := earliestStart.Sub(arrival)
		if wait < 0 {
			wait = 0
		}
		rc.State.SetWaitingTime(i, wait.Nanoseconds())
		prevDeparture = tw.problem.Activity.EstimateDeparture(rc.Actor, acts[i].Place, arrival)

		acts[i].Schedule = solution.Schedule{Arrival: arrival, Departure: prevDeparture}
		rc.Tour.Set(i, acts[i])
	}

	// Backward pass: latest arrival that still lets the remainder of
	// the tour finish on time.
	lastIdx := n - 1
	if len(acts[lastIdx].Place.Times) > 0 {
		latest := acts[lastIdx].Place.Times[0].End
		for _, w := range acts[lastIdx].Place.Times[1:] {
			if w.End.After(latest) {
				latest = w.End
			}
		}
		rc.State.SetLatestArrival(lastIdx, latest.UnixNano())
	} else {
		rc.State.SetLatestArrival(lastIdx, 0) // 0 means "unconstrained"
	}
	for i := n - 2; i >= 0; i-- {
		nextLatest := rc.State.LatestArrival(i + 1)
		travel := tw.problem.Transport.Duration(profile, acts[i].Place.Location, acts[i+1].Place.Location, acts[i].Schedule.Departure)
		svc := acts[i].Place.Duration

		var bound int64
		if nextLatest == 0 {
			bound = 0
		} else {
			bound = nextLatest - travel.Nanoseconds() - svc.Nanoseconds()
		}

		if len(acts[i].Place.Times) > 0 {
			ownLatest := acts[i].Place.Times[0].End
			for _, w := range acts[i].Place.Times[1:] {
				if w.End.After(ownLatest) {
					ownLatest = w.End
				}
			}
			if bound == 0 || ownLatest.UnixNano() < bound {
				bound = ownLatest.UnixNano()
			}
		}
		rc.State.SetLatestArrival(i, bound)
	}
}

func (tw *timeWindowConstraint) AcceptSolutionState(*solution.Solution) {}
