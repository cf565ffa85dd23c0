// Package insertion implements the insertion evaluator (spec.md §4.7):
// given a job and a set of candidate routes, find the cheapest legal
// (route, position, place-variant) placement, or report the most
// specific constraint violation observed.
package insertion

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Result is the winning placement for a job: one activity per sub-job
// of a (possibly composite) job, committed atomically.
type Result struct {
	RouteIdx     int
	Positions    []int // insertion index per sub-activity, in Job.Singles() order
	PlaceIndices []int // chosen Place index per sub-activity
	Cost         float64
}

// Failure reports why no route could legally accept the job. Code is
// the most specific violated constraint observed across every
// candidate route and position (spec.md §4.7 "Failure semantics").
type Failure struct {
	Code string
}

// LegSelector decides which legs of a tour the evaluator scans. The
// exhaustive selector (spec.md §4.7 "leg selector") is the correctness
// baseline and the only one implemented here; a variable/sampling
// selector is a drop-in alternative for larger tours.
type LegSelector interface {
	Select(tour *solution.Tour) [][2]int
}

// Exhaustive considers every leg in the tour.
type Exhaustive struct{}

// Select implements LegSelector.
func (Exhaustive) Select(tour *solution.Tour) [][2]int { return tour.Legs() }

// Evaluator runs the insertion algorithm against a Goal and Problem.
type Evaluator struct {
	Problem *model.Problem
	Goal    *goal.Goal
	Legs    LegSelector
}

// New builds an Evaluator with the exhaustive leg selector.
func New(problem *model.Problem, g *goal.Goal) *Evaluator {
	return &Evaluator{Problem: problem, Goal: g, Legs: Exhaustive{}}
}

// RouteCandidate is one route's outcome for a job, used by recreate
// operators (Regret-k in particular) that need more than just the
// single cheapest placement.
type RouteCandidate struct {
	RouteIdx int
	Result   *Result // nil if the route rejected the job
	Code     string  // violation code when Result is nil
}

// EvaluateJobPerRoute runs the same route-gate-plus-leg-scan as
// EvaluateJob but returns every route's outcome rather than collapsing
// to the single cheapest, so regret-style operators can rank the gap
// between a job's best and k-th-best placement.
func (e *Evaluator) EvaluateJobPerRoute(ctx context.Context, sol *solution.Solution, job model.Job) []RouteCandidate {
	out := make([]RouteCandidate, len(sol.Routes))
	g, gctx := errgroup.WithContext(ctx)
	for i, rc := range sol.Routes {
		i, rc := i, rc
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, code := e.evaluateRoute(sol, i, rc, job)
			out[i] = RouteCandidate{RouteIdx: i, Result: res, Code: code}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// EvaluateJob finds the cheapest legal placement for job across every
// route in sol.Routes, running the route gate and leg scan for each
// route concurrently (spec.md §9 "parallel route scoring").
func (e *Evaluator) EvaluateJob(ctx context.Context, sol *solution.Solution, job model.Job) (*Result, *Failure) {
	candidates := e.EvaluateJobPerRoute(ctx, sol, job)

	var best *Result
	mostSpecific := ""
	for _, o := range candidates {
		if o.Result != nil && (best == nil || o.Result.Cost < best.Cost) {
			best = o.Result
		}
		if o.Code != "" {
			mostSpecific = o.Code
		}
	}
	if best != nil {
		return best, nil
	}
	if mostSpecific == "" {
		mostSpecific = "NO_CANDIDATE_ROUTE"
	}
	return nil, &Failure{Code: mostSpecific}
}

// evaluateRoute applies the route gate, then, for each allowed
// permutation of the job's sub-activities (one permutation for a
// Single), threads a guided placement search: insert the first
// sub-activity at its best leg, then thread subsequent sub-activities
// at their own best legs constrained to stay after the previous one,
// per spec.md §4.7 "Multi-job".
func (e *Evaluator) evaluateRoute(sol *solution.Solution, routeIdx int, rc *solution.RouteContext, job model.Job) (*Result, string) {
	gate := e.Goal.EvaluateConstraints(feature.MoveContext{
		Kind: feature.RouteMove, Solution: sol, Route: rc, Job: job,
	})
	if gate != nil {
		return nil, gate.Code
	}

	singles := job.Singles()
	orders := allowedOrders(job, len(singles))

	var best *Result
	var code string
	for _, order := range orders {
		res, c := e.evaluateOrder(sol, routeIdx, rc, singles, order)
		if c != "" && code == "" {
			code = c
		}
		if res != nil && (best == nil || res.Cost < best.Cost) {
			best = res
		}
	}
	return best, code
}

// allowedOrders returns every legal sub-activity ordering for job. A
// Single has exactly one trivial ordering; a Multi defers to its
// Permutations.
func allowedOrders(job model.Job, n int) [][]int {
	if multi, ok := job.(*model.Multi); ok {
		out := make([][]int, len(multi.Permutations))
		for i, p := range multi.Permutations {
			out[i] = []int(p)
		}
		return out
	}
	trivial := make([]int, n)
	for i := range trivial {
		trivial[i] = i
	}
	return [][]int{trivial}
}

func (e *Evaluator) evaluateOrder(sol *solution.Solution, routeIdx int, rc *solution.RouteContext, singles []*model.Single, order []int) (*Result, string) {
	minAfter := 0
	positions := make([]int, len(order))
	placeIdx := make([]int, len(order))
	var totalCost float64
	var code string

	for _, subIdx := range order {
		single := singles[subIdx]
		pos, pl, cost, c := e.bestPositionAfter(sol, rc, single, minAfter)
		if c != "" && code == "" {
			code = c
		}
		if pos < 0 {
			return nil, code
		}
		positions[subIdx] = pos
		placeIdx[subIdx] = pl
		totalCost += cost
		minAfter = pos
	}

	return &Result{RouteIdx: routeIdx, Positions: positions, PlaceIndices: placeIdx, Cost: totalCost}, code
}

// bestPositionAfter scans every leg at or after minLeg (leg selector
// restricted to a suffix) and every place variant of single, returning
// the cheapest legal insertion.
func (e *Evaluator) bestPositionAfter(sol *solution.Solution, rc *solution.RouteContext, single *model.Single, minLeg int) (int, int, float64, string) {
	legs := e.Legs.Select(rc.Tour)
	bestPos, bestPlace := -1, -1
	bestCost := math.Inf(1)
	var code string

	for _, leg := range legs {
		prevIdx, nextIdx := leg[0], leg[1]
		if prevIdx < minLeg {
			continue
		}
		prev := rc.Tour.At(prevIdx)
		next := rc.Tour.At(nextIdx)

		for pi, place := range single.Places {
			departure := prev.Schedule.Departure
			travel := e.Problem.Transport.Duration(rc.Actor.Vehicle.Profile, prev.Place.Location, place.Location, departure)
			arrival := departure.Add(travel)
			target := solution.Activity{
				Kind:       solution.KindJob,
				Job:        single,
				Place:      place,
				PlaceIndex: pi,
				Schedule:   solution.Schedule{Arrival: arrival, Departure: e.Problem.Activity.EstimateDeparture(rc.Actor, place, arrival)},
			}

			ctx := feature.MoveContext{
				Kind: feature.ActivityMove, Solution: sol, Route: rc,
				PrevIndex: prevIdx, NextIndex: nextIdx, Prev: prev, Next: next,
				Target: target, Departure: target.Schedule.Departure, TargetIndex: prevIdx + 1,
			}

			if v := e.Goal.EvaluateConstraints(ctx); v != nil {
				if code == "" {
					code = v.Code
				}
				if v.Stopped {
					break
				}
				continue
			}

			cost := e.Goal.EstimateIncrement(ctx)
			if cost < bestCost {
				bestCost = cost
				bestPos = prevIdx + 1
				bestPlace = pi
			}
		}
	}

	if bestPos < 0 {
		return -1, -1, 0, code
	}
	return bestPos, bestPlace, bestCost, ""
}

// Commit materializes a Result onto its route: each sub-activity is
// inserted at its pre-computed position, adjusted for the index shift
// introduced by earlier insertions in the same commit, then the route
// is marked stale and the Goal's state writers re-run over it.
func (e *Evaluator) Commit(sol *solution.Solution, job model.Job, res *Result) {
	rc := sol.Routes[res.RouteIdx]
	singles := job.Singles()

	order := make([]int, len(singles))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return res.Positions[order[i]] < res.Positions[order[j]] })

	shift := 0
	for _, subIdx := range order {
		pos := res.Positions[subIdx] + shift
		single := singles[subIdx]
		place := single.Places[res.PlaceIndices[subIdx]]

		prev := rc.Tour.At(pos - 1)
		departure := prev.Schedule.Departure
		travel := e.Problem.Transport.Duration(rc.Actor.Vehicle.Profile, prev.Place.Location, place.Location, departure)
		arrival := departure.Add(travel)

		rc.Tour.InsertAt(pos, solution.Activity{
			Kind:       solution.KindJob,
			Job:        single,
			Place:      place,
			PlaceIndex: res.PlaceIndices[subIdx],
			Schedule:   solution.Schedule{Arrival: arrival, Departure: e.Problem.Activity.EstimateDeparture(rc.Actor, place, arrival)},
		})
		shift++
	}

	rc.State.MarkStale()
	e.Goal.AcceptRouteState(rc)
	e.Goal.AcceptInsertion(sol, res.RouteIdx, job)
	sol.MarkPlaced(job.ID())
}
