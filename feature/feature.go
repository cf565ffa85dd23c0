// Package feature implements the composable Constraint+Objective+State
// bundle described in spec.md §4.4: every legality check, every
// objective term, and every cache writer in the solver is one Feature.
//
// Features are additive and never reference each other directly; a
// feature that needs sibling state (e.g. recharge reading the capacity
// cache) goes through routestate.StateKey, never a Go pointer to
// another Feature (spec.md §9 "Cyclic references").
package feature

import (
	"time"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// Violation is returned by a Constraint when a candidate move is
// illegal. It is a typed value, not an error: infeasibility is routine,
// not exceptional (spec.md §7).
type Violation struct {
	// Code identifies which rule failed, surfaced verbatim in
	// Unassigned.reasons (spec.md §6).
	Code string
	// Stopped, when true, tells the insertion evaluator to abandon the
	// rest of the current route scan (spec.md §4.4); when false, only
	// the current position is skipped.
	Stopped bool
}

// MoveKind discriminates the two MoveContext shapes named in spec.md
// §4.4. Using a tagged struct rather than an interface keeps the hot
// evaluator loop free of dynamic dispatch on the context itself
// (spec.md §9: monomorphize the hot MoveContext variants).
type MoveKind int

const (
	// RouteMove is a once-per-candidate-route check.
	RouteMove MoveKind = iota
	// ActivityMove is a once-per-insertion-point check.
	ActivityMove
)

// MoveContext is either a Route{solution, route, job} or an
// Activity{route, activity_ctx} context, per spec.md §4.4.
type MoveContext struct {
	Kind MoveKind

	Solution *solution.Solution
	Route    *solution.RouteContext
	Job      model.Job // set for RouteMove

	// Activity-scoped fields, set for ActivityMove.
	PrevIndex   int
	NextIndex   int
	Prev        solution.Activity
	Next        solution.Activity
	Target      solution.Activity
	Departure   time.Time
	TargetIndex int // insertion index: Target is inserted between Prev/Next at this index
}

// Constraint is the legality half of a Feature.
type Constraint interface {
	// Evaluate returns nil when the move is legal, else a Violation.
	Evaluate(ctx MoveContext) *Violation
	// Merge decides whether two jobs may be fused for vicinity
	// clustering (spec.md §4.4). Implementations that don't participate
	// in clustering return the first job unchanged and a nil error.
	Merge(source, candidate model.Job) (model.Job, error)
}

// Objective is the preference half of a Feature.
type Objective interface {
	// Estimate returns the incremental cost contribution of a candidate
	// move, used only during insertion search.
	Estimate(ctx MoveContext) float64
	// Fitness returns the absolute cost contribution for a complete
	// solution, used for population comparison and telemetry.
	Fitness(sol *solution.Solution) float64
}

// State is the cache-writing half of a Feature. These are the only
// methods allowed to mutate RouteState/Solution-level caches.
type State interface {
	// AcceptInsertion runs after a job is committed to routeIdx.
	AcceptInsertion(sol *solution.Solution, routeIdx int, job model.Job)
	// AcceptRouteState runs when a route's cache is stale.
	AcceptRouteState(rc *solution.RouteContext)
	// AcceptSolutionState runs after bulk changes (ruin, population
	// seeding) to let a feature re-derive solution-wide bookkeeping.
	AcceptSolutionState(sol *solution.Solution)
}

// Feature bundles up to three optional parts behind one named handle.
// A Feature that is purely a constraint leaves Objective nil (and vice
// versa); a Feature with no State leaves State nil.
type Feature struct {
	FeatureName string
	Constraint  Constraint
	Objective   Objective
	StateWriter State

	// Tolerance is the per-objective lexicographic tie tolerance named
	// in spec.md §4.5 ("treat values within 0.5% as tied"). Zero means
	// exact comparison.
	Tolerance float64

	// SchedulePriority marks a StateWriter that recomputes
	// Activity.Schedule itself (time_window's forward/backward pass).
	// goal.Goal.AcceptRouteState runs every such writer before the rest
	// of the pipeline, regardless of registration order: constraint and
	// objective order are a caller-chosen concern, but a feature that
	// reads Activity.Schedule in the same AcceptRouteState pass must
	// always see it already corrected.
	SchedulePriority bool
}

// Name implements model.FeatureHandle.
func (f *Feature) Name() string { return f.FeatureName }

// IsConstraint reports whether this feature participates in legality
// checks.
func (f *Feature) IsConstraint() bool { return f.Constraint != nil }

// IsObjective reports whether this feature contributes to the fitness
// vector.
func (f *Feature) IsObjective() bool { return f.Objective != nil }

// HasState reports whether this feature owns cache state.
func (f *Feature) HasState() bool { return f.StateWriter != nil }
