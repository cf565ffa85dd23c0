// Package solution implements the mutable half of the data model:
// Activity, Tour, RouteContext, and the owning Solution (spec.md §3,
// §4.6, §9 "Arena + index for Tour").
//
// Tour stores activities in a per-route slice and refers to them only
// by index — never by pointer shared across routes — matching the
// donor core.Graph's adjacency-list-by-index discipline and the design
// note that activity sharing across routes is a bug.
package solution

import (
	"sync"
	"time"

	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/routestate"
)

// Schedule is an activity's committed arrival/departure.
type Schedule struct {
	Arrival   time.Time
	Departure time.Time
}

// Commute optionally records extra walking/commute info for a clustered
// multi-visit activity (e.g. park-and-walk delivery clusters).
type Commute struct {
	Distance float64
	Duration time.Duration
}

// ActivityKind discriminates the handful of non-job activity shapes a
// Tour can hold, so features that only care about e.g. breaks don't
// need to infer intent from a nil Job plus a Tag convention.
type ActivityKind int

const (
	// KindJob is a regular job-single visit.
	KindJob ActivityKind = iota
	// KindStart/KindEnd are the synthetic shift bookends.
	KindStart
	KindEnd
	// KindBreak is a vehicle break (model.VehicleBreak).
	KindBreak
	// KindReload is an intermediate capacity-resetting stop.
	KindReload
	// KindRecharge is an intermediate energy-replenishing stop.
	KindRecharge
	// KindDispatch is a dispatch-wait activity bound to shift start.
	KindDispatch
)

// Activity is one atomic visit: a synthetic start/end, a job single, a
// reload, a break, a recharge, or a dispatch wait.
type Activity struct {
	Kind ActivityKind

	// Job is non-nil only for KindJob activities.
	Job   *model.Single
	Place model.Place

	Schedule Schedule
	Commute  *Commute

	// PlaceIndex records which of Job.Places was chosen, for reporting.
	PlaceIndex int
}

// Tour is the ordered sequence of activities an Actor performs in one
// shift: [start, act1, ..., actk, end?]. Mutation is index-based and
// guarded by a single RWMutex, matching core.Graph's locking style.
type Tour struct {
	mu         sync.RWMutex
	activities []Activity
}

// NewTour builds a Tour with synthetic start (and, if hasEnd, end)
// activities bound to the shift's start/end places.
func NewTour(start, end model.Place, hasEnd bool, startTime time.Time) *Tour {
	t := &Tour{}
	t.activities = append(t.activities, Activity{
		Kind:     KindStart,
		Place:    start,
		Schedule: Schedule{Arrival: startTime, Departure: startTime},
	})
	if hasEnd {
		t.activities = append(t.activities, Activity{Kind: KindEnd, Place: end})
	}
	return t
}

// Len returns the number of activities, including synthetic start/end.
func (t *Tour) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.activities)
}

// At returns a copy of the activity at index i.
func (t *Tour) At(i int) Activity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activities[i]
}

// Set overwrites the activity at index i (e.g. to commit a new
// schedule after a reschedule move).
func (t *Tour) Set(i int, a Activity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activities[i] = a
}

// All returns a defensive copy of every activity in order.
func (t *Tour) All() []Activity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Activity, len(t.activities))
	copy(out, t.activities)
	return out
}

// InsertAt inserts a new activity at index i (shifting everything at
// and after i to the right). O(k) in the activities after i.
func (t *Tour) InsertAt(i int, a Activity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activities = append(t.activities, Activity{})
	copy(t.activities[i+1:], t.activities[i:])
	t.activities[i] = a
}

// InsertSequence inserts several activities starting at index i, in
// order, used to commit an atomic multi-job insertion.
func (t *Tour) InsertSequence(i int, acts []Activity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	grown := make([]Activity, len(t.activities)+len(acts))
	copy(grown, t.activities[:i])
	copy(grown[i:], acts)
	copy(grown[i+len(acts):], t.activities[i:])
	t.activities = grown
}

// RemoveJob removes every activity whose Job matches id and returns how
// many were removed.
func (t *Tour) RemoveJob(id model.JobID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.activities[:0]
	removed := 0
	for _, a := range t.activities {
		if a.Job != nil && a.Job.ID() == id {
			removed++
			continue
		}
		out = append(out, a)
	}
	t.activities = out
	return removed
}

// IndexOfJob returns the activity indices carrying the given job id, in
// tour order.
func (t *Tour) IndexOfJob(id model.JobID) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var idxs []int
	for i, a := range t.activities {
		if a.Job != nil && a.Job.ID() == id {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// IndexesOfKind returns the activity indices matching the given kind,
// in tour order. Used by features that scan for a specific non-job
// activity shape (breaks, reloads, recharges, dispatch waits).
func (t *Tour) IndexesOfKind(kind ActivityKind) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var idxs []int
	for i, a := range t.activities {
		if a.Kind == kind {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Legs yields every consecutive activity-index pair (i, i+1).
func (t *Tour) Legs() [][2]int {
	n := t.Len()
	if n < 2 {
		return nil
	}
	legs := make([][2]int, 0, n-1)
	for i := 0; i < n-1; i++ {
		legs = append(legs, [2]int{i, i + 1})
	}
	return legs
}

// JobCount returns the number of non-synthetic activities (activities
// carrying a job), used by the tour-size-limit feature.
func (t *Tour) JobCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, a := range t.activities {
		if a.Job != nil {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the tour, safe to mutate without
// affecting the original.
func (t *Tour) Clone() *Tour {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := &Tour{activities: make([]Activity, len(t.activities))}
	copy(out.activities, t.activities)
	return out
}

// RouteContext binds an Actor to its Tour and RouteState, the
// `Route = (Actor, Tour)` / `RouteContext = (Route, RouteState)` pairing
// from spec.md §3.
type RouteContext struct {
	Actor *model.Actor
	Tour  *Tour
	State *routestate.RouteState
}

// NewRouteContext builds a RouteContext with a fresh, stale RouteState.
func NewRouteContext(actor *model.Actor, tour *Tour) *RouteContext {
	return &RouteContext{Actor: actor, Tour: tour, State: routestate.NewRouteState()}
}

// Clone returns an independent copy of the route: same Actor handle
// (actors are shared immutable problem data), cloned Tour and
// RouteState.
func (rc *RouteContext) Clone() *RouteContext {
	return &RouteContext{Actor: rc.Actor, Tour: rc.Tour.Clone(), State: rc.State.Clone()}
}
