// Package routestate implements the per-route derived-quantity cache
// described in spec.md §4.3: a typed cache indexed by (state key,
// activity index) for per-activity entries and by (state key) alone for
// per-tour scalars, recomputed lazily when a route is marked stale.
//
// State keys are opaque integers allocated by a Registry rather than
// shared constants, so that a feature never needs to import another
// feature's package to read its cache slot (spec.md §9 "Cyclic
// references" / "opaque state keys, never direct references").
package routestate

import "sync"

// StateKey is an opaque handle identifying one cache slot. Two features
// never collide on a key unless they were both handed the same key by
// the same Registry.
type StateKey int

// Registry allocates unique StateKeys. One Registry is shared by the
// whole Goal pipeline (spec.md: "State key: opaque identifier
// distinguishing one feature's cache from another's").
type Registry struct {
	mu   sync.Mutex
	next StateKey
}

// NewRegistry builds an empty key registry.
func NewRegistry() *Registry { return &Registry{} }

// Allocate returns a fresh, previously unused StateKey.
func (r *Registry) Allocate() StateKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.next
	r.next++
	return k
}

// ReloadInterval is a contiguous range of activity indices, [Start,
// End], between two reload activities (or tour start/end), within which
// capacity constraints apply independently (spec.md §4.3).
type ReloadInterval struct {
	Start, End int
}

// RouteState is the per-route cache. It owns no pointers back into the
// Tour; every method is index-based. A RouteState is exclusively owned
// by its RouteContext and mutated only from accept_* callbacks (never
// during evaluate), per spec.md §5.
type RouteState struct {
	stale bool

	// Forward schedule, one entry per activity index.
	earliestArrival []int64 // unix nanos
	waitingTime     []int64 // nanoseconds waited at this activity

	// Backward schedule, one entry per activity index.
	latestArrival []int64

	// Capacity caches, one entry per activity index. Represented as
	// opaque payload so this package stays independent of capacity's
	// generic dimensionality; callers type-assert to their own Value[D].
	currentCapacity   []interface{}
	maxFutureCapacity []interface{}
	minFutureCapacity []interface{}
	maxPastCapacity   []interface{}

	reloadIntervals []ReloadInterval

	totalDistance float64
	totalDuration int64 // nanoseconds

	// Feature-owned state, keyed by StateKey. Per-activity entries are
	// []interface{} indexed by activity index; per-tour entries are a
	// single interface{}.
	perActivity map[StateKey][]interface{}
	perTour     map[StateKey]interface{}
}

// NewRouteState builds an empty, stale RouteState.
func NewRouteState() *RouteState {
	return &RouteState{
		stale:       true,
		perActivity: make(map[StateKey][]interface{}),
		perTour:     make(map[StateKey]interface{}),
	}
}

// Clone returns an independent copy of the cache, safe to mutate
// without affecting the original (used when a Solution is cloned to
// seed an evolution generation's children).
func (s *RouteState) Clone() *RouteState {
	out := &RouteState{
		stale:             s.stale,
		earliestArrival:   append([]int64(nil), s.earliestArrival...),
		waitingTime:       append([]int64(nil), s.waitingTime...),
		latestArrival:     append([]int64(nil), s.latestArrival...),
		currentCapacity:   append([]interface{}(nil), s.currentCapacity...),
		maxFutureCapacity: append([]interface{}(nil), s.maxFutureCapacity...),
		minFutureCapacity: append([]interface{}(nil), s.minFutureCapacity...),
		maxPastCapacity:   append([]interface{}(nil), s.maxPastCapacity...),
		reloadIntervals:   append([]ReloadInterval(nil), s.reloadIntervals...),
		totalDistance:     s.totalDistance,
		totalDuration:     s.totalDuration,
		perActivity:       make(map[StateKey][]interface{}, len(s.perActivity)),
		perTour:           make(map[StateKey]interface{}, len(s.perTour)),
	}
	for k, v := range s.perActivity {
		out.perActivity[k] = append([]interface{}(nil), v...)
	}
	for k, v := range s.perTour {
		out.perTour[k] = v
	}
	return out
}

// MarkStale flags the route as needing recompute before its cache is
// trusted again. Called whenever the owning Tour is mutated.
func (s *RouteState) MarkStale() { s.stale = true }

// Stale reports whether the cache needs recomputation.
func (s *RouteState) Stale() bool { return s.stale }

// MarkFresh clears the stale flag; called by the feature responsible
// for accept_route_state once every writer has run.
func (s *RouteState) MarkFresh() { s.stale = false }

// Reset clears all cached arrays/scalars and pre-sizes the per-activity
// arrays for n activities. Called at the start of accept_route_state.
func (s *RouteState) Reset(n int) {
	s.earliestArrival = make([]int64, n)
	s.waitingTime = make([]int64, n)
	s.latestArrival = make([]int64, n)
	s.currentCapacity = make([]interface{}, n)
	s.maxFutureCapacity = make([]interface{}, n)
	s.minFutureCapacity = make([]interface{}, n)
	s.maxPastCapacity = make([]interface{}, n)
	s.reloadIntervals = nil
	s.totalDistance = 0
	s.totalDuration = 0
	for k := range s.perActivity {
		s.perActivity[k] = make([]interface{}, n)
	}
}

// EarliestArrival/SetEarliestArrival access the forward schedule.
func (s *RouteState) EarliestArrival(i int) int64    { return s.earliestArrival[i] }
func (s *RouteState) SetEarliestArrival(i int, v int64) { s.earliestArrival[i] = v }

// WaitingTime/SetWaitingTime access per-activity waiting time.
func (s *RouteState) WaitingTime(i int) int64      { return s.waitingTime[i] }
func (s *RouteState) SetWaitingTime(i int, v int64) { s.waitingTime[i] = v }

// LatestArrival/SetLatestArrival access the backward schedule.
func (s *RouteState) LatestArrival(i int) int64      { return s.latestArrival[i] }
func (s *RouteState) SetLatestArrival(i int, v int64) { s.latestArrival[i] = v }

// CurrentCapacity/SetCurrentCapacity access the load departing activity i.
func (s *RouteState) CurrentCapacity(i int) interface{}        { return s.currentCapacity[i] }
func (s *RouteState) SetCurrentCapacity(i int, v interface{})  { s.currentCapacity[i] = v }
func (s *RouteState) MaxFutureCapacity(i int) interface{}       { return s.maxFutureCapacity[i] }
func (s *RouteState) SetMaxFutureCapacity(i int, v interface{}) { s.maxFutureCapacity[i] = v }
func (s *RouteState) MinFutureCapacity(i int) interface{}       { return s.minFutureCapacity[i] }
func (s *RouteState) SetMinFutureCapacity(i int, v interface{}) { s.minFutureCapacity[i] = v }
func (s *RouteState) MaxPastCapacity(i int) interface{}         { return s.maxPastCapacity[i] }
func (s *RouteState) SetMaxPastCapacity(i int, v interface{})   { s.maxPastCapacity[i] = v }

// ReloadIntervals returns the cached reload-interval list.
func (s *RouteState) ReloadIntervals() []ReloadInterval { return s.reloadIntervals }

// SetReloadIntervals replaces the cached reload-interval list.
func (s *RouteState) SetReloadIntervals(iv []ReloadInterval) { s.reloadIntervals = iv }

// IntervalOf returns the reload interval containing activity index i,
// defaulting to the whole tour if no reloads were cached.
func (s *RouteState) IntervalOf(i int) ReloadInterval {
	for _, iv := range s.reloadIntervals {
		if i >= iv.Start && i <= iv.End {
			return iv
		}
	}
	if len(s.earliestArrival) == 0 {
		return ReloadInterval{}
	}
	return ReloadInterval{Start: 0, End: len(s.earliestArrival) - 1}
}

// TotalDistance/SetTotalDistance and TotalDuration/SetTotalDuration
// access the per-tour distance and duration scalars.
func (s *RouteState) TotalDistance() float64        { return s.totalDistance }
func (s *RouteState) SetTotalDistance(v float64)     { s.totalDistance = v }
func (s *RouteState) TotalDuration() int64            { return s.totalDuration }
func (s *RouteState) SetTotalDuration(v int64)        { s.totalDuration = v }

// PerActivity returns (allocating if needed) the feature-owned
// per-activity slot for key, sized to n entries.
func (s *RouteState) PerActivity(key StateKey, n int) []interface{} {
	slot, ok := s.perActivity[key]
	if !ok || len(slot) != n {
		slot = make([]interface{}, n)
		s.perActivity[key] = slot
	}
	return slot
}

// PerTour returns the feature-owned per-tour slot for key.
func (s *RouteState) PerTour(key StateKey) interface{} {
	return s.perTour[key]
}

// SetPerTour assigns the feature-owned per-tour slot for key.
func (s *RouteState) SetPerTour(key StateKey, v interface{}) {
	s.perTour[key] = v
}
