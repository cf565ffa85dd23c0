// Package model defines the immutable problem-side data model shared by
// every solver component: fleet, shifts, jobs, and the cost/index
// collaborators the optimizer is given rather than computing itself.
//
// Everything under model is frozen once Problem is constructed; solver
// components read it from any number of goroutines without locking.
package model

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nexaroute/vrpcore/capacity"
)

// Sentinel errors for problem construction and validation.
var (
	ErrNoActors           = errors.New("model: fleet has no actors")
	ErrNoJobs             = errors.New("model: problem has no jobs")
	ErrDuplicateJobID     = errors.New("model: duplicate job id")
	ErrDuplicateActorID   = errors.New("model: duplicate actor id")
	ErrUnknownProfile     = errors.New("model: unknown transport profile")
	ErrInvalidTimeWindow  = errors.New("model: invalid time window (start > end)")
	ErrEmptyPlaceList     = errors.New("model: job has no candidate places")
	ErrEmptyPermutation   = errors.New("model: multi-job has no legal permutation")
	ErrIncompatibleGoal   = errors.New("model: goal configuration is incompatible")
	ErrNilTransportCost   = errors.New("model: transport cost collaborator is nil")
	ErrNilActivityCost    = errors.New("model: activity cost collaborator is nil")
)

// Location is an opaque index into the caller's coordinate/location
// space. The solver never interprets it beyond using it as a matrix
// index and an equality key; geocoding and distance approximation are
// out of scope (spec.md §1 Non-goals).
type Location int

// TimeWindow is a closed interval [Start, End] in absolute time.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window, inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Validate reports ErrInvalidTimeWindow if Start is after End.
func (w TimeWindow) Validate() error {
	if w.Start.After(w.End) {
		return ErrInvalidTimeWindow
	}
	return nil
}

// JobID uniquely identifies a Job within a Problem.
type JobID string

// ActorID uniquely identifies a Vehicle+Driver+Shift combination.
type ActorID string

// ProfileIndex indexes a named transportation mode into a routing matrix.
type ProfileIndex int

// Place is one candidate location/time/duration combination a Single may
// be served at. A Single with several Places (e.g. two candidate break
// locations) yields multiple insertion "place variants".
type Place struct {
	Location Location
	Duration time.Duration
	Times    []TimeWindow // one or more disjoint windows; empty means unconstrained
	Tag      string
}

// TimeWindowsContain reports whether t falls in any of the place's
// candidate windows (or the place is unconstrained).
func (p Place) TimeWindowsContain(t time.Time) bool {
	if len(p.Times) == 0 {
		return true
	}
	for _, w := range p.Times {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Demand is the load delta a Single's service applies: positive
// components are picked up, negative components are delivered. Using a
// signed Value lets pickup and delivery share one representation.
type Demand = capacity.Value[int64]

// Job is implemented by Single and Multi. It is the unit the insertion
// evaluator and ruin/recreate operators manipulate.
type Job interface {
	ID() JobID
	// Singles returns the ordered list of atomic sub-jobs; for a Single
	// this is a one-element slice containing itself.
	Singles() []*Single
}

// Single is an atomic job: one task with one or more candidate places.
type Single struct {
	JobID    JobID
	Places   []Place
	Demand   Demand
	Skills   []string
	Priority int
	Group    string // empty means "no group constraint"
	// CompatibilityTag participates in the compatibility feature: two
	// singles with incompatible tags may not share a tour.
	CompatibilityTag string
	// AreaTag, when non-empty, restricts this single to vehicles whose
	// Vehicle.AreaTags contains it (SPEC_FULL.md §6.1 area constraints).
	AreaTag string
}

// ID implements Job.
func (s *Single) ID() JobID { return s.JobID }

// Singles implements Job.
func (s *Single) Singles() []*Single { return []*Single{s} }

// MultiPermutation is one legal ordering of a Multi's singles, expressed
// as indices into Multi.Parts.
type MultiPermutation []int

// Multi is a composite job: an ordered or permutable set of singles
// representing, e.g., pickup(s) followed by a delivery. The insertion
// evaluator treats the whole Multi as atomic: all sub-activities commit
// together or not at all.
type Multi struct {
	JobID JobID
	Parts []*Single
	// Permutations enumerates every legal ordering of Parts by index.
	// For classic pickup-before-delivery with one pickup and one
	// delivery this is a single permutation [0,1]. Multi-pickup,
	// single-delivery yields one permutation per pickup ordering, all
	// ending in the delivery index.
	Permutations []MultiPermutation
}

// ID implements Job.
func (m *Multi) ID() JobID { return m.JobID }

// Singles implements Job.
func (m *Multi) Singles() []*Single { return m.Parts }

// AllowsOrder reports whether the given order (a permutation of
// 0..len(Parts)-1) is legal for this Multi.
func (m *Multi) AllowsOrder(order []int) bool {
	for _, perm := range m.Permutations {
		if len(perm) != len(order) {
			continue
		}
		match := true
		for i := range perm {
			if perm[i] != order[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// VehicleBreak is an optional rest period within a shift.
type VehicleBreak struct {
	// Offset-based: the break becomes required once this much driving
	// time/distance has accumulated since shift start. Required per
	// spec.md §3.
	Offset time.Duration
	// Window optionally additionally bounds when the break may start.
	Window *TimeWindow
	Places []Place
}

// Reload is an intermediate replenishment stop that resets the capacity
// accounting for the interval that follows it.
type Reload struct {
	Place Place
}

// Recharge is an intermediate energy-replenishment stop, gated by
// accumulated distance since the last recharge (or shift start) rather
// than by load, per SPEC_FULL.md §6.1.
type Recharge struct {
	Place      Place
	MaxDistance float64 // maximum distance between recharges
}

// Shift is one working period of an actor.
type Shift struct {
	StartEarliest time.Time
	StartLatest   *time.Time
	StartLocation Location

	EndEarliest *time.Time
	EndLatest   time.Time
	EndLocation Location
	HasEnd      bool

	Breaks    []VehicleBreak
	Reloads   []Reload
	Recharges []Recharge

	// DispatchEarliest, if non-zero, represents a dispatch activity
	// bound to shift start distinct from StartEarliest (SPEC_FULL.md
	// §6.1): the actor must wait here until this time even though the
	// shift "starts" earlier for accounting purposes.
	DispatchEarliest *time.Time
}

// Limits bounds a vehicle's tour.
type Limits struct {
	MaxDistance  float64 // 0 means unlimited
	MaxShiftTime time.Duration
	MaxTourSize  int // 0 means unlimited
}

// Costs is the per-distance/time/waiting/service cost structure of a
// vehicle, plus a fixed cost for using it at all.
type Costs struct {
	Fixed       float64
	PerDistance float64
	PerTime     float64
	PerWaiting  float64
	PerService  float64
}

// Vehicle is the physical asset; an Actor binds a Vehicle to a Driver
// and one of its Shifts.
type Vehicle struct {
	VehicleID    string
	Profile      ProfileIndex
	Capacity     capacity.Value[int64]
	Shifts       []Shift
	Skills       []string
	Limits       Limits
	Costs        Costs
	AreaTags     []string // area-constraint membership, SPEC_FULL.md §6.1
}

// Driver identifies the person operating the vehicle for a shift.
type Driver struct {
	DriverID string
}

// Actor is the runtime pairing the insertion evaluator reasons about:
// one vehicle, one driver, one of the vehicle's shifts.
type Actor struct {
	ID         ActorID
	Vehicle    *Vehicle
	Driver     Driver
	ShiftIndex int
}

// Shift returns the actor's bound shift.
func (a *Actor) Shift() *Shift { return &a.Vehicle.Shifts[a.ShiftIndex] }

// Fleet is the ordered list of actors plus the set of profiles in use.
type Fleet struct {
	Actors   []*Actor
	Profiles []ProfileIndex
}

// TransportCost resolves travel duration/distance between two
// locations for a profile at a given departure time. Implementations
// back it with one or more matrices (transport.Costs is the in-repo
// implementation); callers outside this package may inject their own.
type TransportCost interface {
	Duration(profile ProfileIndex, from, to Location, departure time.Time) time.Duration
	Distance(profile ProfileIndex, from, to Location) float64
}

// ActivityCost computes the departure time from an activity given its
// arrival, applying waiting-for-time-window-start and service duration.
type ActivityCost interface {
	EstimateDeparture(actor *Actor, place Place, arrival time.Time) time.Time
}

// JobsIndex supports neighbor iteration ordered by travel cost, used by
// ruin operators and the tour-compactness objective.
type JobsIndex interface {
	// Neighbors returns job IDs ordered nearest-to-farthest from the
	// given job's first place, for the given profile, truncated to at
	// most limit entries (0 means unlimited).
	Neighbors(profile ProfileIndex, job JobID, limit int) []JobID
}

// FeatureHandle is an opaque reference to a feature.Feature; model does
// not depend on the feature package (feature depends on model), so the
// Goal's feature list is carried here as an interface satisfied by
// whatever concrete type feature.Feature turns out to be.
type FeatureHandle interface {
	Name() string
}

// Problem is the immutable, shared input to the solver.
type Problem struct {
	Fleet         Fleet
	Jobs          []Job
	jobByID       map[JobID]Job
	Transport     TransportCost
	Activity      ActivityCost
	Index         JobsIndex
	Goal          []FeatureHandle
}

// JobByID looks up a job by id in O(1).
func (p *Problem) JobByID(id JobID) (Job, bool) {
	j, ok := p.jobByID[id]
	return j, ok
}

// NewProblem validates and freezes a Problem. All independent
// validation failures are aggregated via go-multierror rather than
// stopping at the first, so a caller sees every problem at once.
func NewProblem(fleet Fleet, jobs []Job, transport TransportCost, activity ActivityCost, index JobsIndex, goal []FeatureHandle) (*Problem, error) {
	var errs *multierror.Error

	if len(fleet.Actors) == 0 {
		errs = multierror.Append(errs, ErrNoActors)
	}
	if len(jobs) == 0 {
		errs = multierror.Append(errs, ErrNoJobs)
	}
	if transport == nil {
		errs = multierror.Append(errs, ErrNilTransportCost)
	}
	if activity == nil {
		errs = multierror.Append(errs, ErrNilActivityCost)
	}

	seenActors := make(map[ActorID]struct{}, len(fleet.Actors))
	for _, a := range fleet.Actors {
		if _, dup := seenActors[a.ID]; dup {
			errs = multierror.Append(errs, ErrDuplicateActorID)
			continue
		}
		seenActors[a.ID] = struct{}{}
	}

	byID := make(map[JobID]Job, len(jobs))
	for _, j := range jobs {
		if _, dup := byID[j.ID()]; dup {
			errs = multierror.Append(errs, ErrDuplicateJobID)
			continue
		}
		byID[j.ID()] = j

		for _, single := range j.Singles() {
			if len(single.Places) == 0 {
				errs = multierror.Append(errs, ErrEmptyPlaceList)
				continue
			}
			for _, pl := range single.Places {
				for _, w := range pl.Times {
					if err := w.Validate(); err != nil {
						errs = multierror.Append(errs, err)
					}
				}
			}
		}
		if multi, ok := j.(*Multi); ok && len(multi.Permutations) == 0 {
			errs = multierror.Append(errs, ErrEmptyPermutation)
		}
	}

	if errs.ErrorOrNil() != nil {
		return nil, errs
	}

	return &Problem{
		Fleet:     fleet,
		Jobs:      jobs,
		jobByID:   byID,
		Transport: transport,
		Activity:  activity,
		Index:     index,
		Goal:      goal,
	}, nil
}
