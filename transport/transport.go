// Package transport implements profile-indexed routing matrices and the
// activity cost arithmetic used throughout the solver (spec.md §4.2).
//
// Matrix storage follows the donor lvlath/matrix package's row-major
// flat-slice Dense type: one flat []float64 per profile/timestamp pair,
// indexed row*n+col, to keep the insertion evaluator's hot loop free of
// interface indirection.
package transport

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nexaroute/vrpcore/model"
)

// Sentinel errors.
var (
	ErrInvalidDimensions = errors.New("transport: matrix dimensions must be > 0")
	ErrIndexOutOfBounds  = errors.New("transport: location index out of bounds")
	ErrProfileNotFound   = errors.New("transport: no matrix registered for profile")
)

// Dense is a row-major n×n matrix of float64 travel quantities.
type Dense struct {
	n    int
	data []float64
}

// NewDense allocates an n×n Dense matrix initialized to zero.
func NewDense(n int) (*Dense, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{n: n, data: make([]float64, n*n)}, nil
}

// Size returns the matrix dimension n.
func (d *Dense) Size() int { return d.n }

func (d *Dense) index(row, col int) (int, error) {
	if row < 0 || row >= d.n || col < 0 || col >= d.n {
		return 0, fmt.Errorf("transport.Dense.At(%d,%d): %w", row, col, ErrIndexOutOfBounds)
	}
	return row*d.n + col, nil
}

// At returns the value at (row, col).
func (d *Dense) At(row, col int) (float64, error) {
	idx, err := d.index(row, col)
	if err != nil {
		return 0, err
	}
	return d.data[idx], nil
}

// Set assigns the value at (row, col).
func (d *Dense) Set(row, col int, v float64) error {
	idx, err := d.index(row, col)
	if err != nil {
		return err
	}
	d.data[idx] = v
	return nil
}

// timedMatrix is one (duration, distance) matrix pair effective from a
// given timestamp, used for time-variant profiles (spec.md §4.2: "pick
// the matrix whose timestamp brackets departure").
type timedMatrix struct {
	timestamp time.Time
	durations *Dense
	distances *Dense
}

// Costs implements model.TransportCost over one or more dense matrices
// per profile. A profile with a single, time-invariant matrix is the
// common case; registering several timedMatrix entries for a profile
// enables time-of-day-dependent routing.
type Costs struct {
	byProfile map[model.ProfileIndex][]timedMatrix
}

// NewCosts builds an empty Costs collaborator; register matrices with
// AddMatrix before use.
func NewCosts() *Costs {
	return &Costs{byProfile: make(map[model.ProfileIndex][]timedMatrix)}
}

// AddMatrix registers a duration/distance matrix pair for a profile,
// effective from the given timestamp onward (zero time means "always").
// Matrices for a profile must share dimensions; AddMatrix keeps the
// per-profile list sorted by timestamp.
func (c *Costs) AddMatrix(profile model.ProfileIndex, timestamp time.Time, durations, distances *Dense) {
	entries := c.byProfile[profile]
	entries = append(entries, timedMatrix{timestamp: timestamp, durations: durations, distances: distances})
	sort.Slice(entries, func(i, j int) bool { return entries[i].timestamp.Before(entries[j].timestamp) })
	c.byProfile[profile] = entries
}

// resolve picks the matrix pair in effect at departure: the latest
// entry whose timestamp does not exceed departure, or the first entry
// if all of them are in the future (spec.md: "whose timestamp brackets
// departure").
func (c *Costs) resolve(profile model.ProfileIndex, departure time.Time) (timedMatrix, bool) {
	entries, ok := c.byProfile[profile]
	if !ok || len(entries) == 0 {
		return timedMatrix{}, false
	}
	chosen := entries[0]
	for _, e := range entries {
		if e.timestamp.After(departure) {
			break
		}
		chosen = e
	}
	return chosen, true
}

// Duration implements model.TransportCost.
func (c *Costs) Duration(profile model.ProfileIndex, from, to model.Location, departure time.Time) time.Duration {
	tm, ok := c.resolve(profile, departure)
	if !ok {
		return 0
	}
	v, err := tm.durations.At(int(from), int(to))
	if err != nil {
		return 0
	}
	return time.Duration(v)
}

// Distance implements model.TransportCost.
func (c *Costs) Distance(profile model.ProfileIndex, from, to model.Location) float64 {
	tm, ok := c.resolve(profile, time.Time{})
	if !ok {
		return 0
	}
	v, err := tm.distances.At(int(from), int(to))
	if err != nil {
		return 0
	}
	return v
}

// ActivityCosts implements model.ActivityCost: the departure time from
// an activity is the later of arrival and the place's earliest allowed
// start, plus the place's service duration (spec.md §4.2).
type ActivityCosts struct {
	// ServiceMultiplier, if set, scales Place.Duration per-actor (e.g. a
	// slower loading crew). Keyed by model.ActorID; missing entries
	// default to 1.0.
	ServiceMultiplier map[model.ActorID]float64
}

// NewActivityCosts builds an ActivityCosts with no per-actor multipliers.
func NewActivityCosts() *ActivityCosts {
	return &ActivityCosts{ServiceMultiplier: make(map[model.ActorID]float64)}
}

// EstimateDeparture implements model.ActivityCost.
func (a *ActivityCosts) EstimateDeparture(actor *model.Actor, place model.Place, arrival time.Time) time.Time {
	start := arrival
	if len(place.Times) > 0 {
		earliest := place.Times[0].Start
		for _, w := range place.Times[1:] {
			if w.Start.Before(earliest) {
				earliest = w.Start
			}
		}
		if start.Before(earliest) {
			start = earliest
		}
	}
	mult := 1.0
	if actor != nil {
		if m, ok := a.ServiceMultiplier[actor.ID]; ok {
			mult = m
		}
	}
	svc := time.Duration(float64(place.Duration) * mult)
	return start.Add(svc)
}
