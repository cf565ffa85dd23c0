// Package ioformat implements the normalized JSON transfer shapes named
// in spec.md §6: a Problem input consumers hand the core, and a
// Solution output the core hands back. Nothing here parses a textual
// routing format (Solomon, Lilim, TSPLIB, pragmatic) — that stays the
// external CLI's job, per spec.md §1's non-goals.
package ioformat

import "time"

// ProblemDTO is the wire shape of a normalized problem.
type ProblemDTO struct {
	Fleet    FleetDTO    `json:"fleet"`
	Jobs     []JobDTO    `json:"jobs"`
	Matrices []MatrixDTO `json:"matrices"`
	Goal     []string    `json:"goal"`
}

// FleetDTO lists every actor and profile index available to the solver.
type FleetDTO struct {
	Actors   []ActorDTO `json:"actors"`
	Profiles []int      `json:"profiles,omitempty"`
}

// ActorDTO is one vehicle/driver pairing plus the one shift it works.
type ActorDTO struct {
	ID       string     `json:"id"`
	Profile  int        `json:"profile"`
	Capacity []int64    `json:"capacity"`
	Skills   []string   `json:"skills,omitempty"`
	AreaTags []string   `json:"area_tags,omitempty"`
	Limits   LimitsDTO  `json:"limits,omitempty"`
	Shift    ShiftDTO   `json:"shift"`
}

// LimitsDTO mirrors model.Limits.
type LimitsDTO struct {
	MaxDistance  float64       `json:"max_distance,omitempty"`
	MaxShiftTime time.Duration `json:"max_shift_time,omitempty"`
	MaxTourSize  int           `json:"max_tour_size,omitempty"`
}

// ShiftDTO mirrors model.Shift.
type ShiftDTO struct {
	StartEarliest    time.Time      `json:"start_earliest"`
	StartLatest      *time.Time     `json:"start_latest,omitempty"`
	StartLocation    int            `json:"start_location"`
	EndEarliest      *time.Time     `json:"end_earliest,omitempty"`
	EndLatest        time.Time      `json:"end_latest,omitempty"`
	EndLocation      int            `json:"end_location,omitempty"`
	HasEnd           bool           `json:"has_end,omitempty"`
	Breaks           []BreakDTO     `json:"breaks,omitempty"`
	Reloads          []PlaceDTO     `json:"reloads,omitempty"`
	Recharges        []RechargeDTO  `json:"recharges,omitempty"`
	DispatchEarliest *time.Time     `json:"dispatch_earliest,omitempty"`
}

// BreakDTO mirrors model.VehicleBreak.
type BreakDTO struct {
	Offset time.Duration  `json:"offset"`
	Window *TimeWindowDTO `json:"window,omitempty"`
	Places []PlaceDTO     `json:"places"`
}

// RechargeDTO mirrors model.Recharge.
type RechargeDTO struct {
	Place       PlaceDTO `json:"place"`
	MaxDistance float64  `json:"max_distance"`
}

// JobDTO is one job: a Single has no Parts, a Multi has two or more.
type JobDTO struct {
	ID               string         `json:"id"`
	Parts            []SingleDTO    `json:"parts,omitempty"`
	Single           *SingleDTO     `json:"single,omitempty"`
	Permutations     [][]int        `json:"permutations,omitempty"`
}

// SingleDTO mirrors model.Single.
type SingleDTO struct {
	ID               string     `json:"id"`
	Places           []PlaceDTO `json:"places"`
	Demand           []int64    `json:"demand"`
	Skills           []string   `json:"skills,omitempty"`
	Priority         int        `json:"priority,omitempty"`
	Group            string     `json:"group,omitempty"`
	CompatibilityTag string     `json:"compatibility_tag,omitempty"`
	AreaTag          string     `json:"area_tag,omitempty"`
}

// PlaceDTO mirrors model.Place.
type PlaceDTO struct {
	Location int             `json:"location"`
	Duration time.Duration   `json:"duration,omitempty"`
	Times    []TimeWindowDTO `json:"times,omitempty"`
	Tag      string          `json:"tag,omitempty"`
}

// TimeWindowDTO mirrors model.TimeWindow.
type TimeWindowDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MatrixDTO is one profile's row-major n×n duration/distance matrix,
// per spec.md §6 "matrices: [MatrixData{...}]".
type MatrixDTO struct {
	ProfileIndex int        `json:"profile_index"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	N            int        `json:"n"`
	Durations    []float64  `json:"durations"` // seconds, row-major n×n
	Distances    []float64  `json:"distances"` // row-major n×n
}

// SolutionDTO is the wire shape of a solved (or partially solved)
// solution, per spec.md §6 "Solution output".
type SolutionDTO struct {
	Routes      []RouteDTO          `json:"routes"`
	Unassigned  []UnassignedJobDTO  `json:"unassigned"`
	Cost        float64             `json:"cost"`
	Telemetry   map[string]any      `json:"telemetry,omitempty"`
}

// RouteDTO is one actor's committed activity sequence.
type RouteDTO struct {
	ActorID    string         `json:"actor_id"`
	ShiftIndex int            `json:"shift_index"`
	Activities []ActivityDTO  `json:"activities"`
}

// ActivityDTO is one committed stop on a route.
type ActivityDTO struct {
	JobID     string     `json:"job_id,omitempty"`
	PlaceIdx  int        `json:"place_idx"`
	Arrival   time.Time  `json:"arrival"`
	Departure time.Time  `json:"departure"`
	Location  *int       `json:"location,omitempty"`
	Commute   *CommuteDTO `json:"commute,omitempty"`
}

// CommuteDTO mirrors solution.Commute.
type CommuteDTO struct {
	Distance float64       `json:"distance"`
	Duration time.Duration `json:"duration"`
}

// UnassignedJobDTO reports why one job could not be placed.
type UnassignedJobDTO struct {
	JobID   string             `json:"job_id"`
	Reasons []UnassignedReason `json:"reasons"`
}

// UnassignedReason is one violation code plus a human description.
type UnassignedReason struct {
	Code        string            `json:"code"`
	Description string            `json:"description,omitempty"`
	Detail      map[string]string `json:"detail,omitempty"`
}
