package ioformat

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/jobsindex"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/transport"
)

// FromDTO builds a frozen model.Problem and its attached goal from a
// ProblemDTO. Validation failures from model.NewProblem itself are
// already aggregated via go-multierror; FromDTO adds its own decoding
// errors (bad matrix shape, malformed job) to the same chain rather
// than stopping at the first one. The goal is built only once that
// chain is empty, so an unknown feature name is reported on its own.
// Matrix durations are read as seconds.
func FromDTO(dto ProblemDTO) (*model.Problem, *goal.Goal, error) {
	var errs *multierror.Error

	costs := transport.NewCosts()
	for _, m := range dto.Matrices {
		durations, distances, err := denseFromMatrix(m)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		ts := zeroTimeIfNil(m.Timestamp)
		costs.AddMatrix(model.ProfileIndex(m.ProfileIndex), ts, durations, distances)
	}
	activity := transport.NewActivityCosts()

	jobs := make([]model.Job, 0, len(dto.Jobs))
	for _, j := range dto.Jobs {
		job, err := jobFromDTO(j)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		jobs = append(jobs, job)
	}

	actors := make([]*model.Actor, 0, len(dto.Fleet.Actors))
	for _, a := range dto.Fleet.Actors {
		actors = append(actors, actorFromDTO(a))
	}
	profiles := make([]model.ProfileIndex, 0, len(dto.Fleet.Profiles))
	for _, p := range dto.Fleet.Profiles {
		profiles = append(profiles, model.ProfileIndex(p))
	}
	if len(profiles) == 0 {
		profiles = []model.ProfileIndex{0}
	}

	index := jobsindex.Build(costs, jobs, profiles)

	problem, err := model.NewProblem(model.Fleet{Actors: actors, Profiles: profiles}, jobs, costs, activity, index, nil)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs.ErrorOrNil() != nil {
		return nil, nil, errs
	}

	g, err := BuildGoal(problem, dto.Goal)
	if err != nil {
		return nil, nil, err
	}
	return problem, g, nil
}

func denseFromMatrix(m MatrixDTO) (durations, distances *transport.Dense, err error) {
	want := m.N * m.N
	if len(m.Durations) != want || len(m.Distances) != want {
		return nil, nil, fmt.Errorf("ioformat: matrix for profile %d wants %d entries, got %d durations / %d distances", m.ProfileIndex, want, len(m.Durations), len(m.Distances))
	}
	durations, err = transport.NewDense(m.N)
	if err != nil {
		return nil, nil, err
	}
	distances, err = transport.NewDense(m.N)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if err := durations.Set(i, j, m.Durations[i*m.N+j]*float64(time.Second)); err != nil {
				return nil, nil, err
			}
			if err := distances.Set(i, j, m.Distances[i*m.N+j]); err != nil {
				return nil, nil, err
			}
		}
	}
	return durations, distances, nil
}

func jobFromDTO(j JobDTO) (model.Job, error) {
	if j.Single != nil {
		single := singleFromDTO(*j.Single)
		single.JobID = model.JobID(j.ID)
		return single, nil
	}
	if len(j.Parts) < 2 {
		return nil, fmt.Errorf("ioformat: job %q has neither a single nor at least two parts", j.ID)
	}
	parts := make([]*model.Single, len(j.Parts))
	for i, p := range j.Parts {
		single := singleFromDTO(p)
		parts[i] = single
	}
	perms := make([]model.MultiPermutation, len(j.Permutations))
	for i, p := range j.Permutations {
		perms[i] = model.MultiPermutation(p)
	}
	if len(perms) == 0 {
		trivial := make(model.MultiPermutation, len(parts))
		for i := range trivial {
			trivial[i] = i
		}
		perms = []model.MultiPermutation{trivial}
	}
	return &model.Multi{JobID: model.JobID(j.ID), Parts: parts, Permutations: perms}, nil
}

func singleFromDTO(s SingleDTO) *model.Single {
	places := make([]model.Place, len(s.Places))
	for i, p := range s.Places {
		places[i] = placeFromDTO(p)
	}
	return &model.Single{
		JobID:            model.JobID(s.ID),
		Places:           places,
		Demand:           model.Demand(s.Demand),
		Skills:           s.Skills,
		Priority:         s.Priority,
		Group:            s.Group,
		CompatibilityTag: s.CompatibilityTag,
		AreaTag:          s.AreaTag,
	}
}

func placeFromDTO(p PlaceDTO) model.Place {
	times := make([]model.TimeWindow, len(p.Times))
	for i, w := range p.Times {
		times[i] = model.TimeWindow{Start: w.Start, End: w.End}
	}
	return model.Place{Location: model.Location(p.Location), Duration: p.Duration, Times: times, Tag: p.Tag}
}

func actorFromDTO(a ActorDTO) *model.Actor {
	vehicle := &model.Vehicle{
		VehicleID: a.ID,
		Profile:   model.ProfileIndex(a.Profile),
		Capacity:  model.Demand(a.Capacity),
		Skills:    a.Skills,
		AreaTags:  a.AreaTags,
		Limits: model.Limits{
			MaxDistance:  a.Limits.MaxDistance,
			MaxShiftTime: a.Limits.MaxShiftTime,
			MaxTourSize:  a.Limits.MaxTourSize,
		},
		Shifts: []model.Shift{shiftFromDTO(a.Shift)},
	}
	return &model.Actor{ID: model.ActorID(a.ID), Vehicle: vehicle, ShiftIndex: 0}
}

func shiftFromDTO(s ShiftDTO) model.Shift {
	breaks := make([]model.VehicleBreak, len(s.Breaks))
	for i, b := range s.Breaks {
		places := make([]model.Place, len(b.Places))
		for j, p := range b.Places {
			places[j] = placeFromDTO(p)
		}
		var window *model.TimeWindow
		if b.Window != nil {
			window = &model.TimeWindow{Start: b.Window.Start, End: b.Window.End}
		}
		breaks[i] = model.VehicleBreak{Offset: b.Offset, Window: window, Places: places}
	}
	reloads := make([]model.Reload, len(s.Reloads))
	for i, r := range s.Reloads {
		reloads[i] = model.Reload{Place: placeFromDTO(r)}
	}
	recharges := make([]model.Recharge, len(s.Recharges))
	for i, r := range s.Recharges {
		recharges[i] = model.Recharge{Place: placeFromDTO(r.Place), MaxDistance: r.MaxDistance}
	}
	return model.Shift{
		StartEarliest:    s.StartEarliest,
		StartLatest:      s.StartLatest,
		StartLocation:    model.Location(s.StartLocation),
		EndEarliest:      s.EndEarliest,
		EndLatest:        s.EndLatest,
		EndLocation:      model.Location(s.EndLocation),
		HasEnd:           s.HasEnd,
		Breaks:           breaks,
		Reloads:          reloads,
		Recharges:        recharges,
		DispatchEarliest: s.DispatchEarliest,
	}
}

func zeroTimeIfNil(t *time.Time) time.Time {
	if t == nil {
		var zero time.Time
		return zero
	}
	return *t
}
