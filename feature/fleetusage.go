package feature

import (
	"github.com/nexaroute/vrpcore/solution"
)

// FleetUsageMode selects whether the objective rewards using fewer or
// more vehicles (spec.md §4.4 "fleet usage (minimize/maximize tours,
// minimize arrival time)").
type FleetUsageMode int

const (
	// MinimizeTours rewards using as few actors as possible.
	MinimizeTours FleetUsageMode = iota
	// MaximizeTours rewards spreading work across more actors (e.g. to
	// balance driver workload).
	MaximizeTours
	// MinimizeArrival rewards finishing every tour as early as possible.
	MinimizeArrival
)

// NewFleetUsage builds the fleet-usage objective for the given mode.
func NewFleetUsage(mode FleetUsageMode) *Feature {
	name := map[FleetUsageMode]string{
		MinimizeTours:   "fleet_usage_min_tours",
		MaximizeTours:   "fleet_usage_max_tours",
		MinimizeArrival: "fleet_usage_min_arrival",
	}[mode]
	return &Feature{FeatureName: name, Objective: &fleetUsageObjective{mode: mode}}
}

type fleetUsageObjective struct{ mode FleetUsageMode }

func (f *fleetUsageObjective) Estimate(ctx MoveContext) float64 {
	if ctx.Kind != RouteMove {
		return 0
	}
	// Using a previously-empty route costs one "tour" under
	// MinimizeTours and earns a reward under MaximizeTours.
	if ctx.Route.Tour.JobCount() > 0 {
		return 0
	}
	switch f.mode {
	case MinimizeTours:
		return 1
	case MaximizeTours:
		return -1
	default:
		return 0
	}
}

func (f *fleetUsageObjective) Fitness(sol *solution.Solution) float64 {
	used := 0
	var maxArrival float64
	for _, rc := range sol.Routes {
		if rc.Tour.JobCount() == 0 {
			continue
		}
		used++
		acts := rc.Tour.All()
		if f.mode == MinimizeArrival && len(acts) > 0 {
			last := acts[len(acts)-1]
			t := float64(last.Schedule.Arrival.Unix())
			if t > maxArrival {
				maxArrival = t
			}
		}
	}
	switch f.mode {
	case MinimizeTours:
		return float64(used)
	case MaximizeTours:
		return -float64(used)
	default:
		return maxArrival
	}
}
