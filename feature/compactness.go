package feature

import (
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

// NewCompactness builds the tour-compactness objective (SPEC_FULL.md
// §6.1): penalizes routes that visit a job far outside its neighbor
// ring, discouraging "star" routes that zigzag across the map even
// when the raw distance objective happens to tie.
func NewCompactness(index model.JobsIndex, ring int) *Feature {
	return &Feature{FeatureName: "compactness", Objective: &compactnessObjective{index: index, ring: ring}}
}

type compactnessObjective struct {
	index model.JobsIndex
	ring  int
}

func (c *compactnessObjective) Estimate(ctx MoveContext) float64 {
	if ctx.Kind != ActivityMove || ctx.Target.Job == nil {
		return 0
	}
	return c.penalty(ctx.Route.Actor.Vehicle.Profile, ctx.Target.Job.ID(), ctx.Prev)
}

func (c *compactnessObjective) penalty(profile model.ProfileIndex, job model.JobID, neighbor solution.Activity) float64 {
	if c.index == nil || neighbor.Job == nil {
		return 0
	}
	ring := c.index.Neighbors(profile, neighbor.Job.ID(), c.ring)
	for _, id := range ring {
		if id == job {
			return 0
		}
	}
	return float64(c.ring)
}

func (c *compactnessObjective) Fitness(sol *solution.Solution) float64 {
	var total float64
	for _, rc := range sol.Routes {
		acts := rc.Tour.All()
		for i := 1; i < len(acts); i++ {
			if acts[i].Job == nil || acts[i-1].Job == nil {
				continue
			}
			total += c.penalty(rc.Actor.Vehicle.Profile, acts[i].Job.ID(), acts[i-1])
		}
	}
	return total
}
