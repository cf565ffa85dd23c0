package feature

import (
	"github.com/nexaroute/vrpcore/solution"
)

// NewMinOverdue builds the soft-lateness objective named in spec.md
// §4.4 fleet-usage list: unlike the hard time_window constraint, this
// feature never rejects a move, it only prices how far a committed
// arrival falls after every one of its place's candidate windows, so a
// goal can mix hard time windows on some jobs with soft ones on others
// by simply omitting the time_window feature for the soft set.
func NewMinOverdue(penaltyPerSecond float64) *Feature {
	return &Feature{FeatureName: "min_overdue", Objective: &minOverdueObjective{penaltyPerSecond: penaltyPerSecond}}
}

type minOverdueObjective struct{ penaltyPerSecond float64 }

func (m *minOverdueObjective) Estimate(ctx MoveContext) float64 {
	if ctx.Kind != ActivityMove || ctx.Target.Job == nil {
		return 0
	}
	return m.penaltyPerSecond * overdueSeconds(ctx.Target)
}

func overdueSeconds(act solution.Activity) float64 {
	if len(act.Place.Times) == 0 {
		return 0
	}
	latest := act.Place.Times[0].End
	for _, w := range act.Place.Times[1:] {
		if w.End.After(latest) {
			latest = w.End
		}
	}
	if act.Schedule.Arrival.After(latest) {
		return act.Schedule.Arrival.Sub(latest).Seconds()
	}
	return 0
}

func (m *minOverdueObjective) Fitness(sol *solution.Solution) float64 {
	var total float64
	for _, rc := range sol.Routes {
		for _, a := range rc.Tour.All() {
			if a.Job == nil {
				continue
			}
			total += overdueSeconds(a)
		}
	}
	return total * m.penaltyPerSecond
}
