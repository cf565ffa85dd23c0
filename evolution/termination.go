package evolution

import (
	"math"
	"time"

	"github.com/nexaroute/vrpcore/telemetry"
)

// Termination is a composite stopping rule (spec.md §4.12): the loop
// stops as soon as any configured clause fires. A zero value for a
// clause's threshold disables that clause.
type Termination struct {
	// MaxGenerations stops after this many completed generations. 0
	// disables the clause.
	MaxGenerations int
	// MaxTime stops once this much wall-clock time has elapsed since
	// the loop started. 0 disables the clause.
	MaxTime time.Duration
	// MinVariationWindow/MinVariationThreshold stop once the best
	// primary-objective fitness's standard deviation over the last
	// MinVariationWindow generations falls at or below the threshold.
	// A zero window disables the clause.
	MinVariationWindow    int
	MinVariationThreshold float64
	// Target/TargetDelta stop once the current best primary-objective
	// fitness is within TargetDelta of Target. A nil Target disables
	// the clause.
	Target      *float64
	TargetDelta float64
}

// Done reports whether any configured clause has fired.
func (t Termination) Done(stats *telemetry.Stats, elapsed time.Duration) bool {
	if t.MaxGenerations > 0 && stats.Generation >= t.MaxGenerations {
		return true
	}
	if t.MaxTime > 0 && elapsed >= t.MaxTime {
		return true
	}
	if t.MinVariationWindow > 0 && stats.StdevLastW(t.MinVariationWindow) <= t.MinVariationThreshold {
		return true
	}
	if t.Target != nil && len(stats.BestFitness) > 0 {
		if math.Abs(stats.BestFitness[0]-*t.Target) <= t.TargetDelta {
			return true
		}
	}
	return false
}
