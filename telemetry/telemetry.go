// Package telemetry wires the evolution loop's generation counters and
// sample rates through github.com/hashicorp/go-metrics, with an
// in-memory sink by default (spec.md's metrics are an observability
// convenience, never load-bearing for correctness).
package telemetry

import (
	"math"
	"time"

	"github.com/hashicorp/go-metrics"
)

// Stats accumulates per-generation progress for the evolution loop's
// termination checks (spec.md §4.12: max-time, min-variation,
// target-proximity all read from this) and doubles as the source for
// the go-metrics samples/counters emitted each generation.
type Stats struct {
	Generation   int
	Elapsed      time.Duration
	BestFitness  []float64
	history      []float64 // best primary-objective fitness per generation, for min-variation
	sink         *metrics.InmemSink
}

// New builds a Stats with a fresh in-memory metrics sink, registered as
// the process-wide default so ad-hoc metrics.IncrCounter calls
// elsewhere in the solver land somewhere observable.
func New() *Stats {
	sink := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.NewGlobal(metrics.DefaultConfig("vrpcore"), sink)
	return &Stats{sink: sink}
}

// Sink exposes the underlying in-memory sink, e.g. for a CLI
// --telemetry flag to dump a snapshot.
func (s *Stats) Sink() *metrics.InmemSink { return s.sink }

// Advance records one generation's outcome: elapsed wall-clock time
// since the loop started and the new best fitness vector, and emits the
// corresponding go-metrics samples/counters.
func (s *Stats) Advance(elapsed time.Duration, bestFitness []float64) {
	s.Generation++
	s.Elapsed = elapsed
	s.BestFitness = bestFitness

	if len(bestFitness) > 0 {
		s.history = append(s.history, bestFitness[0])
		metrics.SetGauge([]string{"vrpcore", "best_fitness", "primary"}, float32(bestFitness[0]))
	}
	metrics.IncrCounter([]string{"vrpcore", "generations"}, 1)
	metrics.AddSample([]string{"vrpcore", "generation_duration_ms"}, float32(elapsed.Milliseconds()))
}

// RecordPopulationSize reports the current population size, called from
// Population.OnGeneration implementations.
func (s *Stats) RecordPopulationSize(n int) {
	metrics.SetGauge([]string{"vrpcore", "population_size"}, float32(n))
}

// RecordAcceptance reports a local-search or recreate acceptance ratio
// for one generation (accepted moves / attempted moves).
func (s *Stats) RecordAcceptance(accepted, attempted int) {
	if attempted == 0 {
		return
	}
	metrics.AddSample([]string{"vrpcore", "acceptance_ratio"}, float32(accepted)/float32(attempted))
}

// StdevLastW returns the population standard deviation of the primary
// objective's best fitness over the last w generations, used by
// Termination's min-variation check. Returns +Inf if fewer than w
// generations have elapsed, so the check never fires prematurely.
func (s *Stats) StdevLastW(w int) float64 {
	if len(s.history) < w {
		return math.Inf(1)
	}
	window := s.history[len(s.history)-w:]
	var mean float64
	for _, v := range window {
		mean += v
	}
	mean /= float64(w)

	var variance float64
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(w)
	return math.Sqrt(variance)
}
