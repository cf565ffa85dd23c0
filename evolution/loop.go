// Package evolution implements the generation stepper described in
// spec.md §4.12: build an initial population, then repeatedly select
// parents, let the hyper-heuristic ruin-and-recreate them into
// children, run local search over the children, and fold them back
// into the population, until Termination fires.
package evolution

import (
	"context"
	"time"

	"github.com/nexaroute/vrpcore/environment"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/hyper"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/localsearch"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/population"
	"github.com/nexaroute/vrpcore/recreate"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/telemetry"
)

// Config wires every collaborator one Run call needs.
type Config struct {
	Environment *environment.Environment
	Goal        *goal.Goal
	Evaluator   *insertion.Evaluator
	Population  population.Population
	Heuristic   hyper.Heuristic
	Termination Termination
	Stats       *telemetry.Stats

	// InitialSolutionRuns is how many independent cheapest-insertion
	// passes (each with its own randomized tie-breaking stream) seed
	// the population (spec.md §4.12 "N cheapest-insertion runs with
	// randomized tie-breaking").
	InitialSolutionRuns int
	// PerturbationStrength is the noise half-width Perturbation uses
	// to diversify the initial-solution runs (e.g. 0.1 for ±10%).
	PerturbationStrength float64

	// Moves are the local search operators applied to each generation's
	// children; LocalSearchProbability is the per-child chance any
	// move is attempted at all (spec.md §4.13 "applied with low
	// probability per generation").
	Moves                  []localsearch.Move
	LocalSearchProbability float64
}

// Run executes the evolution loop to termination and returns the best
// solution known to the population, with every still-unassigned job's
// failure reason aggregated across candidate routes.
func Run(ctx context.Context, problem *model.Problem, cfg Config) *solution.Solution {
	log := cfg.Environment.Logger().Named("evolution")

	initial := buildInitialSolutions(ctx, problem, cfg)
	cfg.Population.AddAll(initial)
	log.Info("seeded initial population", "runs", len(initial))

	start := time.Now()
	generation := 0
	for !cfg.Termination.Done(cfg.Stats, time.Since(start)) {
		if cfg.Environment.Quota().Expired() {
			log.Info("quota expired, stopping early", "generation", generation)
			break
		}

		genStart := time.Now()
		parents := cfg.Population.Select()
		children := cfg.Heuristic.Search(hyper.SearchContext{
			Ctx:   cfg.Environment.Quota().Context(),
			Phase: cfg.Population.SelectionPhase(),
		}, parents)

		accepted := applyLocalSearch(cfg, children)
		cfg.Population.AddAll(children)
		cfg.Population.OnGeneration(cfg.Stats)
		cfg.Stats.RecordAcceptance(accepted, len(children)*len(cfg.Moves))

		best := bestOf(cfg)
		var bestFitness []float64
		if best != nil {
			bestFitness = cfg.Goal.FitnessVector(best)
		}
		cfg.Stats.Advance(time.Since(genStart), bestFitness)
		generation++
		log.Debug("generation complete", "generation", generation, "fitness", bestFitness)
	}

	best := bestOf(cfg)
	if best != nil {
		aggregateUnassignedReasons(ctx, cfg.Evaluator, best)
	}
	return best
}

// buildInitialSolutions runs InitialSolutionRuns independent
// Perturbation-recreate passes, each seeded from the environment's
// per-worker derived RNG stream so every run's tie-breaking is
// reproducible given the environment's master seed.
func buildInitialSolutions(ctx context.Context, problem *model.Problem, cfg Config) []*solution.Solution {
	runs := cfg.InitialSolutionRuns
	if runs < 1 {
		runs = 1
	}
	out := make([]*solution.Solution, 0, runs)
	for i := 0; i < runs; i++ {
		sol := solution.NewEmpty(problem)
		op := recreate.Perturbation{
			Rand:     cfg.Environment.DerivedRNG(i),
			Strength: cfg.PerturbationStrength,
		}
		op.Recreate(ctx, sol, cfg.Evaluator)
		out = append(out, sol)
	}
	return out
}

// applyLocalSearch gives every child one chance, at
// LocalSearchProbability, to have a randomly chosen move attempted
// against it, and returns how many attempts were kept.
func applyLocalSearch(cfg Config, children []*solution.Solution) int {
	if len(cfg.Moves) == 0 || cfg.LocalSearchProbability <= 0 {
		return 0
	}
	rng := cfg.Environment.MasterRNG()
	moveCtx := cfg.Environment.Quota().Context()
	accepted := 0
	for _, child := range children {
		if rng.Float64() > cfg.LocalSearchProbability {
			continue
		}
		move := cfg.Moves[rng.IntN(len(cfg.Moves))]
		if move.Apply(moveCtx, cfg.Goal, cfg.Evaluator, child) {
			accepted++
		}
	}
	return accepted
}

// bestOf returns the population's current single best solution, or nil
// if it is empty.
func bestOf(cfg Config) *solution.Solution {
	ranked := cfg.Population.Ranked()
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// aggregateUnassignedReasons implements the post-pass named in
// spec.md §7 / SPEC_FULL.md §6.1: for each still-unassigned job, ask
// the evaluator which violation code each candidate route produced and
// keep the most frequent one, instead of whichever code happened to be
// seen last during the original recreate pass.
func aggregateUnassignedReasons(ctx context.Context, ev *insertion.Evaluator, sol *solution.Solution) {
	for id := range sol.Unassigned {
		job, ok := sol.Problem.JobByID(id)
		if !ok {
			continue
		}
		candidates := ev.EvaluateJobPerRoute(ctx, sol, job)

		counts := make(map[string]int)
		detail := make(map[model.ActorID]string)
		for _, c := range candidates {
			if c.Code == "" {
				continue
			}
			counts[c.Code]++
			detail[sol.Routes[c.RouteIdx].Actor.ID] = c.Code
		}

		best, bestCount := "", 0
		for code, n := range counts {
			if n > bestCount {
				best, bestCount = code, n
			}
		}
		if best == "" {
			best = "NO_CANDIDATE_ROUTE"
		}

		info := sol.Unassigned[id]
		info.Code = best
		info.Detail = detail
		sol.Unassigned[id] = info
	}
}
