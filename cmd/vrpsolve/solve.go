package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexaroute/vrpcore/environment"
	"github.com/nexaroute/vrpcore/evolution"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/hyper"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/ioformat"
	"github.com/nexaroute/vrpcore/localsearch"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/population"
	"github.com/nexaroute/vrpcore/recreate"
	"github.com/nexaroute/vrpcore/ruin"
	"github.com/nexaroute/vrpcore/solution"
	"github.com/nexaroute/vrpcore/telemetry"
)

var (
	maxGenerations int
	maxTime        time.Duration
	initSolution   string
	routingMatrix  string
	outResult      string
)

var solveCmd = &cobra.Command{
	Use:   "solve <format> <problem>",
	Short: "solve a normalized JSON problem and write back a solution",
	Args:  cobra.ExactArgs(2),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().IntVar(&maxGenerations, "max-generations", 200, "stop after this many generations (0 disables the clause)")
	solveCmd.Flags().DurationVar(&maxTime, "max-time", 30*time.Second, "stop after this much wall-clock time (0 disables the clause)")
	solveCmd.Flags().StringVar(&initSolution, "init-solution", "", "optional path to a prior SolutionDTO to seed the population with")
	solveCmd.Flags().StringVar(&routingMatrix, "routing-matrix", "", "optional path to a MatrixDTO array, merged into the problem's own matrices")
	solveCmd.Flags().StringVar(&outResult, "out-result", "", "where to write the resulting SolutionDTO JSON; defaults to stdout")
}

func runSolve(cmd *cobra.Command, args []string) error {
	format, problemPath := args[0], args[1]
	if format != "json" {
		return ioErr(fmt.Errorf("unsupported format %q: vrpsolve only reads normalized JSON", format))
	}

	raw, err := os.ReadFile(problemPath)
	if err != nil {
		return ioErr(err)
	}
	var dto ioformat.ProblemDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return ioErr(fmt.Errorf("decoding problem: %w", err))
	}
	if routingMatrix != "" {
		extra, err := os.ReadFile(routingMatrix)
		if err != nil {
			return ioErr(err)
		}
		var matrices []ioformat.MatrixDTO
		if err := json.Unmarshal(extra, &matrices); err != nil {
			return ioErr(fmt.Errorf("decoding routing matrix: %w", err))
		}
		dto.Matrices = append(dto.Matrices, matrices...)
	}

	problem, g, err := ioformat.FromDTO(dto)
	if err != nil {
		return validationErr(err)
	}

	env := environment.New(
		environment.WithQuota(environment.NewQuotaWithTimeout(cmd.Context(), quotaOrForever(maxTime))),
	)
	ev := insertion.New(problem, g)

	pairs := []hyper.Pair{
		{Label: "random-job+cheapest", Ruin: ruin.RandomJob{Rand: env.MasterRNG()}, Recreate: recreate.Cheapest{}},
		{Label: "worst-job+regret", Ruin: ruin.WorstJob{}, Recreate: recreate.Regret{K: 3}},
		{Label: "neighbour+nearest", Ruin: ruin.Neighbour{Rand: env.MasterRNG(), K: 6}, Recreate: recreate.Nearest{Index: problem.Index}},
	}
	heuristic := hyper.NewDynamicSelective(g, ev, 3, env.MasterRNG(), pairs)

	pop := population.NewElitism(g, 30)
	if initSolution != "" {
		seed, err := loadSeedSolution(problem, g, initSolution)
		if err != nil {
			return ioErr(err)
		}
		pop.Add(seed)
	}

	cfg := evolution.Config{
		Environment: env, Goal: g, Evaluator: ev,
		Population: pop,
		Heuristic:  heuristic,
		Stats:      telemetry.New(),
		Termination: evolution.Termination{
			MaxGenerations: maxGenerations,
			MaxTime:        maxTime,
		},
		InitialSolutionRuns:    4,
		PerturbationStrength:   0.15,
		Moves:                  []localsearch.Move{localsearch.Swap{Rand: env.MasterRNG()}, localsearch.TwoOpt{Rand: env.MasterRNG()}, localsearch.Reschedule{Rand: env.MasterRNG()}},
		LocalSearchProbability: 0.3,
	}

	best := evolution.Run(cmd.Context(), problem, cfg)
	if best == nil {
		return validationErr(fmt.Errorf("no solution produced: the fleet may be empty"))
	}

	out, err := json.MarshalIndent(ioformat.ToDTO(best, g), "", "  ")
	if err != nil {
		return ioErr(err)
	}
	if outResult == "" {
		_, err = os.Stdout.Write(append(out, '\n'))
		return ioErr(err)
	}
	return ioErr(os.WriteFile(outResult, append(out, '\n'), 0o644))
}

func quotaOrForever(d time.Duration) time.Duration {
	if d <= 0 {
		return 365 * 24 * time.Hour
	}
	return d
}

// loadSeedSolution reads a prior SolutionDTO from path and replays it
// onto problem so the evolution loop's population starts from a known
// solution instead of only its own cheapest-insertion runs.
func loadSeedSolution(problem *model.Problem, g *goal.Goal, path string) (*solution.Solution, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dto ioformat.SolutionDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("decoding seed solution: %w", err)
	}
	return solutionFromDTO(problem, g, dto)
}
