package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/ioformat"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/solution"
)

var (
	problemFiles []string
	solutionFile string
)

var checkCmd = &cobra.Command{
	Use:   "check <format>",
	Short: "revalidate a SolutionDTO against its ProblemDTO",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringArrayVar(&problemFiles, "problem-files", nil, "one or more ProblemDTO JSON files (merged if more than one)")
	checkCmd.Flags().StringVar(&solutionFile, "solution-file", "", "the SolutionDTO JSON file to revalidate")
	_ = checkCmd.MarkFlagRequired("problem-files")
	_ = checkCmd.MarkFlagRequired("solution-file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format := args[0]
	if format != "json" {
		return ioErr(fmt.Errorf("unsupported format %q: vrpsolve only reads normalized JSON", format))
	}

	problemDTO, err := mergeProblemFiles(problemFiles)
	if err != nil {
		return ioErr(err)
	}
	problem, g, err := ioformat.FromDTO(problemDTO)
	if err != nil {
		return validationErr(err)
	}

	raw, err := os.ReadFile(solutionFile)
	if err != nil {
		return ioErr(err)
	}
	var solutionDTO ioformat.SolutionDTO
	if err := json.Unmarshal(raw, &solutionDTO); err != nil {
		return ioErr(fmt.Errorf("decoding solution: %w", err))
	}

	sol, err := solutionFromDTO(problem, g, solutionDTO)
	if err != nil {
		return validationErr(err)
	}
	if err := sol.Validate(); err != nil {
		return validationErr(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func mergeProblemFiles(paths []string) (ioformat.ProblemDTO, error) {
	var merged ioformat.ProblemDTO
	for i, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return ioformat.ProblemDTO{}, err
		}
		var dto ioformat.ProblemDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return ioformat.ProblemDTO{}, fmt.Errorf("decoding %s: %w", path, err)
		}
		if i == 0 {
			merged = dto
			continue
		}
		merged.Fleet.Actors = append(merged.Fleet.Actors, dto.Fleet.Actors...)
		merged.Jobs = append(merged.Jobs, dto.Jobs...)
		merged.Matrices = append(merged.Matrices, dto.Matrices...)
	}
	return merged, nil
}

// solutionFromDTO replays a SolutionDTO's committed activities onto a
// fresh Solution built from problem, so Validate can check the claimed
// placements against the problem's own constraints rather than trusting
// the DTO's arrival/departure fields blindly.
func solutionFromDTO(problem *model.Problem, g *goal.Goal, dto ioformat.SolutionDTO) (*solution.Solution, error) {
	sol := solution.NewEmpty(problem)
	actorByID := make(map[model.ActorID]*model.Actor, len(problem.Fleet.Actors))
	for _, a := range problem.Fleet.Actors {
		actorByID[a.ID] = a
	}

	for _, route := range dto.Routes {
		actor, ok := actorByID[model.ActorID(route.ActorID)]
		if !ok {
			return nil, fmt.Errorf("solution references unknown actor %q", route.ActorID)
		}
		shift := actor.Shift()
		start := model.Place{Location: shift.StartLocation}
		end := model.Place{Location: shift.EndLocation}
		tour := solution.NewTour(start, end, shift.HasEnd, shift.StartEarliest)
		rc := solution.NewRouteContext(actor, tour)
		sol.Routes = append(sol.Routes, rc)
		if err := sol.Registry.Use(actor.ID); err != nil {
			return nil, err
		}

		for _, act := range route.Activities {
			if act.JobID == "" {
				continue
			}
			job, ok := problem.JobByID(model.JobID(act.JobID))
			if !ok {
				return nil, fmt.Errorf("solution references unknown job %q", act.JobID)
			}
			single, ok := job.(*model.Single)
			if !ok {
				return nil, fmt.Errorf("job %q is a multi-job; check replays singles only", act.JobID)
			}
			placeIdx := act.PlaceIdx
			if placeIdx < 0 || placeIdx >= len(single.Places) {
				return nil, fmt.Errorf("job %q has no place index %d", act.JobID, placeIdx)
			}

			insertAt := tour.Len()
			if shift.HasEnd {
				insertAt--
			}
			tour.InsertAt(insertAt, solution.Activity{
				Kind:       solution.KindJob,
				Job:        single,
				Place:      single.Places[placeIdx],
				PlaceIndex: placeIdx,
				Schedule:   solution.Schedule{Arrival: act.Arrival, Departure: act.Departure},
			})
			sol.MarkPlaced(single.ID())
		}
	}

	for _, u := range dto.Unassigned {
		info := solution.UnassignedInfo{Detail: map[model.ActorID]string{}}
		if len(u.Reasons) > 0 {
			info.Code = u.Reasons[0].Code
			info.Description = u.Reasons[0].Description
			for k, v := range u.Reasons[0].Detail {
				info.Detail[model.ActorID(k)] = v
			}
		}
		sol.MarkUnassigned(model.JobID(u.JobID), info)
	}

	for _, rc := range sol.Routes {
		rc.State.MarkStale()
		g.AcceptRouteState(rc)
	}
	return sol, nil
}
