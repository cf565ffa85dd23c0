package ioformat

import (
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/solution"
)

// ToDTO converts a Solution into its wire shape, per spec.md §6
// "Solution output". g supplies the primary-objective cost; pass the
// same goal.Goal the solution was produced against.
func ToDTO(sol *solution.Solution, g *goal.Goal) SolutionDTO {
	routes := make([]RouteDTO, 0, len(sol.Routes))
	for _, rc := range sol.Routes {
		activities := make([]ActivityDTO, 0, len(rc.Tour.All()))
		for _, a := range rc.Tour.All() {
			var jobID string
			if a.Job != nil {
				jobID = string(a.Job.ID())
			}
			loc := int(a.Place.Location)
			dto := ActivityDTO{
				JobID:     jobID,
				PlaceIdx:  a.PlaceIndex,
				Arrival:   a.Schedule.Arrival,
				Departure: a.Schedule.Departure,
				Location:  &loc,
			}
			if a.Commute != nil {
				dto.Commute = &CommuteDTO{Distance: a.Commute.Distance, Duration: a.Commute.Duration}
			}
			activities = append(activities, dto)
		}
		routes = append(routes, RouteDTO{
			ActorID:    string(rc.Actor.ID),
			ShiftIndex: rc.Actor.ShiftIndex,
			Activities: activities,
		})
	}

	unassigned := make([]UnassignedJobDTO, 0, len(sol.Unassigned))
	for id, info := range sol.Unassigned {
		detail := make(map[string]string, len(info.Detail))
		for actorID, code := range info.Detail {
			detail[string(actorID)] = code
		}
		unassigned = append(unassigned, UnassignedJobDTO{
			JobID: string(id),
			Reasons: []UnassignedReason{{
				Code:        info.Code,
				Description: info.Description,
				Detail:      detail,
			}},
		})
	}

	var cost float64
	if fv := g.FitnessVector(sol); len(fv) > 0 {
		cost = fv[0]
	}

	return SolutionDTO{Routes: routes, Unassigned: unassigned, Cost: cost}
}
