package ioformat

import (
	"fmt"

	"github.com/nexaroute/vrpcore/feature"
	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/model"
	"github.com/nexaroute/vrpcore/routestate"
)

// BuildGoal resolves each named feature in priority order into a
// concrete feature.Feature and assembles them into a goal.Goal,
// mirroring spec.md §6's "goal: [FeatureHandle] in priority order".
// Features that need extra configuration use fixed defaults: a
// neighbor ring of 5 for compactness, a penalty of 1000 per unassigned
// job for min_unassigned and 1 for min_overdue; a caller that needs
// different tuning builds its goal.Goal directly instead of going
// through a DTO.
func BuildGoal(problem *model.Problem, names []string) (*goal.Goal, error) {
	registry := routestate.NewRegistry()
	features := make([]*feature.Feature, 0, len(names))
	for _, name := range names {
		f, err := resolveFeature(problem, registry, name)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return goal.New(features...), nil
}

func resolveFeature(problem *model.Problem, registry *routestate.Registry, name string) (*feature.Feature, error) {
	switch name {
	case "transport_cost":
		return feature.NewTransportCost(problem), nil
	case "capacity":
		return feature.NewCapacity(), nil
	case "time_window":
		return feature.NewTimeWindow(problem), nil
	case "tour_size":
		return feature.NewTourSize(), nil
	case "skills":
		return feature.NewSkills(), nil
	case "locking":
		return feature.NewLocking(), nil
	case "groups":
		return feature.NewGroups(), nil
	case "compatibility":
		return feature.NewCompatibility(), nil
	case "reload":
		return feature.NewReload(), nil
	case "breaks":
		return feature.NewBreaks(), nil
	case "recharge":
		return feature.NewRecharge(problem, registry), nil
	case "area":
		return feature.NewArea(), nil
	case "dispatch":
		return feature.NewDispatch(), nil
	case "limits":
		return feature.NewLimits(), nil
	case "compactness":
		return feature.NewCompactness(problem.Index, 5), nil
	case "min_unassigned":
		return feature.NewMinUnassigned(1000), nil
	case "min_overdue":
		return feature.NewMinOverdue(1), nil
	case "fleet_usage_min_tours":
		return feature.NewFleetUsage(feature.MinimizeTours), nil
	case "fleet_usage_max_tours":
		return feature.NewFleetUsage(feature.MaximizeTours), nil
	case "fleet_usage_min_arrival":
		return feature.NewFleetUsage(feature.MinimizeArrival), nil
	default:
		return nil, fmt.Errorf("ioformat: unknown goal feature %q", name)
	}
}
