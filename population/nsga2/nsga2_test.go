package nsga2_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexaroute/vrpcore/population/nsga2"
)

func TestSortSeparatesFronts(t *testing.T) {
	items := []nsga2.Ranked[string]{
		{Fitness: []float64{1, 1}, Value: "best"},
		{Fitness: []float64{2, 2}, Value: "dominated-by-best"},
		{Fitness: []float64{1, 3}, Value: "tradeoff"},
		{Fitness: []float64{3, 1}, Value: "tradeoff2"},
	}

	fronts := nsga2.Sort(items)

	assert.GreaterOrEqual(t, len(fronts), 2)
	var firstFrontValues []string
	for _, r := range fronts[0] {
		firstFrontValues = append(firstFrontValues, r.Value)
	}
	assert.Contains(t, firstFrontValues, "best")
	assert.NotContains(t, firstFrontValues, "dominated-by-best")
}

func TestCrowdingDistanceBoundariesAreInfinite(t *testing.T) {
	front := []nsga2.Ranked[int]{
		{Fitness: []float64{0, 10}, Value: 0},
		{Fitness: []float64{5, 5}, Value: 1},
		{Fitness: []float64{10, 0}, Value: 2},
	}

	distances := nsga2.CrowdingDistance(front)

	assert.True(t, math.IsInf(distances[0], 1))
	assert.True(t, math.IsInf(distances[2], 1))
	assert.Less(t, distances[1], math.Inf(1))
}

func TestCrowdingDistanceSmallFrontIsAllInfinite(t *testing.T) {
	front := []nsga2.Ranked[int]{
		{Fitness: []float64{1}, Value: 0},
		{Fitness: []float64{2}, Value: 1},
	}

	distances := nsga2.CrowdingDistance(front)

	for _, d := range distances {
		assert.True(t, math.IsInf(d, 1))
	}
}
