package rosomaxa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/population/rosomaxa"
)

func lower(a, b []float64) bool { return a[0] < b[0] }

func TestTrainMapsToNearestNode(t *testing.T) {
	net := rosomaxa.New[string](2, lower)

	net.Train([]float64{0, 0}, "origin")
	node := net.Train([]float64{0.01, 0.01}, "near-origin")

	assert.Contains(t, node.Members(), "near-origin")
}

func TestNetworkGrowsUnderRepeatedOutlierTraining(t *testing.T) {
	net := rosomaxa.New[int](1, lower, rosomaxa.WithGrowThreshold[int](0.5))

	start := net.Size()
	for i := 0; i < 50; i++ {
		net.Train([]float64{float64(i) * 100}, i)
	}

	require.Greater(t, net.Size(), start)
}

func TestBestNodeTracksLowestFitness(t *testing.T) {
	net := rosomaxa.New[string](1, lower)

	net.Train([]float64{10}, "ten")
	net.Train([]float64{1}, "one")

	best := net.BestNode()
	require.NotNil(t, best)
	assert.Contains(t, best.Members(), "one")
}
