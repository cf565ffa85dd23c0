package telemetry_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexaroute/vrpcore/telemetry"
)

func TestAdvanceTracksGenerationAndFitness(t *testing.T) {
	s := telemetry.New()

	s.Advance(100*time.Millisecond, []float64{42})
	s.Advance(50*time.Millisecond, []float64{40})

	assert.Equal(t, 2, s.Generation)
	assert.Equal(t, []float64{40}, s.BestFitness)
}

func TestStdevLastWInfiniteBeforeEnoughHistory(t *testing.T) {
	s := telemetry.New()
	s.Advance(time.Millisecond, []float64{10})

	assert.True(t, math.IsInf(s.StdevLastW(5), 1))
}

func TestStdevLastWConverges(t *testing.T) {
	s := telemetry.New()
	for _, v := range []float64{10, 10, 10, 10} {
		s.Advance(time.Millisecond, []float64{v})
	}

	assert.InDelta(t, 0, s.StdevLastW(3), 1e-9)
}
