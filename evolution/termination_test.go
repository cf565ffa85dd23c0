package evolution_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexaroute/vrpcore/evolution"
	"github.com/nexaroute/vrpcore/telemetry"
)

func TestTerminationMaxGenerations(t *testing.T) {
	stats := telemetry.New()
	for i := 0; i < 3; i++ {
		stats.Advance(time.Millisecond, []float64{100})
	}
	term := evolution.Termination{MaxGenerations: 3}
	assert.True(t, term.Done(stats, time.Second))

	term = evolution.Termination{MaxGenerations: 10}
	assert.False(t, term.Done(stats, time.Second))
}

func TestTerminationMaxTime(t *testing.T) {
	stats := telemetry.New()
	term := evolution.Termination{MaxTime: 10 * time.Millisecond}
	assert.False(t, term.Done(stats, 5*time.Millisecond))
	assert.True(t, term.Done(stats, 20*time.Millisecond))
}

func TestTerminationMinVariation(t *testing.T) {
	stats := telemetry.New()
	for i := 0; i < 5; i++ {
		stats.Advance(time.Millisecond, []float64{42})
	}
	term := evolution.Termination{MinVariationWindow: 5, MinVariationThreshold: 1e-9}
	assert.True(t, term.Done(stats, time.Second))

	stats2 := telemetry.New()
	for i := 0; i < 5; i++ {
		stats2.Advance(time.Millisecond, []float64{float64(i) * 100})
	}
	term2 := evolution.Termination{MinVariationWindow: 5, MinVariationThreshold: 1e-9}
	assert.False(t, term2.Done(stats2, time.Second))
}

func TestTerminationTargetProximity(t *testing.T) {
	stats := telemetry.New()
	stats.Advance(time.Millisecond, []float64{101})
	target := 100.0
	term := evolution.Termination{Target: &target, TargetDelta: 2}
	assert.True(t, term.Done(stats, time.Second))

	tight := evolution.Termination{Target: &target, TargetDelta: 0.1}
	assert.False(t, tight.Done(stats, time.Second))
}

func TestTerminationZeroValueNeverFires(t *testing.T) {
	stats := telemetry.New()
	stats.Advance(time.Millisecond, []float64{1})
	var term evolution.Termination
	assert.False(t, term.Done(stats, time.Hour))
}
