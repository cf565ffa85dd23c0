package capacity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexaroute/vrpcore/capacity"
)

func TestValueAlgebra(t *testing.T) {
	a := capacity.New[int64](3, 5)
	b := capacity.New[int64](1, 7)

	assert.Equal(t, capacity.New[int64](4, 12), a.Add(b))
	assert.Equal(t, capacity.New[int64](2, -2), a.Sub(b))
	assert.Equal(t, capacity.New[int64](2, 0), a.SubSaturating(b))
	assert.Equal(t, capacity.New[int64](3, 7), a.Max(b))
}

func TestValueFitsIsPartialOrder(t *testing.T) {
	cap := capacity.New[int64](10, 10)

	cases := []struct {
		name string
		v    capacity.Value[int64]
		want bool
	}{
		{"within both dims", capacity.New[int64](3, 4), true},
		{"equal to cap", capacity.New[int64](10, 10), true},
		{"exceeds one dim", capacity.New[int64](11, 0), false},
		{"exceeds other dim", capacity.New[int64](0, 11), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Fits(cap))
		})
	}
}

func TestValueDimensionMismatchPanics(t *testing.T) {
	a := capacity.New[int64](1)
	b := capacity.New[int64](1, 2)
	require.Panics(t, func() { a.Add(b) })
}

func TestScalarAlgebra(t *testing.T) {
	var s capacity.Scalar = 5
	assert.Equal(t, capacity.Scalar(8), s.Add(3))
	assert.Equal(t, capacity.Scalar(2), s.Sub(3))
	assert.Equal(t, capacity.Scalar(0), capacity.Scalar(2).SubSaturating(5))
	assert.True(t, capacity.Scalar(5).Fits(5))
	assert.False(t, capacity.Scalar(6).Fits(5))
}
