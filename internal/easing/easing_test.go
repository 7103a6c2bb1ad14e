package easing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	funcs := map[string]Func{
		"linear":            Linear,
		"ease-in":           EaseIn,
		"ease-out":          EaseOut,
		"ease-in-out":       EaseInOut,
		"ease-in-out-cubic": EaseInOutCubic,
	}
	for name, fn := range funcs {
		require.Equal(t, 0.0, fn(0), "%s(0)", name)
		require.Equal(t, 1.0, fn(1), "%s(1)", name)
		require.Equal(t, 0.0, fn(-0.3), "%s clamps below", name)
		require.Equal(t, 1.0, fn(1.7), "%s clamps above", name)
	}
}

func TestCurveShapes(t *testing.T) {
	require.InDelta(t, 0.25, EaseIn(0.5), 1e-9)
	require.InDelta(t, 0.75, EaseOut(0.5), 1e-9)
	require.InDelta(t, 0.5, EaseInOut(0.5), 1e-9)
	require.InDelta(t, 0.5, Linear(0.5), 1e-9)

	// ease-in-out is symmetric: f(t) + f(1-t) == 1
	for _, tt := range []float64{0.1, 0.25, 0.4} {
		require.InDelta(t, 1.0, EaseInOut(tt)+EaseInOut(1-tt), 1e-9)
	}
}

func TestForName(t *testing.T) {
	fn, err := ForName("ease-in")
	require.NoError(t, err)
	require.InDelta(t, 0.25, fn(0.5), 1e-9)

	_, err = ForName("bounce")
	require.Error(t, err)
}
