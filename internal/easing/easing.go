// Package easing provides the pure timing curves used by the schedule
// builder and the camera. All functions map [0,1] to [0,1] with f(0)=0
// and f(1)=1; inputs outside the range are clamped first.
package easing

import "fmt"

// Func transforms linear progress into eased progress.
type Func func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 {
	return clamp(t)
}

// EaseIn accelerates from zero (t²).
func EaseIn(t float64) float64 {
	t = clamp(t)
	return t * t
}

// EaseOut decelerates into one (1-(1-t)²).
func EaseOut(t float64) float64 {
	t = clamp(t)
	return 1 - (1-t)*(1-t)
}

// EaseInOut is the symmetric piecewise quadratic.
func EaseInOut(t float64) float64 {
	t = clamp(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

// EaseInOutCubic is the smoother cubic variant used for camera moves.
func EaseInOutCubic(t float64) float64 {
	t = clamp(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

var byName = map[string]Func{
	"linear":      Linear,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
}

// ForName resolves a curve by its settings name.
func ForName(name string) (Func, error) {
	fn, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
