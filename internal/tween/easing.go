// Package tween interpolates named values over time.
package tween

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// EasingFunc is a gween easing equation: t elapsed, b begin, c change,
// d duration.
type EasingFunc = ease.TweenFunc

// Easings used by the viewer.
var (
	Linear         EasingFunc = ease.Linear
	QuadraticIn    EasingFunc = ease.InQuad
	QuadraticOut   EasingFunc = ease.OutQuad
	QuadraticInOut EasingFunc = ease.InOutQuad
)

var easings = map[string]EasingFunc{
	"linear":           Linear,
	"quadratic-in":     QuadraticIn,
	"quadratic-out":    QuadraticOut,
	"quadratic-in-out": QuadraticInOut,
	"cubic-out":        ease.OutCubic,
	"cubic-in-out":     ease.InOutCubic,
	"sine-in-out":      ease.InOutSine,
	"back-out":         ease.OutBack,
	"bounce-out":       ease.OutBounce,
}

// ByName returns the easing registered under name.
func ByName(name string) (EasingFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// Names lists the registered easing names in order.
func Names() []string {
	out := make([]string, 0, len(easings))
	for name := range easings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Progress evaluates fn for linear progress k in [0,1].
func Progress(fn EasingFunc, k float64) float64 {
	return float64(fn(float32(k), 0, 1, 1))
}
