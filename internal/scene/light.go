package scene

import (
	gomath "math"

	"github.com/Faultbox/armviewer/pkg/math"
)

// HemisphereLight blends a sky and a ground color by surface normal.
type HemisphereLight struct {
	Sky       Color
	Ground    Color
	Intensity float32
}

// PointLight is an omnidirectional light with no falloff.
type PointLight struct {
	Position  math.Vec3
	Color     Color
	Intensity float32
}

// LightPath is the closed orbit traced by the light marker.
type LightPath struct {
	ScaleXZ   float64
	ScaleY    float64
	TimeScale float64 // Multiplies wall clock milliseconds
}

// DefaultLightPath returns the marker orbit used by the viewer.
func DefaultLightPath() LightPath {
	return LightPath{
		ScaleXZ:   3009,
		ScaleY:    4000,
		TimeScale: 1e-4,
	}
}

// Position returns the marker position at the given wall clock time in
// milliseconds: t = ms*TimeScale, (sin 4t, cos 5t, cos 4t) scaled per axis.
func (p LightPath) Position(wallMillis float64) math.Vec3 {
	t := wallMillis * p.TimeScale
	return math.Vec3{
		X: float32(gomath.Sin(4*t) * p.ScaleXZ),
		Y: float32(gomath.Cos(5*t) * p.ScaleY),
		Z: float32(gomath.Cos(4*t) * p.ScaleXZ),
	}
}

// LightMarkerPosition returns the position on the default path.
func LightMarkerPosition(wallMillis float64) math.Vec3 {
	return DefaultLightPath().Position(wallMillis)
}
