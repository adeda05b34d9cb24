// Package camera provides the perspective orbit camera of the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/armviewer/pkg/math"
)

// pitchEpsilon keeps the camera off the poles where LookAt degenerates.
const pitchEpsilon = 1e-6

// OrbitCamera orbits around a target point with optional damping.
//
// Input methods (Rotate, Zoom, Pan) only accumulate motion. Update applies
// it, so it must be called once per frame.
type OrbitCamera struct {
	// Point to orbit around
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Elevation above the horizon (radians)
	Yaw      float32 // Horizontal angle (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FOV    float32 // Vertical field of view (degrees)
	Near   float32
	Far    float32
	Aspect float32

	// Damping carries motion over frames, decaying by DampingFactor.
	Damping       bool
	DampingFactor float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	// Pending motion
	deltaYaw   float32
	deltaPitch float32
	panOffset  math.Vec3
}

// NewOrbitCamera creates a camera at (20, 10, 20) looking at (0, 5, 0) with a
// 45 degree field of view.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinDistance:     10,
		MaxDistance:     500,
		MinPitch:        0,
		MaxPitch:        gomath.Pi / 2,
		FOV:             45,
		Near:            1,
		Far:             2000,
		Aspect:          1,
		Damping:         true,
		DampingFactor:   0.05,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.01,
	}
	c.LookFrom(math.Vec3{X: 20, Y: 10, Z: 20}, math.Vec3{Y: 5})
	return c
}

// LookFrom places the camera at pos looking at target.
func (c *OrbitCamera) LookFrom(pos, target math.Vec3) {
	c.Target = target
	off := pos.Sub(target)
	c.Distance = off.Length()
	if c.Distance == 0 {
		c.Pitch, c.Yaw = 0, 0
		c.clamp()
		return
	}
	c.Pitch = float32(gomath.Asin(float64(off.Y / c.Distance)))
	c.Yaw = float32(gomath.Atan2(float64(off.X), float64(off.Z)))
	c.clamp()
}

// SetMaxPolarAngle limits how far the camera may swing from straight up.
// A polar angle of 90 degrees keeps the camera above the ground plane.
func (c *OrbitCamera) SetMaxPolarAngle(rad float32) {
	c.MinPitch = gomath.Pi/2 - rad
	c.clamp()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Sin(float64(c.Yaw)))
	y := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	z := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Cos(float64(c.Yaw)))
	return c.Target.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	fov := float32(math.DegToRad(float64(c.FOV)))
	return math.Perspective(fov, c.Aspect, c.Near, c.Far)
}

// SetAspect updates the projection aspect ratio. Non-positive sizes are ignored.
func (c *OrbitCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Rotate queues an orbit from a mouse drag delta in pixels.
func (c *OrbitCamera) Rotate(deltaX, deltaY float32) {
	c.deltaYaw -= deltaX * c.DragSensitivity
	c.deltaPitch += deltaY * c.DragSensitivity
}

// Zoom changes distance based on scroll wheel delta. Positive moves closer.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clampDistance()
}

// Pan queues a move of the target on the ground plane, relative to the
// current view direction. Speed scales with distance.
func (c *OrbitCamera) Pan(right, forward float32) {
	speed := c.Distance * c.PanSensitivity

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	// Forward points from the camera towards the target
	move := math.Vec3{
		X: -sin*forward + cos*right,
		Z: -cos*forward - sin*right,
	}
	c.panOffset = c.panOffset.Add(move.Scale(speed))
}

// Update applies pending motion and reports whether the camera moved.
func (c *OrbitCamera) Update() bool {
	factor := float32(1)
	if c.Damping {
		factor = c.DampingFactor
	}

	moved := c.deltaYaw != 0 || c.deltaPitch != 0 || c.panOffset != (math.Vec3{})

	c.Yaw += c.deltaYaw * factor
	c.Pitch += c.deltaPitch * factor
	c.Target = c.Target.Add(c.panOffset.Scale(factor))
	c.clamp()

	if c.Damping {
		decay := 1 - c.DampingFactor
		c.deltaYaw *= decay
		c.deltaPitch *= decay
		c.panOffset = c.panOffset.Scale(decay)
		c.settle()
	} else {
		c.deltaYaw, c.deltaPitch = 0, 0
		c.panOffset = math.Vec3{}
	}
	return moved
}

// settle drops residual motion too small to see.
func (c *OrbitCamera) settle() {
	const eps = 1e-5
	if abs(c.deltaYaw) < eps && abs(c.deltaPitch) < eps {
		c.deltaYaw, c.deltaPitch = 0, 0
	}
	if c.panOffset.Length() < eps {
		c.panOffset = math.Vec3{}
	}
}

func (c *OrbitCamera) clamp() {
	lo := c.MinPitch
	hi := c.MaxPitch
	if hi >= gomath.Pi/2 {
		hi = gomath.Pi/2 - pitchEpsilon
	}
	if lo < -gomath.Pi/2 {
		lo = -gomath.Pi/2 + pitchEpsilon
	}
	if c.Pitch < lo {
		c.Pitch = lo
	}
	if c.Pitch > hi {
		c.Pitch = hi
	}
	c.clampDistance()
}

func (c *OrbitCamera) clampDistance() {
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.MaxDistance > 0 && c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
