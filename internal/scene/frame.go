package scene

import "github.com/Faultbox/armviewer/pkg/math"

// Frame is the per-frame input of a renderer.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	Items      []DrawItem
	ShowBounds bool
	Selected   string // node whose bounds are drawn even when ShowBounds is off
}

// RenderStats reports what a renderer drew for one frame.
type RenderStats struct {
	DrawCalls int
	Triangles int
}
