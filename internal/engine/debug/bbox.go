package debug

import (
	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/pkg/math"
)

// BoundsWireframe returns the 12 edges (24 endpoints) of a bounding box
// transformed to world space by m.
func BoundsWireframe(b model.Bounds, m math.Mat4) []math.Vec3 {
	lo, hi := b.Min, b.Max
	corner := func(x, y, z int) math.Vec3 {
		p := math.Vec3{X: lo[0], Y: lo[1], Z: lo[2]}
		if x == 1 {
			p.X = hi[0]
		}
		if y == 1 {
			p.Y = hi[1]
		}
		if z == 1 {
			p.Z = hi[2]
		}
		return m.TransformPoint(p)
	}

	edges := [12][2][3]int{
		// Bottom face
		{{0, 0, 0}, {1, 0, 0}}, {{1, 0, 0}, {1, 0, 1}}, {{1, 0, 1}, {0, 0, 1}}, {{0, 0, 1}, {0, 0, 0}},
		// Top face
		{{0, 1, 0}, {1, 1, 0}}, {{1, 1, 0}, {1, 1, 1}}, {{1, 1, 1}, {0, 1, 1}}, {{0, 1, 1}, {0, 1, 0}},
		// Vertical edges
		{{0, 0, 0}, {0, 1, 0}}, {{1, 0, 0}, {1, 1, 0}}, {{1, 0, 1}, {1, 1, 1}}, {{0, 0, 1}, {0, 1, 1}},
	}

	out := make([]math.Vec3, 0, 24)
	for _, e := range edges {
		for _, c := range e {
			out = append(out, corner(c[0], c[1], c[2]))
		}
	}
	return out
}
