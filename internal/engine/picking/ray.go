// Package picking provides ray casting against posed model parts.
package picking

import (
	gomath "math"

	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// ScreenToRay converts pixel coordinates to a world-space ray.
// invViewProj is the inverse of projection * view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	// Normalized device coordinates, Y up
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectBounds tests the ray against an axis-aligned box with the slab
// method. Returns the entry distance, or the exit distance when the origin
// lies inside the box.
func (r Ray) IntersectBounds(b model.Bounds) (t float32, hit bool) {
	if !b.Valid() {
		return 0, false
	}
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[axis] - origin[axis]) / dir[axis]
		t2 := (b.Max[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// WorldBounds returns the axis-aligned box enclosing b transformed by m.
func WorldBounds(b model.Bounds, m math.Mat4) model.Bounds {
	out := model.EmptyBounds()
	if !b.Valid() {
		return out
	}
	for i := 0; i < 8; i++ {
		p := math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]}
		if i&1 != 0 {
			p.X = b.Max[0]
		}
		if i&2 != 0 {
			p.Y = b.Max[1]
		}
		if i&4 != 0 {
			p.Z = b.Max[2]
		}
		out.Extend(m.TransformPoint(p).Array())
	}
	return out
}
