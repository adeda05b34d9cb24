package model

import (
	"github.com/Faultbox/armviewer/pkg/collada"
	"github.com/Faultbox/armviewer/pkg/math"
)

// BuildMesh creates a mesh from triangulated COLLADA geometry. Each triangle
// gets its face normal; degenerate triangles are dropped. Returns nil when no
// triangle survives.
func BuildMesh(g *collada.Geometry, opts BuildOptions) *Mesh {
	if g == nil || len(g.Positions) < 3 {
		return nil
	}

	vertices := make([]Vertex, 0, len(g.Positions))
	bounds := EmptyBounds()

	for i := 0; i+2 < len(g.Positions); i += 3 {
		v0, v1, v2 := g.Positions[i], g.Positions[i+1], g.Positions[i+2]
		if opts.ReverseWinding {
			v0, v2 = v2, v0
		}

		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if n.Length() < 1e-6 {
			continue
		}
		normal := n.Normalize().Array()

		for _, p := range [3]math.Vec3{v0, v1, v2} {
			pos := p.Array()
			bounds.Extend(pos)
			vertices = append(vertices, Vertex{Position: pos, Normal: normal})
		}
	}

	if len(vertices) == 0 {
		return nil
	}
	if opts.Smooth {
		SmoothNormals(vertices)
	}

	return &Mesh{
		Vertices: vertices,
		Bounds:   bounds,
	}
}

// SmoothNormals averages normals at shared vertex positions.
// This reduces faceted appearance on curved surfaces.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			n := vertices[idx].Normal
			sum = sum.Add(math.Vec3{X: n[0], Y: n[1], Z: n[2]})
		}
		if sum.Length() < 1e-6 {
			continue
		}
		avg := sum.Normalize().Array()

		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

// CountTriangles returns the triangle count over all geometries of a document.
func CountTriangles(doc *collada.Document) int {
	total := 0
	for _, g := range doc.Geometries {
		total += g.TriangleCount()
	}
	return total
}
