package scene

import (
	gomath "math"

	"github.com/Faultbox/armviewer/internal/engine/model"
)

// Sphere builds a UV sphere centered at the origin with smooth normals.
// Pole rows emit a single triangle per segment.
func Sphere(radius float32, widthSegments, heightSegments int) *model.Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	grid := make([][]model.Vertex, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]model.Vertex, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			n := [3]float32{
				float32(-gomath.Cos(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)),
				float32(gomath.Cos(v * gomath.Pi)),
				float32(gomath.Sin(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)),
			}
			row[ix] = model.Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
			}
		}
		grid[iy] = row
	}

	mesh := &model.Mesh{Bounds: model.EmptyBounds()}
	add := func(vs ...model.Vertex) {
		for _, v := range vs {
			mesh.Bounds.Extend(v.Position)
			mesh.Vertices = append(mesh.Vertices, v)
		}
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				add(a, b, d)
			}
			if iy != heightSegments-1 {
				add(b, c, d)
			}
		}
	}
	return mesh
}
