package collada

import (
	"fmt"
	"strings"

	"github.com/Faultbox/armviewer/pkg/math"
)

// buildGeometry triangulates every <triangles> and <polylist> of a mesh.
// Non-mesh geometries (splines, convex meshes) produce an empty geometry.
func buildGeometry(x *xmlGeometry) (*Geometry, error) {
	g := &Geometry{ID: x.ID, Name: x.Name}
	if x.Mesh == nil {
		return g, nil
	}

	sources := make(map[string]*xmlSource, len(x.Mesh.Sources))
	for i := range x.Mesh.Sources {
		sources[x.Mesh.Sources[i].ID] = &x.Mesh.Sources[i]
	}

	positions, err := resolvePositions(x.Mesh, sources)
	if err != nil {
		return nil, err
	}

	for i := range x.Mesh.Triangles {
		tri := &x.Mesh.Triangles[i]
		if err := g.appendPrimitive(tri, nil, x.Mesh.Vertices.ID, positions); err != nil {
			return nil, fmt.Errorf("triangles: %w", err)
		}
	}
	for i := range x.Mesh.Polylists {
		poly := &x.Mesh.Polylists[i]
		vcount, err := parseInts(poly.VCount)
		if err != nil {
			return nil, fmt.Errorf("polylist vcount: %w", err)
		}
		if err := g.appendPrimitive(poly, vcount, x.Mesh.Vertices.ID, positions); err != nil {
			return nil, fmt.Errorf("polylist: %w", err)
		}
	}
	return g, nil
}

// resolvePositions follows <vertices><input semantic="POSITION"> to its source.
func resolvePositions(mesh *xmlMesh, sources map[string]*xmlSource) ([]math.Vec3, error) {
	var ref string
	for _, in := range mesh.Vertices.Inputs {
		if in.Semantic == "POSITION" {
			ref = strings.TrimPrefix(in.Source, "#")
			break
		}
	}
	if ref == "" {
		return nil, nil
	}

	src, ok := sources[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedSource, ref)
	}
	values, err := parseFloats(src.FloatArray.Data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", ref, err)
	}

	stride := src.Accessor.Stride
	if stride < 3 {
		stride = 3
	}
	out := make([]math.Vec3, 0, len(values)/stride)
	for i := 0; i+2 < len(values); i += stride {
		out = append(out, math.Vec3{X: values[i], Y: values[i+1], Z: values[i+2]})
	}
	return out, nil
}

// appendPrimitive reads the VERTEX-indexed corners of a primitive. A nil
// vcount means every polygon is a triangle; larger polygons become fans.
func (g *Geometry) appendPrimitive(p *xmlPrimitive, vcount []int, verticesID string, positions []math.Vec3) error {
	stride := 1
	vertexOffset := -1
	for _, in := range p.Inputs {
		if in.Offset < 0 {
			return fmt.Errorf("%w: input offset %d", ErrBadIndex, in.Offset)
		}
		if in.Offset+1 > stride {
			stride = in.Offset + 1
		}
		if in.Semantic == "VERTEX" && strings.TrimPrefix(in.Source, "#") == verticesID {
			vertexOffset = in.Offset
		}
	}
	if vertexOffset < 0 {
		return fmt.Errorf("%w: no VERTEX input", ErrUnresolvedSource)
	}

	indices, err := parseInts(p.P)
	if err != nil {
		return err
	}

	corner := func(n int) (math.Vec3, error) {
		i := n*stride + vertexOffset
		if n < 0 || i >= len(indices) {
			return math.Vec3{}, fmt.Errorf("%w: corner %d", ErrBadIndex, n)
		}
		idx := indices[i]
		if idx < 0 || idx >= len(positions) {
			return math.Vec3{}, fmt.Errorf("%w: position %d of %d", ErrBadIndex, idx, len(positions))
		}
		return positions[idx], nil
	}

	if vcount == nil {
		// count is untrusted: it must fit the index list
		if p.Count < 0 || p.Count > len(indices)/(3*stride) {
			return fmt.Errorf("%w: count %d for %d indices", ErrBadIndex, p.Count, len(indices))
		}
		vcount = make([]int, p.Count)
		for i := range vcount {
			vcount[i] = 3
		}
	}

	base := 0
	for _, n := range vcount {
		if n < 0 {
			return fmt.Errorf("%w: vcount %d", ErrBadIndex, n)
		}
		if n >= 3 {
			first, err := corner(base)
			if err != nil {
				return err
			}
			for k := 1; k+1 < n; k++ {
				b, err := corner(base + k)
				if err != nil {
					return err
				}
				c, err := corner(base + k + 1)
				if err != nil {
					return err
				}
				g.Positions = append(g.Positions, first, b, c)
			}
		}
		base += n
	}
	return nil
}
