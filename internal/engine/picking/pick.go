package picking

import (
	"github.com/Faultbox/armviewer/internal/scene"
)

// Hit is the result of a successful pick.
type Hit struct {
	Index    int // index into the picked item slice
	Node     string
	Distance float32
}

// Pick returns the nearest draw item whose world bounds the ray crosses.
func Pick(r Ray, items []scene.DrawItem) (Hit, bool) {
	best := Hit{Index: -1}
	for i, it := range items {
		if it.Mesh == nil {
			continue
		}
		t, ok := r.IntersectBounds(WorldBounds(it.Mesh.Bounds, it.World))
		if !ok {
			continue
		}
		if best.Index < 0 || t < best.Distance {
			best = Hit{Index: i, Node: it.Node, Distance: t}
		}
	}
	return best, best.Index >= 0
}
