package scene

// LineVertex is one end of a colored line segment.
type LineVertex struct {
	Position [3]float32
	Color    [3]float32
}

// Grid returns line segments (vertex pairs) of a square grid on the XZ plane
// centered at the origin. The middle line in each direction uses
// centerColor, the rest lineColor.
func Grid(size float32, divisions int, centerColor, lineColor Color) []LineVertex {
	if divisions < 1 {
		divisions = 1
	}
	center := divisions / 2
	step := size / float32(divisions)
	half := size / 2

	out := make([]LineVertex, 0, (divisions+1)*4)
	k := -half
	for i := 0; i <= divisions; i++ {
		c := lineColor.Array()
		if i == center {
			c = centerColor.Array()
		}
		out = append(out,
			LineVertex{Position: [3]float32{-half, 0, k}, Color: c},
			LineVertex{Position: [3]float32{half, 0, k}, Color: c},
			LineVertex{Position: [3]float32{k, 0, -half}, Color: c},
			LineVertex{Position: [3]float32{k, 0, half}, Color: c},
		)
		k += step
	}
	return out
}
