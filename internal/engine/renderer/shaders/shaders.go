// Package shaders embeds the GLSL sources of the renderer.
package shaders

import _ "embed"

// Lit meshes: hemisphere light plus one point light.
var (
	//go:embed lit.vert
	LitVertexShader string
	//go:embed lit.frag
	LitFragmentShader string
)

// Colored line segments (grid and bounding boxes).
var (
	//go:embed line.vert
	LineVertexShader string
	//go:embed line.frag
	LineFragmentShader string
)

// Unlit solid color meshes (light marker).
var (
	//go:embed basic.vert
	BasicVertexShader string
	//go:embed basic.frag
	BasicFragmentShader string
)
