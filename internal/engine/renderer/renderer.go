// Package renderer draws a scene with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/armviewer/internal/engine/debug"
	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/internal/engine/renderer/shaders"
	"github.com/Faultbox/armviewer/internal/engine/shader"
	"github.com/Faultbox/armviewer/internal/logger"
	"github.com/Faultbox/armviewer/internal/scene"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor scene.Color
}

// Renderer handles all OpenGL rendering.
// IMPORTANT: every method must run on the thread owning the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	lit   *shader.Program
	line  *shader.Program
	basic *shader.Program

	// Meshes uploaded for the current scene version
	meshes  map[*model.Mesh]*gpuMesh
	version int

	grid   *gpuLines
	bounds *gpuLines
}

type gpuMesh struct {
	vao, vbo  uint32
	count     int32
	triangles int
}

type gpuLines struct {
	vao, vbo uint32
	count    int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		meshes: make(map[*model.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	c := cfg.ClearColor
	gl.ClearColor(c.R, c.G, c.B, 1.0)

	var err error
	if r.lit, err = shader.NewProgram("lit", shaders.LitVertexShader, shaders.LitFragmentShader); err != nil {
		return nil, err
	}
	if r.line, err = shader.NewProgram("line", shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.basic, err = shader.NewProgram("basic", shaders.BasicVertexShader, shaders.BasicFragmentShader); err != nil {
		r.Close()
		return nil, err
	}

	r.bounds = newLines()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.releaseMeshes()
	for _, l := range []*gpuLines{r.grid, r.bounds} {
		if l != nil {
			l.delete()
		}
	}
	r.grid, r.bounds = nil, nil
	for _, p := range []*shader.Program{r.lit, r.line, r.basic} {
		if p != nil {
			p.Delete()
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Render draws one frame of s.
func (r *Renderer) Render(s *scene.Scene, f scene.Frame) scene.RenderStats {
	var stats scene.RenderStats

	if s.Version != r.version {
		r.releaseMeshes()
		r.version = s.Version
	}
	if r.grid == nil {
		r.grid = newLines()
		r.grid.upload(s.Grid, gl.STATIC_DRAW)
	}

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	viewProj := f.Projection.Mul(f.View)

	// Grid
	r.line.Use()
	r.line.SetMat4("uViewProj", viewProj)
	r.grid.draw()
	stats.DrawCalls++

	// Model
	r.lit.Use()
	r.lit.SetVec3("uColor", s.ModelColor().Array())
	r.lit.SetVec3("uSkyColor", s.Hemisphere.Sky.Array())
	r.lit.SetVec3("uGroundColor", s.Hemisphere.Ground.Array())
	r.lit.SetFloat("uHemiIntensity", s.Hemisphere.Intensity)
	r.lit.SetVec3("uPointPosition", s.Point.Position.Array())
	r.lit.SetVec3("uPointColor", s.Point.Color.Array())
	r.lit.SetFloat("uPointIntensity", s.Point.Intensity)
	for _, it := range f.Items {
		m := r.mesh(it.Mesh)
		r.lit.SetMat4("uMVP", viewProj.Mul(it.World))
		r.lit.SetMat4("uModel", it.World)
		m.draw()
		stats.DrawCalls++
		stats.Triangles += m.triangles
	}

	// Light marker
	if s.Marker != nil {
		m := r.mesh(s.Marker)
		r.basic.Use()
		r.basic.SetMat4("uMVP", viewProj.Mul(s.MarkerWorld()))
		r.basic.SetVec3("uColor", s.Point.Color.Array())
		m.draw()
		stats.DrawCalls++
		stats.Triangles += m.triangles
	}

	if lines := boundsLines(f); len(lines) > 0 {
		r.bounds.upload(lines, gl.DYNAMIC_DRAW)
		r.line.Use()
		r.line.SetMat4("uViewProj", viewProj)
		r.bounds.draw()
		stats.DrawCalls++
	}

	return stats
}

// ReadPixels reads the last presented frame (the front buffer) as RGBA rows,
// bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.ReadBuffer(gl.FRONT)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.ReadBuffer(gl.BACK)
	return pixels, w, h
}

var (
	boundsColor   = scene.Color{R: 1, G: 1, B: 0}
	selectedColor = scene.Color{R: 0, G: 1, B: 1}
)

func boundsLines(f scene.Frame) []scene.LineVertex {
	var out []scene.LineVertex
	for _, it := range f.Items {
		c := boundsColor
		switch {
		case it.Mesh == nil:
			continue
		case f.Selected != "" && it.Node == f.Selected:
			c = selectedColor
		case !f.ShowBounds:
			continue
		}
		for _, p := range debug.BoundsWireframe(it.Mesh.Bounds, it.World) {
			out = append(out, scene.LineVertex{Position: p.Array(), Color: c.Array()})
		}
	}
	return out
}

// mesh returns the GPU copy of m, uploading it on first use.
func (r *Renderer) mesh(m *model.Mesh) *gpuMesh {
	if g, ok := r.meshes[m]; ok {
		return g
	}
	g := uploadMesh(m)
	r.meshes[m] = g
	r.log.Debug("mesh uploaded", zap.Int("triangles", g.triangles))
	return g
}

func (r *Renderer) releaseMeshes() {
	for k, g := range r.meshes {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		delete(r.meshes, k)
	}
}

func uploadMesh(m *model.Mesh) *gpuMesh {
	g := &gpuMesh{count: int32(len(m.Vertices)), triangles: m.TriangleCount()}
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	if len(m.Vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)
	}

	// Position
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	// Normal
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)

	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) draw() {
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, g.count)
	gl.BindVertexArray(0)
}

func newLines() *gpuLines {
	l := &gpuLines{}
	gl.GenVertexArrays(1, &l.vao)
	gl.GenBuffers(1, &l.vbo)

	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	vertexSize := int32(unsafe.Sizeof(scene.LineVertex{}))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexSize, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexSize, 3*4)
	gl.BindVertexArray(0)
	return l
}

func (l *gpuLines) upload(vs []scene.LineVertex, usage uint32) {
	l.count = int32(len(vs))
	if len(vs) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	size := len(vs) * int(unsafe.Sizeof(scene.LineVertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&vs[0]), usage)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (l *gpuLines) draw() {
	if l.count == 0 {
		return
	}
	gl.BindVertexArray(l.vao)
	gl.DrawArrays(gl.LINES, 0, l.count)
	gl.BindVertexArray(0)
}

func (l *gpuLines) delete() {
	gl.DeleteVertexArrays(1, &l.vao)
	gl.DeleteBuffers(1, &l.vbo)
}
