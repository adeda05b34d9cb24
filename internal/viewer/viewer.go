// Package viewer wires the model, joint table, camera, scene and renderer
// into one context object and advances it frame by frame.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/armviewer/internal/animator"
	"github.com/Faultbox/armviewer/internal/config"
	"github.com/Faultbox/armviewer/internal/engine/camera"
	"github.com/Faultbox/armviewer/internal/engine/debug"
	"github.com/Faultbox/armviewer/internal/engine/picking"
	"github.com/Faultbox/armviewer/internal/kinematics"
	"github.com/Faultbox/armviewer/internal/scene"
	"github.com/Faultbox/armviewer/internal/schedule"
	"github.com/Faultbox/armviewer/internal/tween"
	"github.com/Faultbox/armviewer/pkg/collada"
	"github.com/Faultbox/armviewer/pkg/math"
)

// Bootstrap errors.
var (
	// ErrMount means there is no surface to draw on. It is a configuration
	// error and nothing else is constructed.
	ErrMount = errors.New("no surface to mount the viewer on")
	// ErrAssetLoad means the model could not be read or understood.
	ErrAssetLoad = errors.New("loading model failed")
	// ErrRenderContext means the renderer could not be created.
	ErrRenderContext = errors.New("creating render context failed")
)

// Surface is the drawable the viewer presents frames to.
type Surface interface {
	Size() (width, height int)
	Present()
}

// Renderer draws a scene.
type Renderer interface {
	Render(s *scene.Scene, f scene.Frame) scene.RenderStats
	Resize(width, height int)
	Close()
}

// RendererFactory creates a renderer for a surface of the given size.
type RendererFactory func(width, height int) (Renderer, error)

// ModelLoader returns the bytes of a COLLADA document. An empty path selects
// the built-in model.
type ModelLoader interface {
	Load(path string) ([]byte, error)
}

// Options are the collaborators of a viewer.
type Options struct {
	Surface     Surface
	Config      *config.Config
	Models      ModelLoader
	NewRenderer RendererFactory

	// Clock drives animation timers. Nil uses the system clock.
	Clock  schedule.Clock
	Logger *zap.Logger
}

// Viewer is the explicit context of a running viewer.
type Viewer struct {
	cfg     *config.Config
	surface Surface
	log     *zap.Logger

	doc    *collada.Document
	table  *kinematics.Table
	camera *camera.OrbitCamera
	scene  *scene.Scene

	renderer Renderer
	width    int
	height   int

	tweens  *tween.Group
	sched   *schedule.Scheduler
	anim    *animator.Animator
	handle  *animator.Handle
	animCfg animator.Config

	stats      *debug.FrameStats
	showBounds bool
	selected   string // node picked with the mouse, "" when none
	closed     bool
}

// Bootstrap builds a viewer: surface check, model, joint table, camera,
// scene, renderer, timers and finally the animation chain.
func Bootstrap(opts Options) (*Viewer, error) {
	if opts.Surface == nil {
		return nil, ErrMount
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	v := &Viewer{
		cfg:     cfg,
		surface: opts.Surface,
		log:     log,
		stats:   debug.NewFrameStats(),
	}
	v.stats.Enabled = cfg.Debug.ShowStats

	doc, err := loadModel(opts.Models, cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	table, err := kinematics.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	v.doc, v.table = doc, table

	v.width, v.height = opts.Surface.Size()
	v.camera = NewCamera(cfg.Camera)
	v.camera.SetAspect(v.width, v.height)

	sceneOpts, err := scene.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("scene options: %w", err)
	}
	if v.scene, err = scene.New(doc, sceneOpts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	for _, b := range v.scene.Model().Unbound() {
		log.Warn("joint binding not resolved",
			zap.String("joint", b.Joint),
			zap.String("node", b.Node),
			zap.String("transform", b.TransformSID),
		)
	}

	if opts.NewRenderer == nil {
		return nil, fmt.Errorf("%w: no renderer factory", ErrRenderContext)
	}
	if v.renderer, err = opts.NewRenderer(v.width, v.height); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderContext, err)
	}

	easing, err := tween.ByName(cfg.Animation.Easing)
	if err != nil {
		v.renderer.Close()
		return nil, fmt.Errorf("animation easing: %w", err)
	}
	v.animCfg = animator.Config{
		MinDuration: cfg.Animation.MinDuration,
		MaxDuration: cfg.Animation.MaxDuration,
		Easing:      easing,
	}
	v.tweens = tween.NewGroup()
	v.sched = schedule.New(opts.Clock)
	v.newAnimator()
	if cfg.Animation.Enabled {
		v.handle = v.anim.Start()
	}

	log.Info("viewer ready",
		zap.String("model", modelName(cfg.Model.Path)),
		zap.Int("joints", table.Len()),
		zap.Int("movable", len(table.Movable())),
		zap.Int("width", v.width),
		zap.Int("height", v.height),
	)
	return v, nil
}

func loadModel(models ModelLoader, path string) (*collada.Document, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: no model loader", ErrAssetLoad)
	}
	data, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	doc, err := collada.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetLoad, modelName(path), err)
	}
	return doc, nil
}

func modelName(path string) string {
	if path == "" {
		return "built-in sample arm"
	}
	return path
}

func (v *Viewer) newAnimator() {
	v.anim = animator.New(v.animCfg, v.table, v.tweens, v.sched,
		animator.NewRand(v.cfg.Animation.Seed), v.log.Named("animator"))
}

// NewCamera creates an orbit camera from configuration.
func NewCamera(cfg config.CameraConfig) *camera.OrbitCamera {
	c := camera.NewOrbitCamera()
	c.FOV, c.Near, c.Far = cfg.FOV, cfg.Near, cfg.Far
	c.MinDistance, c.MaxDistance = cfg.MinDistance, cfg.MaxDistance
	c.Damping = cfg.Damping
	c.DampingFactor = cfg.DampingFactor
	c.SetMaxPolarAngle(float32(math.DegToRad(float64(cfg.MaxPolarAngle))))
	c.LookFrom(vec(cfg.Position), vec(cfg.Target))
	return c
}

func vec(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// Frame advances the viewer to now and draws once: statistics, camera
// damping, due timers, tweens, light marker, pose, render, present.
func (v *Viewer) Frame(now time.Time) {
	if v.closed {
		return
	}
	v.stats.Tick(now)
	v.camera.Update()
	v.sched.RunDue()
	v.tweens.Update(now)
	v.scene.Advance(float64(now.UnixNano()) / float64(time.Millisecond))

	rs := v.renderer.Render(v.scene, scene.Frame{
		View:       v.camera.ViewMatrix(),
		Projection: v.camera.ProjectionMatrix(),
		Eye:        v.camera.Position(),
		Items:      v.scene.Pose(v.table),
		ShowBounds: v.showBounds,
		Selected:   v.selected,
	})
	v.stats.DrawCalls = rs.DrawCalls
	v.stats.Triangles = rs.Triangles

	v.surface.Present()
}

// Resize adapts the projection aspect and the renderer viewport to a new
// surface size. Non-positive sizes are ignored.
func (v *Viewer) Resize(width, height int) {
	if v.closed || width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.camera.SetAspect(width, height)
	v.renderer.Resize(width, height)
	v.log.Debug("viewer resized", zap.Int("width", width), zap.Int("height", height))
}

// ReplaceModel swaps in a new document, rebuilding the joint table and
// restarting the animation chain. On error the current model stays.
func (v *Viewer) ReplaceModel(doc *collada.Document) error {
	if v.closed {
		return errors.New("viewer closed")
	}
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrAssetLoad)
	}
	table, err := kinematics.FromDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	if err := v.scene.SetModel(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}

	animating := v.Animating()
	v.stopAnimation()
	v.doc, v.table = doc, table
	v.selected = ""
	v.newAnimator()
	if animating {
		v.handle = v.anim.Start()
	}
	v.log.Info("model replaced", zap.Int("joints", table.Len()), zap.Int("version", v.scene.Version))
	return nil
}

// Animating reports whether the animation chain is running.
func (v *Viewer) Animating() bool {
	return v.handle != nil && !v.handle.Stopped()
}

// SetAnimating starts or stops the animation chain. Stopping freezes joints
// where they are.
func (v *Viewer) SetAnimating(on bool) {
	if v.closed || on == v.Animating() {
		return
	}
	if on {
		v.handle = v.anim.Start()
		return
	}
	v.stopAnimation()
}

func (v *Viewer) stopAnimation() {
	if v.handle != nil {
		v.handle.Stop()
	}
	v.tweens.RemoveAll()
}

// Reset returns joints to their zero positions and the camera to its
// configured placement. A running animation restarts from the zero pose.
func (v *Viewer) Reset() {
	if v.closed {
		return
	}
	animating := v.Animating()
	v.stopAnimation()
	v.table.Reset()
	v.camera.LookFrom(vec(v.cfg.Camera.Position), vec(v.cfg.Camera.Target))
	if animating {
		v.handle = v.anim.Start()
	}
}

// ToggleBounds switches bounding box drawing and returns the new state.
func (v *Viewer) ToggleBounds() bool {
	v.showBounds = !v.showBounds
	return v.showBounds
}

// Close stops the animation chain, drops tweens and timers, and releases the
// renderer. Safe to call more than once.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.stopAnimation()
	v.sched.Clear()
	v.renderer.Close()
	v.log.Info("viewer closed", zap.Int("frames", v.stats.Frames()), zap.Int("cycles", v.anim.Cycles()))
}

// Pick selects the model part under the surface pixel (x, y), origin top
// left. A miss clears the selection.
func (v *Viewer) Pick(x, y int) (string, bool) {
	if v.closed || v.width <= 0 || v.height <= 0 {
		return "", false
	}
	inv, ok := v.camera.ProjectionMatrix().Mul(v.camera.ViewMatrix()).Inverse()
	if !ok {
		return "", false
	}
	ray := picking.ScreenToRay(float32(x)+0.5, float32(y)+0.5, float32(v.width), float32(v.height), inv)
	hit, ok := picking.Pick(ray, v.scene.Pose(v.table))
	if !ok {
		v.selected = ""
		return "", false
	}
	v.selected = hit.Node
	v.log.Debug("picked", zap.String("node", hit.Node), zap.Float32("distance", hit.Distance))
	return hit.Node, true
}

// Selected returns the picked node id, or "" when nothing is selected.
func (v *Viewer) Selected() string {
	return v.selected
}

// Title returns the window title with frame statistics.
func (v *Viewer) Title() string {
	base := v.cfg.Window.Title
	if v.selected != "" {
		base += " [" + v.selected + "]"
	}
	return v.stats.Title(base)
}

// Size returns the current surface size.
func (v *Viewer) Size() (int, int) {
	return v.width, v.height
}

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.OrbitCamera {
	return v.camera
}

// Table returns the joint table of the current model.
func (v *Viewer) Table() *kinematics.Table {
	return v.table
}

// Scene returns the scene.
func (v *Viewer) Scene() *scene.Scene {
	return v.scene
}

// Document returns the current model document.
func (v *Viewer) Document() *collada.Document {
	return v.doc
}

// Stats returns the frame statistics.
func (v *Viewer) Stats() *debug.FrameStats {
	return v.stats
}

// Animator returns the animator of the current model.
func (v *Viewer) Animator() *animator.Animator {
	return v.anim
}
