// Package app runs the viewer in an SDL2 window: it owns the window, input
// and model watcher, and drives one viewer frame per loop iteration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/armviewer/internal/assets"
	"github.com/Faultbox/armviewer/internal/config"
	"github.com/Faultbox/armviewer/internal/engine/debug"
	"github.com/Faultbox/armviewer/internal/engine/input"
	"github.com/Faultbox/armviewer/internal/engine/renderer"
	"github.com/Faultbox/armviewer/internal/engine/window"
	"github.com/Faultbox/armviewer/internal/logger"
	"github.com/Faultbox/armviewer/internal/scene"
	"github.com/Faultbox/armviewer/internal/viewer"
	"github.com/Faultbox/armviewer/pkg/collada"
)

// titleInterval throttles window title updates.
const titleInterval = 500 * time.Millisecond

// App is the desktop viewer.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	models   *assets.Manager
	watcher  *assets.Watcher
	viewer   *viewer.Viewer
	shots    *debug.ScreenshotCapture

	running bool
}

// New opens the window and bootstraps the viewer.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logger.Named("app"),
		input:  input.New(),
		models: assets.NewManager(),
		shots:  debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "armviewer"),
	}

	// Window first: it creates the OpenGL context
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", viewer.ErrMount, err)
	}

	a.viewer, err = viewer.Bootstrap(viewer.Options{
		Surface:     a.window,
		Config:      cfg,
		Models:      a.models,
		NewRenderer: a.newRenderer,
		Logger:      logger.Named("viewer"),
	})
	if err != nil {
		a.window.Close()
		return nil, err
	}

	if cfg.Model.Watch && cfg.Model.Path != "" {
		a.watcher, err = assets.NewWatcher(ctx, cfg.Model.Path, assets.DefaultDebounce, logger.Named("watcher"))
		if err != nil {
			// Viewing still works without hot reload
			a.log.Warn("model watch disabled", zap.Error(err))
		}
	}

	return a, nil
}

func (a *App) newRenderer(width, height int) (viewer.Renderer, error) {
	r, err := renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: scene.Color{R: 0.02, G: 0.02, B: 0.04},
	})
	if err != nil {
		return nil, err
	}
	a.renderer = r
	return r, nil
}

// Run drives frames until the window closes, Escape is pressed or ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.running = true
	lastTitle := time.Time{}

	a.log.Info("starting render loop")
	for a.running {
		if ctx.Err() != nil {
			a.log.Info("shutdown requested")
			break
		}

		if a.input.Update() {
			break
		}
		for _, ev := range a.input.Events() {
			a.handleEvent(ev)
		}
		a.panHeld()
		a.pollWatcher()

		now := time.Now()
		a.viewer.Frame(now)

		if a.input.IsKeyPressed(input.KeyF12) {
			a.screenshot()
		}
		if a.cfg.Debug.ShowStats && now.Sub(lastTitle) >= titleInterval {
			a.window.SetTitle(a.viewer.Title())
			lastTitle = now
		}
	}
	return nil
}

// toPixels maps window points to drawable pixels.
func (a *App) toPixels(x, y int) (int, int) {
	lw, lh := a.window.LogicalSize()
	dw, dh := a.viewer.Size()
	if lw <= 0 || lh <= 0 {
		return x, y
	}
	return x * dw / lw, y * dh / lh
}

func (a *App) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		// The event carries window units; the drawable may be larger on high-DPI screens
		w, h := a.window.Size()
		a.viewer.Resize(w, h)

	case input.EventMouseDrag:
		a.viewer.Camera().Rotate(ev.DeltaX, ev.DeltaY)

	case input.EventMouseWheel:
		a.viewer.Camera().Zoom(ev.DeltaY)

	case input.EventMouseClick:
		x, y := a.toPixels(ev.X, ev.Y)
		if node, ok := a.viewer.Pick(x, y); ok {
			a.log.Info("part selected", zap.String("node", node))
		}

	case input.EventKeyDown:
		switch ev.Key {
		case input.KeyEscape:
			a.running = false
		case input.KeySpace:
			a.viewer.SetAnimating(!a.viewer.Animating())
			a.log.Info("animation toggled", zap.Bool("running", a.viewer.Animating()))
		case input.KeyR:
			a.viewer.Reset()
		case input.KeyB:
			a.viewer.ToggleBounds()
		}
	}
}

// panHeld moves the camera target while arrow keys are held.
func (a *App) panHeld() {
	var right, forward float32
	if a.input.IsKeyHeld(input.KeyLeft) {
		right--
	}
	if a.input.IsKeyHeld(input.KeyRight) {
		right++
	}
	if a.input.IsKeyHeld(input.KeyUp) {
		forward++
	}
	if a.input.IsKeyHeld(input.KeyDown) {
		forward--
	}
	if right != 0 || forward != 0 {
		a.viewer.Camera().Pan(right, forward)
	}
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	select {
	case path, ok := <-a.watcher.Changes():
		if !ok {
			a.watcher = nil
			return
		}
		a.reload(path)
	default:
	}
}

func (a *App) reload(path string) {
	a.models.Invalidate(path)
	data, err := a.models.Load(path)
	if err != nil {
		a.log.Warn("model reload failed", zap.Error(err))
		return
	}
	doc, err := collada.Parse(data)
	if err != nil {
		a.log.Warn("model reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := a.viewer.ReplaceModel(doc); err != nil {
		a.log.Warn("model reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	a.log.Info("model reloaded", zap.String("path", path))
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	name, err := a.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases everything in reverse order of creation.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if a.viewer != nil {
		a.viewer.Close()
	}
	a.models.Close()
	if a.window != nil {
		a.window.Close()
	}
}
