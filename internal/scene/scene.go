// Package scene holds the renderable state of the viewer: the ground grid,
// the articulated model, and the lights with their orbiting marker.
//
// Nothing here talks to the GPU. The renderer consumes a Scene each frame,
// which keeps posing and light motion testable without a window.
package scene

import (
	"fmt"

	"github.com/Faultbox/armviewer/internal/config"
	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/pkg/collada"
	"github.com/Faultbox/armviewer/pkg/math"
)

// Sphere tessellation of the light marker.
const (
	markerWidthSegments  = 8
	markerHeightSegments = 8
)

// Options configures a scene.
type Options struct {
	GridSize      float32
	GridDivisions int
	GridCenter    Color
	GridLine      Color

	Hemisphere   HemisphereLight
	PointColor   Color
	PointPower   float32
	MarkerRadius float32
	Path         LightPath

	ModelScale  float32
	ModelColor  Color
	FlatShading bool
}

// DefaultOptions mirrors the default configuration.
func DefaultOptions() Options {
	opts, err := OptionsFromConfig(config.Default())
	if err != nil {
		panic(err) // defaults are constant
	}
	return opts
}

// OptionsFromConfig converts configuration values, parsing every color.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	var opts Options
	colors := []struct {
		hex string
		dst *Color
	}{
		{cfg.Grid.CenterColor, &opts.GridCenter},
		{cfg.Grid.LineColor, &opts.GridLine},
		{cfg.Light.SkyColor, &opts.Hemisphere.Sky},
		{cfg.Light.GroundColor, &opts.Hemisphere.Ground},
		{cfg.Light.PointColor, &opts.PointColor},
		{cfg.Model.Color, &opts.ModelColor},
	}
	for _, c := range colors {
		parsed, err := ParseColor(c.hex)
		if err != nil {
			return Options{}, err
		}
		*c.dst = parsed
	}

	opts.GridSize = cfg.Grid.Size
	opts.GridDivisions = cfg.Grid.Divisions
	opts.Hemisphere.Intensity = 1
	opts.PointPower = cfg.Light.PointIntensity
	opts.MarkerRadius = cfg.Light.MarkerRadius
	opts.Path = LightPath{
		ScaleXZ:   cfg.Light.MarkerScaleXZ,
		ScaleY:    cfg.Light.MarkerScaleY,
		TimeScale: cfg.Light.TimeScale,
	}
	opts.ModelScale = cfg.Model.Scale
	opts.FlatShading = cfg.Model.FlatShading
	return opts, nil
}

// Scene is the set of objects drawn each frame.
type Scene struct {
	opts Options

	Grid       []LineVertex
	Marker     *model.Mesh
	Hemisphere HemisphereLight
	Point      PointLight

	model *Model

	// Version increments whenever the model is replaced so renderers can
	// re-upload meshes.
	Version int
}

// New builds a scene around doc.
func New(doc *collada.Document, opts Options) (*Scene, error) {
	s := &Scene{
		opts:       opts,
		Grid:       Grid(opts.GridSize, opts.GridDivisions, opts.GridCenter, opts.GridLine),
		Marker:     Sphere(opts.MarkerRadius, markerWidthSegments, markerHeightSegments),
		Hemisphere: opts.Hemisphere,
		Point: PointLight{
			Color:     opts.PointColor,
			Intensity: opts.PointPower,
		},
	}
	if err := s.SetModel(doc); err != nil {
		return nil, err
	}
	return s, nil
}

// SetModel replaces the articulated model.
func (s *Scene) SetModel(doc *collada.Document) error {
	m, err := NewModel(doc, s.opts.ModelScale, model.BuildOptions{Smooth: !s.opts.FlatShading})
	if err != nil {
		return fmt.Errorf("building model: %w", err)
	}
	s.model = m
	s.Version++
	return nil
}

// Model returns the current model.
func (s *Scene) Model() *Model {
	return s.model
}

// ModelColor returns the base color of the model material.
func (s *Scene) ModelColor() Color {
	return s.opts.ModelColor
}

// Advance moves the light marker (and the point light riding on it) to its
// position at the given wall clock time.
func (s *Scene) Advance(wallMillis float64) {
	s.Point.Position = s.opts.Path.Position(wallMillis)
}

// MarkerWorld returns the world matrix of the light marker.
func (s *Scene) MarkerWorld() math.Mat4 {
	p := s.Point.Position
	return math.Translate(p.X, p.Y, p.Z)
}

// Pose returns draw items for the model posed with values.
func (s *Scene) Pose(values JointValues) []DrawItem {
	return s.model.Pose(values)
}
