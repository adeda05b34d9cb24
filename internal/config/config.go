// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Model     ModelConfig     `yaml:"model"`
	Animation AnimationConfig `yaml:"animation"`
	Camera    CameraConfig    `yaml:"camera"`
	Light     LightConfig     `yaml:"light"`
	Grid      GridConfig      `yaml:"grid"`
	Debug     DebugConfig     `yaml:"debug"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ModelConfig selects the COLLADA document to show.
type ModelConfig struct {
	Path        string  `yaml:"path"`  // Empty means the embedded sample arm
	Scale       float32 `yaml:"scale"` // Uniform scale applied to the model root
	Color       string  `yaml:"color"`
	FlatShading bool    `yaml:"flat_shading"`
	Watch       bool    `yaml:"watch"` // Reload when the file changes on disk
}

// AnimationConfig drives the joint animator.
type AnimationConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MinDuration time.Duration `yaml:"min_duration"`
	MaxDuration time.Duration `yaml:"max_duration"`
	Easing      string        `yaml:"easing"`
	Seed        uint64        `yaml:"seed"` // 0 picks a time-based seed
}

// CameraConfig holds the perspective and orbit control settings.
type CameraConfig struct {
	FOV           float32    `yaml:"fov"` // Vertical field of view in degrees
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Position      [3]float32 `yaml:"position"`
	Target        [3]float32 `yaml:"target"`
	Damping       bool       `yaml:"damping"`
	DampingFactor float32    `yaml:"damping_factor"`
	MinDistance   float32    `yaml:"min_distance"`
	MaxDistance   float32    `yaml:"max_distance"`
	MaxPolarAngle float32    `yaml:"max_polar_angle"` // Degrees from straight up
}

// LightConfig holds the hemisphere light and the orbiting point light marker.
type LightConfig struct {
	SkyColor       string  `yaml:"sky_color"`
	GroundColor    string  `yaml:"ground_color"`
	PointColor     string  `yaml:"point_color"`
	PointIntensity float32 `yaml:"point_intensity"`
	MarkerRadius   float32 `yaml:"marker_radius"`
	MarkerScaleXZ  float64 `yaml:"marker_scale_xz"`
	MarkerScaleY   float64 `yaml:"marker_scale_y"`
	TimeScale      float64 `yaml:"time_scale"` // Multiplies wall clock milliseconds
}

// GridConfig describes the ground grid.
type GridConfig struct {
	Size        float32 `yaml:"size"`
	Divisions   int     `yaml:"divisions"`
	CenterColor string  `yaml:"center_color"`
	LineColor   string  `yaml:"line_color"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	ShowStats     bool   `yaml:"show_stats"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Arm Viewer",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Model: ModelConfig{
			Path:        "",
			Scale:       10,
			Color:       "#c8c8c8",
			FlatShading: true,
		},
		Animation: AnimationConfig{
			Enabled:     true,
			MinDuration: 1000 * time.Millisecond,
			MaxDuration: 5000 * time.Millisecond,
			Easing:      "quadratic-out",
		},
		Camera: CameraConfig{
			FOV:           45,
			Near:          1,
			Far:           2000,
			Position:      [3]float32{20, 10, 20},
			Target:        [3]float32{0, 5, 0},
			Damping:       true,
			DampingFactor: 0.05,
			MinDistance:   10,
			MaxDistance:   500,
			MaxPolarAngle: 90,
		},
		Light: LightConfig{
			SkyColor:       "#ffeeee",
			GroundColor:    "#111122",
			PointColor:     "#ffffff",
			PointIntensity: 0.3,
			MarkerRadius:   4,
			MarkerScaleXZ:  3009,
			MarkerScaleY:   4000,
			TimeScale:      1e-4,
		},
		Grid: GridConfig{
			Size:        20,
			Divisions:   20,
			CenterColor: "#888888",
			LineColor:   "#444444",
		},
		Debug: DebugConfig{
			ShowStats:     true,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
