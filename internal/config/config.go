// Package config loads the YAML configuration of the rollingball binary.
//
// Every field has a default matching the reference scene setup, so an empty
// or missing file yields a runnable configuration.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/rollingball/internal/capture"
	"github.com/ironsheep/rollingball/internal/detection"
)

// DefaultConsoleLogFile is the log destination while the terminal console
// owns the screen and no log_file is configured.
const DefaultConsoleLogFile = "rollingball.log"

// Control surfaces for the start/stop triggers.
const (
	ControlConsole = "console"
	ControlStdio   = "stdio"
	ControlNone    = "none"
)

// Capture backends.
const (
	BackendReplay = "replay"
	BackendVideo  = "video"
)

// Orientation sources.
const (
	OrientationStatic = "static"
	OrientationTilt   = "tilt"
	OrientationNone   = "none"
)

// Camera projections.
const (
	ProjectionOrthographic = "orthographic"
	ProjectionPerspective  = "perspective"
)

// Config is the root configuration document.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	// LogFile receives the logs instead of stderr.
	LogFile     string            `yaml:"log_file"`
	TickRate    int               `yaml:"tick_rate"`
	Control     string            `yaml:"control"`
	Capture     CaptureConfig     `yaml:"capture"`
	Screen      ScreenConfig      `yaml:"screen"`
	Camera      CameraConfig      `yaml:"camera"`
	Gravity     GravityConfig     `yaml:"gravity"`
	Orientation OrientationConfig `yaml:"orientation"`
	Detection   DetectionConfig   `yaml:"detection"`
	Preview     PreviewConfig     `yaml:"preview"`
	Devices     []capture.Device  `yaml:"devices"`
}

// CaptureConfig holds the preferences handed to the frame source.
type CaptureConfig struct {
	Backend     string `yaml:"backend"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	FPS         int    `yaml:"fps"`
	FrontFacing bool   `yaml:"front_facing"`
	// WarmupTicks delays readiness of the replay backend, mimicking a camera
	// that takes a while to deliver its first frame.
	WarmupTicks int `yaml:"warmup_ticks"`
}

// ScreenConfig is the display size in pixels (portrait).
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig selects how screen points are cast into the world.
type CameraConfig struct {
	Projection  string  `yaml:"projection"`
	FieldOfView float64 `yaml:"field_of_view"`
}

// GravityConfig scales the device gravity into simulation gravity.
type GravityConfig struct {
	DeviceMagnitude float64 `yaml:"device_magnitude"`
	Scale           float64 `yaml:"scale"`
}

// OrientationConfig selects the gravity-direction source.
type OrientationConfig struct {
	Source string     `yaml:"source"`
	Vector [3]float64 `yaml:"vector"`
	Roll   float64    `yaml:"roll"`
	Pitch  float64    `yaml:"pitch"`
}

// DetectionConfig holds the edge thresholds and detector parameters.
type DetectionConfig struct {
	CannyLow  float64                `yaml:"canny_low"`
	CannyHigh float64                `yaml:"canny_high"`
	Circles   detection.CircleParams `yaml:"circles"`
	Lines     detection.LineParams   `yaml:"lines"`
}

// PreviewConfig controls the overlay renderer.
type PreviewConfig struct {
	Color string `yaml:"color"`
	// SnapshotPath is where overlay PNGs are written; empty disables snapshots.
	SnapshotPath     string `yaml:"snapshot_path"`
	SnapshotInterval int    `yaml:"snapshot_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		TickRate: 30,
		Control:  ControlConsole,
		Capture: CaptureConfig{
			Backend:     BackendReplay,
			Width:       640,
			Height:      480,
			FPS:         15,
			FrontFacing: false,
		},
		Screen: ScreenConfig{Width: 1080, Height: 1920},
		Camera: CameraConfig{
			Projection:  ProjectionOrthographic,
			FieldOfView: 60,
		},
		Gravity: GravityConfig{DeviceMagnitude: 9.81, Scale: 8},
		Orientation: OrientationConfig{
			Source: OrientationStatic,
			Vector: [3]float64{0, -1, 0},
			Roll:   90,
		},
		Detection: DetectionConfig{
			CannyLow:  50,
			CannyHigh: 200,
			Circles:   detection.DefaultCircleParams(),
			Lines:     detection.DefaultLineParams(),
		},
		Preview: PreviewConfig{
			Color:            "#00FF00",
			SnapshotInterval: 30,
		},
		Devices: []capture.Device{
			{Name: "replay0", Index: 0, FrontFacing: false, Path: "frames"},
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses YAML from r over the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return errors.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return errors.Errorf("capture size must be positive, got %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Capture.FPS <= 0 {
		return errors.Errorf("capture fps must be positive, got %d", c.Capture.FPS)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return errors.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Gravity.DeviceMagnitude <= 0 {
		return errors.New("gravity device_magnitude must be positive")
	}
	if len(c.Devices) == 0 {
		return errors.New("at least one capture device must be listed")
	}
	if c.Detection.CannyLow < 0 || c.Detection.CannyHigh < c.Detection.CannyLow {
		return errors.Errorf("invalid canny thresholds %.1f/%.1f", c.Detection.CannyLow, c.Detection.CannyHigh)
	}

	switch c.Control {
	case ControlConsole, ControlStdio, ControlNone:
	default:
		return errors.Errorf("unknown control surface %q", c.Control)
	}
	switch c.Capture.Backend {
	case BackendReplay, BackendVideo:
	default:
		return errors.Errorf("unknown capture backend %q", c.Capture.Backend)
	}
	switch c.Orientation.Source {
	case OrientationStatic, OrientationTilt, OrientationNone:
	default:
		return errors.Errorf("unknown orientation source %q", c.Orientation.Source)
	}
	switch c.Camera.Projection {
	case ProjectionOrthographic:
	case ProjectionPerspective:
		if c.Camera.FieldOfView <= 0 || c.Camera.FieldOfView >= 180 {
			return errors.Errorf("field_of_view must be in (0, 180), got %.1f", c.Camera.FieldOfView)
		}
	default:
		return errors.Errorf("unknown camera projection %q", c.Camera.Projection)
	}
	return nil
}

// LogOutput returns where logs go: the configured file, DefaultConsoleLogFile
// under the console, otherwise stderr.
func (c *Config) LogOutput() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	if c.Control == ControlConsole {
		return DefaultConsoleLogFile
	}
	return "stderr"
}

// Preferences converts the capture section into frame source preferences.
func (c *Config) Preferences() capture.Preferences {
	return capture.Preferences{
		Width:       c.Capture.Width,
		Height:      c.Capture.Height,
		FPS:         c.Capture.FPS,
		FrontFacing: c.Capture.FrontFacing,
	}
}
