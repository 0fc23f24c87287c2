package app

import (
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/capture"
	"github.com/ironsheep/rollingball/internal/config"
	"github.com/ironsheep/rollingball/internal/console"
	"github.com/ironsheep/rollingball/internal/controller"
	"github.com/ironsheep/rollingball/internal/detection"
	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/gravity"
	"github.com/ironsheep/rollingball/internal/imaging"
	"github.com/ironsheep/rollingball/internal/orientation"
	"github.com/ironsheep/rollingball/internal/physics"
	"github.com/ironsheep/rollingball/internal/preview"
	"github.com/ironsheep/rollingball/internal/server"
	"github.com/ironsheep/rollingball/internal/simulation"
)

// ProviderSet builds an App from a *config.Config and a *zap.Logger.
var ProviderSet = wire.NewSet(
	ProvideSource,
	ProvideOrientation,
	ProvidePreprocessor,
	ProvideDetector,
	ProvideWorld,
	ProvideSimulation,
	ProvideGravity,
	ProvideOverlay,
	ProvideController,
	ProvideSurface,
	New,
)

// Orientation is the configured gravity-direction source. Tilt is set only
// for the adjustable source.
type Orientation struct {
	Source orientation.Source
	Tilt   *orientation.Tilt
}

// Close disables the source.
func (o Orientation) Close() error {
	if c, ok := o.Source.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ProvideSource builds the configured capture backend.
func ProvideSource(cfg *config.Config, logger *zap.Logger) capture.Source {
	log := logger.Named("capture")
	if cfg.Capture.Backend == config.BackendVideo {
		return capture.NewVideoSource(log, cfg.Devices)
	}
	return capture.NewReplaySource(log, cfg.Devices, capture.WithWarmup(cfg.Capture.WarmupTicks))
}

// ProvideOrientation builds the configured orientation source.
func ProvideOrientation(cfg *config.Config) Orientation {
	switch cfg.Orientation.Source {
	case config.OrientationStatic:
		v := cfg.Orientation.Vector
		return Orientation{Source: orientation.NewStatic(r3.Vec{X: v[0], Y: v[1], Z: v[2]})}
	case config.OrientationTilt:
		t := orientation.NewTilt(orientation.Pose{Roll: cfg.Orientation.Roll, Pitch: cfg.Orientation.Pitch})
		return Orientation{Source: t, Tilt: t}
	default:
		return Orientation{Source: orientation.Unavailable{}}
	}
}

// ProvidePreprocessor builds the frame preprocessor.
func ProvidePreprocessor(cfg *config.Config) *imaging.Preprocessor {
	return imaging.NewPreprocessor(cfg.Detection.CannyLow, cfg.Detection.CannyHigh)
}

// ProvideDetector builds a detector on the compiled-in backend.
func ProvideDetector(cfg *config.Config) *detection.Detector {
	return detection.NewDetector(detection.NewBackend(), cfg.Detection.Circles, cfg.Detection.Lines)
}

// ProvideWorld builds the reference physics world.
func ProvideWorld(logger *zap.Logger) *physics.World {
	return physics.NewWorld(logger.Named("physics"))
}

// ProvideSimulation builds the simulation controller on the world.
func ProvideSimulation(world *physics.World, logger *zap.Logger) *simulation.Controller {
	return simulation.NewController(world, logger.Named("simulation"))
}

// ProvideGravity builds the gravity mapper feeding the world.
func ProvideGravity(cfg *config.Config, orient Orientation, world *physics.World) *gravity.Mapper {
	return gravity.NewMapper(orient.Source, world, cfg.Gravity.DeviceMagnitude, cfg.Gravity.Scale)
}

// ProvideOverlay builds the preview renderer.
func ProvideOverlay(cfg *config.Config, logger *zap.Logger) (*preview.Overlay, error) {
	return preview.NewOverlay(logger.Named("preview"), preview.Options{
		Width:        cfg.Screen.Width,
		Height:       cfg.Screen.Height,
		Color:        cfg.Preview.Color,
		SnapshotPath: cfg.Preview.SnapshotPath,
		Interval:     cfg.Preview.SnapshotInterval,
	})
}

func lens(cfg *config.Config) geometry.Lens {
	return geometry.Lens{
		Projection:  geometry.ParseProjection(cfg.Camera.Projection),
		FieldOfView: cfg.Camera.FieldOfView,
	}
}

func tickInterval(cfg *config.Config) time.Duration {
	return time.Second / time.Duration(cfg.TickRate)
}

// ProvideController assembles the detection controller.
func ProvideController(
	cfg *config.Config,
	logger *zap.Logger,
	source capture.Source,
	pre *imaging.Preprocessor,
	detector *detection.Detector,
	sim *simulation.Controller,
	grav *gravity.Mapper,
	overlay *preview.Overlay,
	world *physics.World,
) *controller.Controller {
	return controller.New(logger.Named("controller"), controller.Deps{
		Source:       source,
		Preprocessor: pre,
		Detector:     detector,
		Simulator:    sim,
		Gravity:      grav,
		Renderer:     overlay,
		Stepper:      world,
	}, controller.Options{
		ScreenWidth:  cfg.Screen.Width,
		ScreenHeight: cfg.Screen.Height,
		Lens:         lens(cfg),
		TickInterval: tickInterval(cfg),
	})
}

// ProvideSurface builds the configured control surface, or nil for none.
func ProvideSurface(cfg *config.Config, logger *zap.Logger, ctrl *controller.Controller, orient Orientation) (Surface, error) {
	switch cfg.Control {
	case config.ControlConsole:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, errors.Wrap(err, "open terminal")
		}
		var tilt console.Tilter
		if orient.Tilt != nil {
			tilt = orient.Tilt
		}
		return console.New(logger.Named("console"), screen, ctrl, tilt), nil
	case config.ControlStdio:
		srv := server.New(logger.Named("server"), ctrl,
			ProvidePreprocessor(cfg),
			ProvideDetector(cfg),
			server.Options{
				ScreenWidth:  cfg.Screen.Width,
				ScreenHeight: cfg.Screen.Height,
				Lens:         lens(cfg),
				Version:      Version,
			})
		return &stdioSurface{server: srv, in: os.Stdin, out: os.Stdout}, nil
	default:
		return nil, nil
	}
}
