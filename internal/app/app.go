// Package app runs the tick loop next to the control surface.
package app

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/rollingball/internal/capture"
	"github.com/ironsheep/rollingball/internal/config"
	"github.com/ironsheep/rollingball/internal/console"
	"github.com/ironsheep/rollingball/internal/controller"
	"github.com/ironsheep/rollingball/internal/server"
)

// Version is reported by the control server. The binary overrides it.
var Version = "dev"

// ErrQuit ends the run loop without an error.
var ErrQuit = console.ErrQuit

// Surface is a control surface running until ctx is done. Returning ErrQuit
// stops the application.
type Surface interface {
	Run(ctx context.Context) error
}

// stdioSurface serves the control protocol on the process streams. The
// application quits when the input closes.
type stdioSurface struct {
	server *server.Server
	in     io.Reader
	out    io.Writer
}

func (s *stdioSurface) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, s.in, s.out); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return ErrQuit
}

// App owns the long-lived components.
type App struct {
	logger      *zap.Logger
	cfg         *config.Config
	source      capture.Source
	orientation Orientation
	controller  *controller.Controller
	surface     Surface
}

// New assembles an App. surface may be nil.
func New(cfg *config.Config, logger *zap.Logger, source capture.Source, orient Orientation, ctrl *controller.Controller, surface Surface) *App {
	return &App{
		logger:      logger,
		cfg:         cfg,
		source:      source,
		orientation: orient,
		controller:  ctrl,
		surface:     surface,
	}
}

// Controller returns the detection controller.
func (a *App) Controller() *controller.Controller { return a.controller }

// Run starts capture and ticks until ctx is done or the surface quits. A
// capture device failure is returned before any tick runs.
func (a *App) Run(ctx context.Context) error {
	if err := a.source.Begin(a.cfg.Preferences()); err != nil {
		return errors.Wrap(err, "begin capture")
	}
	defer a.shutdown()

	a.logger.Info("running",
		zap.Int("tick_rate", a.cfg.TickRate),
		zap.String("control", a.cfg.Control),
		zap.String("capture", a.cfg.Capture.Backend))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.tickLoop(gctx)
	})
	if a.surface != nil {
		g.Go(func() error {
			return a.surface.Run(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, ErrQuit) {
		a.logger.Info("quit requested")
		return nil
	}
	return err
}

func (a *App) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval(a.cfg))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.controller.Tick()
		}
	}
}

func (a *App) shutdown() {
	if err := a.source.Close(); err != nil {
		a.logger.Warn("closing capture source", zap.Error(err))
	}
	if err := a.orientation.Close(); err != nil {
		a.logger.Warn("closing orientation source", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}
