package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ironsheep/rollingball/internal/app"
	"github.com/ironsheep/rollingball/internal/config"
	"github.com/ironsheep/rollingball/internal/injector"
	"github.com/ironsheep/rollingball/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("rollingball %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("rollingball - detect circles and lines on camera frames and roll them in a physics scene")
			fmt.Println()
			fmt.Println("Usage: rollingball [options] [config.yaml]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug    Override the configured log level\n", logging.EnvLevel)
			fmt.Println()
			fmt.Printf("With the terminal console, logs go to %s unless log_file is set.\n", config.DefaultConsoleLogFile)
			fmt.Println()
			fmt.Println("Without a config file the replay backend reads frames from ./frames")
			fmt.Println("and the terminal console controls the simulation.")
			return
		default:
			configPath = os.Args[1]
		}
	}

	os.Exit(run(configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rollingball: %v\n", err)
		return 1
	}

	output := cfg.LogOutput()
	logger, err := logging.New(cfg.LogLevel, output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rollingball: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))
	app.Version = Version

	a, err := injector.InitializeApp(cfg, logger)
	if err != nil {
		logger.Error("initialization failed", zap.Error(err))
		if output != logging.Stderr {
			fmt.Fprintf(os.Stderr, "rollingball: %v (see %s)\n", err, output)
		}
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		if output != logging.Stderr {
			fmt.Fprintf(os.Stderr, "rollingball: %v (see %s)\n", err, output)
		}
		return 1
	}
	return 0
}
