// Package logging builds the zap logger shared by every component.
//
// Output is JSON on stderr so stdout stays free for the stdio control
// server, or a file when the terminal console owns the screen. The level
// comes from configuration and can be overridden with the
// ROLLINGBALL_LOG_LEVEL environment variable.
package logging

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable that overrides the configured level.
const EnvLevel = "ROLLINGBALL_LOG_LEVEL"

// ParseLevel maps a level name to a zap level. Unknown names fall back to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// Stderr is the default log output.
const Stderr = "stderr"

// New builds a production JSON logger at the given level writing to output,
// a file path or Stderr. An empty output means Stderr. A non-empty
// ROLLINGBALL_LOG_LEVEL wins over level.
func New(level, output string) (*zap.Logger, error) {
	if output == "" {
		output = Stderr
	}
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}
	return logger, nil
}
