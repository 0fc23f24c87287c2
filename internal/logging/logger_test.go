package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"DEBUG", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warning", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"bogus", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want.Level(), ParseLevel(tt.name))
		})
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv(EnvLevel, "debug")

	logger, err := New("error", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_ConfiguredLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")

	logger, err := New("warn", Stderr)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestNew_FileOutput(t *testing.T) {
	t.Setenv(EnvLevel, "")
	path := filepath.Join(t.TempDir(), "rollingball.log")

	logger, err := New("info", path)
	require.NoError(t, err)
	logger.Info("capture ready", zap.Int("capture_width", 640))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"capture ready"`)
	assert.Contains(t, string(data), `"capture_width":640`)
}
