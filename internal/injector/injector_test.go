package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/rollingball/internal/config"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Control = config.ControlNone

	a, err := InitializeApp(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.False(t, a.Controller().Ready())
}

func TestInitializeApp_BadOverlayColor(t *testing.T) {
	cfg := config.Default()
	cfg.Control = config.ControlNone
	cfg.Preview.Color = "green"

	_, err := InitializeApp(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
