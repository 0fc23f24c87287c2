//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/ironsheep/rollingball/internal/app"
	"github.com/ironsheep/rollingball/internal/config"
)

// InitializeApp builds the application graph from its configuration.
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*app.App, error) {
	wire.Build(app.ProviderSet)
	return nil, nil
}
