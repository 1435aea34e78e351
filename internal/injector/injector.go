//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/FaabB/auto-battle-1/internal/core/config"
	"github.com/FaabB/auto-battle-1/internal/core/observability/log"
	"github.com/FaabB/auto-battle-1/internal/core/systems/avoidance"
)

// ProvideLogger returns the process-wide logger.
func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return nil
}

// ProvideAvoidance builds an avoidance system from the given tuning.
func ProvideAvoidance(cfg config.Avoidance) *avoidance.System {
	wire.Build(log.Provide, avoidance.NewSystem)
	return nil
}
