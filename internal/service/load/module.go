package load

import "go.uber.org/fx"

// Module provides the planning engine, commit coordinator and load service to Fx.
var Module = fx.Provide(
	NewEngine,
	NewCoordinatorFromConfig,
	NewService,
)
