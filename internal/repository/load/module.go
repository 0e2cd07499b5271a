package load

import "go.uber.org/fx"

// Module provides the load repository to Fx.
var Module = fx.Provide(NewRepository)
