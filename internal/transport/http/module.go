package http

import (
	"go.uber.org/fx"

	loadtransport "github.com/Additional-Code/loadplanner/internal/transport/http/load"
	ordertransport "github.com/Additional-Code/loadplanner/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	loadtransport.Module,
	ordertransport.Module,
)
