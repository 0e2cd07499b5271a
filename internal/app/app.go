package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/jobs"
	"github.com/Additional-Code/loadplanner/internal/logger"
	"github.com/Additional-Code/loadplanner/internal/messaging"
	"github.com/Additional-Code/loadplanner/internal/observability"
	"github.com/Additional-Code/loadplanner/internal/oracle"
	repositoryload "github.com/Additional-Code/loadplanner/internal/repository/load"
	repositoryorder "github.com/Additional-Code/loadplanner/internal/repository/order"
	grpcserver "github.com/Additional-Code/loadplanner/internal/server/grpc"
	httpserver "github.com/Additional-Code/loadplanner/internal/server/http"
	serviceload "github.com/Additional-Code/loadplanner/internal/service/load"
	serviceorder "github.com/Additional-Code/loadplanner/internal/service/order"
	transporthttp "github.com/Additional-Code/loadplanner/internal/transport/http"
	"github.com/Additional-Code/loadplanner/internal/worker"
	workerload "github.com/Additional-Code/loadplanner/internal/worker/load"
	workerorder "github.com/Additional-Code/loadplanner/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositoryload.Module,
	serviceorder.Module,
)

// Planner adds the planning engine, oracle and commit coordinator.
var Planner = fx.Options(
	Core,
	oracle.Module,
	serviceload.Module,
)

// HTTP wires the HTTP and gRPC servers on top of the planner.
var HTTP = fx.Options(
	Planner,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background event processing and the optimization schedule.
var Worker = fx.Options(
	Planner,
	worker.Module,
	workerorder.Module,
	workerload.Module,
	jobs.Module,
)

// Module is the default application wiring.
var Module = HTTP
