package load

import (
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/oracle"
)

// CapacityFromConfig maps planner settings onto the capacity model.
func CapacityFromConfig(cfg config.Planner) consolidation.Capacity {
	return consolidation.Capacity{
		MaxWeightLbs:      cfg.MaxWeightLbs,
		MaxVolumeCuft:     cfg.MaxVolumeCuft,
		TargetUtilization: cfg.TargetUtilization,
		MinUtilization:    cfg.MinUtilization,
		TransitBuffer:     cfg.TransitBuffer,
	}
}

// NewEngine builds the planning engine. The oracle path is enabled only when an adapter was built.
func NewEngine(cfg config.Config, adapter *oracle.Adapter, logger *zap.Logger) *consolidation.Engine {
	packer := consolidation.NewPacker(CapacityFromConfig(cfg.Planner), consolidation.ParseTruckType(cfg.Planner.TruckType))
	opts := []consolidation.EngineOption{consolidation.WithLogger(logger.Named("engine"))}
	if adapter != nil {
		opts = append(opts, consolidation.WithOracle(adapter, cfg.Oracle.MaxOrders))
	}
	return consolidation.NewEngine(packer, cfg.Planner.MaxDropFraction, opts...)
}

// NewCoordinatorFromConfig wires the commit coordinator onto the repositories and event bus.
func NewCoordinatorFromConfig(p CoordinatorParams) *Coordinator {
	var publisher Publisher
	if p.Config.Messaging.Enabled && p.Publisher != nil {
		publisher = p.Publisher
	}
	ids := NewIDGenerator(p.Cache, p.Config.Planner.LoadNumberPrefix, p.Logger)
	return NewCoordinator(p.Loads, p.Orders, ids, publisher, CommitOptions{
		Concurrency:      p.Config.Planner.CommitConcurrency,
		CommitInfeasible: p.Config.Planner.CommitInfeasible,
		Attempts:         p.Config.Planner.CommitAttempts,
		Backoff:          p.Config.Planner.CommitBackoff,
		TransitBuffer:    p.Config.Planner.TransitBuffer,
	}, p.Logger.Named("commit"))
}
