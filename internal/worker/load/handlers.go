package load

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/messaging"
	loadsvc "github.com/Additional-Code/loadplanner/internal/service/load"
	"github.com/Additional-Code/loadplanner/internal/worker"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/loadplanner/worker/load")

// Module registers load planning worker handlers.
var Module = fx.Module("worker_load",
	fx.Provide(
		fx.Annotate(
			NewLoadCommittedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			func(svc *loadsvc.Service, logger *zap.Logger) worker.HandlerRegistration {
				return NewOptimizationRequestedHandler(svc, logger)
			},
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// Optimizer runs an optimization.
type Optimizer interface {
	Optimize(ctx context.Context, req loadsvc.OptimizeRequest) (*loadsvc.OptimizeResult, error)
}

// NewLoadCommittedHandler evicts cached copies of a committed load and its orders.
func NewLoadCommittedHandler(store cache.Store, logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.loads.committed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event loadsvc.LoadCommittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode load committed", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		keys := loadsvc.EvictionKeys(event.LoadID, event.OrderIDs)
		if err := store.Delete(ctx, keys[0], keys[1:]...); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cache eviction failed")
			return fmt.Errorf("evict load %s: %w", event.LoadID, err)
		}

		logger.Info("load committed event processed",
			zap.String("load_id", event.LoadID),
			zap.String("load_number", event.Number),
			zap.Int("orders", len(event.OrderIDs)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Event:   messaging.EventLoadCommitted,
		Handler: handler,
	}
}

// NewOptimizationRequestedHandler runs queued optimizations.
func NewOptimizationRequestedHandler(svc Optimizer, logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.loads.optimize", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event loadsvc.OptimizationRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode optimization request", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		result, err := svc.Optimize(ctx, loadsvc.OptimizeRequest{OrderIDs: event.OrderIDs, DryRun: event.DryRun})
		if errorbank.IsKind(err, errorbank.KindBadRequest) {
			logger.Warn("dropping invalid optimization request", zap.Int64s("order_ids", event.OrderIDs), zap.Error(err))
			return nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "optimize failed")
			return err
		}

		fields := []zap.Field{
			zap.String("source", string(result.Plan.Source)),
			zap.Int("loads", len(result.Plan.Loads)),
			zap.Bool("dry_run", result.DryRun),
		}
		if result.Report != nil {
			fields = append(fields,
				zap.Int("committed", result.Report.Committed),
				zap.Int("failed", result.Report.Failed),
			)
		}
		logger.Info("queued optimization finished", fields...)
		return nil
	}

	return worker.HandlerRegistration{
		Event:   messaging.EventOptimizationRequested,
		Handler: handler,
	}
}
