package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/messaging"
	ordersvc "github.com/Additional-Code/loadplanner/internal/service/order"
	"github.com/Additional-Code/loadplanner/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/loadplanner/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderCreatedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderCreatedHandler records new orders joining the pending pool.
func NewOrderCreatedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.created", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order created", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(
			attribute.Int64("order.id", event.ID),
			attribute.String("order.origin", event.Origin),
		)
		logger.Info("order joined pending pool",
			zap.Int64("id", event.ID),
			zap.String("number", event.Number),
			zap.String("origin", event.Origin),
			zap.String("destination", event.Destination),
			zap.Float64("weight_lbs", event.WeightLbs),
			zap.Float64("volume_cuft", event.VolumeCuft),
			zap.String("priority", event.Priority),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Event:   messaging.EventOrderCreated,
		Handler: handler,
	}
}
