package load

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
)

const meterName = "github.com/Additional-Code/loadplanner/service/load"

type metrics struct {
	plans     metric.Int64Counter
	fallbacks metric.Int64Counter
	loads     metric.Int64Counter
	orders    metric.Int64Counter
	duration  metric.Float64Histogram
}

func newMetrics(logger *zap.Logger) *metrics {
	meter := otel.Meter(meterName)
	m := &metrics{}
	var err error

	if m.plans, err = meter.Int64Counter("loadplanner.plans",
		metric.WithDescription("Plans produced, by source")); err != nil {
		logger.Warn("create plans counter", zap.Error(err))
	}
	if m.fallbacks, err = meter.Int64Counter("loadplanner.oracle.fallbacks",
		metric.WithDescription("Oracle proposals replaced by the deterministic planner")); err != nil {
		logger.Warn("create fallback counter", zap.Error(err))
	}
	if m.loads, err = meter.Int64Counter("loadplanner.commit.loads",
		metric.WithDescription("Committed and failed loads")); err != nil {
		logger.Warn("create loads counter", zap.Error(err))
	}
	if m.orders, err = meter.Int64Counter("loadplanner.commit.orders",
		metric.WithDescription("Orders assigned to committed loads")); err != nil {
		logger.Warn("create orders counter", zap.Error(err))
	}
	if m.duration, err = meter.Float64Histogram("loadplanner.plan.duration",
		metric.WithDescription("Time spent planning"),
		metric.WithUnit("s")); err != nil {
		logger.Warn("create duration histogram", zap.Error(err))
	}
	return m
}

func (m *metrics) recordPlan(ctx context.Context, plan consolidation.Plan, elapsed time.Duration) {
	source := metric.WithAttributes(attribute.String("source", string(plan.Source)))
	if m.plans != nil {
		m.plans.Add(ctx, 1, source)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), source)
	}
	if m.fallbacks != nil && plan.Repair != nil && plan.Repair.Fallback {
		m.fallbacks.Add(ctx, 1)
	}
}

func (m *metrics) recordCommit(ctx context.Context, report Report) {
	if m.loads != nil {
		m.loads.Add(ctx, int64(report.Committed), metric.WithAttributes(attribute.String("state", string(StateCommitted))))
		m.loads.Add(ctx, int64(report.Failed), metric.WithAttributes(attribute.String("state", string(StateFailed))))
	}
	if m.orders != nil {
		m.orders.Add(ctx, int64(report.OrdersUpdated))
	}
}
