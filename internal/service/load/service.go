package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/messaging"
	loadrepo "github.com/Additional-Code/loadplanner/internal/repository/load"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
	ordersvc "github.com/Additional-Code/loadplanner/internal/service/order"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/loadplanner/service/load")

// PendingOrders reads the unplanned order pool.
type PendingOrders interface {
	ListPending(ctx context.Context, filter orderrepo.PendingFilter) ([]entity.Order, error)
}

// LoadReader reads committed loads.
type LoadReader interface {
	GetByID(ctx context.Context, id string) (*entity.Load, error)
	List(ctx context.Context, filter loadrepo.ListFilter) ([]entity.Load, error)
}

// Planner turns an order set into a plan.
type Planner interface {
	Plan(ctx context.Context, orders []consolidation.Order) consolidation.Plan
}

// Committer persists a plan.
type Committer interface {
	Commit(ctx context.Context, plan consolidation.Plan) Report
}

// OptimizeRequest selects the orders to plan.
type OptimizeRequest struct {
	OrderIDs []int64 `json:"order_ids,omitempty"`
	DryRun   bool    `json:"dry_run"`
	Limit    int     `json:"limit,omitempty"`
}

// OptimizeResult is the plan and, unless dry-run, its commit report.
type OptimizeResult struct {
	Plan   consolidation.Plan
	Report *Report
	DryRun bool
}

// OptimizationRequestedEvent asks a worker to run Optimize.
type OptimizationRequestedEvent struct {
	OrderIDs    []int64   `json:"order_ids,omitempty"`
	DryRun      bool      `json:"dry_run"`
	RequestedAt time.Time `json:"requested_at"`
}

// Service runs optimizations and serves committed loads.
type Service struct {
	orders    PendingOrders
	loads     LoadReader
	planner   Planner
	committer Committer
	cache     cache.Store
	cacheTTL  time.Duration
	publisher Publisher
	metrics   *metrics
	logger    *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders      *orderrepo.Repository
	Loads       *loadrepo.Repository
	Engine      *consolidation.Engine
	Coordinator *Coordinator
	Cache       cache.Store
	Config      config.Config
	Logger      *zap.Logger
	Publisher   messaging.Client
}

// CoordinatorParams defines dependencies for the commit coordinator.
type CoordinatorParams struct {
	fx.In

	Loads     *loadrepo.Repository
	Orders    *orderrepo.Repository
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// Deps is the interface-level wiring of a Service.
type Deps struct {
	Orders    PendingOrders
	Loads     LoadReader
	Planner   Planner
	Committer Committer
	Cache     cache.Store
	CacheTTL  time.Duration
	Publisher Publisher
	Logger    *zap.Logger
}

// NewService wires the Service from Fx-provided components.
func NewService(p Params) *Service {
	var publisher Publisher
	if p.Config.Messaging.Enabled && p.Publisher != nil {
		publisher = p.Publisher
	}
	return New(Deps{
		Orders:    p.Orders,
		Loads:     p.Loads,
		Planner:   p.Engine,
		Committer: p.Coordinator,
		Cache:     p.Cache,
		CacheTTL:  p.Config.Cache.DefaultTTL,
		Publisher: publisher,
		Logger:    p.Logger,
	})
}

// New builds a Service from explicit dependencies.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:    d.Orders,
		loads:     d.Loads,
		planner:   d.Planner,
		committer: d.Committer,
		cache:     d.Cache,
		cacheTTL:  d.CacheTTL,
		publisher: d.Publisher,
		metrics:   newMetrics(logger),
		logger:    logger,
	}
}

// Optimize plans the pending order pool and commits the plan unless DryRun is set.
// Planning problems never surface as errors; only failing to read the pool does.
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	ctx, span := serviceTracer.Start(ctx, "LoadService.Optimize", trace.WithAttributes(
		attribute.Int("request.order_ids", len(req.OrderIDs)),
		attribute.Bool("request.dry_run", req.DryRun),
	))
	defer span.End()

	if err := validateOptimize(req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	rows, err := s.orders.ListPending(ctx, orderrepo.PendingFilter{IDs: req.OrderIDs, Limit: req.Limit})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to read pending orders", errorbank.WithCause(err))
	}
	if len(req.OrderIDs) > 0 && len(rows) < len(req.OrderIDs) {
		s.logger.Info("some requested orders are not pending",
			zap.Int("requested", len(req.OrderIDs)),
			zap.Int("pending", len(rows)),
		)
	}

	orders := make([]consolidation.Order, len(rows))
	for i := range rows {
		orders[i] = ToDomainOrder(rows[i])
	}

	started := time.Now()
	plan := s.planner.Plan(ctx, orders)
	s.metrics.recordPlan(ctx, plan, time.Since(started))

	span.SetAttributes(
		attribute.String("plan.source", string(plan.Source)),
		attribute.Int("plan.loads", len(plan.Loads)),
	)
	s.logger.Info("plan ready",
		zap.String("source", string(plan.Source)),
		zap.Int("orders", plan.Summary.TotalOrders),
		zap.Int("loads", plan.Summary.TotalLoads),
		zap.Int("avg_utilization", plan.Summary.AvgUtilization),
		zap.Bool("dry_run", req.DryRun),
	)

	result := &OptimizeResult{Plan: plan, DryRun: req.DryRun}
	if req.DryRun || len(plan.Loads) == 0 {
		return result, nil
	}

	report := s.committer.Commit(ctx, plan)
	s.metrics.recordCommit(ctx, report)
	s.evictCommitted(ctx, report)
	result.Report = &report

	if report.Failed > 0 {
		s.logger.Warn("optimization committed partially",
			zap.Int("committed", report.Committed),
			zap.Int("failed", report.Failed),
			zap.Int64s("failed_orders", report.FailedOrderIDs()),
		)
	}
	return result, nil
}

// RequestOptimization hands an optimization to the worker through the event bus.
func (s *Service) RequestOptimization(ctx context.Context, req OptimizeRequest) error {
	if s.publisher == nil {
		return errorbank.Unprocessable("asynchronous optimization requires messaging")
	}
	payload, err := json.Marshal(OptimizationRequestedEvent{
		OrderIDs:    req.OrderIDs,
		DryRun:      req.DryRun,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return errorbank.Internal("failed to encode optimization request", errorbank.WithCause(err))
	}
	if err := s.publisher.Publish(ctx, messaging.EventOptimizationRequested, []byte("optimize"), payload); err != nil {
		return errorbank.Internal("failed to queue optimization", errorbank.WithCause(err))
	}
	return nil
}

// Get retrieves a load with its stops, consulting cache when available.
func (s *Service) Get(ctx context.Context, id string) (*entity.Load, error) {
	ctx, span := serviceTracer.Start(ctx, "LoadService.Get", trace.WithAttributes(attribute.String("load.id", id)))
	defer span.End()

	if load, err := s.getFromCache(ctx, id); err == nil {
		return load, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("loads cache read failed", zap.String("id", id), zap.Error(err))
	}

	load, err := s.loads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, loadrepo.ErrNotFound) {
			return nil, errorbank.NotFound("load not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load load", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, load); err != nil {
		s.logger.Warn("loads cache write failed", zap.String("id", id), zap.Error(err))
	}
	return load, nil
}

// List returns recent loads, optionally by status.
func (s *Service) List(ctx context.Context, status string, limit int) ([]entity.Load, error) {
	ctx, span := serviceTracer.Start(ctx, "LoadService.List", trace.WithAttributes(attribute.String("filter.status", status)))
	defer span.End()

	if limit < 0 {
		return nil, errorbank.BadRequest("limit must not be negative")
	}
	loads, err := s.loads.List(ctx, loadrepo.ListFilter{Status: status, Limit: limit})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list loads", errorbank.WithCause(err))
	}
	return loads, nil
}

// CacheKey is the cache entry for a load.
func CacheKey(id string) string {
	return fmt.Sprintf("loads:%s", id)
}

// EvictionKeys lists the cache entries a committed load invalidates: the load and each of its orders.
func EvictionKeys(loadID string, orderIDs []int64) []string {
	keys := make([]string, 0, len(orderIDs)+1)
	keys = append(keys, CacheKey(loadID))
	for _, id := range orderIDs {
		keys = append(keys, ordersvc.CacheKey(id))
	}
	return keys
}

// evictCommitted drops stale order snapshots in this process. The load.committed event
// does the same for other instances.
func (s *Service) evictCommitted(ctx context.Context, report Report) {
	if s.cache == nil {
		return
	}
	for _, l := range report.Loads {
		if l.State != StateCommitted || l.LoadID == "" {
			continue
		}
		keys := EvictionKeys(l.LoadID, l.OrderIDs)
		if err := s.cache.Delete(ctx, keys[0], keys[1:]...); err != nil {
			s.logger.Warn("evict committed load from cache failed", zap.String("load_id", l.LoadID), zap.Error(err))
		}
	}
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Load, error) {
	return cache.GetJSON[entity.Load](ctx, s.cache, CacheKey(id))
}

func (s *Service) storeInCache(ctx context.Context, load *entity.Load) error {
	if load == nil {
		return nil
	}
	return cache.SetJSON(ctx, s.cache, CacheKey(load.ID), load, s.cacheTTL)
}

func validateOptimize(req OptimizeRequest) error {
	if req.Limit < 0 {
		return errorbank.BadRequest("limit must not be negative", errorbank.WithDetail("limit", req.Limit))
	}
	for _, id := range req.OrderIDs {
		if id <= 0 {
			return errorbank.BadRequest("order ids must be positive", errorbank.WithDetail("order_id", id))
		}
	}
	return nil
}

// ToDomainOrder maps a stored order onto the planning model.
func ToDomainOrder(row entity.Order) consolidation.Order {
	o := consolidation.Order{
		ID:          row.ID,
		Number:      row.Number,
		Customer:    row.Customer,
		Origin:      row.Origin,
		Destination: row.Destination,
		WeightLbs:   row.WeightLbs,
		VolumeCuft:  row.VolumeCuft,
		Priority:    consolidation.ParsePriority(row.Priority),
		Status:      consolidation.Status(row.Status),
	}
	if row.MustArriveBy != nil {
		o.MustArriveBy = *row.MustArriveBy
	}
	return o
}
