package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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
	repo "github.com/Additional-Code/loadplanner/internal/repository/order"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/loadplanner/service/order")

// DefaultPendingLimit caps ListPending when no limit is given.
const DefaultPendingLimit = 100

// Service handles order intake and lookups.
type Service struct {
	repo      *repo.Repository
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// Create takes in a new Pending order, caches it and announces it.
func (s *Service) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errorbank.BadRequest("order payload is required")
	}
	if err := validateIntake(order); err != nil {
		return err
	}

	now := time.Now().UTC()
	order.Status = string(consolidation.StatusPending)
	order.Priority = string(consolidation.ParsePriority(order.Priority))
	order.LoadID = nil
	order.AssignedLoadNumber = nil
	order.PlannedToLoadAt = nil
	order.CreatedAt = now
	order.UpdatedAt = now

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
		}
	}

	s.publishOrderCreated(ctx, order)
	return nil
}

// ListPending returns unplanned orders, oldest first.
func (s *Service) ListPending(ctx context.Context, limit int) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListPending")
	defer span.End()

	if limit < 0 {
		return nil, errorbank.BadRequest("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultPendingLimit
	}
	orders, err := s.repo.ListPending(ctx, repo.PendingFilter{Limit: limit})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list pending orders", errorbank.WithCause(err))
	}
	return orders, nil
}

func validateIntake(order *entity.Order) error {
	order.Number = strings.TrimSpace(order.Number)
	order.Destination = strings.TrimSpace(order.Destination)
	order.Origin = strings.TrimSpace(order.Origin)

	details := map[string]any{}
	if order.Number == "" {
		details["order_number"] = "required"
	}
	if order.Destination == "" {
		details["destination"] = "required"
	}
	if order.WeightLbs <= 0 {
		details["weight_lbs"] = "must be positive"
	}
	if order.VolumeCuft <= 0 {
		details["volume_cuft"] = "must be positive"
	}
	if len(details) > 0 {
		return errorbank.BadRequest("invalid order", errorbank.WithDetails(details))
	}
	return nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		ID:          order.ID,
		Number:      order.Number,
		Origin:      order.Origin,
		Destination: order.Destination,
		WeightLbs:   order.WeightLbs,
		VolumeCuft:  order.VolumeCuft,
		Priority:    order.Priority,
		CreatedAt:   order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order created", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, messaging.EventOrderCreated, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order created", zap.Error(err))
		}
	}
}

// CacheKey is the cache entry for an order.
func CacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	return cache.GetJSON[entity.Order](ctx, s.cache, CacheKey(id))
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return nil
	}
	return cache.SetJSON(ctx, s.cache, CacheKey(order.ID), order, s.cacheTTL)
}

// OrderCreatedEvent is emitted when a new order enters the pool.
type OrderCreatedEvent struct {
	ID          int64     `json:"id"`
	Number      string    `json:"order_number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	WeightLbs   float64   `json:"weight_lbs"`
	VolumeCuft  float64   `json:"volume_cuft"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}
