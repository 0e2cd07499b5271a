package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/messaging"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
)

// State is a load's position in the commit state machine.
type State string

const (
	StatePendingSave   State = "PendingSave"
	StateLoadCreated   State = "LoadCreated"
	StateOrdersLinked  State = "OrdersLinked"
	StateOrdersUpdated State = "OrdersUpdated"
	StateCommitted     State = "Committed"
	StateFailed        State = "Failed"
)

const (
	// LoadStatusPlanning is the status of a freshly committed load.
	LoadStatusPlanning = "Planning"
	// UnassignedCarrier marks a load without a carrier.
	UnassignedCarrier = "NONE"

	reasonInfeasible = "load exceeds truck capacity"
)

// LoadWriter persists load headers and stop links.
type LoadWriter interface {
	Create(ctx context.Context, load *entity.Load) error
	CreateLinks(ctx context.Context, links []entity.LoadOrder) error
}

// OrderAssigner moves a Pending order onto a load.
type OrderAssigner interface {
	Assign(ctx context.Context, id int64, a orderrepo.Assignment) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, event string, key []byte, value []byte) error
}

// CommitOptions tunes the coordinator.
type CommitOptions struct {
	Concurrency      int
	CommitInfeasible bool
	Attempts         int
	Backoff          time.Duration
	TransitBuffer    time.Duration
}

// LoadReport is the outcome for one planned load.
type LoadReport struct {
	LoadID        string  `json:"load_id,omitempty"`
	Number        string  `json:"load_number,omitempty"`
	Origin        string  `json:"origin"`
	Stops         int     `json:"stops"`
	OrderIDs      []int64 `json:"order_ids"`
	State         State   `json:"state"`
	Reason        string  `json:"reason,omitempty"`
	OrdersUpdated int     `json:"orders_updated"`
	FailedOrders  []int64 `json:"failed_orders,omitempty"`
	LinkError     string  `json:"link_error,omitempty"`
}

// Report summarizes a commit. Loads keep plan order.
type Report struct {
	Loads         []LoadReport `json:"loads"`
	Committed     int          `json:"committed"`
	Failed        int          `json:"failed"`
	OrdersUpdated int          `json:"orders_updated"`
}

// FailedOrderIDs lists every order that should have moved but did not, including the
// stops of failed loads.
func (r Report) FailedOrderIDs() []int64 {
	var ids []int64
	for _, l := range r.Loads {
		ids = append(ids, l.FailedOrders...)
	}
	return ids
}

// LoadCommittedEvent is published once a load reaches Committed.
type LoadCommittedEvent struct {
	LoadID       string     `json:"load_id"`
	Number       string     `json:"load_number"`
	Origin       string     `json:"origin"`
	OrderIDs     []int64    `json:"order_ids"`
	Utilization  int        `json:"utilization_percent"`
	MustArriveBy *time.Time `json:"must_arrive_by,omitempty"`
	CommittedAt  time.Time  `json:"committed_at"`
}

// Coordinator persists a validated plan load by load.
type Coordinator struct {
	loads     LoadWriter
	orders    OrderAssigner
	ids       *IDGenerator
	publisher Publisher
	opts      CommitOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewCoordinator wires a coordinator. publisher may be nil.
func NewCoordinator(loads LoadWriter, orders OrderAssigner, ids *IDGenerator, publisher Publisher, opts CommitOptions, logger *zap.Logger) *Coordinator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	if ids == nil {
		ids = NewIDGenerator(nil, "", logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		loads:     loads,
		orders:    orders,
		ids:       ids,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Commit runs every load through the state machine. A failure is scoped to its load or
// order and never stops the others.
func (c *Coordinator) Commit(ctx context.Context, plan consolidation.Plan) Report {
	ctx, span := serviceTracer.Start(ctx, "LoadCoordinator.Commit", trace.WithAttributes(
		attribute.Int("plan.loads", len(plan.Loads)),
		attribute.String("plan.source", string(plan.Source)),
	))
	defer span.End()

	results := make([]LoadReport, len(plan.Loads))

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i, l := range plan.Loads {
		g.Go(func() error {
			results[i] = c.commitLoad(ctx, l)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Loads: results}
	for _, r := range results {
		report.OrdersUpdated += r.OrdersUpdated
		if r.State == StateCommitted {
			report.Committed++
		} else {
			report.Failed++
		}
	}

	span.SetAttributes(
		attribute.Int("commit.committed", report.Committed),
		attribute.Int("commit.failed", report.Failed),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, "partial commit")
	}
	return report
}

func (c *Coordinator) commitLoad(ctx context.Context, l consolidation.Load) LoadReport {
	report := LoadReport{
		Origin:   l.Origin.String(),
		Stops:    len(l.Stops),
		OrderIDs: l.OrderIDs(),
		State:    StatePendingSave,
	}
	advance := func(state State) {
		report.State = state
		c.logger.Debug("load state", zap.String("load_id", report.LoadID), zap.String("state", string(state)))
	}
	fail := func(reason string) LoadReport {
		advance(StateFailed)
		report.Reason = reason
		report.FailedOrders = append(report.FailedOrders[:0], l.OrderIDs()...)
		return report
	}

	if l.Infeasible && !c.opts.CommitInfeasible {
		return fail(reasonInfeasible)
	}
	if err := ctx.Err(); err != nil {
		return fail(err.Error())
	}

	id, number := c.ids.Next(ctx)
	report.LoadID, report.Number = id, number
	now := c.now()
	row := c.toEntity(l, id, number, now)

	if err := c.withRetry(ctx, func(ctx context.Context) error { return c.loads.Create(ctx, row) }); err != nil {
		c.logger.Error("create load failed",
			zap.String("load_id", id),
			zap.String("origin", report.Origin),
			zap.Error(err),
		)
		return fail(fmt.Sprintf("create load: %v", err))
	}
	advance(StateLoadCreated)

	links := make([]entity.LoadOrder, len(l.Stops))
	for i, s := range l.Stops {
		links[i] = entity.LoadOrder{LoadID: id, OrderID: s.OrderID, SequenceNumber: s.Sequence, CreatedAt: now}
	}
	if err := c.withRetry(ctx, func(ctx context.Context) error { return c.loads.CreateLinks(ctx, links) }); err != nil {
		c.logger.Error("link orders failed", zap.String("load_id", id), zap.Error(err))
		report.LinkError = err.Error()
	}
	advance(StateOrdersLinked)

	assignment := orderrepo.Assignment{LoadID: id, LoadNumber: number, AssignedAt: now}
	for _, s := range l.Stops {
		err := c.withRetry(ctx, func(ctx context.Context) error { return c.orders.Assign(ctx, s.OrderID, assignment) })
		if err != nil {
			c.logger.Error("assign order failed",
				zap.String("load_id", id),
				zap.Int64("order_id", s.OrderID),
				zap.Error(err),
			)
			report.FailedOrders = append(report.FailedOrders, s.OrderID)
			continue
		}
		report.OrdersUpdated++
	}
	advance(StateOrdersUpdated)

	advance(StateCommitted)
	c.publishCommitted(ctx, row, l)

	c.logger.Info("load committed",
		zap.String("load_id", id),
		zap.String("load_number", number),
		zap.Int("stops", len(l.Stops)),
		zap.Int("orders_updated", report.OrdersUpdated),
	)
	return report
}

func (c *Coordinator) toEntity(l consolidation.Load, id, number string, now time.Time) *entity.Load {
	row := &entity.Load{
		ID:                 id,
		Number:             number,
		TruckType:          l.TruckType.DisplayName(),
		Origin:             l.Origin.String(),
		TotalWeightLbs:     l.WeightLbs,
		TotalVolumeCuft:    l.VolumeCuft,
		UtilizationPercent: l.Utilization,
		Status:             LoadStatusPlanning,
		AssignedCarrier:    UnassignedCarrier,
		Reasoning:          l.Reasoning,
		CreatedAt:          now,
	}
	if arrive, ok := l.MustArriveBy(); ok {
		pickUp := arrive.Add(-c.opts.TransitBuffer)
		row.MustArriveBy = &arrive
		row.MustPickUpBy = &pickUp
	}
	return row
}

// withRetry retries transient store errors. Lost races and missing rows are final.
func (c *Coordinator) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(c.opts.Attempts-1), retry.NewExponential(c.opts.Backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || ctx.Err() != nil ||
			errors.Is(err, orderrepo.ErrNotPending) ||
			errors.Is(err, orderrepo.ErrNotFound) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (c *Coordinator) publishCommitted(ctx context.Context, row *entity.Load, l consolidation.Load) {
	if c.publisher == nil {
		return
	}
	payload, err := json.Marshal(LoadCommittedEvent{
		LoadID:       row.ID,
		Number:       row.Number,
		Origin:       row.Origin,
		OrderIDs:     l.OrderIDs(),
		Utilization:  row.UtilizationPercent,
		MustArriveBy: row.MustArriveBy,
		CommittedAt:  row.CreatedAt,
	})
	if err != nil {
		c.logger.Error("marshal load committed", zap.Error(err))
		return
	}
	if err := c.publisher.Publish(ctx, messaging.EventLoadCommitted, []byte(row.ID), payload); err != nil {
		c.logger.Warn("publish load committed", zap.String("load_id", row.ID), zap.Error(err))
	}
}
