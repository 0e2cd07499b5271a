package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/loadplanner/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrNotPending is returned when an order was claimed by another load first.
	ErrNotPending = errors.New("order is no longer pending")
)

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// PendingFilter narrows the unplanned order scan.
type PendingFilter struct {
	IDs   []int64
	Limit int
}

// Assignment is the load back-reference written onto an order.
type Assignment struct {
	LoadID     string
	LoadNumber string
	AssignedAt time.Time
}

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	if order.Status == "" {
		order.Status = string(consolidation.StatusPending)
	}
	if order.Priority == "" {
		order.Priority = string(consolidation.PriorityNormal)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("insert order %s: %w", order.Number, err)
	}
	return nil
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// ListPending returns orders that are Pending and not yet planned onto a load, oldest first.
func (r *Repository) ListPending(ctx context.Context, filter PendingFilter) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListPending", trace.WithAttributes(
		attribute.Int("filter.ids", len(filter.IDs)),
		attribute.Int("filter.limit", filter.Limit),
	))
	defer span.End()

	orders := make([]entity.Order, 0)
	q := r.reader.NewSelect().
		Model(&orders).
		Where("status = ?", string(consolidation.StatusPending)).
		Where("load_id IS NULL").
		Order("id ASC")
	if len(filter.IDs) > 0 {
		q = q.Where("id IN (?)", bun.In(filter.IDs))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	span.SetAttributes(attribute.Int("orders", len(orders)))
	return orders, nil
}

// Assign moves an order to Assigned and records its load. The update only applies while the
// order is still unclaimed, or already points at the same load, so retries are idempotent
// and competing planners cannot overwrite each other.
func (r *Repository) Assign(ctx context.Context, id int64, a Assignment) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Assign", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("load.id", a.LoadID),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("status = ?", string(consolidation.StatusAssigned)).
		Set("load_id = ?", a.LoadID).
		Set("assigned_load_number = ?", a.LoadNumber).
		Set("planned_to_load_at = ?", a.AssignedAt).
		Set("updated_at = ?", a.AssignedAt).
		Where("id = ?", id).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.
				Where("status = ? AND load_id IS NULL", string(consolidation.StatusPending)).
				WhereOr("load_id = ?", a.LoadID)
		}).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("assign order %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign order %d: rows affected: %w", id, err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		span.SetStatus(codes.Error, "not found")
		return err
	}
	span.SetStatus(codes.Error, "not pending")
	return fmt.Errorf("assign order %d: %w", id, ErrNotPending)
}
