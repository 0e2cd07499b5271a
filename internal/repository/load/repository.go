package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/loadplanner/repository/load")

// ErrNotFound is returned when a load is missing.
var ErrNotFound = errors.New("load not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Repository persists loads and their stop links.
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

// ListFilter narrows List.
type ListFilter struct {
	Status string
	Limit  int
}

// Create inserts a load header. Re-inserting an existing id is a no-op so a retried commit
// converges on the same row.
func (r *Repository) Create(ctx context.Context, load *entity.Load) error {
	if load == nil {
		return errors.New("nil load")
	}
	ctx, span := repoTracer.Start(ctx, "LoadRepository.Create", trace.WithAttributes(
		attribute.String("load.id", load.ID),
		attribute.String("load.number", load.Number),
	))
	defer span.End()

	if load.CreatedAt.IsZero() {
		load.CreatedAt = time.Now().UTC()
	}
	q := r.writer.NewInsert().Model(load)
	q = ignoreConflict(r.writer, q, "id")
	if _, err := q.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("insert load %s: %w", load.ID, err)
	}
	return nil
}

// CreateLinks inserts the stop links for a load in a single statement.
func (r *Repository) CreateLinks(ctx context.Context, links []entity.LoadOrder) error {
	if len(links) == 0 {
		return nil
	}
	ctx, span := repoTracer.Start(ctx, "LoadRepository.CreateLinks", trace.WithAttributes(
		attribute.String("load.id", links[0].LoadID),
		attribute.Int("links", len(links)),
	))
	defer span.End()

	now := time.Now().UTC()
	for i := range links {
		if links[i].CreatedAt.IsZero() {
			links[i].CreatedAt = now
		}
	}
	q := r.writer.NewInsert().Model(&links)
	q = ignoreConflict(r.writer, q, "load_id, order_id")
	if _, err := q.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("insert links for load %s: %w", links[0].LoadID, err)
	}
	return nil
}

// GetByID fetches a load together with its stops in sequence order.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Load, error) {
	ctx, span := repoTracer.Start(ctx, "LoadRepository.GetByID", trace.WithAttributes(attribute.String("load.id", id)))
	defer span.End()

	load := new(entity.Load)
	err := r.reader.NewSelect().
		Model(load).
		Relation("Orders", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("sequence_number ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return load, nil
}

// List returns the most recent loads, optionally filtered by status.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entity.Load, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	ctx, span := repoTracer.Start(ctx, "LoadRepository.List", trace.WithAttributes(
		attribute.String("filter.status", filter.Status),
		attribute.Int("filter.limit", limit),
	))
	defer span.End()

	loads := make([]entity.Load, 0)
	q := r.reader.NewSelect().
		Model(&loads).
		Order("created_at DESC", "load_number DESC").
		Limit(limit)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, fmt.Errorf("list loads: %w", err)
	}
	return loads, nil
}

func ignoreConflict(db *bun.DB, q *bun.InsertQuery, columns string) *bun.InsertQuery {
	if db.Dialect().Name() == dialect.MySQL {
		return q.Ignore()
	}
	return q.On(fmt.Sprintf("CONFLICT (%s) DO NOTHING", columns))
}
