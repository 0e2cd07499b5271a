// Package dbtest opens throwaway databases for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
)

// NewSQLite returns connections to a private in-memory SQLite database holding the planner schema.
// Writer and Reader share one handle.
func NewSQLite(t testing.TB) *database.Connections {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, config.Database{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return &database.Connections{Writer: db, Reader: db}
}

// CreateSchema creates the planner tables from the entity models.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*entity.Order)(nil),
		(*entity.Load)(nil),
		(*entity.LoadOrder)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}
