package migration

import (
	"context"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	migrations "github.com/Additional-Code/loadplanner/db/migrations"
	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
)

func TestMigrator_SQLiteSchemaAssignsOrderIDs(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, config.Database{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mig, err := NewForDB("sqlite", db, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, mig.Up(ctx))

	version, err := mig.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	repo := orderrepo.NewRepository(&database.Connections{Writer: db, Reader: db})
	first := &entity.Order{Number: "ORD-1", Origin: "Toronto, ON", Destination: "Detroit, MI", WeightLbs: 100, VolumeCuft: 10}
	second := &entity.Order{Number: "ORD-2", Origin: "Toronto, ON", Destination: "Buffalo, NY", WeightLbs: 100, VolumeCuft: 10}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Positive(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	pending, err := repo.ListPending(ctx, orderrepo.PendingFilter{})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, []int64{first.ID, second.ID}, []int64{pending[0].ID, pending[1].ID})

	require.NoError(t, repo.Assign(ctx, first.ID, orderrepo.Assignment{LoadID: "l1", LoadNumber: "LOAD-000001", AssignedAt: time.Now().UTC()}))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Assigned", got.Status)

	require.NoError(t, mig.Down(ctx, 0, true))
	version, err = mig.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestMigrations_EveryDialectHasTheSameVersions(t *testing.T) {
	versions := func(dialect string) []string {
		entries, err := fs.ReadDir(migrations.FS, migrations.Dir(dialect))
		require.NoError(t, err, dialect)
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names
	}

	postgres := versions("postgres")
	require.Len(t, postgres, 3)
	assert.Equal(t, postgres, versions("sqlite3"))
	assert.Equal(t, postgres, versions("mysql"))
}

func TestGooseDialect(t *testing.T) {
	for driver, want := range map[string]string{"postgres": "postgres", "mysql": "mysql", "sqlite": "sqlite3"} {
		got, err := gooseDialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := gooseDialect("oracle")
	assert.Error(t, err)
}
