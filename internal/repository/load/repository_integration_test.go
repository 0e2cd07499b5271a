package load_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/migration"
	loadrepo "github.com/Additional-Code/loadplanner/internal/repository/load"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
)

// PostgresSuite runs the repositories against the goose schema on a real Postgres.
type PostgresSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *bun.DB
	loads     *loadrepo.Repository
	orders    *orderrepo.Repository
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("loadplanner"),
		postgres.WithUsername("loadplanner"),
		postgres.WithPassword("loadplanner"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := database.Open("postgres", dsn, config.Database{MaxOpenConns: 4})
	s.Require().NoError(err)
	s.db = db

	m, err := migration.NewForDB("postgres", db, nil)
	s.Require().NoError(err)
	s.Require().NoError(m.Up(ctx))

	version, err := m.Version(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), version)

	conns := &database.Connections{Writer: db, Reader: db}
	s.loads = loadrepo.NewRepository(conns)
	s.orders = orderrepo.NewRepository(conns)
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(), "TRUNCATE TABLE load_orders, loads, orders RESTART IDENTITY CASCADE")
	s.Require().NoError(err)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresSuite) TestCommitFlow() {
	ctx := context.Background()
	o := &entity.Order{Number: "ORD-1", Origin: "Toronto, ON", Destination: "Detroit, MI", WeightLbs: 1000, VolumeCuft: 10}
	s.Require().NoError(s.orders.Create(ctx, o))

	l := newLoad("load-1", "LOAD-000001", time.Now().UTC())
	s.Require().NoError(s.loads.Create(ctx, l))
	s.Require().NoError(s.loads.Create(ctx, l))
	links := []entity.LoadOrder{{LoadID: l.ID, OrderID: o.ID, SequenceNumber: 1}}
	s.Require().NoError(s.loads.CreateLinks(ctx, links))
	s.Require().NoError(s.loads.CreateLinks(ctx, links))
	s.Require().NoError(s.orders.Assign(ctx, o.ID, orderrepo.Assignment{LoadID: l.ID, LoadNumber: l.Number, AssignedAt: time.Now()}))

	got, err := s.loads.GetByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Orders, 1)
	s.Equal(o.ID, got.Orders[0].OrderID)

	pending, err := s.orders.ListPending(ctx, orderrepo.PendingFilter{})
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *PostgresSuite) TestAssignRace() {
	ctx := context.Background()
	o := &entity.Order{Number: "ORD-2", Destination: "Buffalo, NY", WeightLbs: 1, VolumeCuft: 1}
	s.Require().NoError(s.orders.Create(ctx, o))

	s.Require().NoError(s.orders.Assign(ctx, o.ID, orderrepo.Assignment{LoadID: "a", LoadNumber: "LOAD-A", AssignedAt: time.Now()}))
	err := s.orders.Assign(ctx, o.ID, orderrepo.Assignment{LoadID: "b", LoadNumber: "LOAD-B", AssignedAt: time.Now()})

	s.ErrorIs(err, orderrepo.ErrNotPending)
}
