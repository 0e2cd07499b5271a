package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/database"
	"github.com/Additional-Code/loadplanner/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: conns.Writer, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

type sample struct {
	number      string
	customer    string
	origin      string
	destination string
	weight      float64
	volume      float64
	priority    consolidation.Priority
	dueInDays   int
}

// demoOrders is a pending pool that exercises multi-stop packing from Toronto, a second
// origin, an order without an origin and one order too heavy for any truck.
var demoOrders = []sample{
	{"DEMO-1001", "Maple Foods", "Toronto, ON", "Detroit, MI", 10000, 900, consolidation.PriorityHigh, 3},
	{"DEMO-1002", "Maple Foods", "Toronto, ON", "Cleveland, OH", 10000, 850, consolidation.PriorityNormal, 4},
	{"DEMO-1003", "Northern Steel", "Toronto, ON", "Buffalo, NY", 10000, 600, consolidation.PriorityNormal, 2},
	{"DEMO-1004", "Northern Steel", "Toronto, ON", "Columbus, OH", 10000, 700, consolidation.PriorityLow, 6},
	{"DEMO-1005", "Lakeside Retail", "Toronto, ON", "Pittsburgh, PA", 5000, 400, consolidation.PriorityUrgent, 2},
	{"DEMO-1006", "Lakeside Retail", "Toronto, ON", "Rochester, NY", 5000, 350, consolidation.PriorityNormal, 5},
	{"DEMO-1007", "Lakeside Retail", "Toronto, ON", "Syracuse, NY", 5000, 300, consolidation.PriorityNormal, 5},
	{"DEMO-2001", "Quebec Paper", "Montreal, QC", "Boston, MA", 18000, 1500, consolidation.PriorityNormal, 4},
	{"DEMO-2002", "Quebec Paper", "Montreal, QC", "Albany, NY", 12000, 1200, consolidation.PriorityHigh, 3},
	{"DEMO-3001", "Walk-in", "", "Ottawa, ON", 2500, 200, consolidation.PriorityNormal, 0},
	{"DEMO-4001", "Heavy Haul", "Hamilton, ON", "Chicago, IL", 52000, 1800, consolidation.PriorityNormal, 7},
}

// Orders seeds the demo pending pool. Existing order numbers are left untouched.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	now := s.now()
	inserted := 0

	for _, d := range demoOrders {
		order := &entity.Order{
			Number:      d.number,
			Customer:    d.customer,
			Origin:      d.origin,
			Destination: d.destination,
			WeightLbs:   d.weight,
			VolumeCuft:  d.volume,
			Priority:    string(d.priority),
			Status:      string(consolidation.StatusPending),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if d.dueInDays > 0 {
			due := now.AddDate(0, 0, d.dueInDays).Truncate(time.Hour)
			order.MustArriveBy = &due
		}

		q := s.db.NewInsert().Model(order)
		if s.db.Dialect().Name() == dialect.MySQL {
			q = q.Ignore()
		} else {
			q = q.On("CONFLICT (order_number) DO NOTHING")
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return inserted, fmt.Errorf("seed order %s: %w", d.number, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	s.logger.Info("seeded orders", zap.Int("inserted", inserted), zap.Int("samples", len(demoOrders)))
	return inserted, nil
}
