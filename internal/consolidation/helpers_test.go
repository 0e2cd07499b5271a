package consolidation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

func newOrder(id int64, origin, destination string, weight, volume float64) Order {
	return Order{
		ID:          id,
		Number:      fmt.Sprintf("ORD-%05d", id),
		Origin:      origin,
		Destination: destination,
		WeightLbs:   weight,
		VolumeCuft:  volume,
		Priority:    PriorityNormal,
		Status:      StatusPending,
	}
}

func torontoOrders() []Order {
	weights := []float64{10000, 10000, 10000, 10000, 5000, 5000, 5000}
	orders := make([]Order, len(weights))
	for i, w := range weights {
		orders[i] = newOrder(int64(i+1), "Toronto, ON", fmt.Sprintf("Dest %02d", i+1), w, 100)
	}
	return orders
}

var (
	testOrigins      = []string{"Toronto, ON", "Montreal, QC", "Chicago, IL", ""}
	testDestinations = []string{"Detroit, MI", "Buffalo, NY", "Ottawa, ON", "Columbus, OH", "Boston, MA", "Albany, NY"}
)

func randomOrders(r *rand.Rand, n int) []Order {
	orders := make([]Order, n)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range orders {
		o := newOrder(
			int64(i+1),
			testOrigins[r.IntN(len(testOrigins))],
			testDestinations[r.IntN(len(testDestinations))],
			float64(500+r.IntN(30000)),
			float64(50+r.IntN(2500)),
		)
		if r.IntN(3) > 0 {
			o.MustArriveBy = base.Add(time.Duration(r.IntN(240)) * time.Hour)
		}
		orders[i] = o
	}
	return orders
}

func countStops(loads []Load) int {
	n := 0
	for _, l := range loads {
		n += len(l.Stops)
	}
	return n
}

type stubOracle struct {
	proposal Proposal
	calls    int
}

func (s *stubOracle) Propose(_ context.Context, _ []Order, _ Capacity) Proposal {
	s.calls++
	return s.proposal
}
