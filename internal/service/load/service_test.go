package load

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/messaging"
	loadrepo "github.com/Additional-Code/loadplanner/internal/repository/load"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

func pendingRows() []entity.Order {
	deadline := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	return []entity.Order{
		{ID: 1, Number: "ORD-1", Origin: "Toronto, ON", Destination: "Detroit, MI", WeightLbs: 10000, VolumeCuft: 100, Priority: "High", Status: "Pending", MustArriveBy: &deadline},
		{ID: 2, Number: "ORD-2", Origin: "Toronto, ON", Destination: "Buffalo, NY", WeightLbs: 5000, VolumeCuft: 100, Priority: "Normal", Status: "Pending"},
	}
}

func newTestService(t *testing.T, orders PendingOrders, loads LoadReader, committer Committer, store cache.Store, publisher Publisher) *Service {
	packer := consolidation.NewPacker(consolidation.DefaultCapacity(), consolidation.TruckDryVan)
	return New(Deps{
		Orders:    orders,
		Loads:     loads,
		Planner:   consolidation.NewEngine(packer, consolidation.DefaultMaxDropFraction),
		Committer: committer,
		Cache:     store,
		CacheTTL:  time.Minute,
		Publisher: publisher,
		Logger:    zaptest.NewLogger(t),
	})
}

func TestService_OptimizeCommits(t *testing.T) {
	orders := new(pendingOrdersMock)
	orders.On("ListPending", mock.Anything, orderrepo.PendingFilter{IDs: []int64{1, 2}}).Return(pendingRows(), nil)
	committer := new(committerMock)
	committer.On("Commit", mock.Anything, mock.MatchedBy(func(p consolidation.Plan) bool {
		return len(p.Loads) == 1 && len(p.Loads[0].Stops) == 2
	})).Return(Report{Committed: 1, OrdersUpdated: 2})

	svc := newTestService(t, orders, nil, committer, nil, nil)
	result, err := svc.Optimize(context.Background(), OptimizeRequest{OrderIDs: []int64{1, 2}})

	require.NoError(t, err)
	assert.Equal(t, consolidation.SourceDeterministic, result.Plan.Source)
	assert.Equal(t, 2, result.Plan.Summary.TotalOrders)
	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.OrdersUpdated)
	committer.AssertExpectations(t)
}

func TestService_OptimizeDryRun(t *testing.T) {
	orders := new(pendingOrdersMock)
	orders.On("ListPending", mock.Anything, mock.Anything).Return(pendingRows(), nil)
	committer := new(committerMock)

	svc := newTestService(t, orders, nil, committer, nil, nil)
	result, err := svc.Optimize(context.Background(), OptimizeRequest{DryRun: true})

	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Nil(t, result.Report)
	assert.Len(t, result.Plan.Loads, 1)
	committer.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestService_OptimizeNothingPending(t *testing.T) {
	orders := new(pendingOrdersMock)
	orders.On("ListPending", mock.Anything, mock.Anything).Return([]entity.Order{}, nil)
	committer := new(committerMock)

	svc := newTestService(t, orders, nil, committer, nil, nil)
	result, err := svc.Optimize(context.Background(), OptimizeRequest{})

	require.NoError(t, err)
	assert.Equal(t, consolidation.NoOrdersMessage, result.Plan.Summary.Message)
	assert.Nil(t, result.Report)
	committer.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestService_OptimizeReadFailure(t *testing.T) {
	orders := new(pendingOrdersMock)
	orders.On("ListPending", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	svc := newTestService(t, orders, nil, new(committerMock), nil, nil)
	_, err := svc.Optimize(context.Background(), OptimizeRequest{})

	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errorbank.KindInternal, appErr.Kind())
}

func TestService_OptimizeRejectsInvalidRequests(t *testing.T) {
	orders := new(pendingOrdersMock)
	svc := newTestService(t, orders, nil, new(committerMock), nil, nil)

	for _, req := range []OptimizeRequest{
		{Limit: -1},
		{OrderIDs: []int64{3, 0}},
	} {
		_, err := svc.Optimize(context.Background(), req)
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest), "%+v", req)
	}
	orders.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything)
}

func TestService_RequestOptimization(t *testing.T) {
	t.Run("publishes", func(t *testing.T) {
		publisher := new(publisherMock)
		svc := newTestService(t, nil, nil, nil, nil, publisher)

		require.NoError(t, svc.RequestOptimization(context.Background(), OptimizeRequest{OrderIDs: []int64{7}}))
		assert.Equal(t, []string{messaging.EventOptimizationRequested}, publisher.events)
	})

	t.Run("requires messaging", func(t *testing.T) {
		svc := newTestService(t, nil, nil, nil, nil, nil)

		err := svc.RequestOptimization(context.Background(), OptimizeRequest{})

		var appErr *errorbank.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errorbank.KindUnprocessableEntity, appErr.Kind())
	})
}

type mapStore struct {
	items map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.items[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.items[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string, keys ...string) error {
	delete(s.items, key)
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *mapStore) Incr(context.Context, string) (int64, error) {
	return 0, cache.ErrUnsupported
}

func TestService_GetUsesCache(t *testing.T) {
	loads := new(loadReaderMock)
	loads.On("GetByID", mock.Anything, "load-1").Return(&entity.Load{ID: "load-1", Number: "LOAD-000001"}, nil).Once()
	store := &mapStore{items: map[string][]byte{}}

	svc := newTestService(t, nil, loads, nil, store, nil)
	first, err := svc.Get(context.Background(), "load-1")
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), "load-1")
	require.NoError(t, err)

	assert.Equal(t, first.Number, second.Number)
	loads.AssertNumberOfCalls(t, "GetByID", 1)

	var cached entity.Load
	require.NoError(t, json.Unmarshal(store.items[CacheKey("load-1")], &cached))
	assert.Equal(t, "LOAD-000001", cached.Number)
}

func TestService_GetNotFound(t *testing.T) {
	loads := new(loadReaderMock)
	loads.On("GetByID", mock.Anything, "missing").Return(nil, loadrepo.ErrNotFound)

	svc := newTestService(t, nil, loads, nil, nil, nil)
	_, err := svc.Get(context.Background(), "missing")

	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errorbank.KindNotFound, appErr.Kind())
}

func TestService_List(t *testing.T) {
	loads := new(loadReaderMock)
	loads.On("List", mock.Anything, loadrepo.ListFilter{Status: "Planning", Limit: 10}).Return([]entity.Load{{ID: "a"}}, nil)

	svc := newTestService(t, nil, loads, nil, nil, nil)
	got, err := svc.List(context.Background(), "Planning", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(context.Background(), "", -1)
	assert.Error(t, err)
}

func TestToDomainOrder(t *testing.T) {
	rows := pendingRows()

	o := ToDomainOrder(rows[0])

	assert.Equal(t, consolidation.PriorityHigh, o.Priority)
	assert.Equal(t, consolidation.StatusPending, o.Status)
	assert.True(t, rows[0].MustArriveBy.Equal(o.MustArriveBy))
	assert.True(t, ToDomainOrder(rows[1]).MustArriveBy.IsZero())
}
