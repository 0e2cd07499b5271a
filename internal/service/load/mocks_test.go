package load

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/entity"
	loadrepo "github.com/Additional-Code/loadplanner/internal/repository/load"
	orderrepo "github.com/Additional-Code/loadplanner/internal/repository/order"
)

type loadWriterMock struct {
	mock.Mock
}

func (m *loadWriterMock) Create(ctx context.Context, load *entity.Load) error {
	return m.Called(ctx, load).Error(0)
}

func (m *loadWriterMock) CreateLinks(ctx context.Context, links []entity.LoadOrder) error {
	return m.Called(ctx, links).Error(0)
}

type orderAssignerMock struct {
	mock.Mock
}

func (m *orderAssignerMock) Assign(ctx context.Context, id int64, a orderrepo.Assignment) error {
	return m.Called(ctx, id, a).Error(0)
}

type publisherMock struct {
	mu     sync.Mutex
	events []string
	keys   []string
}

func (p *publisherMock) Publish(_ context.Context, event string, key []byte, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.keys = append(p.keys, string(key))
	return nil
}

type pendingOrdersMock struct {
	mock.Mock
}

func (m *pendingOrdersMock) ListPending(ctx context.Context, filter orderrepo.PendingFilter) ([]entity.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

type loadReaderMock struct {
	mock.Mock
}

func (m *loadReaderMock) GetByID(ctx context.Context, id string) (*entity.Load, error) {
	args := m.Called(ctx, id)
	load, _ := args.Get(0).(*entity.Load)
	return load, args.Error(1)
}

func (m *loadReaderMock) List(ctx context.Context, filter loadrepo.ListFilter) ([]entity.Load, error) {
	args := m.Called(ctx, filter)
	loads, _ := args.Get(0).([]entity.Load)
	return loads, args.Error(1)
}

type committerMock struct {
	mock.Mock
}

func (m *committerMock) Commit(ctx context.Context, plan consolidation.Plan) Report {
	return m.Called(ctx, plan).Get(0).(Report)
}
