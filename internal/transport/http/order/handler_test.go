package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Get(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *serviceMock) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *serviceMock) ListPending(ctx context.Context, limit int) ([]entity.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

func serve(t *testing.T, svc Service, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	Register(e, &Handler{svc: svc})

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetByID(t *testing.T) {
	svc := new(serviceMock)
	svc.On("Get", mock.Anything, int64(7)).Return(&entity.Order{ID: 7, Number: "ORD-7", Status: "Pending"}, nil)

	rec := serve(t, svc, http.MethodGet, "/orders/7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_number":"ORD-7"`)
}

func TestHandler_GetByIDInvalid(t *testing.T) {
	rec := serve(t, new(serviceMock), http.MethodGet, "/orders/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetByIDMissing(t *testing.T) {
	svc := new(serviceMock)
	svc.On("Get", mock.Anything, int64(9)).Return(nil, errorbank.NotFound("order not found"))

	rec := serve(t, svc, http.MethodGet, "/orders/9", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListPending(t *testing.T) {
	svc := new(serviceMock)
	svc.On("ListPending", mock.Anything, 5).Return([]entity.Order{{ID: 1}, {ID: 2}}, nil)

	rec := serve(t, svc, http.MethodGet, "/orders/pending?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	svc.AssertExpectations(t)
}

func TestHandler_Create(t *testing.T) {
	svc := new(serviceMock)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Number == "ORD-1" && o.Destination == "Detroit, MI" && o.WeightLbs == 1200
	})).Run(func(args mock.Arguments) {
		o := args.Get(1).(*entity.Order)
		o.ID = 11
		o.Status = "Pending"
	}).Return(nil)

	body := `{"order_number":"ORD-1","origin":"Toronto, ON","destination":"Detroit, MI","weight_lbs":1200,"volume_cuft":80}`
	rec := serve(t, svc, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":11`)
	assert.Contains(t, rec.Body.String(), `"status":"Pending"`)
}

func TestHandler_CreateBadJSON(t *testing.T) {
	rec := serve(t, new(serviceMock), http.MethodPost, "/orders", `{"order_number":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
