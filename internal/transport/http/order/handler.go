package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/loadplanner/internal/dto"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/presentation/http/response"
	service "github.com/Additional-Code/loadplanner/internal/service/order"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/loadplanner/transport/http/order")

// Service is the order behaviour the handler needs.
type Service interface {
	Get(ctx context.Context, id int64) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	ListPending(ctx context.Context, limit int) ([]entity.Order, error)
}

var _ Service = (*service.Service)(nil)

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.GET("/pending", h.listPending)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) listPending(c echo.Context) error {
	b := response.New(c)

	limit, err := response.QueryInt(c, "limit")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listPending")
	defer span.End()

	orders, err := h.svc.ListPending(ctx, limit)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderList(orders)).WithMeta("count", len(orders)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	order := payload.Entity()

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(
		attribute.String("order.number", order.Number),
	)
	defer span.End()

	if err := h.svc.Create(ctx, order); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order)).Build()
}
