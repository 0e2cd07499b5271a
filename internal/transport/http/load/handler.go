package load

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/loadplanner/internal/dto"
	"github.com/Additional-Code/loadplanner/internal/entity"
	"github.com/Additional-Code/loadplanner/internal/presentation/http/response"
	service "github.com/Additional-Code/loadplanner/internal/service/load"
	"github.com/Additional-Code/loadplanner/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/loadplanner/transport/http/load")

// Service is the load behaviour the handler needs.
type Service interface {
	Optimize(ctx context.Context, req service.OptimizeRequest) (*service.OptimizeResult, error)
	RequestOptimization(ctx context.Context, req service.OptimizeRequest) error
	Get(ctx context.Context, id string) (*entity.Load, error)
	List(ctx context.Context, status string, limit int) ([]entity.Load, error)
}

var _ Service = (*service.Service)(nil)

// Handler exposes load planning endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a load Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/loads")
	g.POST("/optimize", h.optimize)
	g.GET("/:id", h.getByID)
	g.GET("", h.list)
}

func (h *Handler) optimize(c echo.Context) error {
	b := response.New(c)

	var payload dto.OptimizeRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&payload); err != nil {
			return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
		}
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "loads.optimize", trace.WithAttributes(
		attribute.Int("request.order_ids", len(payload.OrderIDs)),
		attribute.Bool("request.dry_run", payload.DryRun),
		attribute.Bool("request.async", payload.Async),
	))
	defer span.End()

	req := service.OptimizeRequest{OrderIDs: payload.OrderIDs, DryRun: payload.DryRun}

	if payload.Async {
		if err := h.svc.RequestOptimization(ctx, req); err != nil {
			return b.WithError(err).Build()
		}
		return b.WithStatus(http.StatusAccepted).WithData(map[string]any{"queued": true}).Build()
	}

	result, err := h.svc.Optimize(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}

	status := http.StatusOK
	if result.Report != nil && result.Report.Committed > 0 {
		status = http.StatusCreated
	}
	return b.WithStatus(status).WithData(dto.NewOptimizeResponse(result)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "loads.getByID", trace.WithAttributes(attribute.String("load.id", id)))
	defer span.End()

	load, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewLoadResponse(load)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	limit, err := response.QueryInt(c, "limit")
	if err != nil {
		return b.WithError(err).Build()
	}
	status := c.QueryParam("status")

	ctx, span := httpTracer.Start(c.Request().Context(), "loads.list", trace.WithAttributes(attribute.String("filter.status", status)))
	defer span.End()

	loads, err := h.svc.List(ctx, status, limit)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewLoadList(loads)).WithMeta("count", len(loads)).Build()
}
