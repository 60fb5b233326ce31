package order

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/lifecycle"
	"github.com/meatline/meatline/internal/notify"
	"github.com/meatline/meatline/internal/presentation/http/response"
	repo "github.com/meatline/meatline/internal/repository/order"
	service "github.com/meatline/meatline/internal/service/order"
	authtransport "github.com/meatline/meatline/internal/transport/http/auth"
	"github.com/meatline/meatline/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/meatline/meatline/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
	hub *notify.Hub
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, hub *notify.Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

// Register routes with the provided Echo instance. Reads are open to any
// live session; writes are gated per role, with admins passing everywhere.
func Register(e *echo.Echo, h *Handler, gate *authtransport.Gate) {
	g := e.Group("/orders", gate.Require())
	g.GET("", h.list)
	g.GET("/export", h.exportCSV)
	g.GET("/events", h.events)
	g.GET("/:id", h.getByID)
	g.GET("/:id/print", h.printDocument)
	g.POST("", h.create, gate.RequireRole(coreauth.RoleFieldAgent))
	g.PUT("/:id", h.update, gate.RequireRole(coreauth.RoleFieldAgent))
	g.PATCH("/:id/status", h.updateStatus, gate.RequireRole(coreauth.RoleWarehouse))
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(attribute.Int64("customer.id", payload.CustomerID)))
	defer span.End()

	order, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(service.ToResponse(order)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := orderID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(service.ToResponse(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter, err := listFilter(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, filter)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, service.ToResponse(order))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := orderID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Update(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(service.ToResponse(order)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	id, err := orderID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateStatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	target, err := lifecycle.ParseStatus(payload.Status)
	if err != nil {
		return b.WithError(errorbank.BadRequest("unknown status", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.target_status", target.String()),
	))
	defer span.End()

	order, err := h.svc.UpdateStatus(ctx, id, target)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(service.ToResponse(order)).Build()
}

func (h *Handler) printDocument(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.print", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	doc, err := h.svc.RenderPrintDocument(ctx, id)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	return c.HTMLBlob(http.StatusOK, doc)
}

func (h *Handler) exportCSV(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.export")
	defer span.End()

	data, err := h.svc.ExportCSV(ctx, filter)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// events streams order changes as server-sent events until the client
// disconnects.
func (h *Handler) events(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := h.hub.Subscribe(16)
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func listFilter(c echo.Context) (repo.ListFilter, error) {
	var filter repo.ListFilter

	if raw := c.QueryParam("status"); raw != "" {
		status, err := lifecycle.ParseStatus(raw)
		if err != nil {
			return filter, errorbank.BadRequest("unknown status", errorbank.WithCause(err))
		}
		filter.Status = status
	}
	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errorbank.BadRequest("invalid customer_id", errorbank.WithCause(err))
		}
		filter.CustomerID = customerID
	}
	return filter, nil
}
