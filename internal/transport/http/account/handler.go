package account

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	"github.com/meatline/meatline/internal/presentation/http/response"
	service "github.com/meatline/meatline/internal/service/auth"
	authtransport "github.com/meatline/meatline/internal/transport/http/auth"
	"github.com/meatline/meatline/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/meatline/meatline/transport/http/account")

// Handler exposes admin account management over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an account Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. The whole group is
// admin-only.
func Register(e *echo.Echo, h *Handler, gate *authtransport.Gate) {
	g := e.Group("/accounts", gate.RequireRole(coreauth.RoleAdmin))
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.deactivate)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "accounts.list")
	defer span.End()

	accounts, err := h.svc.ListAccounts(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toDTO(account))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.AccountRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "accounts.create", trace.WithAttributes(attribute.String("account.username", payload.Username)))
	defer span.End()

	account, err := h.svc.CreateAccount(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(account)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := accountID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.AccountRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "accounts.update", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer span.End()

	account, err := h.svc.UpdateAccount(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(account)).Build()
}

func (h *Handler) deactivate(c echo.Context) error {
	b := response.New(c)

	id, err := accountID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "accounts.deactivate", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer span.End()

	if err := h.svc.DeactivateAccount(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}

func accountID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func toDTO(account *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Role:     account.Role.String(),
		IsActive: account.IsActive,
	}
}
