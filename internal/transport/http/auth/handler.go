package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/presentation/http/response"
	service "github.com/meatline/meatline/internal/service/auth"
	"github.com/meatline/meatline/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/meatline/meatline/transport/http/auth")

// Handler exposes login, logout, and session restore over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, gate *Gate) {
	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session, gate.Require())
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login", trace.WithAttributes(attribute.String("auth.username", payload.Username)))
	defer span.End()

	session, token, err := h.svc.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.SessionResponse{
		Token:    token,
		Username: session.Username,
		Role:     session.Role.String(),
		IssuedAt: session.IssuedAt,
	}).Build()
}

func (h *Handler) logout(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.logout")
	defer span.End()

	// Logout is idempotent; a missing or stale token still lands the
	// caller in the logged-out state.
	_ = h.svc.Logout(ctx, bearerToken(c.Request()))

	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) session(c echo.Context) error {
	b := response.New(c)

	session := SessionFrom(c)
	if session == nil {
		return b.WithError(errorbank.Unauthorized("no session")).Build()
	}

	return b.WithData(dto.SessionResponse{
		Username: session.Username,
		Role:     session.Role.String(),
		IssuedAt: session.IssuedAt,
	}).Build()
}
