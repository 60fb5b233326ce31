package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/presentation/http/response"
	service "github.com/meatline/meatline/internal/service/auth"
	"github.com/meatline/meatline/pkg/errorbank"
)

const sessionContextKey = "meatline.session"

// Gate guards routes behind a live session and, optionally, a role. Every
// protected view goes through the same check regardless of which handler
// registered it.
type Gate struct {
	svc *service.Service
}

// NewGate constructs the access gate middleware factory.
func NewGate(svc *service.Service) *Gate {
	return &Gate{svc: svc}
}

// Require admits any live session.
func (g *Gate) Require() echo.MiddlewareFunc {
	return g.require("")
}

// RequireRole admits sessions holding the given role; admins always pass.
func (g *Gate) RequireRole(role coreauth.Role) echo.MiddlewareFunc {
	return g.require(role)
}

func (g *Gate) require(role coreauth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := response.New(c)

			token := bearerToken(c.Request())
			if token == "" {
				return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}

			session, err := g.svc.Restore(c.Request().Context(), token)
			if err != nil {
				return b.WithError(err).Build()
			}

			if !coreauth.Authorize(session, role) {
				return b.WithError(errorbank.Forbidden("insufficient role")).Build()
			}

			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session the gate attached to the request context,
// or nil on unguarded routes.
func SessionFrom(c echo.Context) *coreauth.Session {
	session, _ := c.Get(sessionContextKey).(*coreauth.Session)
	return session
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}
