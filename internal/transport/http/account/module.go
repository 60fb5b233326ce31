package account

import (
	"go.uber.org/fx"

	"github.com/labstack/echo/v4"

	authtransport "github.com/meatline/meatline/internal/transport/http/auth"
)

// Module wires HTTP account handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, gate *authtransport.Gate) {
		Register(e, h, gate)
	}),
)
