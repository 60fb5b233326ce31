package auth

import (
	"go.uber.org/fx"

	"github.com/labstack/echo/v4"
)

// Module wires the access gate and HTTP auth handlers.
var Module = fx.Options(
	fx.Provide(NewGate),
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, gate *Gate) {
		Register(e, h, gate)
	}),
)
