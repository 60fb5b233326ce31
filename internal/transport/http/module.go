package http

import (
	"go.uber.org/fx"

	accounttransport "github.com/meatline/meatline/internal/transport/http/account"
	authtransport "github.com/meatline/meatline/internal/transport/http/auth"
	catalogtransport "github.com/meatline/meatline/internal/transport/http/catalog"
	ordertransport "github.com/meatline/meatline/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	authtransport.Module,
	accounttransport.Module,
	catalogtransport.Module,
	ordertransport.Module,
)
