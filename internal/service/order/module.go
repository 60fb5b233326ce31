package order

import (
	"go.uber.org/fx"

	repo "github.com/meatline/meatline/internal/repository/order"
)

// Module provides the order service to Fx.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) Store { return r }),
	fx.Provide(NewService),
)
