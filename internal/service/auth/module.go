package auth

import (
	"go.uber.org/fx"

	repo "github.com/meatline/meatline/internal/repository/account"
)

// Module provides the auth service to Fx.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) AccountSource { return r }),
	fx.Provide(NewService),
)
