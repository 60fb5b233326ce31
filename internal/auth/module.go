package auth

import (
	"go.uber.org/fx"

	"github.com/meatline/meatline/internal/cache"
	"github.com/meatline/meatline/internal/config"
)

// Module provides the session store to Fx. Sessions live in the shared cache
// backend so they survive restarts; with caching disabled they fall back to
// process memory.
var Module = fx.Provide(func(cfg config.Config, backend cache.Store) Store {
	if cfg.Cache.Enabled {
		return NewStore(backend, cfg.Auth.SessionTTL)
	}
	return NewMemoryStore(cfg.Auth.SessionTTL)
})
