package seeder

import "go.uber.org/fx"

// Module exposes the seeder to Fx.
var Module = fx.Provide(New)
