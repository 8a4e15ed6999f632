package router

import "go.uber.org/fx"

// Module provides the gin engine with every API route mounted.
var Module = fx.Module("router", fx.Provide(Setup))
