package pricingconfig

import "go.uber.org/fx"

var Module = fx.Module("pricingconfig",
	fx.Provide(NewHolder),
)
