package order

import (
	"github.com/quartzsec/armora/internal/order/repository"
	"github.com/quartzsec/armora/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
