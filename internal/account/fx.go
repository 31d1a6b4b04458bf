package account

import (
	"github.com/quartzsec/armora/internal/account/repository"
	"github.com/quartzsec/armora/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
