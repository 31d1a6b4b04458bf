package catalog

import (
	"github.com/quartzsec/armora/internal/catalog/repository"
	"github.com/quartzsec/armora/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
