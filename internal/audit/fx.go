package audit

import (
	"github.com/quartzsec/armora/internal/audit/repository"
	"github.com/quartzsec/armora/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
