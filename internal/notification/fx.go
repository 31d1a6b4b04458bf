package notification

import (
	"github.com/quartzsec/armora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Hook {
	if cfg.NotificationWebhookURL == "" {
		return NoOpHook{}
	}
	return NewWebhookHook(cfg.NotificationWebhookURL, log)
}

var Module = fx.Module("notification",
	fx.Provide(NewFromConfig),
)
