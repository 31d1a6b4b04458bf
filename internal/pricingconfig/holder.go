package pricingconfig

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Holder exposes the active pricing configuration snapshot. The file is
// watched so tier schedule changes roll out without a restart; an invalid
// file never replaces the running snapshot.
type Holder struct {
	current atomic.Value // holds PricingConfig
}

func NewHolder() (*Holder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/armora/config") // Volume-mounted config
	v.AddConfigPath("/etc/armora")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("ARMORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.version", defaults.Version)
		v.SetDefault("pricing.tiers", defaults.Tiers)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticHolder wraps a fixed snapshot, used by tests and repricing.
func NewStaticHolder(cfg PricingConfig) (*Holder, error) {
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}
	holder := &Holder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *Holder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}
