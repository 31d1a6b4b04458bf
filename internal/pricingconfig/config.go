package pricingconfig

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TierRate binds a pricing tier name to the surcharge applied on top of a
// plan's base rates. Percent is expressed as a whole number (20 = +20%).
type TierRate struct {
	Tier             string  `json:"tier" mapstructure:"tier"`
	SurchargePercent float64 `json:"surchargePercent" mapstructure:"surchargePercent"`
}

// PricingConfig is an immutable snapshot of the tier schedule. Version is
// stamped onto orders at creation so historical amounts stay explainable
// against the schedule in effect at the time.
type PricingConfig struct {
	Version string     `json:"version" mapstructure:"version"`
	Tiers   []TierRate `json:"tiers" mapstructure:"tiers"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Version: "default",
		Tiers: []TierRate{
			{Tier: "standard", SurchargePercent: 0},
			{Tier: "pro", SurchargePercent: 20},
			{Tier: "enterprise", SurchargePercent: 35},
		},
	}
}

// Surcharge resolves the multiplier fraction for a tier, e.g. 0.20 for +20%.
func (c PricingConfig) Surcharge(tier string) (decimal.Decimal, bool) {
	for _, rate := range c.Tiers {
		if rate.Tier == tier {
			return decimal.NewFromFloat(rate.SurchargePercent).Div(decimal.NewFromInt(100)), true
		}
	}
	return decimal.Zero, false
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.Version == "" {
		return errors.New("pricing.version cannot be empty")
	}
	if len(cfg.Tiers) == 0 {
		return errors.New("pricing.tiers cannot be empty")
	}

	seen := make(map[string]struct{}, len(cfg.Tiers))
	for _, rate := range cfg.Tiers {
		if rate.Tier == "" {
			return errors.New("pricing.tiers entries require a tier name")
		}
		if _, dup := seen[rate.Tier]; dup {
			return fmt.Errorf("pricing.tiers contains duplicate tier %q", rate.Tier)
		}
		seen[rate.Tier] = struct{}{}
		if rate.SurchargePercent < 0 {
			return fmt.Errorf("pricing.tiers surcharge for %q cannot be negative", rate.Tier)
		}
	}

	standard, ok := lookupPercent(cfg, "standard")
	if !ok {
		return errors.New("pricing.tiers must define the standard tier")
	}
	if standard != 0 {
		return errors.New("pricing.tiers standard surcharge must be zero")
	}

	pro, ok := lookupPercent(cfg, "pro")
	if !ok {
		return errors.New("pricing.tiers must define the pro tier")
	}
	enterprise, ok := lookupPercent(cfg, "enterprise")
	if !ok {
		return errors.New("pricing.tiers must define the enterprise tier")
	}
	if pro <= 0 || enterprise <= pro {
		return errors.New("pricing.tiers surcharges must satisfy standard < pro < enterprise")
	}

	return nil
}

func lookupPercent(cfg PricingConfig, tier string) (float64, bool) {
	for _, rate := range cfg.Tiers {
		if rate.Tier == tier {
			return rate.SurchargePercent, true
		}
	}
	return 0, false
}
