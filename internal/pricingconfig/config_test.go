package pricingconfig

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPricingConfigIsValid(t *testing.T) {
	cfg := DefaultPricingConfig()
	assert.NoError(t, validatePricingConfig(cfg))
	assert.Equal(t, "default", cfg.Version)
}

func TestSurchargeLookup(t *testing.T) {
	cfg := DefaultPricingConfig()

	pro, ok := cfg.Surcharge("pro")
	require.True(t, ok)
	assert.True(t, pro.Equal(decimal.NewFromFloat(0.20)))

	_, ok = cfg.Surcharge("platinum")
	assert.False(t, ok)
}

func TestValidatePricingConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PricingConfig
		wantErr bool
	}{
		{
			name:    "valid default",
			cfg:     DefaultPricingConfig(),
			wantErr: false,
		},
		{
			name:    "missing version",
			cfg:     PricingConfig{Tiers: DefaultPricingConfig().Tiers},
			wantErr: true,
		},
		{
			name:    "empty tiers",
			cfg:     PricingConfig{Version: "v1"},
			wantErr: true,
		},
		{
			name: "standard surcharge must be zero",
			cfg: PricingConfig{
				Version: "v1",
				Tiers: []TierRate{
					{Tier: "standard", SurchargePercent: 5},
					{Tier: "pro", SurchargePercent: 20},
					{Tier: "enterprise", SurchargePercent: 35},
				},
			},
			wantErr: true,
		},
		{
			name: "pro must be below enterprise",
			cfg: PricingConfig{
				Version: "v1",
				Tiers: []TierRate{
					{Tier: "standard", SurchargePercent: 0},
					{Tier: "pro", SurchargePercent: 40},
					{Tier: "enterprise", SurchargePercent: 35},
				},
			},
			wantErr: true,
		},
		{
			name: "duplicate tier",
			cfg: PricingConfig{
				Version: "v1",
				Tiers: []TierRate{
					{Tier: "standard", SurchargePercent: 0},
					{Tier: "pro", SurchargePercent: 20},
					{Tier: "pro", SurchargePercent: 25},
					{Tier: "enterprise", SurchargePercent: 35},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePricingConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
