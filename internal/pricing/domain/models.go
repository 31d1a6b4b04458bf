// Package domain defines the pricing shapes, tiers, and quote types used by
// the quoting engine.
package domain

import "github.com/shopspring/decimal"

// Tier is a named pricing multiplier applied uniformly to a plan's base rates.
type Tier string

const (
	TierStandard   Tier = "standard"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

func ParseTier(value string) (Tier, bool) {
	switch Tier(value) {
	case TierStandard, TierPro, TierEnterprise:
		return Tier(value), true
	default:
		return "", false
	}
}

type Shape string

const (
	ShapeFlat      Shape = "FLAT"
	ShapePerDevice Shape = "PER_DEVICE"
	ShapePerUnit   Shape = "PER_UNIT"
)

type BillingInterval string

const (
	Month BillingInterval = "MONTH"
	Year  BillingInterval = "YEAR"
)

// PlanPricing is the billing shape of a plan. Each variant carries only the
// rates its shape needs.
type PlanPricing interface {
	Shape() Shape
}

// FlatPricing is a single price for a fixed billing period. Quantity never
// multiplies a flat price.
type FlatPricing struct {
	Price    decimal.Decimal
	Interval BillingInterval
}

func (FlatPricing) Shape() Shape { return ShapeFlat }

// PerDevicePricing is a recurring per-device subscription with one-time setup
// fees. The first device and additional devices carry independently
// configured rates.
type PerDevicePricing struct {
	RecurringPrice           decimal.Decimal // first device, per billing interval
	AdditionalRecurringPrice decimal.Decimal // each device beyond the first
	SetupFee                 decimal.Decimal // first device, one-time
	AdditionalSetupFee       decimal.Decimal // each device beyond the first, one-time
	Interval                 BillingInterval
}

func (PerDevicePricing) Shape() Shape { return ShapePerDevice }

// PerUnitPricing is a one-time hardware price multiplied by quantity. No
// setup fee, no recurring component.
type PerUnitPricing struct {
	UnitPrice decimal.Decimal
}

func (PerUnitPricing) Shape() Shape { return ShapePerUnit }

// DeviceBreakdown itemizes the tier-adjusted per-device rates behind a
// per-device quote. Callers needing receipt-level detail must retain the
// quote; line items only keep the blended figures.
type DeviceBreakdown struct {
	FirstDeviceSetupFee        decimal.Decimal `json:"first_device_setup_fee"`
	FirstDeviceRecurring       decimal.Decimal `json:"first_device_recurring"`
	AdditionalSetupFeePerUnit  decimal.Decimal `json:"additional_setup_fee_per_unit"`
	AdditionalRecurringPerUnit decimal.Decimal `json:"additional_recurring_per_unit"`
}

// PriceQuote is a derived value, computed on demand and never persisted
// standalone. Monetary fields stay unrounded; rounding happens once, at
// composition or display.
type PriceQuote struct {
	Shape                Shape            `json:"shape"`
	Tier                 Tier             `json:"tier"`
	Quantity             int32            `json:"quantity"`
	SetupFeeTotal        decimal.Decimal  `json:"setup_fee_total"`
	RecurringPeriodPrice decimal.Decimal  `json:"recurring_period_price"`
	TotalFirstPayment    decimal.Decimal  `json:"total_first_payment"`
	Breakdown            *DeviceBreakdown `json:"breakdown,omitempty"`
	BillingCycleLabel    string           `json:"billing_cycle_label"`
	ConfigVersion        string           `json:"config_version"`
}

// ComposedLine is the shaped line item a quote expands into. Persistence is
// the caller's responsibility.
type ComposedLine struct {
	Quantity   int32
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// RoundMoney applies the single permitted rounding step: two decimal places,
// half up.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func CycleLabel(shape Shape, interval BillingInterval) string {
	if shape == ShapePerUnit {
		return "one-time"
	}
	switch interval {
	case Year:
		return "annual"
	default:
		return "monthly"
	}
}
