package service

import (
	"github.com/quartzsec/armora/internal/pricingconfig"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	holder *pricingconfig.Holder
}

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Holder *pricingconfig.Holder
}

func NewService(p ServiceParam) pricingdomain.Service {
	return &Service{
		log:    p.Log.Named("pricing.service"),
		holder: p.Holder,
	}
}

// Quote prices a plan against the active tier schedule.
func (s *Service) Quote(req pricingdomain.QuoteRequest) (pricingdomain.PriceQuote, error) {
	return s.QuoteWithConfig(s.holder.Get(), req)
}

// QuoteWithConfig prices a plan against an explicit schedule snapshot so
// historical orders can be requoted deterministically.
func (s *Service) QuoteWithConfig(cfg pricingconfig.PricingConfig, req pricingdomain.QuoteRequest) (pricingdomain.PriceQuote, error) {
	if req.Quantity < 1 {
		return pricingdomain.PriceQuote{}, pricingdomain.ErrInvalidQuantity
	}

	surcharge, ok := cfg.Surcharge(string(req.Tier))
	if !ok {
		return pricingdomain.PriceQuote{}, pricingdomain.ErrInvalidTier
	}
	// The surcharge multiplies each base rate exactly once; every figure
	// below derives from already-adjusted rates and is never re-adjusted.
	multiplier := decimal.NewFromInt(1).Add(surcharge)

	switch pricing := req.Pricing.(type) {
	case pricingdomain.FlatPricing:
		return quoteFlat(cfg, req, pricing, multiplier)
	case pricingdomain.PerDevicePricing:
		return quotePerDevice(cfg, req, pricing, multiplier)
	case pricingdomain.PerUnitPricing:
		return quotePerUnit(cfg, req, pricing, multiplier)
	default:
		return pricingdomain.PriceQuote{}, pricingdomain.ErrInvalidShape
	}
}

func quoteFlat(
	cfg pricingconfig.PricingConfig,
	req pricingdomain.QuoteRequest,
	pricing pricingdomain.FlatPricing,
	multiplier decimal.Decimal,
) (pricingdomain.PriceQuote, error) {
	if pricing.Price.IsNegative() {
		return pricingdomain.PriceQuote{}, pricingdomain.ErrNegativePrice
	}

	// Quantity is informational for flat plans and never multiplies the price.
	total := pricing.Price.Mul(multiplier)

	return pricingdomain.PriceQuote{
		Shape:                pricingdomain.ShapeFlat,
		Tier:                 req.Tier,
		Quantity:             req.Quantity,
		SetupFeeTotal:        decimal.Zero,
		RecurringPeriodPrice: total,
		TotalFirstPayment:    total,
		BillingCycleLabel:    pricingdomain.CycleLabel(pricingdomain.ShapeFlat, pricing.Interval),
		ConfigVersion:        cfg.Version,
	}, nil
}

func quotePerDevice(
	cfg pricingconfig.PricingConfig,
	req pricingdomain.QuoteRequest,
	pricing pricingdomain.PerDevicePricing,
	multiplier decimal.Decimal,
) (pricingdomain.PriceQuote, error) {
	for _, rate := range []decimal.Decimal{
		pricing.RecurringPrice,
		pricing.AdditionalRecurringPrice,
		pricing.SetupFee,
		pricing.AdditionalSetupFee,
	} {
		if rate.IsNegative() {
			return pricingdomain.PriceQuote{}, pricingdomain.ErrNegativePrice
		}
	}

	breakdown := pricingdomain.DeviceBreakdown{
		FirstDeviceSetupFee:        pricing.SetupFee.Mul(multiplier),
		FirstDeviceRecurring:       pricing.RecurringPrice.Mul(multiplier),
		AdditionalSetupFeePerUnit:  pricing.AdditionalSetupFee.Mul(multiplier),
		AdditionalRecurringPerUnit: pricing.AdditionalRecurringPrice.Mul(multiplier),
	}

	additional := decimal.NewFromInt(int64(req.Quantity - 1))
	setupFeeTotal := breakdown.FirstDeviceSetupFee.Add(breakdown.AdditionalSetupFeePerUnit.Mul(additional))
	recurringTotal := breakdown.FirstDeviceRecurring.Add(breakdown.AdditionalRecurringPerUnit.Mul(additional))

	return pricingdomain.PriceQuote{
		Shape:                pricingdomain.ShapePerDevice,
		Tier:                 req.Tier,
		Quantity:             req.Quantity,
		SetupFeeTotal:        setupFeeTotal,
		RecurringPeriodPrice: recurringTotal,
		TotalFirstPayment:    setupFeeTotal.Add(recurringTotal),
		Breakdown:            &breakdown,
		BillingCycleLabel:    pricingdomain.CycleLabel(pricingdomain.ShapePerDevice, pricing.Interval),
		ConfigVersion:        cfg.Version,
	}, nil
}

func quotePerUnit(
	cfg pricingconfig.PricingConfig,
	req pricingdomain.QuoteRequest,
	pricing pricingdomain.PerUnitPricing,
	multiplier decimal.Decimal,
) (pricingdomain.PriceQuote, error) {
	if pricing.UnitPrice.IsNegative() {
		return pricingdomain.PriceQuote{}, pricingdomain.ErrNegativePrice
	}

	total := pricing.UnitPrice.Mul(multiplier).Mul(decimal.NewFromInt(int64(req.Quantity)))

	return pricingdomain.PriceQuote{
		Shape:                pricingdomain.ShapePerUnit,
		Tier:                 req.Tier,
		Quantity:             req.Quantity,
		SetupFeeTotal:        decimal.Zero,
		RecurringPeriodPrice: decimal.Zero,
		TotalFirstPayment:    total,
		BillingCycleLabel:    pricingdomain.CycleLabel(pricingdomain.ShapePerUnit, ""),
		ConfigVersion:        cfg.Version,
	}, nil
}

// Compose expands a quote into line items. Flat plans emit a single
// quantity-one line; device and unit plans emit a single blended line whose
// unit price reconstructs the total within a cent.
func (s *Service) Compose(quote pricingdomain.PriceQuote) ([]pricingdomain.ComposedLine, error) {
	if quote.Quantity < 1 {
		return nil, pricingdomain.ErrInvalidQuantity
	}

	total := pricingdomain.RoundMoney(quote.TotalFirstPayment)

	if quote.Shape == pricingdomain.ShapeFlat {
		return []pricingdomain.ComposedLine{{
			Quantity:   1,
			UnitPrice:  total,
			TotalPrice: total,
		}}, nil
	}

	blended := pricingdomain.RoundMoney(
		quote.TotalFirstPayment.Div(decimal.NewFromInt(int64(quote.Quantity))),
	)

	return []pricingdomain.ComposedLine{{
		Quantity:   quote.Quantity,
		UnitPrice:  blended,
		TotalPrice: total,
	}}, nil
}
