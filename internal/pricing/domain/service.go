package domain

import (
	"errors"

	"github.com/quartzsec/armora/internal/pricingconfig"
)

type QuoteRequest struct {
	Pricing  PlanPricing
	Quantity int32
	Tier     Tier
}

// Service quotes plans and shapes quotes into line items. Both operations are
// pure: no I/O, no suspension, identical inputs yield identical outputs.
type Service interface {
	Quote(req QuoteRequest) (PriceQuote, error)
	QuoteWithConfig(cfg pricingconfig.PricingConfig, req QuoteRequest) (PriceQuote, error)
	Compose(quote PriceQuote) ([]ComposedLine, error)
}

var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidTier     = errors.New("invalid_tier")
	ErrNegativePrice   = errors.New("negative_price")
	ErrInvalidShape    = errors.New("invalid_shape")
)
