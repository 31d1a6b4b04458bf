package domain

import (
	"context"
	"errors"

	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Plans       []CreatePlanRequest `json:"plans,omitempty"`
}

type CreatePlanRequest struct {
	Name                     string                        `json:"name"`
	Shape                    pricingdomain.Shape           `json:"shape"`
	BillingInterval          pricingdomain.BillingInterval `json:"billing_interval,omitempty"`
	BasePrice                decimal.Decimal               `json:"base_price"`
	SetupFee                 decimal.Decimal               `json:"setup_fee,omitempty"`
	AdditionalSetupFee       decimal.Decimal               `json:"additional_setup_fee,omitempty"`
	AdditionalRecurringPrice decimal.Decimal               `json:"additional_recurring_price,omitempty"`
}

type ProductResponse struct {
	Product
	Plans []Plan `json:"plans"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (ProductResponse, error)
	List(ctx context.Context) ([]ProductResponse, error)
	GetByID(ctx context.Context, id string) (ProductResponse, error)
	GetPlan(ctx context.Context, planID string) (Plan, Product, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidShape    = errors.New("invalid_shape")
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidID       = errors.New("invalid_id")
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrNotFound        = errors.New("not_found")
	ErrPlanNotFound    = errors.New("plan_not_found")
)
