// Package domain contains persistence models for the device-security product
// catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a sellable device-security offering (agent subscription,
// site license, hardware appliance).
type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrgID       snowflake.ID      `json:"organization_id" gorm:"column:org_id;not null;index"`
	Code        string            `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description string            `json:"description,omitempty" gorm:"type:text"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Plan binds a product to a billing shape and its base rates. The
// per-device columns are zero for flat and per-unit shapes.
type Plan struct {
	ID                       snowflake.ID                  `json:"id" gorm:"primaryKey"`
	OrgID                    snowflake.ID                  `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProductID                snowflake.ID                  `json:"product_id" gorm:"not null;index"`
	Code                     string                        `json:"code" gorm:"type:text;not null"`
	Name                     string                        `json:"name" gorm:"type:text;not null"`
	Shape                    pricingdomain.Shape           `json:"shape" gorm:"type:text;not null"`
	BillingInterval          pricingdomain.BillingInterval `json:"billing_interval" gorm:"type:text;not null;default:'MONTH'"`
	BasePrice                decimal.Decimal               `json:"base_price" gorm:"type:numeric(12,2);not null"`
	SetupFee                 decimal.Decimal               `json:"setup_fee" gorm:"type:numeric(12,2);not null;default:0"`
	AdditionalSetupFee       decimal.Decimal               `json:"additional_setup_fee" gorm:"type:numeric(12,2);not null;default:0"`
	AdditionalRecurringPrice decimal.Decimal               `json:"additional_recurring_price" gorm:"type:numeric(12,2);not null;default:0"`
	Active                   bool                          `json:"active" gorm:"not null;default:true"`
	CreatedAt                time.Time                     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time                     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "plans" }

// Pricing maps the stored columns onto the shape variant the quoting engine
// consumes.
func (p Plan) Pricing() (pricingdomain.PlanPricing, error) {
	switch p.Shape {
	case pricingdomain.ShapeFlat:
		return pricingdomain.FlatPricing{
			Price:    p.BasePrice,
			Interval: p.BillingInterval,
		}, nil
	case pricingdomain.ShapePerDevice:
		return pricingdomain.PerDevicePricing{
			RecurringPrice:           p.BasePrice,
			AdditionalRecurringPrice: p.AdditionalRecurringPrice,
			SetupFee:                 p.SetupFee,
			AdditionalSetupFee:       p.AdditionalSetupFee,
			Interval:                 p.BillingInterval,
		}, nil
	case pricingdomain.ShapePerUnit:
		return pricingdomain.PerUnitPricing{
			UnitPrice: p.BasePrice,
		}, nil
	default:
		return nil, pricingdomain.ErrInvalidShape
	}
}
