// Package domain contains persistence models for purchase orders and their
// line items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus is an independent axis from approval status; approving an
// order says nothing about whether it has been paid.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	switch PaymentStatus(value) {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return PaymentStatus(value), true
	default:
		return "", false
	}
}

// PurchaseOrder is created pending together with its line items and is
// mutated exactly once, by the approval workflow, into a terminal state.
// Amount is fixed at creation and never recomputed.
type PurchaseOrder struct {
	ID                snowflake.ID       `json:"id" gorm:"primaryKey"`
	OrgID             *snowflake.ID      `json:"organization_id,omitempty" gorm:"column:org_id;index"`
	RequesterID       snowflake.ID       `json:"requester_id" gorm:"not null;index"`
	ProductID         snowflake.ID       `json:"product_id" gorm:"not null;index"`
	PlanID            snowflake.ID       `json:"plan_id" gorm:"not null;index"`
	Status            approval.Status    `json:"status" gorm:"type:text;not null;default:'PENDING';index"`
	PaymentStatus     PaymentStatus      `json:"payment_status" gorm:"type:text;not null;default:'PENDING'"`
	Tier              pricingdomain.Tier `json:"tier" gorm:"type:text;not null"`
	Quantity          int32              `json:"quantity" gorm:"not null"`
	Amount            decimal.Decimal    `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency          string             `json:"currency" gorm:"type:text;not null;default:'USD'"`
	BillingCycleLabel string             `json:"billing_cycle_label" gorm:"type:text;not null"`
	ConfigVersion     string             `json:"config_version" gorm:"type:text;not null"`
	ApprovalDate      *time.Time         `json:"approval_date,omitempty" gorm:""`
	ApprovedBy        *snowflake.ID      `json:"approved_by,omitempty" gorm:""`
	RejectionReason   *string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	Notes             *string            `json:"notes,omitempty" gorm:"type:text"`
	Metadata          datatypes.JSONMap  `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt         time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (o PurchaseOrder) ApprovalStatus() approval.Status { return o.Status }

// OrderLineItem is owned exclusively by its order: created with it, never
// mutated afterwards, removed only by cascading deletion of the order.
type OrderLineItem struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrderID    snowflake.ID    `json:"order_id" gorm:"not null;index"`
	ProductID  snowflake.ID    `json:"product_id" gorm:"not null"`
	PlanID     snowflake.ID    `json:"plan_id" gorm:"not null"`
	Quantity   int32           `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }
