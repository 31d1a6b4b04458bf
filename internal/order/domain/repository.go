package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	"gorm.io/gorm"
)

type OrderCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Status      approval.Status
	RequesterID *snowflake.ID
	OrgID       *snowflake.ID
	Cursor      *OrderCursor
	Limit       int
}

type Repository interface {
	// Insert persists the order and its items in the supplied transaction;
	// the caller owns atomicity.
	Insert(ctx context.Context, db *gorm.DB, order *PurchaseOrder, items []OrderLineItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PurchaseOrder, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderLineItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*PurchaseOrder, error)
	// Transition applies a finalizing decision as a single conditional update
	// keyed on status = PENDING. Returns false when the order was already
	// finalized by a concurrent decision; prior audit fields are untouched.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, decision approval.Decision) (bool, error)
	UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, at time.Time) (bool, error)
}
