package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.PurchaseOrder, items []domain.OrderLineItem) error {
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderLineItem, error) {
	var items []domain.OrderLineItem
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	stmt := db.WithContext(ctx).Model(&domain.PurchaseOrder{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != nil {
		stmt = stmt.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.OrgID != nil {
		stmt = stmt.Where("org_id = ?", *filter.OrgID)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition is the single write path for status, approval_date, approved_by
// and rejection_reason. The WHERE clause on status makes concurrent
// transition attempts mutually exclusive: one wins, the other matches zero
// rows.
func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, decision approval.Decision) (bool, error) {
	updates := map[string]any{
		"status":     decision.Target,
		"updated_at": decision.At,
	}
	switch decision.Target {
	case approval.StatusApproved:
		updates["approval_date"] = decision.At
		updates["approved_by"] = decision.ActorID
	case approval.StatusRejected:
		updates["rejection_reason"] = decision.Reason
	default:
		return false, approval.ErrAlreadyFinalized
	}

	res := db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, approval.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.PaymentStatus, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": status,
			"updated_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
