package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/account/domain"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/principal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.AccountRequest) error {
	return db.WithContext(ctx).Create(request).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.AccountRequest, error) {
	var request domain.AccountRequest
	err := db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.AccountRequest, error) {
	var request domain.AccountRequest
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AccountRequest, error) {
	var requests []*domain.AccountRequest
	stmt := db.WithContext(ctx).Model(&domain.AccountRequest{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
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

	if err := stmt.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, decision approval.Decision, role *principal.Role) (bool, error) {
	updates := map[string]any{
		"status":     decision.Target,
		"updated_at": decision.At,
	}
	switch decision.Target {
	case approval.StatusApproved:
		updates["approval_date"] = decision.At
		updates["approved_by"] = decision.ActorID
		updates["assigned_role"] = role
	case approval.StatusRejected:
		updates["rejection_reason"] = decision.Reason
	default:
		return false, approval.ErrAlreadyFinalized
	}

	res := db.WithContext(ctx).
		Model(&domain.AccountRequest{}).
		Where("id = ? AND status = ?", id, approval.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Reopen(ctx context.Context, db *gorm.DB, id snowflake.ID, requestedRole principal.Role, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.AccountRequest{}).
		Where("id = ? AND status = ?", id, approval.StatusRejected).
		Updates(map[string]any{
			"status":           approval.StatusPending,
			"requested_role":   requestedRole,
			"assigned_role":    nil,
			"approval_date":    nil,
			"approved_by":      nil,
			"rejection_reason": nil,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
