// Package domain contains the account approval request model. A request is
// the gate between a self-registered user and an active account: it is
// created pending and finalized exactly once by an administrator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/principal"
)

// AccountRequest tracks one user's pending access. UserID is unique: a user
// has at most one request, and resubmission after rejection reopens the same
// row rather than creating a second one.
type AccountRequest struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID           *snowflake.ID   `json:"organization_id,omitempty" gorm:"column:org_id;index"`
	UserID          snowflake.ID    `json:"user_id" gorm:"not null;uniqueIndex"`
	Email           string          `json:"email" gorm:"type:text;not null"`
	RequestedRole   principal.Role  `json:"requested_role" gorm:"type:text;not null"`
	Status          approval.Status `json:"status" gorm:"type:text;not null;default:'PENDING';index"`
	AssignedRole    *principal.Role `json:"assigned_role,omitempty" gorm:"type:text"`
	ApprovalDate    *time.Time      `json:"approval_date,omitempty" gorm:""`
	ApprovedBy      *snowflake.ID   `json:"approved_by,omitempty" gorm:""`
	RejectionReason *string         `json:"rejection_reason,omitempty" gorm:"type:text"`
	Notes           *string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AccountRequest) TableName() string { return "account_requests" }

func (r AccountRequest) ApprovalStatus() approval.Status { return r.Status }
