package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/principal"
	"gorm.io/gorm"
)

type RequestCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Status approval.Status
	Cursor *RequestCursor
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *AccountRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AccountRequest, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*AccountRequest, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AccountRequest, error)
	// Transition finalizes the request. On approval the assigned role lands
	// in the same conditional update as the status flip, so a reader never
	// observes an approved request without its role.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, decision approval.Decision, role *principal.Role) (bool, error)
	// Reopen flips a rejected request back to pending and clears the
	// previous decision's fields.
	Reopen(ctx context.Context, db *gorm.DB, id snowflake.ID, requestedRole principal.Role, at time.Time) (bool, error)
}
