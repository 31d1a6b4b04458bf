package domain

import (
	"context"
	"errors"

	"github.com/quartzsec/armora/pkg/db/pagination"
)

type SubmitRequest struct {
	Email         string `json:"email"`
	RequestedRole string `json:"requested_role"`
}

type ApproveRequest struct {
	// Role overrides the requested role when set. Empty means grant what
	// was asked for.
	Role string `json:"role,omitempty"`
}

type ListRequest struct {
	pagination.Pagination
	Status string
}

type ListResponse struct {
	pagination.PageInfo
	Requests []AccountRequest `json:"requests"`
}

type Service interface {
	// Submit files an access request for the calling user. A rejected
	// request is reopened in place; a pending or approved one is a conflict.
	Submit(ctx context.Context, req SubmitRequest) (AccountRequest, error)
	GetByID(ctx context.Context, id string) (AccountRequest, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Approve(ctx context.Context, id string, req ApproveRequest) error
	Reject(ctx context.Context, id string, reason string) error
}

var (
	ErrRequestNotFound  = errors.New("account_request_not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidRole      = errors.New("invalid_role")
	ErrDuplicateRequest = errors.New("duplicate_account_request")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrMissingPrincipal = errors.New("missing_principal")
)
