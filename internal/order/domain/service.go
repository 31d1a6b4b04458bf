package domain

import (
	"context"
	"errors"

	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/quartzsec/armora/pkg/db/pagination"
)

type CreateOrderRequest struct {
	PlanID   string `json:"plan_id"`
	Quantity int32  `json:"quantity"`
	Tier     string `json:"tier"`
	Notes    string `json:"notes,omitempty"`
}

type ListOrderRequest struct {
	pagination.Pagination
	Status      string
	RequesterID string
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []PurchaseOrder `json:"orders"`
}

type OrderResponse struct {
	Order PurchaseOrder             `json:"order"`
	Items []OrderLineItem           `json:"items"`
	Quote *pricingdomain.PriceQuote `json:"quote,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	GetByID(ctx context.Context, id string) (OrderResponse, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string, reason string) error
	MarkPaymentStatus(ctx context.Context, id string, status string) error
	// Reprice requotes the order's plan against the active pricing
	// configuration for comparison display. The stored amount never changes.
	Reprice(ctx context.Context, id string) (pricingdomain.PriceQuote, error)
}

var (
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidPageToken     = errors.New("invalid_page_token")
	ErrMissingPrincipal     = errors.New("missing_principal")
)
