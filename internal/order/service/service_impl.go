package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	"github.com/quartzsec/armora/internal/authorization"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	"github.com/quartzsec/armora/internal/clock"
	"github.com/quartzsec/armora/internal/notification"
	"github.com/quartzsec/armora/internal/observability/metrics"
	"github.com/quartzsec/armora/internal/order/domain"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/quartzsec/armora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clk   clock.Clock

	repo       domain.Repository
	catalogSvc catalogdomain.Service
	pricingSvc pricingdomain.Service
	authzSvc   authorization.Service
	auditSvc   auditdomain.Service
	hook       notification.Hook
}

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	CatalogSvc catalogdomain.Service
	PricingSvc pricingdomain.Service
	AuthzSvc   authorization.Service
	AuditSvc   auditdomain.Service
	Hook       notification.Hook
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("order.service"),
		genID:      p.GenID,
		clk:        p.Clock,
		repo:       p.Repo,
		catalogSvc: p.CatalogSvc,
		pricingSvc: p.PricingSvc,
		authzSvc:   p.AuthzSvc,
		auditSvc:   p.AuditSvc,
		hook:       p.Hook,
	}
}

// Create quotes the plan, shapes the line items, and persists order plus
// items atomically in pending status. The quoted amount is frozen here.
func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return domain.OrderResponse{}, domain.ErrMissingPrincipal
	}

	tier, ok := pricingdomain.ParseTier(strings.TrimSpace(req.Tier))
	if !ok {
		return domain.OrderResponse{}, pricingdomain.ErrInvalidTier
	}

	plan, product, err := s.catalogSvc.GetPlan(ctx, req.PlanID)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	planPricing, err := plan.Pricing()
	if err != nil {
		return domain.OrderResponse{}, err
	}

	quote, err := s.pricingSvc.Quote(pricingdomain.QuoteRequest{
		Pricing:  planPricing,
		Quantity: req.Quantity,
		Tier:     tier,
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	composed, err := s.pricingSvc.Compose(quote)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	now := s.clk.Now()
	order := domain.PurchaseOrder{
		ID:                s.genID.Generate(),
		OrgID:             caller.OrgID,
		RequesterID:       caller.ID,
		ProductID:         product.ID,
		PlanID:            plan.ID,
		Status:            approval.StatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		Tier:              tier,
		Quantity:          req.Quantity,
		Amount:            pricingdomain.RoundMoney(quote.TotalFirstPayment),
		Currency:          "USD",
		BillingCycleLabel: quote.BillingCycleLabel,
		ConfigVersion:     quote.ConfigVersion,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		order.Notes = &notes
	}

	items := make([]domain.OrderLineItem, 0, len(composed))
	for _, line := range composed {
		items = append(items, domain.OrderLineItem{
			ID:         s.genID.Generate(),
			OrderID:    order.ID,
			ProductID:  product.ID,
			PlanID:     plan.ID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			CreatedAt:  now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &order, items)
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	targetID := order.ID.String()
	_ = s.auditSvc.AuditLog(ctx, "order.create", "purchase_order", &targetID, map[string]any{
		"plan_id":  plan.ID.String(),
		"tier":     string(tier),
		"quantity": req.Quantity,
		"amount":   order.Amount.String(),
	})

	return domain.OrderResponse{Order: order, Items: items, Quote: &quote}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.OrderResponse, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	items, err := s.repo.FindItems(ctx, s.db, order.ID)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return domain.OrderResponse{Order: *order, Items: items}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	filter := domain.ListFilter{}

	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = approval.Status(status)
	}
	if requester := strings.TrimSpace(req.RequesterID); requester != "" {
		id, err := snowflake.ParseString(requester)
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidID
		}
		filter.RequesterID = &id
	}

	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = &domain.OrderCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}
	filter.Limit = pageSize

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, int32(pageSize), func(row *domain.PurchaseOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        row.ID.String(),
			CreatedAt: row.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(rows) > pageSize {
		rows = rows[:pageSize]
	}

	orders := make([]domain.PurchaseOrder, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		orders = append(orders, *row)
	}

	resp := domain.ListOrderResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Approve(ctx context.Context, id string) error {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectOrder, authorization.ActionOrderApprove); err != nil {
		return err
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := approval.EnsurePending(order); err != nil {
		return err
	}

	decision := approval.Approve(caller.ID, s.clk.Now())
	return s.finalize(ctx, order, decision)
}

func (s *Service) Reject(ctx context.Context, id string, reason string) error {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectOrder, authorization.ActionOrderReject); err != nil {
		return err
	}

	decision, err := approval.Reject(caller.ID, reason, s.clk.Now())
	if err != nil {
		return err
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := approval.EnsurePending(order); err != nil {
		return err
	}

	return s.finalize(ctx, order, decision)
}

// finalize applies the decision through the conditional update. Losing the
// race surfaces as AlreadyFinalized; the winner's audit fields stay intact.
func (s *Service) finalize(ctx context.Context, order *domain.PurchaseOrder, decision approval.Decision) error {
	applied, err := s.repo.Transition(ctx, s.db, order.ID, decision)
	if err != nil {
		return err
	}
	if !applied {
		metrics.RecordConflict("order")
		return approval.ErrAlreadyFinalized
	}

	outcome := strings.ToLower(string(decision.Target))
	metrics.RecordTransition("order", outcome)

	targetID := order.ID.String()
	auditMeta := map[string]any{
		"outcome": outcome,
		"actor":   decision.ActorID.String(),
	}
	if decision.Reason != "" {
		auditMeta["reason"] = decision.Reason
	}
	_ = s.auditSvc.AuditLog(ctx, "order."+outcome, "purchase_order", &targetID, auditMeta)

	s.hook.Notify(ctx, notification.Event{
		Action:     "order." + outcome,
		TargetType: "purchase_order",
		TargetID:   targetID,
		ActorID:    decision.ActorID.String(),
		Metadata:   auditMeta,
		OccurredAt: decision.At,
	})

	return nil
}

func (s *Service) MarkPaymentStatus(ctx context.Context, id string, status string) error {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectOrder, authorization.ActionOrderMarkPayment); err != nil {
		return err
	}

	parsed, ok := domain.ParsePaymentStatus(strings.TrimSpace(status))
	if !ok {
		return domain.ErrInvalidPaymentStatus
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}

	applied, err := s.repo.UpdatePaymentStatus(ctx, s.db, order.ID, parsed, s.clk.Now())
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrOrderNotFound
	}

	targetID := order.ID.String()
	_ = s.auditSvc.AuditLog(ctx, "order.payment_status", "purchase_order", &targetID, map[string]any{
		"payment_status": string(parsed),
	})
	return nil
}

func (s *Service) Reprice(ctx context.Context, id string) (pricingdomain.PriceQuote, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return pricingdomain.PriceQuote{}, err
	}

	plan, _, err := s.catalogSvc.GetPlan(ctx, order.PlanID.String())
	if err != nil {
		return pricingdomain.PriceQuote{}, err
	}
	planPricing, err := plan.Pricing()
	if err != nil {
		return pricingdomain.PriceQuote{}, err
	}

	return s.pricingSvc.Quote(pricingdomain.QuoteRequest{
		Pricing:  planPricing,
		Quantity: order.Quantity,
		Tier:     order.Tier,
	})
}

func (s *Service) loadOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
