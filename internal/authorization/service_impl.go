// Package authorization decides which principal may act on which object.
// Approve/reject transitions require the admin role; the policy store is
// casbin-backed so deployments can extend it without code changes.
package authorization

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/principal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectOrder          = "order"
	ObjectAccountRequest = "account_request"
	ObjectProduct        = "product"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionOrderApprove     = "order.approve"
	ActionOrderReject      = "order.reject"
	ActionOrderMarkPayment = "order.mark_payment"
	ActionAccountApprove   = "account_request.approve"
	ActionAccountReject    = "account_request.reject"
	ActionAccountView      = "account_request.view"
	ActionProductCreate    = "product.create"
	ActionAuditLogView     = "audit_log.view"
)

type Service interface {
	Authorize(ctx context.Context, p principal.Principal, object, action string) error
}

type service struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func New(p Params) (Service, error) {
	adapter, err := gormadapter.NewAdapterByDB(p.DB)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if err := ensurePolicies(enforcer); err != nil {
		return nil, err
	}

	return &service{
		enforcer: enforcer,
		log:      p.Log.Named("authorization.service"),
	}, nil
}

// NewStatic builds an enforcer without a persistent policy store, seeded with
// the default policies. Used by tests and by tooling without a database.
func NewStatic(log *zap.Logger) (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if err := ensurePolicies(enforcer); err != nil {
		return nil, err
	}

	return &service{
		enforcer: enforcer,
		log:      log.Named("authorization.service"),
	}, nil
}

func ensurePolicies(enforcer *casbin.Enforcer) error {
	policies := [][]string{
		{string(principal.RoleAdmin), ObjectOrder, ActionOrderApprove},
		{string(principal.RoleAdmin), ObjectOrder, ActionOrderReject},
		{string(principal.RoleAdmin), ObjectOrder, ActionOrderMarkPayment},
		{string(principal.RoleAdmin), ObjectAccountRequest, ActionAccountApprove},
		{string(principal.RoleAdmin), ObjectAccountRequest, ActionAccountReject},
		{string(principal.RoleAdmin), ObjectAccountRequest, ActionAccountView},
		{string(principal.RoleAdmin), ObjectProduct, ActionProductCreate},
		{string(principal.RoleAdmin), ObjectAuditLog, ActionAuditLogView},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return fmt.Errorf("seed policy %v: %w", policy, err)
		}
	}

	groupings := [][]string{
		{string(principal.RoleAdmin), string(principal.RoleManager)},
		{string(principal.RoleManager), string(principal.RoleUser)},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return fmt.Errorf("seed role inheritance %v: %w", grouping, err)
		}
	}

	return nil
}

func (s *service) Authorize(ctx context.Context, p principal.Principal, object, action string) error {
	_ = ctx

	allowed, err := s.enforcer.Enforce(string(p.Role), object, action)
	if err != nil {
		return fmt.Errorf("enforce %s on %s: %w", action, object, err)
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("actor", p.ID.String()),
			zap.String("role", string(p.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return approval.ErrUnauthorized
	}
	return nil
}
