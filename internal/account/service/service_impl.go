package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/account/domain"
	"github.com/quartzsec/armora/internal/approval"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	"github.com/quartzsec/armora/internal/authorization"
	"github.com/quartzsec/armora/internal/clock"
	"github.com/quartzsec/armora/internal/notification"
	"github.com/quartzsec/armora/internal/observability/metrics"
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

	repo     domain.Repository
	authzSvc authorization.Service
	auditSvc auditdomain.Service
	hook     notification.Hook
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	AuthzSvc authorization.Service
	AuditSvc auditdomain.Service
	Hook     notification.Hook
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("account.service"),
		genID:    p.GenID,
		clk:      p.Clock,
		repo:     p.Repo,
		authzSvc: p.AuthzSvc,
		auditSvc: p.AuditSvc,
		hook:     p.Hook,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.AccountRequest, error) {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return domain.AccountRequest{}, domain.ErrMissingPrincipal
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.AccountRequest{}, domain.ErrInvalidEmail
	}

	requestedRole := principal.RoleUser
	if raw := strings.TrimSpace(req.RequestedRole); raw != "" {
		parsed, ok := principal.ParseRole(raw)
		if !ok {
			return domain.AccountRequest{}, domain.ErrInvalidRole
		}
		requestedRole = parsed
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, caller.ID)
	if err != nil {
		return domain.AccountRequest{}, err
	}

	if existing != nil {
		switch existing.Status {
		case approval.StatusRejected:
			applied, err := s.repo.Reopen(ctx, s.db, existing.ID, requestedRole, s.clk.Now())
			if err != nil {
				return domain.AccountRequest{}, err
			}
			if !applied {
				return domain.AccountRequest{}, domain.ErrDuplicateRequest
			}
			reopened, err := s.repo.FindByID(ctx, s.db, existing.ID)
			if err != nil {
				return domain.AccountRequest{}, err
			}
			if reopened == nil {
				return domain.AccountRequest{}, domain.ErrRequestNotFound
			}

			targetID := reopened.ID.String()
			_ = s.auditSvc.AuditLog(ctx, "account_request.resubmit", "account_request", &targetID, map[string]any{
				"requested_role": string(requestedRole),
			})
			return *reopened, nil
		default:
			return domain.AccountRequest{}, domain.ErrDuplicateRequest
		}
	}

	now := s.clk.Now()
	request := domain.AccountRequest{
		ID:            s.genID.Generate(),
		OrgID:         caller.OrgID,
		UserID:        caller.ID,
		Email:         email,
		RequestedRole: requestedRole,
		Status:        approval.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.AccountRequest{}, err
	}

	targetID := request.ID.String()
	_ = s.auditSvc.AuditLog(ctx, "account_request.submit", "account_request", &targetID, map[string]any{
		"requested_role": string(requestedRole),
	})

	return request, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.AccountRequest, error) {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return domain.AccountRequest{}, approval.ErrUnauthorized
	}

	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return domain.AccountRequest{}, err
	}

	// Users may read their own request; anything else needs the view grant.
	if request.UserID != caller.ID {
		if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectAccountRequest, authorization.ActionAccountView); err != nil {
			return domain.AccountRequest{}, err
		}
	}
	return *request, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return domain.ListResponse{}, approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectAccountRequest, authorization.ActionAccountView); err != nil {
		return domain.ListResponse{}, err
	}

	filter := domain.ListFilter{}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = approval.Status(status)
	}

	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = &domain.RequestCursor{ID: id, CreatedAt: createdAt}
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
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, int32(pageSize), func(row *domain.AccountRequest) string {
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

	requests := make([]domain.AccountRequest, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		requests = append(requests, *row)
	}

	resp := domain.ListResponse{Requests: requests}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Approve(ctx context.Context, id string, req domain.ApproveRequest) error {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectAccountRequest, authorization.ActionAccountApprove); err != nil {
		return err
	}

	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return err
	}
	if err := approval.EnsurePending(request); err != nil {
		return err
	}

	role := request.RequestedRole
	if raw := strings.TrimSpace(req.Role); raw != "" {
		parsed, ok := principal.ParseRole(raw)
		if !ok {
			return domain.ErrInvalidRole
		}
		role = parsed
	}

	decision := approval.Approve(caller.ID, s.clk.Now())
	return s.finalize(ctx, request, decision, &role)
}

func (s *Service) Reject(ctx context.Context, id string, reason string) error {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return approval.ErrUnauthorized
	}
	if err := s.authzSvc.Authorize(ctx, caller, authorization.ObjectAccountRequest, authorization.ActionAccountReject); err != nil {
		return err
	}

	decision, err := approval.Reject(caller.ID, reason, s.clk.Now())
	if err != nil {
		return err
	}

	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return err
	}
	if err := approval.EnsurePending(request); err != nil {
		return err
	}

	return s.finalize(ctx, request, decision, nil)
}

func (s *Service) finalize(ctx context.Context, request *domain.AccountRequest, decision approval.Decision, role *principal.Role) error {
	applied, err := s.repo.Transition(ctx, s.db, request.ID, decision, role)
	if err != nil {
		return err
	}
	if !applied {
		metrics.RecordConflict("account_request")
		return approval.ErrAlreadyFinalized
	}

	outcome := strings.ToLower(string(decision.Target))
	metrics.RecordTransition("account_request", outcome)

	targetID := request.ID.String()
	auditMeta := map[string]any{
		"outcome": outcome,
		"actor":   decision.ActorID.String(),
	}
	if role != nil {
		auditMeta["assigned_role"] = string(*role)
	}
	if decision.Reason != "" {
		auditMeta["reason"] = decision.Reason
	}
	_ = s.auditSvc.AuditLog(ctx, "account_request."+outcome, "account_request", &targetID, auditMeta)

	s.hook.Notify(ctx, notification.Event{
		Action:     "account_request." + outcome,
		TargetType: "account_request",
		TargetID:   targetID,
		ActorID:    decision.ActorID.String(),
		Metadata:   auditMeta,
		OccurredAt: decision.At,
	})

	return nil
}

func (s *Service) loadRequest(ctx context.Context, id string) (*domain.AccountRequest, error) {
	requestID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	request, err := s.repo.FindByID(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrRequestNotFound
	}
	return request, nil
}
