package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/quartzsec/armora/internal/account/domain"
	accountrepository "github.com/quartzsec/armora/internal/account/repository"
	"github.com/quartzsec/armora/internal/approval"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	auditrepository "github.com/quartzsec/armora/internal/audit/repository"
	auditservice "github.com/quartzsec/armora/internal/audit/service"
	"github.com/quartzsec/armora/internal/authorization"
	"github.com/quartzsec/armora/internal/clock"
	"github.com/quartzsec/armora/internal/notification"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type accountTestEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	clk   *clock.FakeClock
	svc   domain.Service
	admin principal.Principal
	user  principal.Principal
}

func newAccountTestEnv(t *testing.T) *accountTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.AccountRequest{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})

	authzSvc, err := authorization.NewStatic(logger)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      logger,
		GenID:    node,
		Clock:    clk,
		Repo:     accountrepository.Provide(),
		AuthzSvc: authzSvc,
		AuditSvc: auditSvc,
		Hook:     notification.NoOpHook{},
	})

	orgID := node.Generate()
	return &accountTestEnv{
		db:    db,
		node:  node,
		clk:   clk,
		svc:   svc,
		admin: principal.Principal{ID: node.Generate(), OrgID: &orgID, Role: principal.RoleAdmin},
		user:  principal.Principal{ID: node.Generate(), OrgID: &orgID, Role: principal.RoleUser},
	}
}

func (e *accountTestEnv) adminCtx() context.Context {
	return principal.WithContext(context.Background(), e.admin)
}

func (e *accountTestEnv) userCtx() context.Context {
	return principal.WithContext(context.Background(), e.user)
}

func (e *accountTestEnv) submit(t *testing.T) domain.AccountRequest {
	t.Helper()
	request, err := e.svc.Submit(e.userCtx(), domain.SubmitRequest{
		Email:         "ops@example.com",
		RequestedRole: "manager",
	})
	require.NoError(t, err)
	return request
}

func TestSubmitAccountRequest(t *testing.T) {
	env := newAccountTestEnv(t)

	request := env.submit(t)
	assert.Equal(t, approval.StatusPending, request.Status)
	assert.Equal(t, env.user.ID, request.UserID)
	assert.Equal(t, principal.RoleManager, request.RequestedRole)
	assert.Nil(t, request.AssignedRole)
}

func TestSubmitValidation(t *testing.T) {
	env := newAccountTestEnv(t)

	_, err := env.svc.Submit(context.Background(), domain.SubmitRequest{Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrMissingPrincipal)

	_, err = env.svc.Submit(env.userCtx(), domain.SubmitRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = env.svc.Submit(env.userCtx(), domain.SubmitRequest{Email: "a@b.c", RequestedRole: "owner"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestSubmitDuplicatePending(t *testing.T) {
	env := newAccountTestEnv(t)
	env.submit(t)

	_, err := env.svc.Submit(env.userCtx(), domain.SubmitRequest{Email: "ops@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestApproveAssignsRoleAtomically(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)

	require.NoError(t, env.svc.Approve(env.adminCtx(), request.ID.String(), domain.ApproveRequest{}))

	got, err := env.svc.GetByID(env.adminCtx(), request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, got.Status)
	require.NotNil(t, got.AssignedRole)
	assert.Equal(t, principal.RoleManager, *got.AssignedRole)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, env.admin.ID, *got.ApprovedBy)
}

func TestApproveWithRoleOverride(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)

	require.NoError(t, env.svc.Approve(env.adminCtx(), request.ID.String(), domain.ApproveRequest{Role: "user"}))

	got, err := env.svc.GetByID(env.adminCtx(), request.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got.AssignedRole)
	assert.Equal(t, principal.RoleUser, *got.AssignedRole)
}

func TestRejectThenResubmitReopens(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)

	require.NoError(t, env.svc.Reject(env.adminCtx(), request.ID.String(), "unknown employer"))

	got, err := env.svc.GetByID(env.userCtx(), request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)

	env.clk.Advance(time.Hour)
	reopened, err := env.svc.Submit(env.userCtx(), domain.SubmitRequest{
		Email:         "ops@example.com",
		RequestedRole: "user",
	})
	require.NoError(t, err)
	assert.Equal(t, request.ID, reopened.ID, "resubmission reuses the row")
	assert.Equal(t, approval.StatusPending, reopened.Status)
	assert.Equal(t, principal.RoleUser, reopened.RequestedRole)
	assert.Nil(t, reopened.RejectionReason)
	assert.Nil(t, reopened.AssignedRole)
}

func TestTerminalRequestIsImmutable(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)
	id := request.ID.String()

	require.NoError(t, env.svc.Approve(env.adminCtx(), id, domain.ApproveRequest{}))

	assert.ErrorIs(t, env.svc.Approve(env.adminCtx(), id, domain.ApproveRequest{}), approval.ErrAlreadyFinalized)
	assert.ErrorIs(t, env.svc.Reject(env.adminCtx(), id, "too late"), approval.ErrAlreadyFinalized)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)

	err := env.svc.Reject(env.adminCtx(), request.ID.String(), "")
	assert.ErrorIs(t, err, approval.ErrMissingReason)
}

func TestAccountAuthorization(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)
	id := request.ID.String()

	assert.ErrorIs(t, env.svc.Approve(env.userCtx(), id, domain.ApproveRequest{}), approval.ErrUnauthorized)
	assert.ErrorIs(t, env.svc.Reject(env.userCtx(), id, "nope"), approval.ErrUnauthorized)

	// Requester can read their own request without the view grant.
	got, err := env.svc.GetByID(env.userCtx(), id)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)

	// A different plain user cannot.
	stranger := principal.Principal{ID: env.node.Generate(), Role: principal.RoleUser}
	_, err = env.svc.GetByID(principal.WithContext(context.Background(), stranger), id)
	assert.ErrorIs(t, err, approval.ErrUnauthorized)

	_, err = env.svc.List(env.userCtx(), domain.ListRequest{})
	assert.ErrorIs(t, err, approval.ErrUnauthorized)
}

func TestConcurrentAccountDecisions(t *testing.T) {
	env := newAccountTestEnv(t)
	request := env.submit(t)
	id := request.ID.String()

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = env.svc.Approve(env.adminCtx(), id, domain.ApproveRequest{})
	}()
	go func() {
		defer wg.Done()
		errs[1] = env.svc.Reject(env.adminCtx(), id, "lost the race")
	}()
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, approval.ErrAlreadyFinalized)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := env.svc.GetByID(env.adminCtx(), id)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
	if got.Status == approval.StatusApproved {
		require.NotNil(t, got.AssignedRole)
		assert.Nil(t, got.RejectionReason)
	} else {
		assert.Nil(t, got.AssignedRole)
	}
}

func TestListAccountRequests(t *testing.T) {
	env := newAccountTestEnv(t)

	// Three distinct users file requests.
	for i := 0; i < 3; i++ {
		u := principal.Principal{ID: env.node.Generate(), Role: principal.RoleUser}
		_, err := env.svc.Submit(principal.WithContext(context.Background(), u), domain.SubmitRequest{
			Email: fmt.Sprintf("user%d@example.com", i),
		})
		require.NoError(t, err)
		env.clk.Advance(time.Minute)
	}

	page, err := env.svc.List(env.adminCtx(), domain.ListRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, page.Requests, 3)

	req := domain.ListRequest{}
	req.PageSize = 2
	page, err = env.svc.List(env.adminCtx(), req)
	require.NoError(t, err)
	assert.Len(t, page.Requests, 2)
	assert.True(t, page.HasMore)

	req.PageToken = page.NextPageToken
	page, err = env.svc.List(env.adminCtx(), req)
	require.NoError(t, err)
	assert.Len(t, page.Requests, 1)
	assert.False(t, page.HasMore)
}
