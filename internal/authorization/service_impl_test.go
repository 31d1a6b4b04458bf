package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/approval"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthorizeAdminOnlyTransitions(t *testing.T) {
	svc, err := NewStatic(zap.NewNop())
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := context.Background()

	admin := principal.Principal{ID: node.Generate(), Role: principal.RoleAdmin}
	manager := principal.Principal{ID: node.Generate(), Role: principal.RoleManager}
	user := principal.Principal{ID: node.Generate(), Role: principal.RoleUser}

	assert.NoError(t, svc.Authorize(ctx, admin, ObjectOrder, ActionOrderApprove))
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectOrder, ActionOrderReject))
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectAccountRequest, ActionAccountApprove))

	assert.ErrorIs(t, svc.Authorize(ctx, manager, ObjectOrder, ActionOrderApprove), approval.ErrUnauthorized)
	assert.ErrorIs(t, svc.Authorize(ctx, user, ObjectOrder, ActionOrderReject), approval.ErrUnauthorized)
	assert.ErrorIs(t, svc.Authorize(ctx, user, ObjectAccountRequest, ActionAccountReject), approval.ErrUnauthorized)
}
