package approval

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntity struct {
	status Status
}

func (f fakeEntity) ApprovalStatus() Status { return f.status }

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestEnsurePending(t *testing.T) {
	assert.NoError(t, EnsurePending(fakeEntity{status: StatusPending}))
	assert.ErrorIs(t, EnsurePending(fakeEntity{status: StatusApproved}), ErrAlreadyFinalized)
	assert.ErrorIs(t, EnsurePending(fakeEntity{status: StatusRejected}), ErrAlreadyFinalized)
}

func TestApproveDecision(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	actor := node.Generate()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))

	decision := Approve(actor, at)
	assert.Equal(t, StatusApproved, decision.Target)
	assert.Equal(t, actor, decision.ActorID)
	assert.Equal(t, time.UTC, decision.At.Location())
	assert.Empty(t, decision.Reason)
}

func TestRejectDecision(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	actor := node.Generate()
	now := time.Now()

	decision, err := Reject(actor, "  device quota exceeded  ", now)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, decision.Target)
	assert.Equal(t, "device quota exceeded", decision.Reason)

	_, err = Reject(actor, "", now)
	assert.ErrorIs(t, err, ErrMissingReason)

	_, err = Reject(actor, "   ", now)
	assert.ErrorIs(t, err, ErrMissingReason)
}
