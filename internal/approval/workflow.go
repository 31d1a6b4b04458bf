// Package approval is the shared terminal-state workflow governing purchase
// orders and account approval requests. Both entities move pending ->
// approved|rejected exactly once; the rules live here so the invariants are
// enforced (and tested) a single time.
package approval

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

var (
	ErrAlreadyFinalized = errors.New("already_finalized")
	ErrMissingReason    = errors.New("missing_reason")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Entity is any row carrying an approval status.
type Entity interface {
	ApprovalStatus() Status
}

// EnsurePending rejects transitions out of a terminal state. This is the
// fast-path check; the storage layer's conditional update is authoritative
// under concurrency.
func EnsurePending(e Entity) error {
	if e.ApprovalStatus() != StatusPending {
		return ErrAlreadyFinalized
	}
	return nil
}

// Decision captures a finalizing transition with its audit stamp.
type Decision struct {
	Target  Status
	ActorID snowflake.ID
	Reason  string
	At      time.Time
}

// Approve builds an approval decision stamped with the acting admin and time.
func Approve(actorID snowflake.ID, at time.Time) Decision {
	return Decision{
		Target:  StatusApproved,
		ActorID: actorID,
		At:      at.UTC(),
	}
}

// Reject builds a rejection decision. The reason is mandatory and trimmed.
func Reject(actorID snowflake.ID, reason string, at time.Time) (Decision, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Decision{}, ErrMissingReason
	}
	return Decision{
		Target:  StatusRejected,
		ActorID: actorID,
		Reason:  reason,
		At:      at.UTC(),
	}, nil
}
