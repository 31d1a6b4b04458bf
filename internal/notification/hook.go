// Package notification delivers fire-and-forget signals on workflow
// transitions. Delivery failures are logged, never surfaced to the caller;
// the transition has already committed by the time the hook runs.
package notification

import (
	"context"
	"time"
)

type Event struct {
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Hook interface {
	Notify(ctx context.Context, event Event)
}

type NoOpHook struct{}

func (NoOpHook) Notify(ctx context.Context, event Event) {}
