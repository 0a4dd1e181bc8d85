package status_effects

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventSlowApplied is emitted when a slow-class hit refreshes a hostile's slow timer.
	EventSlowApplied logging.EventType = "status_effects.slow_applied"
	// EventSlowExpired is emitted when a hostile's slow timer runs out.
	EventSlowExpired logging.EventType = "status_effects.slow_expired"
)

// SlowAppliedPayload captures the applied slow parameters.
type SlowAppliedPayload struct {
	Duration float64 `json:"duration"`
	Factor   float64 `json:"factor"`
	SourceID uint64  `json:"sourceId,omitempty"`
}

// SlowApplied publishes a slow application event.
func SlowApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload SlowAppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSlowApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: "gameplay",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SlowExpired publishes a slow expiry event.
func SlowExpired(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSlowExpired,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityDebug,
		Category: "gameplay",
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
