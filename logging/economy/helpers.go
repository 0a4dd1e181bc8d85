package economy

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventBountyAwarded is emitted when destroying a hostile pays out gold.
	EventBountyAwarded logging.EventType = "economy.bounty_awarded"
	// EventBaseBreached is emitted when a hostile reaches the goal and damages the base.
	EventBaseBreached logging.EventType = "economy.base_breached"
	// EventPurchaseRejected is emitted when a defender placement fails its gold check.
	EventPurchaseRejected logging.EventType = "economy.purchase_rejected"
)

// BountyAwardedPayload describes a bounty payout.
type BountyAwardedPayload struct {
	Amount    int    `json:"amount"`
	GoldAfter int    `json:"goldAfter"`
	Class     string `json:"class"`
}

// BaseBreachedPayload describes damage taken at the goal.
type BaseBreachedPayload struct {
	Damage      int    `json:"damage"`
	HealthAfter int    `json:"healthAfter"`
	Class       string `json:"class"`
}

// PurchaseRejectedPayload describes why a purchase failed.
type PurchaseRejectedPayload struct {
	Class string `json:"class"`
	Cost  int    `json:"cost"`
	Gold  int    `json:"gold"`
}

// BountyAwarded publishes a bounty payout event.
func BountyAwarded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BountyAwardedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBountyAwarded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "economy",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BaseBreached publishes a base damage event.
func BaseBreached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BaseBreachedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBaseBreached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "economy",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PurchaseRejected publishes a failed purchase event.
func PurchaseRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PurchaseRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPurchaseRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "economy",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
