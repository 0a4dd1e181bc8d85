package combat

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventDefenderFired is emitted when a defender launches a projectile.
	EventDefenderFired logging.EventType = "combat.defender_fired"
	// EventProjectileHit is emitted when a projectile reaches its target.
	EventProjectileHit logging.EventType = "combat.projectile_hit"
	// EventHostileDestroyed is emitted when a hostile's health reaches zero.
	EventHostileDestroyed logging.EventType = "combat.hostile_destroyed"
)

// DefenderFiredPayload captures the shot parameters.
type DefenderFiredPayload struct {
	DefenderClass string  `json:"defenderClass"`
	ProjectileID  uint64  `json:"projectileId"`
	Damage        float64 `json:"damage"`
	Range         float64 `json:"range"`
}

// ProjectileHitPayload captures the impact outcome.
type ProjectileHitPayload struct {
	Damage        float64 `json:"damage"`
	SplashTargets int     `json:"splashTargets,omitempty"`
	TargetHealth  float64 `json:"targetHealth"`
}

// HostileDestroyedPayload captures what was destroyed.
type HostileDestroyedPayload struct {
	HostileClass string `json:"hostileClass"`
	Wave         int    `json:"wave"`
}

// DefenderFired publishes a shot event.
func DefenderFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefenderFiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDefenderFired,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: "combat",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ProjectileHit publishes an impact event.
func ProjectileHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload ProjectileHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventProjectileHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: "combat",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// HostileDestroyed publishes a kill event.
func HostileDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HostileDestroyedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventHostileDestroyed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "combat",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
