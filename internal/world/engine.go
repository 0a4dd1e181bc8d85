package world

import (
	"context"
	"math"

	"rust-rush/server/logging/combat"
	"rust-rush/server/logging/economy"
	"rust-rush/server/logging/status_effects"
)

const (
	// hitRadius is the distance below which a projectile connects.
	hitRadius = 0.3
	// arrivalEpsilon is the distance at which a hostile snaps onto its
	// current waypoint and starts walking toward the next one.
	arrivalEpsilon = 0.1
)

// Advance runs one simulation step. Phases execute in a fixed order so equal
// inputs always produce equal worlds: queued spawns emerge, defenders aim and
// fire, projectiles fly and connect, hostiles walk and resolve, effects
// decay, and the clock accumulates. A paused world ignores the step entirely.
func (s *State) Advance(dt float64) {
	if s.paused || dt <= 0 {
		return
	}
	s.advanceSpawner(dt)
	s.advanceDefenders(dt)
	s.advanceProjectiles(dt)
	s.advanceHostiles(dt)
	s.advanceEffects(dt)
	s.gameTime += dt
}

// GameTime returns the accumulated simulation clock in seconds.
func (s *State) GameTime() float64 { return s.gameTime }

// advanceDefenders cools down, aims, and fires every defender.
func (s *State) advanceDefenders(dt float64) {
	for i := range s.defenders {
		d := &s.defenders[i]

		d.Cooldown -= dt
		if d.Cooldown < 0 {
			d.Cooldown = 0
		}

		target := s.nearestHostileInRange(d.Position(), d.Range)
		if target == nil {
			d.TargetID = 0
			continue
		}
		d.TargetID = target.ID

		origin := d.Position()
		d.Rotation = math.Atan2(target.Position.Y-origin.Y, target.Position.X-origin.X)

		if d.Cooldown > 0 {
			continue
		}
		s.fire(d, target)
		d.Cooldown = 1.0 / d.FireRate
	}
}

// nearestHostileInRange scans hostiles in insertion order and returns the
// closest one within reach. Distance ties keep the earlier hostile so the
// outcome never depends on map iteration or float jitter.
func (s *State) nearestHostileInRange(from Position, reach float64) *Hostile {
	var best *Hostile
	bestDist := math.Inf(1)
	for i := range s.hostiles {
		h := &s.hostiles[i]
		d := from.DistanceTo(h.Position)
		if d <= reach && d < bestDist {
			best = h
			bestDist = d
		}
	}
	return best
}

func (s *State) fire(d *Defender, target *Hostile) {
	projectile := Projectile{
		ID:           s.allocProjectileID(),
		Position:     d.Position(),
		TargetID:     target.ID,
		DefenderID:   d.ID,
		Class:        d.Class,
		Speed:        d.ProjectileSpeed,
		Damage:       d.Damage,
		SplashRadius: d.SplashRadius,
		SlowDuration: d.SlowDuration,
		SlowFactor:   d.SlowFactor,
	}
	s.projectiles = append(s.projectiles, projectile)

	s.effects = append(s.effects, Effect{
		ID:        s.allocEffectID(),
		Kind:      EffectMuzzleFlash,
		Position:  d.Position(),
		Rotation:  d.Rotation,
		Remaining: muzzleFlashDuration,
	})

	combat.DefenderFired(context.Background(), s.pub, s.tick, defenderRef(d.ID), hostileRef(target.ID), combat.DefenderFiredPayload{
		DefenderClass: string(d.Class),
		ProjectileID:  projectile.ID,
		Damage:        d.Damage,
		Range:         d.Range,
	}, nil)
}

// advanceProjectiles flies every projectile toward its locked target and
// resolves hits. A projectile whose target is gone is dropped on the spot.
// Damage lands here; death resolution waits for the hostile phase.
func (s *State) advanceProjectiles(dt float64) {
	kept := s.projectiles[:0]
	for i := range s.projectiles {
		p := s.projectiles[i]

		target := s.hostileByID(p.TargetID)
		if target == nil {
			continue
		}

		dx := target.Position.X - p.Position.X
		dy := target.Position.Y - p.Position.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		if dist < hitRadius {
			s.resolveHit(&p, target)
			continue
		}

		if dist > 0 {
			ratio := p.Speed * dt / dist
			if ratio > 1.0 {
				ratio = 1.0
			}
			p.Position.X += dx * ratio
			p.Position.Y += dy * ratio
		}
		kept = append(kept, p)
	}
	s.projectiles = kept
}

// resolveHit applies a connecting projectile's payload. Splash shots damage
// every hostile within the blast radius of the impact point, the locked
// target included exactly once. Slow shots stamp their slow parameters onto
// the target, refreshing any slow already running.
func (s *State) resolveHit(p *Projectile, target *Hostile) {
	struck := 0
	if p.SplashRadius > 0 {
		for i := range s.hostiles {
			h := &s.hostiles[i]
			if p.Position.DistanceTo(h.Position) <= p.SplashRadius {
				h.Health -= p.Damage
				struck++
			}
		}
	} else {
		target.Health -= p.Damage
		struck = 1
	}

	if p.SlowDuration > 0 {
		target.SlowRemaining = p.SlowDuration
		target.SlowFactor = p.SlowFactor
		status_effects.SlowApplied(context.Background(), s.pub, s.tick, projectileRef(p.ID), hostileRef(target.ID), status_effects.SlowAppliedPayload{
			Duration: p.SlowDuration,
			Factor:   p.SlowFactor,
			SourceID: p.DefenderID,
		}, nil)
	}

	burstRadius := impactBurstRadius
	if p.SplashRadius > 0 {
		burstRadius = p.SplashRadius
	}
	s.effects = append(s.effects, Effect{
		ID:        s.allocEffectID(),
		Kind:      EffectImpactBurst,
		Position:  p.Position,
		Radius:    burstRadius,
		Remaining: impactBurstDuration,
	})

	combat.ProjectileHit(context.Background(), s.pub, s.tick, projectileRef(p.ID), hostileRef(target.ID), combat.ProjectileHitPayload{
		Damage:        p.Damage,
		SplashTargets: struck,
		TargetHealth:  target.Health,
	}, nil)
}

// advanceHostiles resolves deaths, walks survivors along their routes, and
// charges breaches. Death beats route exhaustion when both hold on the same
// tick, so a hostile killed on the goal cell still pays out.
func (s *State) advanceHostiles(dt float64) {
	kept := s.hostiles[:0]
	for i := range s.hostiles {
		h := s.hostiles[i]

		if h.Health <= 0 {
			s.gold += HostileBounty
			economy.BountyAwarded(context.Background(), s.pub, s.tick, hostileRef(h.ID), economy.BountyAwardedPayload{
				Amount:    HostileBounty,
				GoldAfter: s.gold,
				Class:     string(h.Class),
			}, nil)
			combat.HostileDestroyed(context.Background(), s.pub, s.tick, hostileRef(h.ID), combat.HostileDestroyedPayload{
				HostileClass: string(h.Class),
				Wave:         s.wave,
			}, nil)
			continue
		}

		if h.SlowRemaining > 0 {
			h.SlowRemaining -= dt
			if h.SlowRemaining <= 0 {
				h.SlowRemaining = 0
				status_effects.SlowExpired(context.Background(), s.pub, s.tick, hostileRef(h.ID), nil)
			}
		}

		s.walk(&h, dt)

		if !h.Trapped && h.RouteIndex >= len(h.Route) {
			s.baseHealth -= BreachDamage
			economy.BaseBreached(context.Background(), s.pub, s.tick, hostileRef(h.ID), economy.BaseBreachedPayload{
				Damage:      BreachDamage,
				HealthAfter: s.baseHealth,
				Class:       string(h.Class),
			}, nil)
			continue
		}

		kept = append(kept, h)
	}
	s.hostiles = kept
}

// walk moves a hostile toward its current waypoint. Waypoints within the
// arrival epsilon are snapped through in a single tick so tightly spaced
// routes never stall progress, but the real movement step happens at most
// once and is clamped to the waypoint.
func (s *State) walk(h *Hostile, dt float64) {
	for h.RouteIndex < len(h.Route) {
		target := h.Route[h.RouteIndex]
		dist := h.Position.DistanceTo(target)

		if dist <= arrivalEpsilon {
			h.Position = target
			h.RouteIndex++
			continue
		}

		step := h.EffectiveSpeed() * dt
		if step > dist {
			step = dist
		}
		h.Position.X += (target.X - h.Position.X) / dist * step
		h.Position.Y += (target.Y - h.Position.Y) / dist * step
		return
	}
}

// advanceEffects burns down effect lifetimes and drops the expired ones.
func (s *State) advanceEffects(dt float64) {
	kept := s.effects[:0]
	for i := range s.effects {
		e := s.effects[i]
		e.Remaining -= dt
		if e.Remaining <= 0 {
			continue
		}
		kept = append(kept, e)
	}
	s.effects = kept
}
