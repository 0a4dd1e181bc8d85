package world

// Defender is a stationary emplacement occupying one grid cell. Combat
// parameters are stamped from the balance table at placement time, so later
// balance changes never retune an existing defender.
type Defender struct {
	ID              uint64
	Cell            Cell
	Class           DefenderClass
	Level           int
	Range           float64
	Damage          float64
	FireRate        float64
	ProjectileSpeed float64
	SplashRadius    float64
	SlowDuration    float64
	SlowFactor      float64
	Cooldown        float64
	Rotation        float64
	TargetID        uint64
}

// Position is the cell-center point used for range checks and aiming.
func (d *Defender) Position() Position {
	return PositionOf(d.Cell)
}

// Hostile is a mobile attacker walking a planned route toward the goal.
type Hostile struct {
	ID            uint64
	Position      Position
	Class         HostileClass
	Health        float64
	MaxHealth     float64
	Speed         float64
	Route         []Position
	RouteIndex    int
	SlowRemaining float64
	SlowFactor    float64
	Trapped       bool
}

// EffectiveSpeed folds an active slow into the base speed.
func (h *Hostile) EffectiveSpeed() float64 {
	if h.SlowRemaining > 0 {
		return h.Speed * h.SlowFactor
	}
	return h.Speed
}

func (h *Hostile) clone() Hostile {
	out := *h
	out.Route = append([]Position(nil), h.Route...)
	return out
}

// Projectile is a homing shot in flight. It carries a copy of the firing
// defender's payload parameters so it resolves the same way even if the
// defender is removed mid-flight.
type Projectile struct {
	ID           uint64
	Position     Position
	TargetID     uint64
	DefenderID   uint64
	Class        DefenderClass
	Speed        float64
	Damage       float64
	SplashRadius float64
	SlowDuration float64
	SlowFactor   float64
}

// EffectKind distinguishes the transient visual markers the engine emits.
type EffectKind string

const (
	EffectMuzzleFlash EffectKind = "muzzle_flash"
	EffectImpactBurst EffectKind = "impact_burst"
)

// Effect lifetimes in seconds.
const (
	muzzleFlashDuration = 0.1
	impactBurstDuration = 0.3
	impactBurstRadius   = 0.5
)

// Effect is a short-lived visual marker with no gameplay influence. Muzzle
// flashes carry a rotation, impact bursts a radius.
type Effect struct {
	ID        uint64
	Kind      EffectKind
	Position  Position
	Rotation  float64
	Radius    float64
	Remaining float64
}
