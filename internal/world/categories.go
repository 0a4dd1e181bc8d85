package world

import "fmt"

// DefenderClass enumerates the closed set of defender categories.
type DefenderClass string

const (
	DefenderBasic  DefenderClass = "basic"
	DefenderSniper DefenderClass = "sniper"
	DefenderSplash DefenderClass = "splash"
	DefenderSlow   DefenderClass = "slow"
)

// DefenderClasses lists every valid defender category in a fixed order.
func DefenderClasses() []DefenderClass {
	return []DefenderClass{DefenderBasic, DefenderSniper, DefenderSplash, DefenderSlow}
}

// ParseDefenderClass validates a wire string against the closed set.
func ParseDefenderClass(raw string) (DefenderClass, error) {
	switch DefenderClass(raw) {
	case DefenderBasic, DefenderSniper, DefenderSplash, DefenderSlow:
		return DefenderClass(raw), nil
	}
	return "", fmt.Errorf("%w: defender %q", ErrUnknownClass, raw)
}

// HostileClass enumerates the closed set of hostile categories.
type HostileClass string

const (
	HostileBasic  HostileClass = "basic"
	HostileFast   HostileClass = "fast"
	HostileTank   HostileClass = "tank"
	HostileFlying HostileClass = "flying"
	HostileBoss   HostileClass = "boss"
)

// HostileClasses lists every valid hostile category in a fixed order.
func HostileClasses() []HostileClass {
	return []HostileClass{HostileBasic, HostileFast, HostileTank, HostileFlying, HostileBoss}
}

// ParseHostileClass validates a wire string against the closed set.
func ParseHostileClass(raw string) (HostileClass, error) {
	switch HostileClass(raw) {
	case HostileBasic, HostileFast, HostileTank, HostileFlying, HostileBoss:
		return HostileClass(raw), nil
	}
	return "", fmt.Errorf("%w: hostile %q", ErrUnknownClass, raw)
}

// DefenderStats are the base combat parameters stamped onto a defender at
// placement. Distances are in cells, rates in shots per second.
type DefenderStats struct {
	Range           float64 `yaml:"range"`
	Damage          float64 `yaml:"damage"`
	FireRate        float64 `yaml:"fire_rate"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	Cost            int     `yaml:"cost"`
	SplashRadius    float64 `yaml:"splash_radius"`
	SlowDuration    float64 `yaml:"slow_duration"`
	SlowFactor      float64 `yaml:"slow_factor"`
}

// HostileStats are the base parameters stamped onto a hostile at spawn.
type HostileStats struct {
	Health float64 `yaml:"health"`
	Speed  float64 `yaml:"speed"`
}

// Balance holds the tunable stat tables for both category sets. Entries are
// keyed by class so a partial override file replaces whole rows.
type Balance struct {
	Defenders map[DefenderClass]DefenderStats `yaml:"defenders"`
	Hostiles  map[HostileClass]HostileStats   `yaml:"hostiles"`
}

// DefaultBalance returns the built-in stat tables.
func DefaultBalance() Balance {
	return Balance{
		Defenders: map[DefenderClass]DefenderStats{
			DefenderBasic: {
				Range:           3.0,
				Damage:          15.0,
				FireRate:        1.0,
				ProjectileSpeed: 8.0,
				Cost:            50,
			},
			DefenderSniper: {
				Range:           6.0,
				Damage:          50.0,
				FireRate:        0.5,
				ProjectileSpeed: 12.0,
				Cost:            100,
			},
			DefenderSplash: {
				Range:           2.5,
				Damage:          10.0,
				FireRate:        1.5,
				ProjectileSpeed: 8.0,
				Cost:            75,
				SplashRadius:    1.5,
			},
			DefenderSlow: {
				Range:           3.5,
				Damage:          8.0,
				FireRate:        0.8,
				ProjectileSpeed: 8.0,
				Cost:            60,
				SlowDuration:    2.0,
				SlowFactor:      0.5,
			},
		},
		Hostiles: map[HostileClass]HostileStats{
			HostileBasic:  {Health: 100.0, Speed: 2.0},
			HostileFast:   {Health: 50.0, Speed: 4.0},
			HostileTank:   {Health: 300.0, Speed: 1.0},
			HostileFlying: {Health: 80.0, Speed: 3.0},
			HostileBoss:   {Health: 1000.0, Speed: 0.5},
		},
	}
}

// DefenderStats looks up the stat row for a class.
func (b Balance) DefenderStats(class DefenderClass) (DefenderStats, bool) {
	stats, ok := b.Defenders[class]
	return stats, ok
}

// HostileStats looks up the stat row for a class.
func (b Balance) HostileStats(class HostileClass) (HostileStats, bool) {
	stats, ok := b.Hostiles[class]
	return stats, ok
}

// Validate checks that every class in the closed sets has a usable stat row.
func (b Balance) Validate() error {
	for _, class := range DefenderClasses() {
		stats, ok := b.Defenders[class]
		if !ok {
			return fmt.Errorf("balance: defender %q missing", class)
		}
		if stats.Range <= 0 {
			return fmt.Errorf("balance: defender %q range must be positive, got %v", class, stats.Range)
		}
		if stats.Damage <= 0 {
			return fmt.Errorf("balance: defender %q damage must be positive, got %v", class, stats.Damage)
		}
		if stats.FireRate <= 0 {
			return fmt.Errorf("balance: defender %q fire_rate must be positive, got %v", class, stats.FireRate)
		}
		if stats.ProjectileSpeed <= 0 {
			return fmt.Errorf("balance: defender %q projectile_speed must be positive, got %v", class, stats.ProjectileSpeed)
		}
		if stats.Cost < 0 {
			return fmt.Errorf("balance: defender %q cost must not be negative, got %d", class, stats.Cost)
		}
		if stats.SplashRadius < 0 {
			return fmt.Errorf("balance: defender %q splash_radius must not be negative, got %v", class, stats.SplashRadius)
		}
		if stats.SlowDuration < 0 || stats.SlowFactor < 0 || stats.SlowFactor > 1 {
			return fmt.Errorf("balance: defender %q slow parameters out of range", class)
		}
	}
	for _, class := range HostileClasses() {
		stats, ok := b.Hostiles[class]
		if !ok {
			return fmt.Errorf("balance: hostile %q missing", class)
		}
		if stats.Health <= 0 {
			return fmt.Errorf("balance: hostile %q health must be positive, got %v", class, stats.Health)
		}
		if stats.Speed <= 0 {
			return fmt.Errorf("balance: hostile %q speed must be positive, got %v", class, stats.Speed)
		}
	}
	return nil
}

// Clone deep-copies the stat tables so a stored balance cannot be mutated
// through the original maps.
func (b Balance) Clone() Balance {
	cloned := Balance{
		Defenders: make(map[DefenderClass]DefenderStats, len(b.Defenders)),
		Hostiles:  make(map[HostileClass]HostileStats, len(b.Hostiles)),
	}
	for class, stats := range b.Defenders {
		cloned.Defenders[class] = stats
	}
	for class, stats := range b.Hostiles {
		cloned.Hostiles[class] = stats
	}
	return cloned
}
