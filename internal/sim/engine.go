package sim

import "rust-rush/server/internal/world"

// Rejection reports a command that failed to apply, with a stable
// machine-readable reason for the originating client.
type Rejection struct {
	Command Command `json:"command"`
	Reason  string  `json:"reason"`
}

// Stable rejection reasons surfaced to clients and logs.
const (
	RejectOutOfBounds       = "out_of_bounds"
	RejectCellOccupied      = "cell_occupied"
	RejectInsufficientFunds = "insufficient_funds"
	RejectNoRoute           = "no_route"
	RejectDefenderNotFound  = "defender_not_found"
	RejectWaveInProgress    = "wave_in_progress"
	RejectUnknownClass      = "unknown_class"
	RejectInvalid           = "invalid"
)

// Engine defines the surface area exposed to non-simulation callers.
type Engine interface {
	Apply([]Command) []Rejection
	Step(tick uint64, dt float64)
	Snapshot() world.Snapshot
}

// EngineCore extends Engine with dependency access for the loop.
type EngineCore interface {
	Engine
	Deps() Deps
}
