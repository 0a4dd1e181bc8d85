package sim

import (
	"time"

	"rust-rush/server/internal/world"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandJoin           CommandType = "Join"
	CommandLeave          CommandType = "Leave"
	CommandPlaceDefender  CommandType = "PlaceDefender"
	CommandRemoveDefender CommandType = "RemoveDefender"
	CommandSpawnHostile   CommandType = "SpawnHostile"
	CommandClearAll       CommandType = "ClearAll"
	CommandSetPaused      CommandType = "SetPaused"
	CommandStartWave      CommandType = "StartWave"
	CommandSetBalance     CommandType = "SetBalance"
)

// PlaceDefenderCommand identifies the cell and category for a placement.
type PlaceDefenderCommand struct {
	X     int                 `json:"x"`
	Y     int                 `json:"y"`
	Class world.DefenderClass `json:"class"`
}

// RemoveDefenderCommand identifies the cell to tear down.
type RemoveDefenderCommand struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpawnHostileCommand requests a hostile, optionally on a fixed route.
type SpawnHostileCommand struct {
	Class world.HostileClass `json:"class"`
	Route []world.Position   `json:"route,omitempty"`
}

// SetPausedCommand freezes or resumes a room. A nil Paused toggles.
type SetPausedCommand struct {
	Paused *bool `json:"paused,omitempty"`
}

// SetBalanceCommand swaps the room's stat tables.
type SetBalanceCommand struct {
	Balance world.Balance `json:"balance"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64                 `json:"originTick"`
	ActorID    string                 `json:"actorId"`
	Type       CommandType            `json:"type"`
	IssuedAt   time.Time              `json:"issuedAt"`
	Place      *PlaceDefenderCommand  `json:"place,omitempty"`
	Remove     *RemoveDefenderCommand `json:"remove,omitempty"`
	Spawn      *SpawnHostileCommand   `json:"spawn,omitempty"`
	Pause      *SetPausedCommand      `json:"pause,omitempty"`
	Balance    *SetBalanceCommand     `json:"balance,omitempty"`
}
