package proto

import (
	"encoding/json"
	"fmt"

	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/world"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	typeGameState     = "game_state"
	typeCommandReject = "command_reject"
)

// Client message type identifiers.
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypePlaceTower  = "place_tower"
	TypeRemoveTower = "remove_tower"
	TypeSpawnEnemy  = "spawn_enemy"
	TypeClearAll    = "clear_all"
	TypeStartWave   = "start_wave"
	TypePauseGame   = "pause_game"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeGameState     = typeGameState
	TypeCommandReject = typeCommandReject
)

// ClientMessage captures an inbound websocket envelope from a client.
type ClientMessage struct {
	Ver     int             `json:"ver,omitempty"`
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured
// envelope.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Type == "" {
		return msg, fmt.Errorf("message missing type")
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// PlaceTowerPayload carries the target cell and class for a placement.
type PlaceTowerPayload struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	TowerType string `json:"tower_type"`
}

// RemoveTowerPayload names the cell whose defender should be removed.
type RemoveTowerPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpawnEnemyPayload requests a hostile spawn, optionally on a custom route.
type SpawnEnemyPayload struct {
	EnemyType string       `json:"enemy_type"`
	Path      []PositionV1 `json:"path,omitempty"`
}

// PauseGamePayload toggles the simulation clock when Paused is absent.
type PauseGamePayload struct {
	Paused *bool `json:"paused,omitempty"`
}

// ClientCommand maps an inbound envelope onto a simulation command. It
// reports false for envelopes the simulation does not consume (join/leave
// are session concerns) and for payloads that do not decode.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypePlaceTower:
		var p PlaceTowerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandPlaceDefender,
			Place: &sim.PlaceDefenderCommand{
				X:     p.X,
				Y:     p.Y,
				Class: world.DefenderClass(p.TowerType),
			},
		}, true
	case TypeRemoveTower:
		var p RemoveTowerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return sim.Command{}, false
		}
		return sim.Command{
			Type:   sim.CommandRemoveDefender,
			Remove: &sim.RemoveDefenderCommand{X: p.X, Y: p.Y},
		}, true
	case TypeSpawnEnemy:
		var p SpawnEnemyPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return sim.Command{}, false
		}
		spawn := &sim.SpawnHostileCommand{Class: world.HostileClass(p.EnemyType)}
		if len(p.Path) > 0 {
			route := make([]world.Position, len(p.Path))
			for i, wp := range p.Path {
				route[i] = world.Position{X: wp.X, Y: wp.Y}
			}
			spawn.Route = route
		}
		return sim.Command{Type: sim.CommandSpawnHostile, Spawn: spawn}, true
	case TypeClearAll:
		return sim.Command{Type: sim.CommandClearAll}, true
	case TypeStartWave:
		return sim.Command{Type: sim.CommandStartWave}, true
	case TypePauseGame:
		var p PauseGamePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return sim.Command{}, false
			}
		}
		return sim.Command{
			Type:  sim.CommandSetPaused,
			Pause: &sim.SetPausedCommand{Paused: p.Paused},
		}, true
	default:
		return sim.Command{}, false
	}
}

// CommandName maps a simulation command type back onto its wire identifier
// for rejection frames.
func CommandName(t sim.CommandType) string {
	switch t {
	case sim.CommandJoin:
		return TypeJoinRoom
	case sim.CommandLeave:
		return TypeLeaveRoom
	case sim.CommandPlaceDefender:
		return TypePlaceTower
	case sim.CommandRemoveDefender:
		return TypeRemoveTower
	case sim.CommandSpawnHostile:
		return TypeSpawnEnemy
	case sim.CommandClearAll:
		return TypeClearAll
	case sim.CommandStartWave:
		return TypeStartWave
	case sim.CommandSetPaused:
		return TypePauseGame
	default:
		return string(t)
	}
}

// PositionV1 is the wire form of a grid coordinate.
type PositionV1 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TowerV1 is the wire form of a placed defender.
type TowerV1 struct {
	ID            uint64     `json:"id"`
	Position      PositionV1 `json:"position"`
	TowerType     string     `json:"tower_type"`
	Level         int        `json:"level"`
	Range         float64    `json:"range"`
	Damage        float64    `json:"damage"`
	FireRate      float64    `json:"fire_rate"`
	Cooldown      float64    `json:"cooldown"`
	Rotation      float64    `json:"rotation"`
	CurrentTarget uint64     `json:"current_target,omitempty"`
}

// EnemyV1 is the wire form of a hostile in flight.
type EnemyV1 struct {
	ID        uint64       `json:"id"`
	Position  PositionV1   `json:"position"`
	EnemyType string       `json:"enemy_type"`
	Health    float64      `json:"health"`
	MaxHealth float64      `json:"max_health"`
	Speed     float64      `json:"speed"`
	Path      []PositionV1 `json:"path,omitempty"`
	PathIndex int          `json:"path_index"`
}

// ProjectileV1 is the wire form of a shot in flight.
type ProjectileV1 struct {
	ID       uint64     `json:"id"`
	Position PositionV1 `json:"position"`
	TargetID uint64     `json:"target_id"`
	Speed    float64    `json:"speed"`
	Damage   float64    `json:"damage"`
	TowerID  uint64     `json:"tower_id"`
}

// MuzzleFlashV1 is the wire form of a firing flash.
type MuzzleFlashV1 struct {
	ID       uint64     `json:"id"`
	Position PositionV1 `json:"position"`
	Duration float64    `json:"duration"`
}

// ExplosionV1 is the wire form of an impact burst.
type ExplosionV1 struct {
	ID       uint64     `json:"id"`
	Position PositionV1 `json:"position"`
	Duration float64    `json:"duration"`
	Radius   float64    `json:"radius"`
}

// GameStateV1 captures the version 1 game_state payload layout.
type GameStateV1 struct {
	RoomID        string          `json:"room_id"`
	Players       []string        `json:"players"`
	Towers        []TowerV1       `json:"towers"`
	Enemies       []EnemyV1       `json:"enemies"`
	Projectiles   []ProjectileV1  `json:"projectiles"`
	MuzzleFlashes []MuzzleFlashV1 `json:"muzzle_flashes"`
	Explosions    []ExplosionV1   `json:"explosions"`
	Gold          int             `json:"gold"`
	Health        int             `json:"health"`
	Wave          int             `json:"wave"`
	GameTime      float64         `json:"game_time"`
	Paused        bool            `json:"paused"`
	SpawnPoint    *PositionV1     `json:"spawn_point,omitempty"`
	GoalPoint     *PositionV1     `json:"goal_point,omitempty"`
}

func positionV1(p world.Position) PositionV1 {
	return PositionV1{X: p.X, Y: p.Y}
}

// GameStateFromSnapshot converts the authoritative snapshot into its wire
// layout. Collections encode as empty arrays rather than null so renderers
// can iterate without nil checks.
func GameStateFromSnapshot(snap world.Snapshot) GameStateV1 {
	players := snap.Members
	if players == nil {
		players = []string{}
	}

	towers := make([]TowerV1, 0, len(snap.Defenders))
	for _, d := range snap.Defenders {
		towers = append(towers, TowerV1{
			ID:            d.ID,
			Position:      positionV1(d.Position()),
			TowerType:     string(d.Class),
			Level:         d.Level,
			Range:         d.Range,
			Damage:        d.Damage,
			FireRate:      d.FireRate,
			Cooldown:      d.Cooldown,
			Rotation:      d.Rotation,
			CurrentTarget: d.TargetID,
		})
	}

	enemies := make([]EnemyV1, 0, len(snap.Hostiles))
	for _, h := range snap.Hostiles {
		path := make([]PositionV1, 0, len(h.Route))
		for _, wp := range h.Route {
			path = append(path, positionV1(wp))
		}
		enemies = append(enemies, EnemyV1{
			ID:        h.ID,
			Position:  positionV1(h.Position),
			EnemyType: string(h.Class),
			Health:    h.Health,
			MaxHealth: h.MaxHealth,
			Speed:     h.Speed,
			Path:      path,
			PathIndex: h.RouteIndex,
		})
	}

	projectiles := make([]ProjectileV1, 0, len(snap.Projectiles))
	for _, p := range snap.Projectiles {
		projectiles = append(projectiles, ProjectileV1{
			ID:       p.ID,
			Position: positionV1(p.Position),
			TargetID: p.TargetID,
			Speed:    p.Speed,
			Damage:   p.Damage,
			TowerID:  p.DefenderID,
		})
	}

	flashes := make([]MuzzleFlashV1, 0)
	bursts := make([]ExplosionV1, 0)
	for _, e := range snap.Effects {
		switch e.Kind {
		case world.EffectMuzzleFlash:
			flashes = append(flashes, MuzzleFlashV1{
				ID:       e.ID,
				Position: positionV1(e.Position),
				Duration: e.Remaining,
			})
		case world.EffectImpactBurst:
			bursts = append(bursts, ExplosionV1{
				ID:       e.ID,
				Position: positionV1(e.Position),
				Duration: e.Remaining,
				Radius:   e.Radius,
			})
		}
	}

	spawn := positionV1(snap.Spawn)
	goal := positionV1(snap.Goal)
	return GameStateV1{
		RoomID:        snap.RoomID,
		Players:       players,
		Towers:        towers,
		Enemies:       enemies,
		Projectiles:   projectiles,
		MuzzleFlashes: flashes,
		Explosions:    bursts,
		Gold:          snap.Gold,
		Health:        snap.BaseHealth,
		Wave:          snap.Wave,
		GameTime:      snap.GameTime,
		Paused:        snap.Paused,
		SpawnPoint:    &spawn,
		GoalPoint:     &goal,
	}
}

// EncodeGameState renders a full-state frame for one room.
func EncodeGameState(roomID string, state GameStateV1) ([]byte, error) {
	frame := struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		RoomID  string `json:"room_id"`
		Payload struct {
			State GameStateV1 `json:"state"`
		} `json:"payload"`
	}{
		Ver:    Version,
		Type:   typeGameState,
		RoomID: roomID,
	}
	frame.Payload.State = state
	return json.Marshal(frame)
}

// JoinAck confirms a subscription to a room.
type JoinAck struct {
	RoomID   string
	ClientID string
}

// EncodeJoinAck renders a join confirmation frame.
func EncodeJoinAck(msg JoinAck) ([]byte, error) {
	frame := struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		RoomID  string `json:"room_id"`
		Payload struct {
			Status   string `json:"status"`
			ClientID string `json:"clientId"`
		} `json:"payload"`
	}{
		Ver:    Version,
		Type:   TypeJoinRoom,
		RoomID: msg.RoomID,
	}
	frame.Payload.Status = "joined"
	frame.Payload.ClientID = msg.ClientID
	return json.Marshal(frame)
}

// CommandReject notifies the originating client that a command was refused.
type CommandReject struct {
	RoomID  string
	Command string
	Reason  string
}

// EncodeCommandReject renders a command rejection frame.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		RoomID  string `json:"room_id,omitempty"`
		Payload struct {
			Command string `json:"command"`
			Reason  string `json:"reason"`
		} `json:"payload"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		RoomID: msg.RoomID,
	}
	frame.Payload.Command = msg.Command
	frame.Payload.Reason = msg.Reason
	return json.Marshal(frame)
}
