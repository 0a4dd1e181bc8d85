package proto

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/world"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("defaults version when omitted", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"place_tower","room_id":"alpha"}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if msg.Ver != Version {
			t.Fatalf("expected default version %d, got %d", Version, msg.Ver)
		}
		if msg.Type != TypePlaceTower || msg.RoomID != "alpha" {
			t.Fatalf("unexpected envelope: %+v", msg)
		}
	})

	t.Run("rejects missing type", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"room_id":"alpha"}`)); err == nil {
			t.Fatalf("expected error for envelope without type")
		}
	})

	t.Run("rejects unsupported version", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"ver":99,"type":"place_tower"}`)); err == nil {
			t.Fatalf("expected error for future protocol version")
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"type":`)); err == nil {
			t.Fatalf("expected error for truncated payload")
		}
	})
}

func TestClientCommand(t *testing.T) {
	t.Run("place_tower", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:    TypePlaceTower,
			Payload: json.RawMessage(`{"x":3,"y":4,"tower_type":"sniper"}`),
		})
		if !ok {
			t.Fatalf("expected place_tower to map onto a command")
		}
		if cmd.Type != sim.CommandPlaceDefender || cmd.Place == nil {
			t.Fatalf("unexpected command: %+v", cmd)
		}
		if cmd.Place.X != 3 || cmd.Place.Y != 4 || cmd.Place.Class != world.DefenderSniper {
			t.Fatalf("unexpected placement payload: %+v", cmd.Place)
		}
	})

	t.Run("remove_tower", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:    TypeRemoveTower,
			Payload: json.RawMessage(`{"x":7,"y":1}`),
		})
		if !ok || cmd.Type != sim.CommandRemoveDefender || cmd.Remove == nil {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
		if cmd.Remove.X != 7 || cmd.Remove.Y != 1 {
			t.Fatalf("unexpected removal payload: %+v", cmd.Remove)
		}
	})

	t.Run("spawn_enemy with custom route", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:    TypeSpawnEnemy,
			Payload: json.RawMessage(`{"enemy_type":"fast","path":[{"x":0,"y":7},{"x":1,"y":7}]}`),
		})
		if !ok || cmd.Type != sim.CommandSpawnHostile || cmd.Spawn == nil {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
		if cmd.Spawn.Class != world.HostileFast {
			t.Fatalf("expected fast hostile, got %q", cmd.Spawn.Class)
		}
		if len(cmd.Spawn.Route) != 2 || cmd.Spawn.Route[1] != (world.Position{X: 1, Y: 7}) {
			t.Fatalf("unexpected route: %+v", cmd.Spawn.Route)
		}
	})

	t.Run("spawn_enemy without route", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:    TypeSpawnEnemy,
			Payload: json.RawMessage(`{"enemy_type":"tank"}`),
		})
		if !ok || cmd.Spawn == nil {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
		if cmd.Spawn.Route != nil {
			t.Fatalf("expected planner-owned route, got %+v", cmd.Spawn.Route)
		}
	})

	t.Run("clear_all", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeClearAll})
		if !ok || cmd.Type != sim.CommandClearAll {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
	})

	t.Run("start_wave", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeStartWave})
		if !ok || cmd.Type != sim.CommandStartWave {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
	})

	t.Run("pause_game with explicit state", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:    TypePauseGame,
			Payload: json.RawMessage(`{"paused":true}`),
		})
		if !ok || cmd.Type != sim.CommandSetPaused || cmd.Pause == nil {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
		if cmd.Pause.Paused == nil || !*cmd.Pause.Paused {
			t.Fatalf("expected explicit pause, got %+v", cmd.Pause)
		}
	})

	t.Run("pause_game without payload toggles", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypePauseGame})
		if !ok || cmd.Pause == nil {
			t.Fatalf("unexpected command: ok=%v %+v", ok, cmd)
		}
		if cmd.Pause.Paused != nil {
			t.Fatalf("expected toggle request, got %v", *cmd.Pause.Paused)
		}
	})

	t.Run("join_room is a session concern", func(t *testing.T) {
		if _, ok := ClientCommand(ClientMessage{Type: TypeJoinRoom}); ok {
			t.Fatalf("join_room should not map onto a simulation command")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, ok := ClientCommand(ClientMessage{Type: "teleport"}); ok {
			t.Fatalf("unknown type should not map onto a command")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		msg := ClientMessage{
			Type:    TypePlaceTower,
			Payload: json.RawMessage(`{"x":"three"}`),
		}
		if _, ok := ClientCommand(msg); ok {
			t.Fatalf("non-numeric coordinates should not map onto a command")
		}
	})
}

func sampleSnapshot() world.Snapshot {
	return world.Snapshot{
		RoomID:  "alpha",
		Members: []string{"client-1"},
		Defenders: []world.Defender{{
			ID:       11,
			Cell:     world.Cell{X: 3, Y: 4},
			Class:    world.DefenderBasic,
			Level:    1,
			Range:    3,
			Damage:   25,
			FireRate: 1,
			Cooldown: 0.25,
			Rotation: 1.5,
			TargetID: 21,
		}},
		Hostiles: []world.Hostile{{
			ID:         21,
			Position:   world.Position{X: 2.4, Y: 4},
			Class:      world.HostileFast,
			Health:     40,
			MaxHealth:  50,
			Speed:      4,
			Route:      []world.Position{{X: 0, Y: 7}, {X: 2, Y: 4}},
			RouteIndex: 1,
		}},
		Projectiles: []world.Projectile{{
			ID:         31,
			Position:   world.Position{X: 3.1, Y: 4.2},
			TargetID:   21,
			DefenderID: 11,
			Speed:      8,
			Damage:     25,
		}},
		Effects: []world.Effect{
			{ID: 41, Kind: world.EffectMuzzleFlash, Position: world.Position{X: 3, Y: 4}, Remaining: 0.1},
			{ID: 42, Kind: world.EffectImpactBurst, Position: world.Position{X: 2.4, Y: 4}, Remaining: 0.3, Radius: 1.5},
		},
		Gold:       175,
		BaseHealth: 98,
		Wave:       2,
		GameTime:   12.5,
		Paused:     true,
		Spawn:      world.Position{X: 0, Y: 7},
		Goal:       world.Position{X: 19, Y: 7},
	}
}

func TestGameStateFromSnapshot(t *testing.T) {
	state := GameStateFromSnapshot(sampleSnapshot())

	if state.RoomID != "alpha" || len(state.Players) != 1 {
		t.Fatalf("unexpected header fields: %+v", state)
	}
	if len(state.Towers) != 1 {
		t.Fatalf("expected one tower, got %d", len(state.Towers))
	}
	tower := state.Towers[0]
	if tower.TowerType != "basic" || tower.Level != 1 || tower.CurrentTarget != 21 {
		t.Fatalf("unexpected tower: %+v", tower)
	}
	if tower.Position != (PositionV1{X: 3, Y: 4}) {
		t.Fatalf("expected cell-center position, got %+v", tower.Position)
	}
	if len(state.Enemies) != 1 || state.Enemies[0].PathIndex != 1 || len(state.Enemies[0].Path) != 2 {
		t.Fatalf("unexpected enemies: %+v", state.Enemies)
	}
	if len(state.Projectiles) != 1 || state.Projectiles[0].TowerID != 11 {
		t.Fatalf("unexpected projectiles: %+v", state.Projectiles)
	}
	if len(state.MuzzleFlashes) != 1 || state.MuzzleFlashes[0].ID != 41 {
		t.Fatalf("expected muzzle flash split, got %+v", state.MuzzleFlashes)
	}
	if len(state.Explosions) != 1 || state.Explosions[0].Radius != 1.5 {
		t.Fatalf("expected explosion split, got %+v", state.Explosions)
	}
	if state.Gold != 175 || state.Health != 98 || state.Wave != 2 || !state.Paused {
		t.Fatalf("unexpected scalar fields: %+v", state)
	}
	if state.SpawnPoint == nil || state.GoalPoint == nil || state.GoalPoint.X != 19 {
		t.Fatalf("expected spawn and goal markers, got %+v %+v", state.SpawnPoint, state.GoalPoint)
	}
}

func TestEncodeGameState(t *testing.T) {
	data, err := EncodeGameState("alpha", GameStateFromSnapshot(sampleSnapshot()))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var frame struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		RoomID  string `json:"room_id"`
		Payload struct {
			State GameStateV1 `json:"state"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame did not round-trip: %v", err)
	}
	if frame.Ver != Version || frame.Type != TypeGameState || frame.RoomID != "alpha" {
		t.Fatalf("unexpected frame header: %+v", frame)
	}
	if frame.Payload.State.RoomID != "alpha" || frame.Payload.State.Gold != 175 {
		t.Fatalf("unexpected state payload: %+v", frame.Payload.State)
	}

	raw := string(data)
	for _, tag := range []string{`"tower_type":"basic"`, `"enemy_type":"fast"`, `"path_index":1`, `"game_time":12.5`, `"muzzle_flashes"`} {
		if !strings.Contains(raw, tag) {
			t.Fatalf("frame missing %s: %s", tag, raw)
		}
	}
}

func TestGameStateEncodingIsDeterministic(t *testing.T) {
	snap := sampleSnapshot()

	first := GameStateFromSnapshot(snap)
	second := GameStateFromSnapshot(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rebuilding from the same snapshot diverged:\n%+v\n%+v", first, second)
	}

	// Renderers replace state wholesale, so the same snapshot must encode to
	// the same bytes every time.
	a, err := EncodeGameState("alpha", first)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	b, err := EncodeGameState("alpha", second)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding diverged:\n%s\n%s", a, b)
	}
}

func TestEncodeGameStateEmptyCollections(t *testing.T) {
	snap := world.Snapshot{
		RoomID: "alpha",
		Spawn:  world.Position{X: 0, Y: 7},
		Goal:   world.Position{X: 19, Y: 7},
	}
	data, err := EncodeGameState("alpha", GameStateFromSnapshot(snap))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	raw := string(data)
	for _, tag := range []string{`"players":[]`, `"towers":[]`, `"enemies":[]`, `"projectiles":[]`, `"muzzle_flashes":[]`, `"explosions":[]`} {
		if !strings.Contains(raw, tag) {
			t.Fatalf("expected empty array %s in %s", tag, raw)
		}
	}
	if strings.Contains(raw, "null") {
		t.Fatalf("collections must never encode null: %s", raw)
	}
}

func TestEncodeJoinAck(t *testing.T) {
	data, err := EncodeJoinAck(JoinAck{RoomID: "alpha", ClientID: "client-7"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var frame struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		RoomID  string `json:"room_id"`
		Payload struct {
			Status   string `json:"status"`
			ClientID string `json:"clientId"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame did not round-trip: %v", err)
	}
	if frame.Type != TypeJoinRoom || frame.RoomID != "alpha" {
		t.Fatalf("unexpected frame header: %+v", frame)
	}
	if frame.Payload.Status != "joined" || frame.Payload.ClientID != "client-7" {
		t.Fatalf("unexpected ack payload: %+v", frame.Payload)
	}
}

func TestEncodeCommandReject(t *testing.T) {
	data, err := EncodeCommandReject(CommandReject{RoomID: "alpha", Command: "place_tower", Reason: "insufficient_gold"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var frame struct {
		Type    string `json:"type"`
		RoomID  string `json:"room_id"`
		Payload struct {
			Command string `json:"command"`
			Reason  string `json:"reason"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame did not round-trip: %v", err)
	}
	if frame.Type != TypeCommandReject || frame.RoomID != "alpha" {
		t.Fatalf("unexpected frame header: %+v", frame)
	}
	if frame.Payload.Command != "place_tower" || frame.Payload.Reason != "insufficient_gold" {
		t.Fatalf("unexpected reject payload: %+v", frame.Payload)
	}
}
