package sim

import (
	"context"
	"errors"
	"fmt"

	"rust-rush/server/internal/telemetry"
	"rust-rush/server/internal/world"
	"rust-rush/server/logging"
	"rust-rush/server/logging/lifecycle"
	"rust-rush/server/logging/simulation"
)

// ErrNilState is returned when an engine is constructed without a world.
var ErrNilState = errors.New("sim: room state is nil")

// RoomEngine binds the command surface to one room's world state. It is not
// safe for concurrent use; the loop serializes all access.
type RoomEngine struct {
	state    *world.State
	deps     Deps
	pub      logging.Publisher
	counters *telemetry.Counters
}

// NewRoomEngine wires a world state to the command surface. The publisher
// may be nil; counters may be nil when diagnostics are not wanted.
func NewRoomEngine(state *world.State, deps Deps, pub logging.Publisher, counters *telemetry.Counters) (*RoomEngine, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &RoomEngine{state: state, deps: deps, pub: pub, counters: counters}, nil
}

// Deps returns the injected dependencies.
func (e *RoomEngine) Deps() Deps { return e.deps }

// Apply runs each staged command against the world in order. Failures are
// collected as rejections rather than aborting the batch, so one bad command
// never starves the rest of the queue.
func (e *RoomEngine) Apply(cmds []Command) []Rejection {
	var rejections []Rejection
	for _, cmd := range cmds {
		err := e.apply(cmd)
		if err == nil {
			continue
		}
		reason := rejectReason(err)
		rejections = append(rejections, Rejection{Command: cmd, Reason: reason})
		if e.counters != nil {
			e.counters.IncrementCommandRejected()
		}
		simulation.CommandRejected(context.Background(), e.pub, e.state.Tick(), logging.EntityRef{
			ID:   cmd.ActorID,
			Kind: logging.EntityKindMember,
		}, simulation.CommandRejectedPayload{
			Command: string(cmd.Type),
			Reason:  reason,
		}, nil)
	}
	return rejections
}

func (e *RoomEngine) apply(cmd Command) error {
	switch cmd.Type {
	case CommandJoin:
		if e.state.AddMember(cmd.ActorID) {
			lifecycle.MemberJoined(context.Background(), e.pub, e.state.Tick(), logging.EntityRef{
				ID:   cmd.ActorID,
				Kind: logging.EntityKindMember,
			}, lifecycle.MemberPayload{Members: e.state.MemberCount()}, nil)
		}
		return nil
	case CommandLeave:
		if e.state.RemoveMember(cmd.ActorID) {
			lifecycle.MemberLeft(context.Background(), e.pub, e.state.Tick(), logging.EntityRef{
				ID:   cmd.ActorID,
				Kind: logging.EntityKindMember,
			}, lifecycle.MemberPayload{Members: e.state.MemberCount()}, nil)
		}
		return nil
	case CommandPlaceDefender:
		if cmd.Place == nil {
			return fmt.Errorf("sim: %s command without payload", cmd.Type)
		}
		_, err := e.state.PlaceDefender(world.Cell{X: cmd.Place.X, Y: cmd.Place.Y}, cmd.Place.Class)
		return err
	case CommandRemoveDefender:
		if cmd.Remove == nil {
			return fmt.Errorf("sim: %s command without payload", cmd.Type)
		}
		return e.state.RemoveDefender(world.Cell{X: cmd.Remove.X, Y: cmd.Remove.Y})
	case CommandSpawnHostile:
		if cmd.Spawn == nil {
			return fmt.Errorf("sim: %s command without payload", cmd.Type)
		}
		_, err := e.state.SpawnHostile(cmd.Spawn.Class, cmd.Spawn.Route)
		return err
	case CommandClearAll:
		e.state.ClearAll()
		return nil
	case CommandSetPaused:
		var paused *bool
		if cmd.Pause != nil {
			paused = cmd.Pause.Paused
		}
		e.state.SetPaused(paused)
		return nil
	case CommandStartWave:
		_, err := e.state.StartWave()
		return err
	case CommandSetBalance:
		if cmd.Balance == nil {
			return fmt.Errorf("sim: %s command without payload", cmd.Type)
		}
		return e.state.SetBalance(cmd.Balance.Balance)
	default:
		return fmt.Errorf("sim: unknown command type %q", cmd.Type)
	}
}

// Step advances the world one tick.
func (e *RoomEngine) Step(tick uint64, dt float64) {
	e.state.SetTick(tick)
	e.state.Advance(dt)
}

// Snapshot returns a deep copy of the room's world.
func (e *RoomEngine) Snapshot() world.Snapshot {
	return e.state.Snapshot()
}

// rejectReason maps world errors onto stable client-facing reasons.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, world.ErrOutOfBounds):
		return RejectOutOfBounds
	case errors.Is(err, world.ErrCellOccupied):
		return RejectCellOccupied
	case errors.Is(err, world.ErrInsufficientFunds):
		return RejectInsufficientFunds
	case errors.Is(err, world.ErrNoRoute):
		return RejectNoRoute
	case errors.Is(err, world.ErrDefenderNotFound):
		return RejectDefenderNotFound
	case errors.Is(err, world.ErrWaveInProgress):
		return RejectWaveInProgress
	case errors.Is(err, world.ErrUnknownClass):
		return RejectUnknownClass
	default:
		return RejectInvalid
	}
}

// Ensure RoomEngine satisfies the loop's contract.
var _ EngineCore = (*RoomEngine)(nil)
