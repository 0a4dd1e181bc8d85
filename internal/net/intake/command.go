package intake

import (
	"time"

	"rust-rush/server/internal/net/proto"
	"rust-rush/server/internal/sim"
)

// Enqueuer accepts staged commands for processing on an upcoming tick.
type Enqueuer interface {
	Enqueue(cmd sim.Command) (bool, string)
}

// CommandContext carries the room-scoped collaborators used while staging.
type CommandContext struct {
	Queue Enqueuer
	Tick  func() uint64
	Now   func() time.Time
}

// StageClientCommand validates an inbound envelope, stamps its provenance,
// and hands it to the room queue. On failure it returns a rejection reason
// suitable for the wire.
func StageClientCommand(ctx CommandContext, clientID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, sim.RejectInvalid
	}

	switch command.Type {
	case sim.CommandPlaceDefender:
		if command.Place == nil {
			return zero, false, sim.RejectInvalid
		}
	case sim.CommandRemoveDefender:
		if command.Remove == nil {
			return zero, false, sim.RejectInvalid
		}
	case sim.CommandSpawnHostile:
		if command.Spawn == nil {
			return zero, false, sim.RejectInvalid
		}
	case sim.CommandSetPaused:
		if command.Pause == nil {
			return zero, false, sim.RejectInvalid
		}
	case sim.CommandClearAll, sim.CommandStartWave:
	default:
		return zero, false, sim.RejectInvalid
	}

	command.ActorID = clientID
	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Queue == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Queue.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
