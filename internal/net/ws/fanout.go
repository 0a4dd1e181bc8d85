package ws

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"rust-rush/server/internal/net/proto"
	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/logging"
	"rust-rush/server/logging/network"
)

// frameQueueSize bounds the tick results awaiting fan-out across all rooms.
const frameQueueSize = 256

type frame struct {
	roomID string
	result sim.LoopStepResult
}

// Fanout distributes tick results to room subscribers. Room loops hand
// results to Publish without blocking; a single Run goroutine encodes each
// frame once and queues it per session.
type Fanout struct {
	pub      logging.Publisher
	counters *telemetry.Counters
	logger   *log.Logger

	frames  chan frame
	dropped atomic.Uint64

	mu    sync.RWMutex
	rooms map[string]map[string]*Session
}

// NewFanout constructs an idle fan-out stage. Call Run to start delivery.
func NewFanout(pub logging.Publisher, counters *telemetry.Counters, logger *log.Logger) *Fanout {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fanout{
		pub:      pub,
		counters: counters,
		logger:   logger,
		frames:   make(chan frame, frameQueueSize),
		rooms:    make(map[string]map[string]*Session),
	}
}

// Publish accepts a tick result from a room loop. It never blocks; when the
// shared queue is saturated the incoming frame is shed.
func (f *Fanout) Publish(roomID string, result sim.LoopStepResult) {
	select {
	case f.frames <- frame{roomID: roomID, result: result}:
	default:
		f.dropped.Add(1)
		if f.counters != nil {
			f.counters.IncrementFanoutDrop()
		}
		network.FrameDropped(context.Background(), logging.WithRoom(f.pub, roomID), result.Tick, network.SaturationPayload{
			Dropped: f.dropped.Load(),
			Queue:   len(f.frames),
		}, nil)
	}
}

// Subscribe registers a session for a room's frames.
func (f *Fanout) Subscribe(roomID string, s *Session) {
	if s == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.rooms[roomID]
	if subs == nil {
		subs = make(map[string]*Session)
		f.rooms[roomID] = subs
	}
	subs[s.ID()] = s
}

// Unsubscribe removes a session from a room's frames.
func (f *Fanout) Unsubscribe(roomID, clientID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.rooms[roomID]
	if subs == nil {
		return
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(f.rooms, roomID)
	}
}

// Run delivers queued frames until stop closes.
func (f *Fanout) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case fr := <-f.frames:
			f.deliver(fr)
		}
	}
}

func (f *Fanout) roomSessions(roomID string) []*Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	subs := f.rooms[roomID]
	if len(subs) == 0 {
		return nil
	}
	out := make([]*Session, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

func (f *Fanout) sessionFor(roomID, clientID string) *Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rooms[roomID][clientID]
}

func (f *Fanout) deliver(fr frame) {
	sessions := f.roomSessions(fr.roomID)
	if len(sessions) > 0 {
		state := proto.GameStateFromSnapshot(fr.result.Snapshot)
		data, err := proto.EncodeGameState(fr.roomID, state)
		if err != nil {
			f.logger.Printf("failed to marshal state for room %s: %v", fr.roomID, err)
		} else {
			entities := len(state.Towers) + len(state.Enemies) + len(state.Projectiles) +
				len(state.MuzzleFlashes) + len(state.Explosions)
			for _, s := range sessions {
				if s.Send(data) {
					if f.counters != nil {
						f.counters.RecordBroadcast(len(data), entities)
					}
					continue
				}
				if f.counters != nil {
					f.counters.IncrementSendDrop()
				}
				network.SubscriberSaturated(context.Background(), logging.WithRoom(f.pub, fr.roomID), fr.result.Tick, logging.EntityRef{
					ID:   s.ID(),
					Kind: logging.EntityKindMember,
				}, network.SaturationPayload{
					Dropped: s.Dropped(),
					Queue:   s.QueueLen(),
				}, nil)
			}
		}
	}

	// Rejections go only to the session that issued the command.
	for _, rej := range fr.result.Rejections {
		s := f.sessionFor(fr.roomID, rej.Command.ActorID)
		if s == nil {
			continue
		}
		data, err := proto.EncodeCommandReject(proto.CommandReject{
			RoomID:  fr.roomID,
			Command: proto.CommandName(rej.Command.Type),
			Reason:  rej.Reason,
		})
		if err != nil {
			f.logger.Printf("failed to marshal rejection for %s: %v", rej.Command.ActorID, err)
			continue
		}
		s.Send(data)
	}
}
