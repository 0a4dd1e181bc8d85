package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/internal/world"
	"rust-rush/server/logging"
	"rust-rush/server/logging/network"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *eventRecorder) publisher() logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		r.mu.Lock()
		r.events = append(r.events, event)
		r.mu.Unlock()
	})
}

func (r *eventRecorder) ofType(kind logging.EventType) []logging.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logging.Event
	for _, event := range r.events {
		if event.Type == kind {
			out = append(out, event)
		}
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func recvFrame(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data := <-s.send:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame on %s", s.ID())
		return nil
	}
}

func tickResult(tick uint64, snap world.Snapshot) sim.LoopStepResult {
	return sim.LoopStepResult{Tick: tick, Snapshot: snap}
}

func startFanout(t *testing.T, f *Fanout) {
	t.Helper()
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go f.Run(stop)
}

func TestFanoutDeliversStateToRoomSubscribers(t *testing.T) {
	f := NewFanout(logging.NopPublisher(), nil, nil)
	first := newSession("client-1", nil)
	second := newSession("client-2", nil)
	outsider := newSession("client-3", nil)
	f.Subscribe("alpha", first)
	f.Subscribe("alpha", second)
	f.Subscribe("beta", outsider)
	startFanout(t, f)

	snap := world.Snapshot{
		RoomID:    "alpha",
		Defenders: []world.Defender{{ID: 1, Cell: world.Cell{X: 3, Y: 4}, Class: world.DefenderBasic, Level: 1}},
	}
	f.Publish("alpha", tickResult(7, snap))

	for _, s := range []*Session{first, second} {
		var frame struct {
			Type    string `json:"type"`
			RoomID  string `json:"room_id"`
			Payload struct {
				State struct {
					Towers []struct {
						ID uint64 `json:"id"`
					} `json:"towers"`
				} `json:"state"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(recvFrame(t, s), &frame); err != nil {
			t.Fatalf("frame did not decode for %s: %v", s.ID(), err)
		}
		if frame.Type != "game_state" || frame.RoomID != "alpha" {
			t.Fatalf("unexpected frame header for %s: %+v", s.ID(), frame)
		}
		if len(frame.Payload.State.Towers) != 1 || frame.Payload.State.Towers[0].ID != 1 {
			t.Fatalf("unexpected towers for %s: %+v", s.ID(), frame.Payload.State.Towers)
		}
	}
	if len(outsider.send) != 0 {
		t.Fatalf("expected no frames for other rooms, got %d", len(outsider.send))
	}
}

func TestFanoutRoutesRejectionsToOriginatingSession(t *testing.T) {
	f := NewFanout(logging.NopPublisher(), nil, nil)
	origin := newSession("client-1", nil)
	bystander := newSession("client-2", nil)
	f.Subscribe("alpha", origin)
	f.Subscribe("alpha", bystander)
	startFanout(t, f)

	result := tickResult(9, world.Snapshot{RoomID: "alpha"})
	result.Rejections = []sim.Rejection{{
		Command: sim.Command{ActorID: "client-1", Type: sim.CommandPlaceDefender},
		Reason:  sim.RejectInsufficientFunds,
	}}
	f.Publish("alpha", result)

	recvFrame(t, origin) // state frame
	var reject struct {
		Type    string `json:"type"`
		Payload struct {
			Command string `json:"command"`
			Reason  string `json:"reason"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(recvFrame(t, origin), &reject); err != nil {
		t.Fatalf("rejection frame did not decode: %v", err)
	}
	if reject.Type != "command_reject" {
		t.Fatalf("expected command_reject, got %q", reject.Type)
	}
	if reject.Payload.Command != "place_tower" || reject.Payload.Reason != sim.RejectInsufficientFunds {
		t.Fatalf("unexpected rejection payload: %+v", reject.Payload)
	}

	recvFrame(t, bystander) // state frame
	if len(bystander.send) != 0 {
		t.Fatalf("rejection must not reach bystanders, got %d extra frames", len(bystander.send))
	}
}

func TestFanoutShedsFramesWhenQueueSaturated(t *testing.T) {
	recorder := &eventRecorder{}
	counters := telemetry.NewCounters()
	f := NewFanout(recorder.publisher(), counters, nil)

	// No Run goroutine, so the queue only fills.
	for i := 0; i < frameQueueSize; i++ {
		f.Publish("alpha", tickResult(uint64(i+1), world.Snapshot{RoomID: "alpha"}))
	}
	if got := counters.Snapshot().FramesDroppedFanout; got != 0 {
		t.Fatalf("expected no drops while the queue has room, got %d", got)
	}

	f.Publish("alpha", tickResult(uint64(frameQueueSize+1), world.Snapshot{RoomID: "alpha"}))
	if got := counters.Snapshot().FramesDroppedFanout; got != 1 {
		t.Fatalf("expected one shed frame, got %d", got)
	}
	events := recorder.ofType(network.EventFrameDropped)
	if len(events) != 1 || events[0].Room != "alpha" {
		t.Fatalf("expected one frame_dropped event for alpha, got %+v", events)
	}
}

func TestFanoutCountsSubscriberDrops(t *testing.T) {
	recorder := &eventRecorder{}
	counters := telemetry.NewCounters()
	f := NewFanout(recorder.publisher(), counters, nil)
	saturated := newSession("client-1", nil)
	for i := 0; i < sendQueueSize; i++ {
		saturated.send <- []byte("backlog")
	}
	f.Subscribe("alpha", saturated)
	startFanout(t, f)

	f.Publish("alpha", tickResult(3, world.Snapshot{RoomID: "alpha"}))

	waitFor(t, "saturation event", func() bool {
		return len(recorder.ofType(network.EventSubscriberSaturated)) == 1
	})
	event := recorder.ofType(network.EventSubscriberSaturated)[0]
	if event.Actor.ID != "client-1" || event.Room != "alpha" {
		t.Fatalf("unexpected saturation event: %+v", event)
	}
	if got := counters.Snapshot().FramesDroppedSend; got != 1 {
		t.Fatalf("expected one counted send drop, got %d", got)
	}
	if saturated.Dropped() != 1 {
		t.Fatalf("expected session drop counter 1, got %d", saturated.Dropped())
	}
}

func TestFanoutUnsubscribeRemovesEmptyRoomIndex(t *testing.T) {
	f := NewFanout(logging.NopPublisher(), nil, nil)
	s := newSession("client-1", nil)
	f.Subscribe("alpha", s)
	f.Unsubscribe("alpha", "client-1")

	f.mu.RLock()
	_, ok := f.rooms["alpha"]
	f.mu.RUnlock()
	if ok {
		t.Fatalf("expected empty room index to be pruned")
	}
}
