package registry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/internal/world"
	"rust-rush/server/logging"
	"rust-rush/server/logging/lifecycle"
	"rust-rush/server/logging/simulation"
)

// ErrClosed reports that the registry has been shut down and will not open
// new rooms.
var ErrClosed = errors.New("registry: closed")

// FrameSink receives the result of every room tick. The websocket fanout
// implements it; the registry stays ignorant of transport details.
type FrameSink interface {
	Publish(roomID string, result sim.LoopStepResult)
}

// Config tunes room loops and idle-room reaping.
type Config struct {
	Loop          sim.LoopConfig
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// DefaultConfig reaps rooms that sit empty for two minutes.
func DefaultConfig() Config {
	return Config{
		Loop:          sim.DefaultLoopConfig(),
		IdleTTL:       2 * time.Minute,
		SweepInterval: 30 * time.Second,
	}
}

// Options bundles everything a registry needs to assemble rooms.
type Options struct {
	Config    Config
	Deps      sim.Deps
	Publisher logging.Publisher
	Sink      FrameSink
	Counters  *telemetry.Counters
	Balance   world.Balance
}

// Room pairs a running loop with its lifecycle bookkeeping. The loop
// goroutine exits when stop closes.
type Room struct {
	ID   string
	Loop *sim.Loop

	stop       chan struct{}
	stopOnce   sync.Once
	createdAt  time.Time
	emptySince time.Time
}

// Enqueue stages a command on the room's loop.
func (r *Room) Enqueue(cmd sim.Command) (bool, string) {
	if r == nil {
		return false, sim.CommandRejectQueueFull
	}
	return r.Loop.Enqueue(cmd)
}

// Snapshot returns the latest cached world snapshot without touching the
// tick goroutine.
func (r *Room) Snapshot() world.Snapshot {
	if r == nil {
		return world.Snapshot{}
	}
	return r.Loop.LatestSnapshot()
}

func (r *Room) shutdown() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// RoomDiagnostics summarizes one room for the diagnostics endpoint.
type RoomDiagnostics struct {
	ID           string  `json:"id"`
	Members      int     `json:"members"`
	Gold         int     `json:"gold"`
	BaseHealth   int     `json:"baseHealth"`
	Wave         int     `json:"wave"`
	GameTime     float64 `json:"gameTime"`
	Tick         uint64  `json:"tick"`
	Paused       bool    `json:"paused"`
	PendingSpawn int     `json:"pendingSpawn"`
	UptimeMillis int64   `json:"uptimeMillis"`
}

// Registry owns every live room: creation on demand, command routing,
// balance rollout, and idle reaping. All methods are safe for concurrent
// use.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	closed bool

	cfg      Config
	deps     sim.Deps
	pub      logging.Publisher
	sink     FrameSink
	counters *telemetry.Counters
	balance  world.Balance
}

// New builds an empty registry. A zero Balance falls back to the default
// tables; a nil publisher falls back to the no-op publisher.
func New(opts Options) *Registry {
	pub := opts.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	balance := opts.Balance
	if len(balance.Defenders) == 0 || len(balance.Hostiles) == 0 {
		balance = world.DefaultBalance()
	}
	cfg := opts.Config
	if cfg.Loop.TickRate <= 0 {
		cfg.Loop = sim.DefaultLoopConfig()
	}
	return &Registry{
		rooms:    make(map[string]*Room),
		cfg:      cfg,
		deps:     opts.Deps,
		pub:      pub,
		sink:     opts.Sink,
		counters: opts.Counters,
		balance:  balance.Clone(),
	}
}

// Get returns the room if it exists.
func (g *Registry) Get(roomID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	return room, ok
}

// GetOrCreate returns the room, starting a fresh loop when it does not
// exist yet.
func (g *Registry) GetOrCreate(roomID string) (*Room, error) {
	g.mu.RLock()
	room, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if ok {
		return room, nil
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrClosed
	}
	if room, ok = g.rooms[roomID]; ok {
		g.mu.Unlock()
		return room, nil
	}

	room, err := g.buildRoom(roomID)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.rooms[roomID] = room
	open := len(g.rooms)
	g.mu.Unlock()

	if g.counters != nil {
		g.counters.SetRoomsOpen(open)
	}
	go room.Loop.Run(room.stop)

	lifecycle.RoomCreated(context.Background(), g.pub, 0, roomRef(roomID),
		lifecycle.RoomCreatedPayload{TickRate: g.cfg.Loop.TickRate}, nil)
	return room, nil
}

// buildRoom wires state, engine, and loop for one room. Caller holds g.mu.
func (g *Registry) buildRoom(roomID string) (*Room, error) {
	roomPub := logging.WithRoom(g.pub, roomID)
	state := world.NewState(roomID, world.DefaultGrid(), g.balance, roomPub)
	engine, err := sim.NewRoomEngine(state, g.deps, roomPub, g.counters)
	if err != nil {
		return nil, err
	}

	sink := g.sink
	counters := g.counters
	hooks := sim.LoopHooks{
		AfterStep: func(result sim.LoopStepResult) {
			if counters != nil {
				counters.RecordTickDuration(result.Duration)
			}
			if result.Budget > 0 && result.Duration > result.Budget {
				simulation.TickBudgetOverrun(context.Background(), roomPub, result.Tick,
					simulation.TickBudgetOverrunPayload{
						DurationMillis: result.Duration.Milliseconds(),
						BudgetMillis:   result.Budget.Milliseconds(),
						Ratio:          float64(result.Duration) / float64(result.Budget),
					}, nil)
			}
			if sink != nil {
				sink.Publish(roomID, result)
			}
		},
	}

	loop := sim.NewLoop(engine, g.cfg.Loop, hooks)
	now := g.now()
	return &Room{
		ID:        roomID,
		Loop:      loop,
		stop:      make(chan struct{}),
		createdAt: now,
	}, nil
}

// Join routes a membership command to the room, creating it on demand.
func (g *Registry) Join(roomID, clientID string) (*Room, bool, string) {
	room, err := g.GetOrCreate(roomID)
	if err != nil {
		return nil, false, "registry_closed"
	}
	ok, reason := room.Enqueue(sim.Command{
		ActorID:  clientID,
		Type:     sim.CommandJoin,
		IssuedAt: g.now(),
	})
	return room, ok, reason
}

// Leave stages a leave command if the room exists. Unknown rooms are a
// no-op; the member was never simulated there.
func (g *Registry) Leave(roomID, clientID string) {
	room, ok := g.Get(roomID)
	if !ok {
		return
	}
	room.Enqueue(sim.Command{
		ActorID:  clientID,
		Type:     sim.CommandLeave,
		IssuedAt: g.now(),
	})
}

// UpdateBalance validates the new tables, stores them for future rooms,
// and stages a SetBalance command on every live room. In-flight entities
// keep their stamped stats.
func (g *Registry) UpdateBalance(balance world.Balance) error {
	if err := balance.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	g.balance = balance.Clone()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	for _, room := range rooms {
		room.Enqueue(sim.Command{
			ActorID:  "balance-reload",
			Type:     sim.CommandSetBalance,
			IssuedAt: g.now(),
			Balance:  &sim.SetBalanceCommand{Balance: balance.Clone()},
		})
	}
	return nil
}

// DeleteRoom stops the room's loop and removes it from the registry.
func (g *Registry) DeleteRoom(roomID, reason string) bool {
	g.mu.Lock()
	room, ok := g.rooms[roomID]
	if ok {
		delete(g.rooms, roomID)
	}
	open := len(g.rooms)
	g.mu.Unlock()

	if !ok {
		return false
	}
	if g.counters != nil {
		g.counters.SetRoomsOpen(open)
	}

	snap := room.Snapshot()
	room.shutdown()
	lifecycle.RoomClosed(context.Background(), g.pub, room.Loop.Tick(), roomRef(roomID),
		lifecycle.RoomClosedPayload{Reason: reason, Members: len(snap.Members)}, nil)
	return true
}

// RoomIDs lists live rooms in stable order.
func (g *Registry) RoomIDs() []string {
	g.mu.RLock()
	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	g.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// DiagnosticsSnapshot summarizes every room for the diagnostics endpoint.
func (g *Registry) DiagnosticsSnapshot() []RoomDiagnostics {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.RUnlock()

	now := g.now()
	out := make([]RoomDiagnostics, 0, len(rooms))
	for _, room := range rooms {
		snap := room.Snapshot()
		out = append(out, RoomDiagnostics{
			ID:           room.ID,
			Members:      len(snap.Members),
			Gold:         snap.Gold,
			BaseHealth:   snap.BaseHealth,
			Wave:         snap.Wave,
			GameTime:     snap.GameTime,
			Tick:         room.Loop.Tick(),
			Paused:       snap.Paused,
			PendingSpawn: snap.PendingSpawn,
			UptimeMillis: now.Sub(room.createdAt).Milliseconds(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RunJanitor reaps rooms that have sat empty past the idle TTL. It blocks
// until stop closes, mirroring the room loops.
func (g *Registry) RunJanitor(stop <-chan struct{}) {
	interval := g.cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultConfig().SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.Sweep(g.now())
		}
	}
}

// Sweep deletes every room that has been empty longer than the idle TTL.
// A room is stamped empty on the first sweep that observes zero members,
// so fresh rooms always survive at least one full interval.
func (g *Registry) Sweep(now time.Time) int {
	ttl := g.cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultConfig().IdleTTL
	}

	g.mu.Lock()
	expired := make([]string, 0)
	for id, room := range g.rooms {
		if len(room.Loop.LatestSnapshot().Members) > 0 {
			room.emptySince = time.Time{}
			continue
		}
		if room.emptySince.IsZero() {
			room.emptySince = now
			continue
		}
		if now.Sub(room.emptySince) >= ttl {
			expired = append(expired, id)
		}
	}
	g.mu.Unlock()

	for _, id := range expired {
		g.DeleteRoom(id, "idle")
	}
	return len(expired)
}

// Shutdown stops every room loop and refuses further room creation.
func (g *Registry) Shutdown() {
	g.mu.Lock()
	g.closed = true
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.rooms = make(map[string]*Room)
	g.mu.Unlock()

	if g.counters != nil {
		g.counters.SetRoomsOpen(0)
	}
	for _, room := range rooms {
		room.shutdown()
		lifecycle.RoomClosed(context.Background(), g.pub, room.Loop.Tick(), roomRef(room.ID),
			lifecycle.RoomClosedPayload{Reason: "shutdown", Members: len(room.Snapshot().Members)}, nil)
	}
}

func (g *Registry) now() time.Time {
	if g.deps.Clock != nil {
		return g.deps.Clock.Now()
	}
	return time.Now()
}

func roomRef(roomID string) logging.EntityRef {
	return logging.EntityRef{ID: roomID, Kind: logging.EntityKindRoom}
}
