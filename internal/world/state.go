package world

import (
	"strconv"

	"rust-rush/server/logging"
)

// Starting resources for a fresh room.
const (
	StartingGold       = 200
	StartingBaseHealth = 100

	// HostileBounty is credited per destroyed hostile, BreachDamage deducted
	// from base health per hostile that reaches the goal.
	HostileBounty = 10
	BreachDamage  = 10
)

// State is the authoritative world for one room. It is not safe for
// concurrent use; the room's loop owns it and everyone else reads snapshots.
type State struct {
	roomID  string
	grid    Grid
	balance Balance

	members []string

	defenders   []Defender
	hostiles    []Hostile
	projectiles []Projectile
	effects     []Effect

	gold       int
	baseHealth int
	wave       int
	gameTime   float64
	paused     bool

	spawner spawner

	nextDefenderID   uint64
	nextHostileID    uint64
	nextProjectileID uint64
	nextEffectID     uint64

	tick uint64
	pub  logging.Publisher
}

// NewState builds a fresh world with starting resources. A nil publisher is
// replaced with a no-op sink so callers never guard event emission.
func NewState(roomID string, grid Grid, balance Balance, pub logging.Publisher) *State {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &State{
		roomID:           roomID,
		grid:             grid,
		balance:          balance.Clone(),
		gold:             StartingGold,
		baseHealth:       StartingBaseHealth,
		wave:             1,
		spawner:          newSpawner(),
		nextDefenderID:   1,
		nextHostileID:    1,
		nextProjectileID: 1,
		nextEffectID:     1,
		pub:              pub,
	}
}

// SetTick records the loop tick used to stamp emitted events.
func (s *State) SetTick(tick uint64) { s.tick = tick }

// Tick returns the most recently recorded loop tick.
func (s *State) Tick() uint64 { return s.tick }

func (s *State) roomRef() logging.EntityRef {
	return logging.EntityRef{ID: s.roomID, Kind: logging.EntityKindRoom}
}

func defenderRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindDefender}
}

func hostileRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindHostile}
}

func projectileRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindProjectile}
}

// RoomID returns the owning room's identifier.
func (s *State) RoomID() string { return s.roomID }

// Grid returns the playfield dimensions.
func (s *State) Grid() Grid { return s.grid }

// AddMember registers a member id, ignoring duplicates. It reports whether
// the roster changed.
func (s *State) AddMember(id string) bool {
	if id == "" {
		return false
	}
	for _, existing := range s.members {
		if existing == id {
			return false
		}
	}
	s.members = append(s.members, id)
	return true
}

// RemoveMember drops a member id, reporting whether it was present.
func (s *State) RemoveMember(id string) bool {
	for i, existing := range s.members {
		if existing == id {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberCount returns the current roster size.
func (s *State) MemberCount() int { return len(s.members) }

func (s *State) allocDefenderID() uint64 {
	id := s.nextDefenderID
	s.nextDefenderID++
	return id
}

func (s *State) allocHostileID() uint64 {
	id := s.nextHostileID
	s.nextHostileID++
	return id
}

func (s *State) allocProjectileID() uint64 {
	id := s.nextProjectileID
	s.nextProjectileID++
	return id
}

func (s *State) allocEffectID() uint64 {
	id := s.nextEffectID
	s.nextEffectID++
	return id
}

// blockedCells collects every cell occupied by a defender.
func (s *State) blockedCells() CellSet {
	blocked := make(CellSet, len(s.defenders))
	for i := range s.defenders {
		blocked.Add(s.defenders[i].Cell)
	}
	return blocked
}

func (s *State) defenderIndexAt(cell Cell) int {
	for i := range s.defenders {
		if s.defenders[i].Cell == cell {
			return i
		}
	}
	return -1
}

func (s *State) hostileByID(id uint64) *Hostile {
	for i := range s.hostiles {
		if s.hostiles[i].ID == id {
			return &s.hostiles[i]
		}
	}
	return nil
}

// Snapshot is an immutable copy of the world handed to encoders and tests.
type Snapshot struct {
	RoomID       string
	Members      []string
	Defenders    []Defender
	Hostiles     []Hostile
	Projectiles  []Projectile
	Effects      []Effect
	Gold         int
	BaseHealth   int
	Wave         int
	GameTime     float64
	Paused       bool
	PendingSpawn int
	Spawn        Position
	Goal         Position
}

// Snapshot deep-copies the world so the caller can hold it across ticks.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		RoomID:       s.roomID,
		Members:      append([]string(nil), s.members...),
		Defenders:    append([]Defender(nil), s.defenders...),
		Projectiles:  append([]Projectile(nil), s.projectiles...),
		Effects:      append([]Effect(nil), s.effects...),
		Gold:         s.gold,
		BaseHealth:   s.baseHealth,
		Wave:         s.wave,
		GameTime:     s.gameTime,
		Paused:       s.paused,
		PendingSpawn: len(s.spawner.queue),
		Spawn:        PositionOf(s.grid.SpawnCell()),
		Goal:         PositionOf(s.grid.GoalCell()),
	}
	snap.Hostiles = make([]Hostile, len(s.hostiles))
	for i := range s.hostiles {
		snap.Hostiles[i] = s.hostiles[i].clone()
	}
	return snap
}
