package telemetry

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Counters aggregates broadcast and tick telemetry across all rooms.
type Counters struct {
	bytesSent             atomic.Uint64
	framesSent            atomic.Uint64
	entitiesSent          atomic.Uint64
	framesDroppedFanout   atomic.Uint64
	framesDroppedSend     atomic.Uint64
	commandsRejected      atomic.Uint64
	tickDurationMillis    atomic.Int64
	roomsOpen             atomic.Int64
	lastBroadcastBytes    atomic.Uint64
	lastBroadcastEntities atomic.Uint64
	debug                 bool
}

// CountersSnapshot is the JSON shape served by the diagnostics endpoint.
type CountersSnapshot struct {
	BytesSent           uint64 `json:"bytesSent"`
	FramesSent          uint64 `json:"framesSent"`
	EntitiesSent        uint64 `json:"entitiesSent"`
	FramesDroppedFanout uint64 `json:"framesDroppedFanout"`
	FramesDroppedSend   uint64 `json:"framesDroppedSend"`
	CommandsRejected    uint64 `json:"commandsRejected"`
	TickDuration        int64  `json:"tickDurationMillis"`
	RoomsOpen           int64  `json:"roomsOpen"`
}

func NewCounters() *Counters {
	c := &Counters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		c.debug = true
	}
	return c
}

// RecordBroadcast accounts for one state frame handed to the fan-out.
func (c *Counters) RecordBroadcast(bytes, entities int) {
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	c.framesSent.Add(1)
	c.bytesSent.Add(uint64(bytes))
	c.entitiesSent.Add(uint64(entities))
	c.lastBroadcastBytes.Store(uint64(bytes))
	c.lastBroadcastEntities.Store(uint64(entities))
}

// RecordTickDuration stores the most recent room tick duration.
func (c *Counters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	c.tickDurationMillis.Store(millis)
	if c.debug {
		fmt.Printf(
			"[telemetry] tick=%dms bytes=%d totalBytes=%d entities=%d totalEntities=%d\n",
			millis,
			c.lastBroadcastBytes.Load(),
			c.bytesSent.Load(),
			c.lastBroadcastEntities.Load(),
			c.entitiesSent.Load(),
		)
	}
}

// IncrementFanoutDrop counts a frame dropped because the room fan-out queue was full.
func (c *Counters) IncrementFanoutDrop() {
	c.framesDroppedFanout.Add(1)
}

// IncrementSendDrop counts a frame dropped because a subscriber queue was full.
func (c *Counters) IncrementSendDrop() {
	c.framesDroppedSend.Add(1)
}

// IncrementCommandRejected counts a command that failed to apply.
func (c *Counters) IncrementCommandRejected() {
	c.commandsRejected.Add(1)
}

// SetRoomsOpen stores the current registry size.
func (c *Counters) SetRoomsOpen(n int) {
	if n < 0 {
		n = 0
	}
	c.roomsOpen.Store(int64(n))
}

func (c *Counters) DebugEnabled() bool {
	return c.debug
}

func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		BytesSent:           c.bytesSent.Load(),
		FramesSent:          c.framesSent.Load(),
		EntitiesSent:        c.entitiesSent.Load(),
		FramesDroppedFanout: c.framesDroppedFanout.Load(),
		FramesDroppedSend:   c.framesDroppedSend.Load(),
		CommandsRejected:    c.commandsRejected.Load(),
		TickDuration:        c.tickDurationMillis.Load(),
		RoomsOpen:           c.roomsOpen.Load(),
	}
}
