package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rust-rush/server/internal/net/intake"
	"rust-rush/server/internal/net/proto"
	"rust-rush/server/internal/registry"
	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/logging"
	"rust-rush/server/logging/network"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway upgrades websocket requests and runs the per-session read loop.
// Join and leave are handled here; everything else is staged onto the
// target room's command queue.
type Gateway struct {
	registry *registry.Registry
	fanout   *Fanout
	pub      logging.Publisher
	counters *telemetry.Counters
	logger   *log.Logger

	nextID atomic.Uint64

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewGateway wires the websocket entry point to the room registry and
// fan-out stage.
func NewGateway(reg *registry.Registry, fanout *Fanout, pub logging.Publisher, counters *telemetry.Counters, logger *log.Logger) *Gateway {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{
		registry: reg,
		fanout:   fanout,
		pub:      pub,
		counters: counters,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// ServeHTTP upgrades the request and serves the session until the client
// disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	session := newSession(fmt.Sprintf("client-%d", g.nextID.Add(1)), conn)
	g.mu.Lock()
	g.sessions[session.ID()] = session
	g.mu.Unlock()

	session.configureRead()
	go session.writePump()
	g.readLoop(session)
}

// CloseAll tears down every live session. http.Server.Shutdown does not
// cover hijacked connections.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	sessions := make([]*Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (g *Gateway) readLoop(s *Session) {
	defer g.drop(s)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.logger.Printf("read failed for %s: %v", s.ID(), err)
			}
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			g.logger.Printf("discarding malformed message from %s: %v", s.ID(), err)
			network.MalformedMessage(context.Background(), g.pub, 0, sessionRef(s), network.MalformedMessagePayload{
				Reason:      err.Error(),
				MessageType: msg.Type,
			}, nil)
			continue
		}

		switch msg.Type {
		case proto.TypeJoinRoom:
			g.handleJoin(s, msg)
		case proto.TypeLeaveRoom:
			g.handleLeave(s)
		default:
			g.handleCommand(s, msg)
		}
	}
}

func (g *Gateway) handleJoin(s *Session, msg proto.ClientMessage) {
	if msg.RoomID == "" {
		g.reject(s, "", proto.TypeJoinRoom, sim.RejectInvalid)
		return
	}

	if prev := s.clearRoom(); prev != "" && prev != msg.RoomID {
		g.fanout.Unsubscribe(prev, s.ID())
		g.registry.Leave(prev, s.ID())
	}

	room, ok, reason := g.registry.Join(msg.RoomID, s.ID())
	if !ok {
		g.reject(s, msg.RoomID, proto.TypeJoinRoom, reason)
		return
	}
	s.setRoom(msg.RoomID)
	g.fanout.Subscribe(msg.RoomID, s)

	ack, err := proto.EncodeJoinAck(proto.JoinAck{RoomID: msg.RoomID, ClientID: s.ID()})
	if err != nil {
		g.logger.Printf("failed to marshal join ack for %s: %v", s.ID(), err)
	} else {
		s.Send(ack)
	}

	state, err := proto.EncodeGameState(msg.RoomID, proto.GameStateFromSnapshot(room.Snapshot()))
	if err != nil {
		g.logger.Printf("failed to marshal initial state for %s: %v", s.ID(), err)
		return
	}
	s.Send(state)
	g.logger.Printf("client %s joined room %s", s.ID(), msg.RoomID)
}

func (g *Gateway) handleLeave(s *Session) {
	if room := s.clearRoom(); room != "" {
		g.fanout.Unsubscribe(room, s.ID())
		g.registry.Leave(room, s.ID())
		g.logger.Printf("client %s left room %s", s.ID(), room)
	}
}

func (g *Gateway) handleCommand(s *Session, msg proto.ClientMessage) {
	roomID := msg.RoomID
	if roomID == "" {
		roomID = s.Room()
	}
	if roomID == "" {
		g.logger.Printf("dropping %s from %s outside any room", msg.Type, s.ID())
		network.UnknownRoom(context.Background(), g.pub, 0, sessionRef(s), network.UnknownRoomPayload{
			MessageType: msg.Type,
		}, nil)
		return
	}

	room, ok := g.registry.Get(roomID)
	if !ok {
		g.logger.Printf("dropping %s from %s for unknown room %s", msg.Type, s.ID(), roomID)
		network.UnknownRoom(context.Background(), logging.WithRoom(g.pub, roomID), 0, sessionRef(s), network.UnknownRoomPayload{
			RoomID:      roomID,
			MessageType: msg.Type,
		}, nil)
		return
	}

	_, staged, reason := intake.StageClientCommand(intake.CommandContext{
		Queue: room,
		Tick:  room.Loop.Tick,
		Now:   time.Now,
	}, s.ID(), msg)
	if !staged {
		if g.counters != nil {
			g.counters.IncrementCommandRejected()
		}
		g.reject(s, roomID, msg.Type, reason)
	}
}

func (g *Gateway) reject(s *Session, roomID, command, reason string) {
	data, err := proto.EncodeCommandReject(proto.CommandReject{
		RoomID:  roomID,
		Command: command,
		Reason:  reason,
	})
	if err != nil {
		g.logger.Printf("failed to marshal rejection for %s: %v", s.ID(), err)
		return
	}
	s.Send(data)
}

func (g *Gateway) drop(s *Session) {
	if room := s.clearRoom(); room != "" {
		g.fanout.Unsubscribe(room, s.ID())
		g.registry.Leave(room, s.ID())
	}
	g.mu.Lock()
	delete(g.sessions, s.ID())
	g.mu.Unlock()
	s.Close()
}

func sessionRef(s *Session) logging.EntityRef {
	return logging.EntityRef{ID: s.ID(), Kind: logging.EntityKindMember}
}
