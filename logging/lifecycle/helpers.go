package lifecycle

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventRoomCreated is emitted when the registry opens a new room.
	EventRoomCreated logging.EventType = "lifecycle.room_created"
	// EventRoomClosed is emitted when a room is deleted and its loop stopped.
	EventRoomClosed logging.EventType = "lifecycle.room_closed"
	// EventMemberJoined is emitted when a subscriber joins a room.
	EventMemberJoined logging.EventType = "lifecycle.member_joined"
	// EventMemberLeft is emitted when a subscriber leaves a room.
	EventMemberLeft logging.EventType = "lifecycle.member_left"
)

// RoomCreatedPayload captures the initial room parameters.
type RoomCreatedPayload struct {
	TickRate int `json:"tickRate"`
}

// RoomClosedPayload captures why the room went away.
type RoomClosedPayload struct {
	Reason  string `json:"reason"`
	Members int    `json:"members"`
}

// MemberPayload captures room occupancy after a membership change.
type MemberPayload struct {
	Members int `json:"members"`
}

// RoomCreated publishes a room creation event.
func RoomCreated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomCreatedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventRoomCreated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// RoomClosed publishes a room teardown event.
func RoomClosed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomClosedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventRoomClosed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// MemberJoined publishes a join event.
func MemberJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MemberPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMemberJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// MemberLeft publishes a leave event.
func MemberLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MemberPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMemberLeft,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
