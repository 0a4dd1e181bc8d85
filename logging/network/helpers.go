package network

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventMalformedMessage is emitted when an inbound envelope fails to decode.
	EventMalformedMessage logging.EventType = "network.malformed_message"
	// EventUnknownRoom is emitted when a message names a room the registry does not hold.
	EventUnknownRoom logging.EventType = "network.unknown_room"
	// EventSubscriberSaturated is emitted when a subscriber's send queue overflows.
	EventSubscriberSaturated logging.EventType = "network.subscriber_saturated"
	// EventFrameDropped is emitted when the room fan-out queue overflows.
	EventFrameDropped logging.EventType = "network.frame_dropped"
)

// MalformedMessagePayload captures decode failure details.
type MalformedMessagePayload struct {
	Reason      string `json:"reason"`
	MessageType string `json:"messageType,omitempty"`
}

// UnknownRoomPayload captures the rejected room reference.
type UnknownRoomPayload struct {
	RoomID      string `json:"roomId"`
	MessageType string `json:"messageType,omitempty"`
}

// SaturationPayload captures drop counters for a saturated queue.
type SaturationPayload struct {
	Dropped uint64 `json:"dropped"`
	Queue   int    `json:"queue"`
}

// MalformedMessage publishes a decode failure event.
func MalformedMessage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MalformedMessagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMalformedMessage,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// UnknownRoom publishes an unknown room reference event.
func UnknownRoom(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnknownRoomPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventUnknownRoom,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SubscriberSaturated publishes a warning for an overflowing subscriber queue.
func SubscriberSaturated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SaturationPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSubscriberSaturated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// FrameDropped publishes a debug event for a dropped broadcast frame.
func FrameDropped(ctx context.Context, pub logging.Publisher, tick uint64, payload SaturationPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFrameDropped,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
