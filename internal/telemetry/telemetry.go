// Package telemetry emits operational events about sessions and the realtime
// hub to the configured sinks (Kafka, Loki) without blocking request paths.
package telemetry

import (
	"context"
	"time"
)

// Event names emitted by the server.
const (
	EventSessionCreated   = "session_created"
	EventSessionJoined    = "session_joined"
	EventJoinRejected     = "join_rejected"
	EventConnectionOpened = "connection_opened"
	EventConnectionClosed = "connection_closed"
	EventStateBroadcast   = "state_broadcast"
	EventLyricsBroadcast  = "lyrics_broadcast"
)

// Event is one operational occurrence. Detail is event-specific free text
// (a passage reference, a song title, a rejection reason).
type Event struct {
	Name      string    `json:"name"`
	SessionID string    `json:"sessionId,omitempty"`
	Role      string    `json:"role,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Emitter accepts events. Emit delivers synchronously; EmitAsync queues and
// never blocks the caller.
type Emitter interface {
	Emit(ctx context.Context, e *Event) error
	EmitAsync(ctx context.Context, e *Event)
}

// Sink is one downstream destination for events.
type Sink interface {
	Publish(ctx context.Context, e *Event) error
	Close() error
}
