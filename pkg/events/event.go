package events

import (
	"time"

	"hello-ai-be/internal/constant"

	"github.com/google/uuid"
)

// Event is the contract every bus event satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STICKY_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSessionCreated fires when a chat session row is first persisted.
func NewSessionCreated(sessionId, userId uuid.UUID, title string) Event {
	return BaseEvent{
		Type: constant.EventSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionId.String(),
			"user_id":    userId.String(),
			"title":      title,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatTurnCommitted fires once per completed stream, after the final
// assistant message is durably written.
func NewChatTurnCommitted(sessionId, userId uuid.UUID, messageCount int) Event {
	return BaseEvent{
		Type: constant.EventChatTurnCommitted,
		Data: map[string]interface{}{
			"session_id":    sessionId.String(),
			"user_id":       userId.String(),
			"message_count": messageCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewStickySaved fires after a sticky's debounced durable write lands.
func NewStickySaved(stickyId, sessionId, ownerUserId uuid.UUID) Event {
	return BaseEvent{
		Type: constant.EventStickySaved,
		Data: map[string]interface{}{
			"sticky_id":     stickyId.String(),
			"session_id":    sessionId.String(),
			"owner_user_id": ownerUserId.String(),
		},
		OccurredAt: time.Now(),
	}
}
