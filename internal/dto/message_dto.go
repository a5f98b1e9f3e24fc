package dto

import (
	"github.com/google/uuid"
)

// StickyFlushMessage is the internal bus payload carrying one debounced
// sticky write from the board store to the consumer.
type StickyFlushMessage struct {
	StickyId      uuid.UUID `json:"sticky_id"`
	Content       string    `json:"content"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	Color         string    `json:"color"`
	OwnerUserId   uuid.UUID `json:"owner_user_id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}
