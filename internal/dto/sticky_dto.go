package dto

import (
	"github.com/google/uuid"
)

type AddStickyRequest struct {
	Content string  `json:"content" validate:"required,min=1"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color"`
	// SessionId binds the board to a chat session; without one the
	// sticky stays on the local board only.
	SessionId uuid.UUID `json:"session_id"`
}

type StickyResponse struct {
	Id          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Color       string    `json:"color"`
	OwnerUserId uuid.UUID `json:"owner_user_id"`
}

type BoardResponse struct {
	Hydrated bool             `json:"hydrated"`
	Stickies []StickyResponse `json:"stickies"`
}

type MoveStickyRequest struct {
	Id uuid.UUID
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// BoardEvent is the websocket frame fanned out to connected board
// clients when a sticky mutation lands.
type BoardEvent struct {
	Type     string           `json:"type"` // "sticky_added", "sticky_moved", "sticky_removed", "sticky_saved"
	Sticky   *StickyResponse  `json:"sticky,omitempty"`
	StickyId uuid.UUID        `json:"sticky_id,omitempty"`
	Board    []StickyResponse `json:"board,omitempty"`
}
