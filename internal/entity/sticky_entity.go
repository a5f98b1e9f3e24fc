package entity

import (
	"time"

	"github.com/google/uuid"
)

type Sticky struct {
	Id            uuid.UUID
	Content       string
	X             float64
	Y             float64
	Color         string
	OwnerUserId   uuid.UUID
	ChatSessionId uuid.UUID
	Style         map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
