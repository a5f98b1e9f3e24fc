package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Sticky struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content       string    `gorm:"type:text;not null"`
	X             float64   `gorm:"not null"`
	Y             float64   `gorm:"not null"`
	Color         string    `gorm:"type:varchar(20)"`
	OwnerUserId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	// Free-form presentation attributes (font, rotation, ...) the board may add.
	Style     datatypes.JSONMap
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Sticky) TableName() string {
	return "stickies"
}
