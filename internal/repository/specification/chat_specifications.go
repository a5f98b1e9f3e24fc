package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// StickyOwnedBy scopes sticky queries to one board owner.
type StickyOwnedBy struct {
	OwnerUserID uuid.UUID
}

func (s StickyOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_user_id = ?", s.OwnerUserID)
}
