package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession represents a single persisted conversation thread.
// Archived sessions are hidden from the primary list but stay deletable
// and can be unarchived.
type ChatSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
	Archived  bool      `json:"archived"`

	Messages []ChatMessage `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the GORM default
func (ChatSession) TableName() string {
	return "chat_sessions"
}
