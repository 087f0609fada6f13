package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one message in a session. Messages are immutable once
// created; created_at defines the append order within a session.
type ChatMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;index;not null"`
	Content   string    `json:"content"`
	IsBot     bool      `json:"is_bot"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName overrides the GORM default
func (ChatMessage) TableName() string {
	return "chat_messages"
}
