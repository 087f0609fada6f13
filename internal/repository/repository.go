package repository

import (
	"context"
	"errors"
	"time"

	"mindmate-chat/backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist
var ErrNotFound = errors.New("session not found")

// SessionPatch is a partial update for a session. Nil fields are left alone.
type SessionPatch struct {
	Title     *string
	Archived  *bool
	UpdatedAt *time.Time
}

// SessionRepository is the persistence contract for chat sessions
type SessionRepository interface {
	// List returns sessions ordered by updated_at descending. When
	// includeArchived is false, archived sessions are filtered out.
	List(ctx context.Context, includeArchived bool) ([]models.ChatSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	Create(ctx context.Context, session *models.ChatSession) error
	Update(ctx context.Context, id uuid.UUID, patch SessionPatch) error
	// Delete removes a session and cascades to its messages
	Delete(ctx context.Context, id uuid.UUID) error
}

// MessageRepository is the persistence contract for chat messages
type MessageRepository interface {
	// ListBySession returns messages ordered by created_at ascending
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error)
	Append(ctx context.Context, message *models.ChatMessage) error
}
