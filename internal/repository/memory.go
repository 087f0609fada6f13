package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"mindmate-chat/backend/internal/models"

	"github.com/google/uuid"
)

// MemorySessionRepository keeps sessions in memory. Used in tests and when
// the service runs without a database.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.ChatSession
	messages *MemoryMessageRepository
}

// NewMemorySessionRepository creates an in-memory session repository.
// Pass the message repository so deletes can cascade.
func NewMemorySessionRepository(messages *MemoryMessageRepository) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]models.ChatSession),
		messages: messages,
	}
}

func (r *MemorySessionRepository) List(_ context.Context, includeArchived bool) ([]models.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]models.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		if !includeArchived && s.Archived {
			continue
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (r *MemorySessionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySessionRepository) Create(_ context.Context, session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepository) Update(_ context.Context, id uuid.UUID, patch SessionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Archived != nil {
		s.Archived = *patch.Archived
	}
	if patch.UpdatedAt != nil {
		s.UpdatedAt = *patch.UpdatedAt
	}
	r.sessions[id] = s
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	if r.messages != nil {
		r.messages.deleteBySession(id)
	}
	return nil
}

// MemoryMessageRepository keeps messages in memory, append-ordered per session
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[uuid.UUID][]models.ChatMessage
}

// NewMemoryMessageRepository creates an in-memory message repository
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		messages: make(map[uuid.UUID][]models.ChatMessage),
	}
}

func (r *MemoryMessageRepository) ListBySession(_ context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[sessionID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *MemoryMessageRepository) Append(_ context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	// Keep created_at non-decreasing even when appends land on the same tick
	msgs := r.messages[message.SessionID]
	if n := len(msgs); n > 0 && message.CreatedAt.Before(msgs[n-1].CreatedAt) {
		message.CreatedAt = msgs[n-1].CreatedAt
	}

	r.messages[message.SessionID] = append(msgs, *message)
	return nil
}

func (r *MemoryMessageRepository) deleteBySession(sessionID uuid.UUID) {
	delete(r.messages, sessionID)
}
