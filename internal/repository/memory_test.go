package repository

import (
	"context"
	"testing"
	"time"

	"mindmate-chat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryRepos() (*MemorySessionRepository, *MemoryMessageRepository) {
	messages := NewMemoryMessageRepository()
	return NewMemorySessionRepository(messages), messages
}

func TestSessionListOrdering(t *testing.T) {
	sessions, _ := newMemoryRepos()
	ctx := context.Background()

	old := &models.ChatSession{Title: "old", UpdatedAt: time.Now().Add(-time.Hour)}
	recent := &models.ChatSession{Title: "recent", UpdatedAt: time.Now()}
	require.NoError(t, sessions.Create(ctx, old))
	require.NoError(t, sessions.Create(ctx, recent))

	list, err := sessions.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "recent", list[0].Title)
	assert.Equal(t, "old", list[1].Title)
}

func TestSessionListArchivedFilter(t *testing.T) {
	sessions, _ := newMemoryRepos()
	ctx := context.Background()

	active := &models.ChatSession{Title: "active"}
	archived := &models.ChatSession{Title: "archived", Archived: true}
	require.NoError(t, sessions.Create(ctx, active))
	require.NoError(t, sessions.Create(ctx, archived))

	list, err := sessions.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "active", list[0].Title)

	list, err = sessions.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSessionUpdate(t *testing.T) {
	sessions, _ := newMemoryRepos()
	ctx := context.Background()

	session := &models.ChatSession{Title: "before"}
	require.NoError(t, sessions.Create(ctx, session))

	title := "after"
	archived := true
	require.NoError(t, sessions.Update(ctx, session.ID, SessionPatch{Title: &title, Archived: &archived}))

	got, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.True(t, got.Archived)
}

func TestSessionUpdateNotFound(t *testing.T) {
	sessions, _ := newMemoryRepos()

	title := "x"
	err := sessions.Update(context.Background(), uuid.New(), SessionPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionDeleteCascades(t *testing.T) {
	sessions, messages := newMemoryRepos()
	ctx := context.Background()

	session := &models.ChatSession{Title: "doomed"}
	require.NoError(t, sessions.Create(ctx, session))
	require.NoError(t, messages.Append(ctx, &models.ChatMessage{SessionID: session.ID, Content: "hi"}))

	require.NoError(t, sessions.Delete(ctx, session.ID))

	_, err := sessions.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err := messages.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessageAppendOrder(t *testing.T) {
	_, messages := newMemoryRepos()
	ctx := context.Background()
	sessionID := uuid.New()

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, messages.Append(ctx, &models.ChatMessage{SessionID: sessionID, Content: content}))
	}

	msgs, err := messages.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)

	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt),
			"created_at must be non-decreasing")
	}
}

func TestMessageAppendAssignsID(t *testing.T) {
	_, messages := newMemoryRepos()

	msg := &models.ChatMessage{SessionID: uuid.New(), Content: "hi"}
	require.NoError(t, messages.Append(context.Background(), msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}
