package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"mindmate-chat/backend/internal/models"
	"mindmate-chat/backend/internal/repository"
	"mindmate-chat/backend/pkg/config"
	apperrors "mindmate-chat/backend/pkg/errors"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/shared/observability"

	"github.com/google/uuid"
)

// TurnResult is the outcome of one completed conversation turn
type TurnResult struct {
	UserMessage models.ChatMessage `json:"user_message"`
	BotMessage  models.ChatMessage `json:"bot_message"`
	Session     models.ChatSession `json:"session"`
	Fallback    bool               `json:"fallback"`
}

// ConversationService orchestrates sessions, messages and the model
// services. One instance serves all sessions; per-session turn locks keep
// appends in submission order.
type ConversationService struct {
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	completion  *CompletionService
	suggestions *SuggestionService
	cfg         *config.Config
	log         *logger.Logger

	// turns holds the session IDs with an in-flight turn
	turns sync.Map
}

// NewConversationService creates a conversation service
func NewConversationService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	completion *CompletionService,
	suggestions *SuggestionService,
	cfg *config.Config,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{
		sessions:    sessions,
		messages:    messages,
		completion:  completion,
		suggestions: suggestions,
		cfg:         cfg,
		log:         log,
	}
}

// ListSessions returns sessions newest-activity-first
func (s *ConversationService) ListSessions(ctx context.Context, includeArchived bool) ([]models.ChatSession, error) {
	sessions, err := s.sessions.List(ctx, includeArchived)
	if err != nil {
		return nil, apperrors.NewStoreError("list sessions", err)
	}
	return sessions, nil
}

// CreateSession creates a session with the default title and seeds the
// welcome message
func (s *ConversationService) CreateSession(ctx context.Context) (*models.ChatSession, error) {
	session := &models.ChatSession{
		Title:     s.cfg.Chat.DefaultTitle,
		UpdatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.NewStoreError("create session", err)
	}

	welcome := &models.ChatMessage{
		SessionID: session.ID,
		Content:   WelcomeMessage,
		IsBot:     true,
	}
	if err := s.messages.Append(ctx, welcome); err != nil {
		// The session is usable without its greeting; log and move on
		s.log.LogError(err, "failed to seed welcome message", "session_id", session.ID)
	}

	return session, nil
}

// GetSession fetches one session
func (s *ConversationService) GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFoundError(apperrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get session", err)
	}
	return session, nil
}

// UpdateSession renames, archives or unarchives a session
func (s *ConversationService) UpdateSession(ctx context.Context, id uuid.UUID, title *string, archived *bool) (*models.ChatSession, error) {
	patch := repository.SessionPatch{Title: title, Archived: archived}
	err := s.sessions.Update(ctx, id, patch)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFoundError(apperrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, apperrors.NewStoreError("update session", err)
	}
	return s.GetSession(ctx, id)
}

// DeleteSession removes a session and its messages, then picks the session
// the client should select next: the most recent remaining one, or a freshly
// created default session when none remain. The active selection never
// dangles.
func (s *ConversationService) DeleteSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	err := s.sessions.Delete(ctx, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFoundError(apperrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, apperrors.NewStoreError("delete session", err)
	}

	remaining, err := s.sessions.List(ctx, true)
	if err != nil {
		return nil, apperrors.NewStoreError("list sessions", err)
	}
	if len(remaining) > 0 {
		next := remaining[0]
		return &next, nil
	}

	return s.CreateSession(ctx)
}

// ListMessages returns a session's messages oldest-first
func (s *ConversationService) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewStoreError("list messages", err)
	}
	return messages, nil
}

// SendMessage runs one conversation turn: persist the user message, retitle
// on the first one, obtain the assistant reply, persist it and bump the
// session's activity timestamp. A second submission while a turn is pending
// is rejected rather than interleaved.
func (s *ConversationService) SendMessage(ctx context.Context, sessionID uuid.UUID, content string, settings ChatSettings) (*TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequestError(apperrors.CodeBadRequest, "message content must not be empty")
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, loaded := s.turns.LoadOrStore(sessionID, struct{}{}); loaded {
		return nil, apperrors.NewConflictError(apperrors.CodeTurnInFlight, "a reply is already being generated for this session")
	}
	defer s.turns.Delete(sessionID)

	history, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		observability.TurnsCompleted.WithLabelValues("store_error").Inc()
		return nil, apperrors.NewStoreError("list messages", err)
	}

	userMessage := models.ChatMessage{
		SessionID: sessionID,
		Content:   content,
		IsBot:     false,
	}
	if err := s.messages.Append(ctx, &userMessage); err != nil {
		// The turn stops here; no completion call for an unsaved message
		observability.TurnsCompleted.WithLabelValues("store_error").Inc()
		return nil, apperrors.NewStoreError("append message", err)
	}

	if isFirstUserMessage(history) {
		title := truncateTitle(content, s.cfg.Chat.TitleMaxLen)
		if _, err := s.UpdateSession(ctx, sessionID, &title, nil); err != nil {
			s.log.LogError(err, "failed to retitle session", "session_id", sessionID)
		} else {
			session.Title = title
		}
	}

	reply := s.completion.Complete(ctx, s.buildContext(history, content, settings), settings)

	botMessage := models.ChatMessage{
		SessionID: sessionID,
		Content:   reply.Content,
		IsBot:     true,
	}
	if err := s.messages.Append(ctx, &botMessage); err != nil {
		observability.TurnsCompleted.WithLabelValues("store_error").Inc()
		return nil, apperrors.NewStoreError("append message", err)
	}

	now := time.Now()
	if err := s.sessions.Update(ctx, sessionID, repository.SessionPatch{UpdatedAt: &now}); err != nil {
		s.log.LogError(err, "failed to bump session activity", "session_id", sessionID)
	} else {
		session.UpdatedAt = now
	}

	result := "ok"
	if reply.Fallback {
		result = "fallback"
	}
	observability.TurnsCompleted.WithLabelValues(result).Inc()

	// Warm the suggestion cache for the next chip refresh; failures there
	// never touch the turn
	s.refreshSuggestionsAsync(sessionID, append(history, userMessage, botMessage))

	return &TurnResult{
		UserMessage: userMessage,
		BotMessage:  botMessage,
		Session:     *session,
		Fallback:    reply.Fallback,
	}, nil
}

// buildContext assembles the completion request: system prompt, the last N
// turns of history oldest-first, then the new user message
func (s *ConversationService) buildContext(history []models.ChatMessage, content string, settings ChatSettings) []PromptMessage {
	window := s.cfg.Chat.ContextTurns * 2
	if len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]PromptMessage, 0, len(history)+2)
	messages = append(messages, PromptMessage{Role: "system", Content: BuildSystemPrompt(settings)})
	for _, m := range history {
		role := "user"
		if m.IsBot {
			role = "assistant"
		}
		messages = append(messages, PromptMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, PromptMessage{Role: "user", Content: content})
	return messages
}

func (s *ConversationService) refreshSuggestionsAsync(sessionID uuid.UUID, history []models.ChatMessage) {
	if s.suggestions == nil {
		return
	}

	recent := make([]RecentMessage, 0, len(history))
	for _, m := range history {
		recent = append(recent, RecentMessage{Content: m.Content, IsBot: m.IsBot})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Model.RequestTimeout)
		defer cancel()
		s.suggestions.Suggest(ctx, recent, "")
		s.log.Debug("suggestion cache refreshed", "session_id", sessionID)
	}()
}

// isFirstUserMessage reports whether the history (prior to the current
// append) contains no user-authored message yet
func isFirstUserMessage(history []models.ChatMessage) bool {
	for _, m := range history {
		if !m.IsBot {
			return false
		}
	}
	return true
}

// truncateTitle cuts the first user message down to the title length bound
func truncateTitle(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen])
}
