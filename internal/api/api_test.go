package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindmate-chat/backend/internal/repository"
	"mindmate-chat/backend/internal/service"
	"mindmate-chat/backend/pkg/cache"
	"mindmate-chat/backend/pkg/config"
	apperrors "mindmate-chat/backend/pkg/errors"
	"mindmate-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel answers every completion with a fixed reply or error
type scriptedModel struct {
	reply string
	err   error
}

func (m *scriptedModel) Complete(_ context.Context, _ []openai.ChatCompletionMessage, _ int) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.reply, "scripted", nil
}

func apiTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Model.MaxTokens = 200
	cfg.Model.RequestTimeout = time.Second
	cfg.Chat.ContextTurns = 4
	cfg.Chat.TitleMaxLen = 50
	cfg.Chat.MaxSuggestions = 5
	cfg.Chat.SuggestionMaxLen = 100
	cfg.Chat.DefaultTitle = "New Chat"
	return cfg
}

func newTestEngine(model service.Completer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := apiTestConfig()
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	logger.SetGlobal(log)

	messages := repository.NewMemoryMessageRepository()
	sessions := repository.NewMemorySessionRepository(messages)
	completion := service.NewCompletionService(model, cfg, log)
	suggestions := service.NewSuggestionService(model, cache.NewMemoryStore(), cfg, log)
	conversation := service.NewConversationService(sessions, messages, completion, suggestions, cfg, log)

	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())

	v1 := engine.Group("/api/v1")
	NewSessionController(conversation).RegisterRoutesV1(v1)
	NewChatController(completion, suggestions).RegisterRoutesV1(v1)

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, engine *gin.Engine) string {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)
	return session.ID
}

func TestSessionLifecycle(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})

	id := createSession(t, engine)

	// List shows it
	w := doJSON(t, engine, http.MethodGet, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	// Rename
	w = doJSON(t, engine, http.MethodPatch, "/api/v1/sessions/"+id, gin.H{"title": "sleep talk"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sleep talk")

	// Archive hides it from the default list
	w = doJSON(t, engine, http.MethodPatch, "/api/v1/sessions/"+id, gin.H{"archived": true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/sessions?archived=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	// Delete answers with the next session to select
	w = doJSON(t, engine, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "next_session")
}

func TestGetSessionNotFound(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})

	w := doJSON(t, engine, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGetSessionInvalidID(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})

	w := doJSON(t, engine, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}

func TestUpdateSessionEmptyPatch(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})
	id := createSession(t, engine)

	w := doJSON(t, engine, http.MethodPatch, "/api/v1/sessions/"+id, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageTurn(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "That sounds difficult. 💭"})
	id := createSession(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sessions/"+id+"/messages", gin.H{
		"content": "I feel overwhelmed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		UserMessage struct {
			Content string `json:"content"`
			IsBot   bool   `json:"is_bot"`
		} `json:"user_message"`
		BotMessage struct {
			Content string `json:"content"`
			IsBot   bool   `json:"is_bot"`
		} `json:"bot_message"`
		Fallback bool `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "I feel overwhelmed", result.UserMessage.Content)
	assert.False(t, result.UserMessage.IsBot)
	assert.Equal(t, "That sounds difficult. 💭", result.BotMessage.Content)
	assert.True(t, result.BotMessage.IsBot)
	assert.False(t, result.Fallback)

	// Both turn messages plus the welcome greeting are listed in order
	w = doJSON(t, engine, http.MethodGet, "/api/v1/sessions/"+id+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 3, listing.Count)
	assert.Equal(t, "I feel overwhelmed", listing.Messages[1].Content)
}

func TestSendMessageMissingContent(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})
	id := createSession(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sessions/"+id+"/messages", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageModelOutageStillAnswers(t *testing.T) {
	engine := newTestEngine(&scriptedModel{err: errors.New("all models down")})
	id := createSession(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sessions/"+id+"/messages", gin.H{
		"content": "hello?",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fallback":true`)
	assert.Contains(t, w.Body.String(), "I'm here to support you")
}

func TestChatEnvelope(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "Hello from the model"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hi"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Fallback bool `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Choices, 1)
	assert.Equal(t, "assistant", envelope.Choices[0].Message.Role)
	assert.Equal(t, "Hello from the model", envelope.Choices[0].Message.Content)
	assert.False(t, envelope.Fallback)
}

func TestChatAlwaysOKOnModelFailure(t *testing.T) {
	engine := newTestEngine(&scriptedModel{err: errors.New("both failed")})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hi"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fallback":true`)
	assert.Contains(t, w.Body.String(), "content")
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "ok"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/chat", gin.H{"messages": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionsAlwaysNonEmpty(t *testing.T) {
	engine := newTestEngine(&scriptedModel{err: errors.New("both failed")})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/suggestions", gin.H{
		"messages":     []gin.H{{"content": "I had a panic attack", "isBot": false}},
		"currentState": "",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Suggestions)
	// Model outage plus anxiety keywords serve the anxiety set
	assert.Contains(t, body.Suggestions[1], "grounding")
}

func TestSuggestionsFromModel(t *testing.T) {
	engine := newTestEngine(&scriptedModel{reply: "How was your day?\nWhat helps you relax?"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/suggestions", gin.H{
		"currentState": "initial",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "How was your day?")
}
