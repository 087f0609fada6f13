package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mindmate-chat/backend/internal/api"
	"mindmate-chat/backend/internal/repository"
	"mindmate-chat/backend/internal/service"
	"mindmate-chat/backend/pkg/cache"
	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModel struct{ reply string }

func (m *fixedModel) Complete(_ context.Context, _ []openai.ChatCompletionMessage, _ int) (string, string, error) {
	return m.reply, "fixed", nil
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Get()
	cfg.Chat.DefaultTitle = "New Chat"
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})

	model := &fixedModel{reply: "hello"}
	messages := repository.NewMemoryMessageRepository()
	sessions := repository.NewMemorySessionRepository(messages)
	completion := service.NewCompletionService(model, cfg, log)
	suggestions := service.NewSuggestionService(model, cache.NewMemoryStore(), cfg, log)
	conversation := service.NewConversationService(sessions, messages, completion, suggestions, cfg, log)

	r := New(
		cfg,
		log,
		api.NewSessionController(conversation),
		api.NewChatController(completion, suggestions),
		nil,
		promhttp.Handler(),
	)
	r.SetupRoutes()
	return r
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUnknownAPIRoute(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestFullTurnThroughRouter(t *testing.T) {
	r := newTestRouter(t)

	// Create a session
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	body := w.Body.String()
	start := strings.Index(body, `"id":"`) + len(`"id":"`)
	id := body[start : start+36]

	// Send a message through the whole middleware chain
	payload := strings.NewReader(`{"content":"I feel anxious"}`)
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/messages", payload)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"hello"`)

	// Give the async suggestion warm a beat so the goroutine finishes
	time.Sleep(10 * time.Millisecond)
}
