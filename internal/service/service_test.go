package service

import (
	"context"
	"io"
	"sync"
	"time"

	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

// stubModel is a scripted Completer for tests
type stubModel struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	got   [][]openai.ChatCompletionMessage

	// when set, Complete signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (s *stubModel) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, string, error) {
	s.mu.Lock()
	s.calls++
	s.got = append(s.got, messages)
	started, release := s.started, s.release
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	if s.err != nil {
		return "", "", s.err
	}
	return s.reply, "stub-model", nil
}

func (s *stubModel) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubModel) lastRequest() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.got) == 0 {
		return nil
	}
	return s.got[len(s.got)-1]
}

func testConfig() *config.Config {
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

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}
