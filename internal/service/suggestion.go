package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"mindmate-chat/backend/pkg/cache"
	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/shared/observability"

	openai "github.com/sashabaranov/go-openai"
)

// suggestionMaxTokens caps the model reply; five short lines fit comfortably
const suggestionMaxTokens = 150

// RecentMessage is the conversation context the client sends when asking for
// suggestion chips
type RecentMessage struct {
	Content string `json:"content"`
	IsBot   bool   `json:"isBot"`
}

// splitPattern decomposes the model's free-text reply into candidate lines:
// line breaks, bullet markers, numbered-list prefixes
var splitPattern = regexp.MustCompile(`\n|•|-|\d+\.`)

// SuggestionService produces short candidate next-things-to-say. It never
// fails: model errors degrade to a keyword-matched static suggestion set.
type SuggestionService struct {
	model Completer
	store cache.Store
	cfg   *config.Config
	log   *logger.Logger
}

// NewSuggestionService creates a suggestion service
func NewSuggestionService(model Completer, store cache.Store, cfg *config.Config, log *logger.Logger) *SuggestionService {
	return &SuggestionService{model: model, store: store, cfg: cfg, log: log}
}

// Suggest returns up to five first-person suggestion strings for the given
// conversation context. The result is always non-empty.
func (s *SuggestionService) Suggest(ctx context.Context, recent []RecentMessage, currentState string) []string {
	key := s.cacheKey(recent, currentState)
	if cached, ok := s.store.Get(ctx, key); ok && len(cached) > 0 {
		return cached
	}

	messages := s.buildPrompt(recent, currentState)

	content, _, err := s.model.Complete(ctx, messages, suggestionMaxTokens)
	if err == nil {
		if suggestions := s.parseSuggestions(content); len(suggestions) > 0 {
			s.store.Set(ctx, key, suggestions)
			return suggestions
		}
		s.log.Warn("model reply yielded no usable suggestions", "content_len", len(content))
	} else {
		s.log.LogError(err, "both models failed for suggestions")
	}

	return s.fallback(recent)
}

func (s *SuggestionService) buildPrompt(recent []RecentMessage, currentState string) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: suggestionSystemPrompt},
	}

	if currentState == "initial" || len(recent) == 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: initialSuggestionRequest,
		})
		return messages
	}

	for _, m := range recent {
		role := openai.ChatMessageRoleUser
		if m.IsBot {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: followupSuggestionRequest,
	})
	return messages
}

// parseSuggestions decomposes the model's free-text reply into a clean,
// de-duplicated list in model-output order
func (s *SuggestionService) parseSuggestions(content string) []string {
	maxLen := s.cfg.Chat.SuggestionMaxLen
	limit := s.cfg.Chat.MaxSuggestions

	seen := make(map[string]bool)
	suggestions := make([]string, 0, limit)

	for _, line := range splitPattern.Split(content, -1) {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"`)
		if line == "" || len([]rune(line)) > maxLen {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		suggestions = append(suggestions, line)
		if len(suggestions) >= limit {
			break
		}
	}

	return suggestions
}

// fallback classifies the recent text by keyword and serves the matching
// static suggestion set
func (s *SuggestionService) fallback(recent []RecentMessage) []string {
	var sb strings.Builder
	for _, m := range recent {
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}

	t := classifyTopic(sb.String())
	observability.SuggestionFallbacks.WithLabelValues(string(t)).Inc()
	s.log.Info("serving fallback suggestions", "topic", string(t))

	set := fallbackSuggestions[t]
	out := make([]string, len(set))
	copy(out, set)
	return out
}

func (s *SuggestionService) cacheKey(recent []RecentMessage, currentState string) string {
	h := sha256.New()
	h.Write([]byte(currentState))
	for _, m := range recent {
		if m.IsBot {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	return "suggestions:" + hex.EncodeToString(h.Sum(nil))[:32]
}
