package service

import (
	"context"

	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/shared/observability"

	openai "github.com/sashabaranov/go-openai"
)

// Completer is the model-call contract, satisfied by pkg/ai.Client.
// An error means both the primary and secondary model failed.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, string, error)
}

// PromptMessage is one entry of a completion request, already role-tagged
type PromptMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Reply is the outcome of a completion. Fallback is set when the content is
// canned rather than model-produced.
type Reply struct {
	Content  string
	Model    string
	Fallback bool
}

// CompletionService turns a conversation into an assistant reply. It never
// fails: upstream errors degrade to a canned supportive message.
type CompletionService struct {
	model Completer
	cfg   *config.Config
	log   *logger.Logger
}

// NewCompletionService creates a completion service
func NewCompletionService(model Completer, cfg *config.Config, log *logger.Logger) *CompletionService {
	return &CompletionService{model: model, cfg: cfg, log: log}
}

// Complete forwards the message list to the model, prepending the companion
// system prompt when the caller supplied none
func (s *CompletionService) Complete(ctx context.Context, messages []PromptMessage, settings ChatSettings) Reply {
	hasSystem := false
	for _, m := range messages {
		if m.Role == openai.ChatMessageRoleSystem {
			hasSystem = true
			break
		}
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if !hasSystem {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: BuildSystemPrompt(settings),
		})
	}
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	content, model, err := s.model.Complete(ctx, chatMessages, s.cfg.Model.MaxTokens)
	if err != nil {
		s.log.LogError(err, "both models failed, serving canned reply")
		observability.CompletionFallbacks.Inc()
		return Reply{Content: cannedCompletionReply, Fallback: true}
	}

	return Reply{Content: content, Model: model}
}
