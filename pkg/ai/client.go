package ai

import (
	"context"

	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/errors"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/pkg/resilience"
	"mindmate-chat/backend/shared/observability"

	openai "github.com/sashabaranov/go-openai"
)

// Client calls the language-model provider. Every completion tries the
// primary model first and retries once against the secondary with identical
// parameters; callers own the final canned-content fallback.
type Client struct {
	api         *openai.Client
	primary     string
	secondary   string
	temperature float32
	primaryCB   *resilience.CircuitBreaker
	secondaryCB *resilience.CircuitBreaker
	log         *logger.Logger
}

// NewClient creates a model client from configuration
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.Model.APIKey)
	if cfg.Model.BaseURL != "" {
		clientConfig.BaseURL = cfg.Model.BaseURL
	}
	clientConfig.HTTPClient.Timeout = cfg.Model.RequestTimeout

	return &Client{
		api:         openai.NewClientWithConfig(clientConfig),
		primary:     cfg.Model.Primary,
		secondary:   cfg.Model.Secondary,
		temperature: cfg.Model.Temperature,
		primaryCB:   resilience.NewCircuitBreaker(resilience.DefaultConfig("model-primary"), log),
		secondaryCB: resilience.NewCircuitBreaker(resilience.DefaultConfig("model-secondary"), log),
		log:         log,
	}
}

// Complete sends the message list to the primary model, then the secondary.
// Returns the reply content and the model that produced it. An error means
// both models failed and the caller should serve canned content.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, string, error) {
	content, err := c.call(ctx, c.primary, c.primaryCB, messages, maxTokens)
	if err == nil {
		return content, c.primary, nil
	}
	c.log.Warn("primary model failed, trying secondary",
		"primary", c.primary,
		"secondary", c.secondary,
		"error", err.Error(),
	)

	content, err = c.call(ctx, c.secondary, c.secondaryCB, messages, maxTokens)
	if err == nil {
		return content, c.secondary, nil
	}
	return "", "", errors.NewUpstreamModelError(c.secondary, err)
}

func (c *Client) call(ctx context.Context, model string, cb *resilience.CircuitBreaker, messages []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	var content string

	err := cb.Execute(func() error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.NewParseError("model returned no choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})

	if err != nil {
		observability.ModelCalls.WithLabelValues(model, "error").Inc()
		return "", err
	}
	observability.ModelCalls.WithLabelValues(model, "ok").Inc()
	return content, nil
}

// Ping checks that the provider API is reachable, used by the health checker
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListModels(ctx)
	return err
}
