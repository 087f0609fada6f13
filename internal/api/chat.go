package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindmate-chat/backend/internal/service"
	apperrors "mindmate-chat/backend/pkg/errors"
)

// ChatController handles the stateless model endpoints: raw completions and
// suggestion chips. Both always answer 200 with usable content; degraded
// replies are flagged, never surfaced as errors.
type ChatController struct {
	completion  *service.CompletionService
	suggestions *service.SuggestionService
}

// NewChatController creates a new chat controller
func NewChatController(completion *service.CompletionService, suggestions *service.SuggestionService) *ChatController {
	return &ChatController{completion: completion, suggestions: suggestions}
}

// RegisterRoutesV1 registers the chat routes under the given group
func (c *ChatController) RegisterRoutesV1(group *gin.RouterGroup) {
	group.POST("/chat", c.Chat)
	group.POST("/suggestions", c.Suggestions)
}

// Chat proxies a message list to the model chain and returns the reply in a
// chat-completion envelope
func (c *ChatController) Chat(ctx *gin.Context) {
	var request struct {
		Messages []service.PromptMessage `json:"messages" binding:"required,min=1"`
		Settings *service.ChatSettings   `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "messages array is required"))
		ctx.Abort()
		return
	}

	settings := service.DefaultChatSettings()
	if request.Settings != nil {
		settings = *request.Settings
	}

	reply := c.completion.Complete(ctx.Request.Context(), request.Messages, settings)

	ctx.JSON(http.StatusOK, gin.H{
		"choices": []gin.H{
			{
				"message": gin.H{
					"role":    "assistant",
					"content": reply.Content,
				},
			},
		},
		"model":    reply.Model,
		"fallback": reply.Fallback,
	})
}

// Suggestions returns suggestion chips for the given conversation context
func (c *ChatController) Suggestions(ctx *gin.Context) {
	var request struct {
		Messages     []service.RecentMessage `json:"messages"`
		CurrentState string                  `json:"currentState"`
	}
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "invalid request format"))
		ctx.Abort()
		return
	}

	suggestions := c.suggestions.Suggest(ctx.Request.Context(), request.Messages, request.CurrentState)

	ctx.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
	})
}
