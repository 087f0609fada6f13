package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mindmate-chat/backend/internal/service"
	apperrors "mindmate-chat/backend/pkg/errors"
)

// SessionController handles session and message API endpoints
type SessionController struct {
	conversation *service.ConversationService
}

// NewSessionController creates a new session controller
func NewSessionController(conversation *service.ConversationService) *SessionController {
	return &SessionController{conversation: conversation}
}

// RegisterRoutesV1 registers the session routes under the given group
func (c *SessionController) RegisterRoutesV1(group *gin.RouterGroup) {
	sessions := group.Group("/sessions")
	{
		sessions.GET("", c.ListSessions)
		sessions.POST("", c.CreateSession)
		sessions.GET("/:id", c.GetSession)
		sessions.PATCH("/:id", c.UpdateSession)
		sessions.DELETE("/:id", c.DeleteSession)
		sessions.GET("/:id/messages", c.ListMessages)
		sessions.POST("/:id/messages", c.SendMessage)
	}
}

// ListSessions returns all sessions, newest activity first
func (c *SessionController) ListSessions(ctx *gin.Context) {
	includeArchived := ctx.Query("archived") == "true"

	sessions, err := c.conversation.ListSessions(ctx.Request.Context(), includeArchived)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// CreateSession creates a new session seeded with the welcome message
func (c *SessionController) CreateSession(ctx *gin.Context) {
	session, err := c.conversation.CreateSession(ctx.Request.Context())
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

// GetSession retrieves a single session
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	session, err := c.conversation.GetSession(ctx.Request.Context(), id)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// UpdateSession renames or archives a session
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	var request struct {
		Title    *string `json:"title"`
		Archived *bool   `json:"archived"`
	}
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "invalid request format"))
		ctx.Abort()
		return
	}
	if request.Title == nil && request.Archived == nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "nothing to update"))
		ctx.Abort()
		return
	}
	if request.Title != nil && *request.Title == "" {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "title must not be empty"))
		ctx.Abort()
		return
	}

	session, err := c.conversation.UpdateSession(ctx.Request.Context(), id, request.Title, request.Archived)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// DeleteSession removes a session and returns the one the client should
// select next
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	next, err := c.conversation.DeleteSession(ctx.Request.Context(), id)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"deleted":      id,
		"next_session": next,
	})
}

// ListMessages returns a session's messages oldest first
func (c *SessionController) ListMessages(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	messages, err := c.conversation.ListMessages(ctx.Request.Context(), id)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"messages":   messages,
		"count":      len(messages),
	})
}

// SendMessage runs one conversation turn and returns both stored messages
func (c *SessionController) SendMessage(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	var request struct {
		Content  string                `json:"content" binding:"required"`
		Settings *service.ChatSettings `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "invalid request format"))
		ctx.Abort()
		return
	}

	settings := service.DefaultChatSettings()
	if request.Settings != nil {
		settings = *request.Settings
	}

	result, err := c.conversation.SendMessage(ctx.Request.Context(), id, request.Content, settings)
	if err != nil {
		ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// sessionIDParam parses the :id path parameter, reporting a bad request on
// malformed IDs
func sessionIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "invalid session ID"))
		ctx.Abort()
		return uuid.Nil, false
	}
	return id, true
}
