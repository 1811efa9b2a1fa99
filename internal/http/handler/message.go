package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradepost.app/messenger/internal/http/dto"
	"tradepost.app/messenger/internal/http/middleware"
	"tradepost.app/messenger/internal/model"
	"tradepost.app/messenger/internal/service"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List returns the conversation's full timeline, ascending by creation time.
func (h *MessageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, conversationID, ok := requestIdentity(c)
	if !ok {
		return
	}

	msgs, err := h.messages.List(ctx, conversationID, userID)
	if err != nil {
		writeServiceError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageResponses(msgs))
}

// Post creates a text or image message and publishes the push event.
func (h *MessageHandler) Post(c *gin.Context) {
	ctx := c.Request.Context()

	userID, conversationID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		msg *model.Message
		err error
	)
	switch req.Kind {
	case string(model.MessageKindImage):
		msg, err = h.messages.PostImage(ctx, conversationID, userID, req.ImageData)
	default:
		msg, err = h.messages.PostText(ctx, conversationID, userID, req.Content)
	}
	if err != nil {
		writeServiceError(c, err, "failed to post message")
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(msg))
}

// MarkRead flags every counterpart message in the conversation as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	userID, conversationID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.messages.MarkConversationRead(ctx, conversationID, userID); err != nil {
		writeServiceError(c, err, "failed to mark read")
		return
	}

	c.Status(http.StatusNoContent)
}

// Unread returns the unread count scoped to the authenticated user.
func (h *MessageHandler) Unread(c *gin.Context) {
	ctx := c.Request.Context()

	userID, conversationID, ok := requestIdentity(c)
	if !ok {
		return
	}

	count, err := h.messages.CountUnread(ctx, conversationID, userID)
	if err != nil {
		writeServiceError(c, err, "failed to count unread")
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{
		ConversationID: conversationID,
		UnreadCount:    count,
	})
}

// requestIdentity pulls the authenticated user and the :id path parameter,
// writing the error response itself when either is missing.
func requestIdentity(c *gin.Context) (userID, conversationID int64, ok bool) {
	userID, ok = middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, 0, false
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, 0, false
	}

	return userID, conversationID, true
}
