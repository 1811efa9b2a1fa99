package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepost.app/messenger/internal/http/dto"
	"tradepost.app/messenger/internal/http/middleware"
	"tradepost.app/messenger/internal/service"
	"tradepost.app/messenger/internal/store"
)

type ConversationHandler struct {
	conversations service.ConversationService
}

func NewConversationHandler(conversations service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// List returns the authenticated user's conversation summaries.
func (h *ConversationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	convs, err := h.conversations.ListForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, dto.ToConversationResponses(convs))
}

// Create finds or creates the thread for the authenticated buyer and a
// product. Idempotent: repeating the call returns the existing thread.
func (h *ConversationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.conversations.FindOrCreate(ctx, service.FindOrCreateParams{
		ProductID:    req.ProductID,
		ProductTitle: req.ProductTitle,
		BuyerID:      userID,
		BuyerName:    req.BuyerName,
		SellerID:     req.SellerID,
		SellerName:   req.SellerName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToConversationResponse(conv))
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
