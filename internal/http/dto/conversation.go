package dto

import (
	"time"

	"tradepost.app/messenger/internal/model"
)

type CreateConversationRequest struct {
	ProductID    int64  `json:"product_id" binding:"required"`
	ProductTitle string `json:"product_title" binding:"required"`
	SellerID     int64  `json:"seller_id" binding:"required"`
	SellerName   string `json:"seller_name" binding:"required"`
	BuyerName    string `json:"buyer_name" binding:"required"`
}

type ConversationResponse struct {
	ID                 int64      `json:"id"`
	ProductID          int64      `json:"product_id"`
	ProductTitle       string     `json:"product_title"`
	BuyerID            int64      `json:"buyer_id"`
	SellerID           int64      `json:"seller_id"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	UnreadCount        int        `json:"unread_count"`
	CounterpartName    string     `json:"counterpart_name,omitempty"`
}

func ToConversationResponse(c *model.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:                 c.ID,
		ProductID:          c.ProductID,
		ProductTitle:       c.ProductTitle,
		BuyerID:            c.BuyerID,
		SellerID:           c.SellerID,
		LastMessagePreview: c.LastMessagePreview,
		LastMessageAt:      c.LastMessageAt,
		UnreadCount:        c.UnreadCount,
		CounterpartName:    c.CounterpartName,
	}
}

func ToConversationResponses(convs []model.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, len(convs))
	for i := range convs {
		out[i] = ToConversationResponse(&convs[i])
	}
	return out
}

type UnreadCountResponse struct {
	ConversationID int64 `json:"conversation_id"`
	UnreadCount    int   `json:"unread_count"`
}
