package dto

import (
	"time"

	"tradepost.app/messenger/internal/model"
)

// PostMessageRequest carries a text message or a base64 image payload,
// discriminated by kind.
type PostMessageRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=text image"`
	Content   string `json:"content,omitempty"`
	ImageData []byte `json:"image_data,omitempty"`
}

type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content,omitempty"`
	Kind           string    `json:"kind"`
	MediaRef       *string   `json:"media_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

func ToMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Kind:           string(m.Kind),
		MediaRef:       m.MediaRef,
		CreatedAt:      m.CreatedAt,
		Read:           m.Read,
	}
}

func ToMessageResponses(msgs []model.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i := range msgs {
		out[i] = ToMessageResponse(&msgs[i])
	}
	return out
}
