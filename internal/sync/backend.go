package sync

import (
	"context"

	"tradepost.app/messenger/internal/model"
)

// Backend is the remote message store the sync engine reconciles against.
// Implementations wrap transport failures in NetworkError, rejected input in
// ValidationError and missing authentication in AuthError.
type Backend interface {
	FetchMessages(ctx context.Context, conversationID int64) ([]model.Message, error)
	SendTextMessage(ctx context.Context, conversationID int64, text string) (model.Message, error)
	SendImageMessage(ctx context.Context, conversationID int64, data []byte) (model.Message, error)
	FetchConversations(ctx context.Context) ([]model.Conversation, error)
	CountUnread(ctx context.Context, conversationID, forUser int64) (int, error)
	MarkConversationRead(ctx context.Context, conversationID int64) error
	CurrentUserID(ctx context.Context) (int64, error)
}

// PushEvent is one "message created" delivery on the push channel.
type PushEvent struct {
	ConversationID int64
	Message        model.Message
	TraceID        string
}

// PushSubscriber is the event-driven delivery source. Subscriptions are torn
// down by cancelling the supplied context; the returned channel is closed
// once the subscription ends.
type PushSubscriber interface {
	// Subscribe delivers events for a single conversation.
	Subscribe(ctx context.Context, conversationID int64) (<-chan PushEvent, error)
	// SubscribeActivity delivers every message-created event regardless of
	// conversation, so the list screen can refresh while a different
	// conversation is open.
	SubscribeActivity(ctx context.Context) (<-chan PushEvent, error)
}
