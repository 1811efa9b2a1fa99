package store

import (
	"context"
	"errors"

	"tradepost.app/messenger/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ConversationStore defines the contract for conversation data access
type ConversationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Conversation, error)
	GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*model.Conversation, error)
	Create(ctx context.Context, conv *model.Conversation, buyerName, sellerName string) error
	// ListForUser returns summaries (last message preview/time, counterpart
	// name relative to the user) ordered by last activity descending.
	ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error)
}

// MessageStore defines the contract for message data access
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListByConversation returns the full timeline ascending by creation
	// time, ties broken by id.
	ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error)
	// MarkConversationRead flags every message not authored by readerID.
	MarkConversationRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, conversationID, forUser int64) (int, error)
}
