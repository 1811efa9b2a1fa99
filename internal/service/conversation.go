package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tradepost.app/messenger/common/id"
	"tradepost.app/messenger/internal/model"
	"tradepost.app/messenger/internal/store"
)

// ErrForbidden is returned when a user touches a conversation they are not
// part of.
var ErrForbidden = errors.New("not a participant of this conversation")

type ConversationService interface {
	// FindOrCreate returns the existing thread for this buyer and product,
	// or creates one. A conversation is never deleted.
	FindOrCreate(ctx context.Context, params FindOrCreateParams) (*model.Conversation, error)
	// ListForUser returns the user's conversation summaries with unread
	// counts, ordered by last activity.
	ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error)
	// GetForUser fetches one conversation, enforcing participation.
	GetForUser(ctx context.Context, conversationID, userID int64) (*model.Conversation, error)
}

type FindOrCreateParams struct {
	ProductID    int64
	ProductTitle string
	BuyerID      int64
	BuyerName    string
	SellerID     int64
	SellerName   string
}

type conversationService struct {
	convStore store.ConversationStore
	msgStore  store.MessageStore
}

func NewConversationService(convStore store.ConversationStore, msgStore store.MessageStore) ConversationService {
	return &conversationService{
		convStore: convStore,
		msgStore:  msgStore,
	}
}

func (s *conversationService) FindOrCreate(ctx context.Context, params FindOrCreateParams) (*model.Conversation, error) {
	existing, err := s.convStore.GetByProductAndBuyer(ctx, params.ProductID, params.BuyerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up conversation: %w", err)
	}

	conv := &model.Conversation{
		ID:           id.New(),
		ProductID:    params.ProductID,
		ProductTitle: params.ProductTitle,
		BuyerID:      params.BuyerID,
		SellerID:     params.SellerID,
	}

	if err := s.convStore.Create(ctx, conv, params.BuyerName, params.SellerName); err != nil {
		slog.ErrorContext(ctx, "failed to create conversation",
			"error", err,
			"product_id", params.ProductID,
			"buyer_id", params.BuyerID,
		)
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	slog.InfoContext(ctx, "conversation created",
		"conversation_id", conv.ID,
		"product_id", params.ProductID)
	return conv, nil
}

func (s *conversationService) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	convs, err := s.convStore.ListForUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list conversations",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	for i := range convs {
		count, err := s.msgStore.CountUnread(ctx, convs[i].ID, userID)
		if err != nil {
			return nil, fmt.Errorf("counting unread: %w", err)
		}
		convs[i].UnreadCount = count
	}

	return convs, nil
}

func (s *conversationService) GetForUser(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
	conv, err := s.convStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		return nil, ErrForbidden
	}
	return conv, nil
}
