package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tradepost.app/messenger/common/id"
	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
	"tradepost.app/messenger/internal/push"
	"tradepost.app/messenger/internal/store"
)

// ErrEmptyMessage is returned when a text message has no content after trimming.
var ErrEmptyMessage = errors.New("message content is empty")

// MediaStore persists uploaded image bytes and returns an opaque reference.
// The actual storage backend is out of scope; a local implementation ships
// for development.
type MediaStore interface {
	Save(ctx context.Context, data []byte) (string, error)
}

type MessageService interface {
	PostText(ctx context.Context, conversationID, senderID int64, content string) (*model.Message, error)
	PostImage(ctx context.Context, conversationID, senderID int64, data []byte) (*model.Message, error)
	List(ctx context.Context, conversationID, userID int64) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, conversationID, forUser int64) (int, error)
}

type messageService struct {
	convStore store.ConversationStore
	msgStore  store.MessageStore
	media     MediaStore
	publisher push.Publisher
}

func NewMessageService(convStore store.ConversationStore, msgStore store.MessageStore, media MediaStore, publisher push.Publisher) MessageService {
	return &messageService{
		convStore: convStore,
		msgStore:  msgStore,
		media:     media,
		publisher: publisher,
	}
}

func (s *messageService) PostText(ctx context.Context, conversationID, senderID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.Message{
		ID:             id.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Kind:           model.MessageKindText,
		CreatedAt:      time.Now().UTC(),
	}

	return s.persistAndPublish(ctx, msg)
}

func (s *messageService) PostImage(ctx context.Context, conversationID, senderID int64, data []byte) (*model.Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	ref, err := s.media.Save(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}

	msg := &model.Message{
		ID:             id.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Kind:           model.MessageKindImage,
		MediaRef:       &ref,
		CreatedAt:      time.Now().UTC(),
	}

	return s.persistAndPublish(ctx, msg)
}

func (s *messageService) persistAndPublish(ctx context.Context, msg *model.Message) (*model.Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(msg.ConversationID),
		MessageID:      logger.Ptr(msg.ID),
		Component:      "messenger.service.message",
	})

	if err := s.ensureParticipant(ctx, msg.ConversationID, msg.SenderID); err != nil {
		return nil, err
	}

	if err := s.msgStore.Create(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to persist message", "error", err)
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Push delivery is best-effort: subscribers that miss it converge via
	// their poll cycle.
	if err := s.publisher.PublishMessageCreated(ctx, *msg); err != nil {
		slog.WarnContext(ctx, "push publish failed", "error", err)
	}

	slog.InfoContext(ctx, "message created", "kind", msg.Kind)
	return msg, nil
}

func (s *messageService) List(ctx context.Context, conversationID, userID int64) ([]model.Message, error) {
	if err := s.ensureParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.msgStore.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

func (s *messageService) MarkConversationRead(ctx context.Context, conversationID, readerID int64) error {
	if err := s.ensureParticipant(ctx, conversationID, readerID); err != nil {
		return err
	}

	if err := s.msgStore.MarkConversationRead(ctx, conversationID, readerID); err != nil {
		return fmt.Errorf("marking read: %w", err)
	}
	return nil
}

func (s *messageService) CountUnread(ctx context.Context, conversationID, forUser int64) (int, error) {
	count, err := s.msgStore.CountUnread(ctx, conversationID, forUser)
	if err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}
	return count, nil
}

func (s *messageService) ensureParticipant(ctx context.Context, conversationID, userID int64) error {
	conv, err := s.convStore.GetByID(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("getting conversation: %w", err)
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		return ErrForbidden
	}
	return nil
}
