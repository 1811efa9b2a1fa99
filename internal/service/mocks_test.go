package service_test

import (
	"context"

	"tradepost.app/messenger/internal/model"
)

type mockConversationStore struct {
	getByIDFn              func(ctx context.Context, id int64) (*model.Conversation, error)
	getByProductAndBuyerFn func(ctx context.Context, productID, buyerID int64) (*model.Conversation, error)
	createFn               func(ctx context.Context, conv *model.Conversation, buyerName, sellerName string) error
	listForUserFn          func(ctx context.Context, userID int64) ([]model.Conversation, error)
	createCalls            int
}

func (m *mockConversationStore) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockConversationStore) GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*model.Conversation, error) {
	if m.getByProductAndBuyerFn != nil {
		return m.getByProductAndBuyerFn(ctx, productID, buyerID)
	}
	return nil, nil
}

func (m *mockConversationStore) Create(ctx context.Context, conv *model.Conversation, buyerName, sellerName string) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, conv, buyerName, sellerName)
	}
	return nil
}

func (m *mockConversationStore) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return nil, nil
}

type mockMessageStore struct {
	createFn               func(ctx context.Context, msg *model.Message) error
	listByConversationFn   func(ctx context.Context, conversationID int64) ([]model.Message, error)
	markConversationReadFn func(ctx context.Context, conversationID, readerID int64) error
	countUnreadFn          func(ctx context.Context, conversationID, forUser int64) (int, error)
}

func (m *mockMessageStore) Create(ctx context.Context, msg *model.Message) error {
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageStore) ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error) {
	if m.listByConversationFn != nil {
		return m.listByConversationFn(ctx, conversationID)
	}
	return nil, nil
}

func (m *mockMessageStore) MarkConversationRead(ctx context.Context, conversationID, readerID int64) error {
	if m.markConversationReadFn != nil {
		return m.markConversationReadFn(ctx, conversationID, readerID)
	}
	return nil
}

func (m *mockMessageStore) CountUnread(ctx context.Context, conversationID, forUser int64) (int, error) {
	if m.countUnreadFn != nil {
		return m.countUnreadFn(ctx, conversationID, forUser)
	}
	return 0, nil
}

type mockMediaStore struct {
	saveFn func(ctx context.Context, data []byte) (string, error)
}

func (m *mockMediaStore) Save(ctx context.Context, data []byte) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, data)
	}
	return "media/test-ref", nil
}

type mockPublisher struct {
	publishFn    func(ctx context.Context, msg model.Message) error
	publishCalls int
	published    []model.Message
}

func (m *mockPublisher) PublishMessageCreated(ctx context.Context, msg model.Message) error {
	m.publishCalls++
	m.published = append(m.published, msg)
	if m.publishFn != nil {
		return m.publishFn(ctx, msg)
	}
	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}
