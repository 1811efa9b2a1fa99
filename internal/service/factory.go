package service

import (
	"context"
	"fmt"

	"tradepost.app/messenger/common/id"
	"tradepost.app/messenger/internal/push"
	"tradepost.app/messenger/internal/store"
)

type Services struct {
	stores    *store.Stores
	publisher push.Publisher
	media     MediaStore
}

type ServicesConfig struct {
	Stores    *store.Stores
	Publisher push.Publisher
	Media     MediaStore
}

func NewServices(cfg ServicesConfig) *Services {
	media := cfg.Media
	if media == nil {
		media = localMediaStore{}
	}
	return &Services{
		stores:    cfg.Stores,
		publisher: cfg.Publisher,
		media:     media,
	}
}

func (s *Services) Conversations() ConversationService {
	return NewConversationService(s.stores.Conversations(), s.stores.Messages())
}

func (s *Services) Messages() MessageService {
	return NewMessageService(s.stores.Conversations(), s.stores.Messages(), s.media, s.publisher)
}

// localMediaStore is the development MediaStore: it assigns a reference
// without persisting bytes anywhere durable.
type localMediaStore struct{}

func (localMediaStore) Save(_ context.Context, _ []byte) (string, error) {
	return fmt.Sprintf("media/%d", id.New()), nil
}
