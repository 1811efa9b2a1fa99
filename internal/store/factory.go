package store

import (
	"tradepost.app/messenger/core/db"
)

type Stores struct {
	db *db.DB
}

func NewStores(database *db.DB) *Stores {
	return &Stores{db: database}
}

func (s *Stores) Conversations() ConversationStore {
	return newConversationStore(s.db)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.db)
}
