package store

import (
	"context"
	"fmt"

	"tradepost.app/messenger/core/db"
	"tradepost.app/messenger/internal/model"
)

type messageStore struct {
	db *db.DB
}

func newMessageStore(database *db.DB) MessageStore {
	return &messageStore{db: database}
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	const q = `
		INSERT INTO messages (id, conversation_id, sender_id, content, kind, media_ref, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	row := s.db.Pool().QueryRow(ctx, q,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		string(msg.Kind),
		msg.MediaRef,
		msg.CreatedAt,
		msg.Read,
	)
	if err := row.Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *messageStore) ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error) {
	const q = `
		SELECT id, conversation_id, sender_id, content, kind, media_ref, created_at, read
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Pool().Query(ctx, q, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			m    model.Message
			kind string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &kind, &m.MediaRef, &m.CreatedAt, &m.Read); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Kind = model.MessageKind(kind)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	return msgs, nil
}

func (s *messageStore) MarkConversationRead(ctx context.Context, conversationID, readerID int64) error {
	const q = `
		UPDATE messages
		SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE`

	if _, err := s.db.Pool().Exec(ctx, q, conversationID, readerID); err != nil {
		return fmt.Errorf("marking conversation read: %w", err)
	}
	return nil
}

func (s *messageStore) CountUnread(ctx context.Context, conversationID, forUser int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE`

	var count int
	if err := s.db.Pool().QueryRow(ctx, q, conversationID, forUser).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}
	return count, nil
}
