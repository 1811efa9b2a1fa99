package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradepost.app/messenger/core/db"
	"tradepost.app/messenger/internal/model"
)

type conversationStore struct {
	db *db.DB
}

func newConversationStore(database *db.DB) ConversationStore {
	return &conversationStore{db: database}
}

func (s *conversationStore) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	const q = `
		SELECT id, product_id, product_title, buyer_id, seller_id
		FROM conversations
		WHERE id = $1`

	var c model.Conversation
	err := s.db.Pool().QueryRow(ctx, q, id).Scan(&c.ID, &c.ProductID, &c.ProductTitle, &c.BuyerID, &c.SellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &c, nil
}

func (s *conversationStore) GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*model.Conversation, error) {
	const q = `
		SELECT id, product_id, product_title, buyer_id, seller_id
		FROM conversations
		WHERE product_id = $1 AND buyer_id = $2`

	var c model.Conversation
	err := s.db.Pool().QueryRow(ctx, q, productID, buyerID).Scan(&c.ID, &c.ProductID, &c.ProductTitle, &c.BuyerID, &c.SellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting conversation by product and buyer: %w", err)
	}
	return &c, nil
}

func (s *conversationStore) Create(ctx context.Context, conv *model.Conversation, buyerName, sellerName string) error {
	const q = `
		INSERT INTO conversations (id, product_id, product_title, buyer_id, buyer_name, seller_id, seller_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Pool().Exec(ctx, q,
		conv.ID,
		conv.ProductID,
		conv.ProductTitle,
		conv.BuyerID,
		buyerName,
		conv.SellerID,
		sellerName,
	)
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	return nil
}

// ListForUser resolves counterpart name relative to the user and joins in the
// latest message for the preview columns. Unread counts are left at zero;
// the API layer recomputes them per request.
func (s *conversationStore) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	const q = `
		SELECT
			c.id, c.product_id, c.product_title, c.buyer_id, c.seller_id,
			CASE WHEN c.buyer_id = $1 THEN c.seller_name ELSE c.buyer_name END AS counterpart_name,
			last.content, last.kind, last.created_at
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT m.content, m.kind, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) last ON TRUE
		WHERE c.buyer_id = $1 OR c.seller_id = $1
		ORDER BY last.created_at DESC NULLS LAST`

	rows, err := s.db.Pool().Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		var (
			c       model.Conversation
			content *string
			kind    *string
		)
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ProductTitle, &c.BuyerID, &c.SellerID,
			&c.CounterpartName, &content, &kind, &c.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		if content != nil {
			preview := model.Message{Content: *content}
			if kind != nil {
				preview.Kind = model.MessageKind(*kind)
			}
			c.LastMessagePreview = preview.Preview()
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversations: %w", err)
	}
	return convs, nil
}
