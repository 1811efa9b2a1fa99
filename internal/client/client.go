package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	stdsync "sync"
	"time"

	"tradepost.app/messenger/internal/http/dto"
	"tradepost.app/messenger/internal/model"
	syncer "tradepost.app/messenger/internal/sync"
)

// HTTPBackend implements sync.Backend against the messenger server API.
// Transport failures come back as sync.NetworkError, 400s as
// sync.ValidationError and 401s as sync.AuthError, which is what the sync
// engine's propagation policy keys on.
type HTTPBackend struct {
	baseURL string
	token   string
	httpc   *http.Client

	userMu      stdsync.Mutex
	userID      int64
	userIDKnown bool
}

func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		token:   token,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (b *HTTPBackend) FetchMessages(ctx context.Context, conversationID int64) ([]model.Message, error) {
	var resp []dto.MessageResponse
	err := b.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d/messages", conversationID), nil, &resp)
	if err != nil {
		return nil, err
	}

	msgs := make([]model.Message, len(resp))
	for i, r := range resp {
		msgs[i] = toMessage(r)
	}
	return msgs, nil
}

func (b *HTTPBackend) SendTextMessage(ctx context.Context, conversationID int64, text string) (model.Message, error) {
	req := dto.PostMessageRequest{Kind: string(model.MessageKindText), Content: text}
	var resp dto.MessageResponse
	err := b.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", conversationID), req, &resp)
	if err != nil {
		return model.Message{}, err
	}
	return toMessage(resp), nil
}

func (b *HTTPBackend) SendImageMessage(ctx context.Context, conversationID int64, data []byte) (model.Message, error) {
	req := dto.PostMessageRequest{Kind: string(model.MessageKindImage), ImageData: data}
	var resp dto.MessageResponse
	err := b.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", conversationID), req, &resp)
	if err != nil {
		return model.Message{}, err
	}
	return toMessage(resp), nil
}

func (b *HTTPBackend) FetchConversations(ctx context.Context) ([]model.Conversation, error) {
	var resp []dto.ConversationResponse
	err := b.do(ctx, http.MethodGet, "/api/v1/conversations", nil, &resp)
	if err != nil {
		return nil, err
	}

	convs := make([]model.Conversation, len(resp))
	for i, r := range resp {
		convs[i] = model.Conversation{
			ID:                 r.ID,
			ProductID:          r.ProductID,
			ProductTitle:       r.ProductTitle,
			BuyerID:            r.BuyerID,
			SellerID:           r.SellerID,
			LastMessagePreview: r.LastMessagePreview,
			LastMessageAt:      r.LastMessageAt,
			UnreadCount:        r.UnreadCount,
			CounterpartName:    r.CounterpartName,
		}
	}
	return convs, nil
}

func (b *HTTPBackend) CountUnread(ctx context.Context, conversationID, _ int64) (int, error) {
	var resp dto.UnreadCountResponse
	err := b.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d/unread", conversationID), nil, &resp)
	if err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (b *HTTPBackend) MarkConversationRead(ctx context.Context, conversationID int64) error {
	return b.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/read", conversationID), nil, nil)
}

// CurrentUserID resolves the authenticated user once and caches it: the
// token is fixed for the lifetime of the client. The mutex spans the fetch so
// concurrent callers share a single round trip; a failed resolution is not
// cached and the next caller retries.
func (b *HTTPBackend) CurrentUserID(ctx context.Context) (int64, error) {
	b.userMu.Lock()
	defer b.userMu.Unlock()

	if b.userIDKnown {
		return b.userID, nil
	}

	var resp struct {
		UserID int64 `json:"user_id"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/v1/me", nil, &resp); err != nil {
		return 0, err
	}

	b.userID = resp.UserID
	b.userIDKnown = true
	return b.userID, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return &syncer.NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &syncer.AuthError{Reason: "token rejected"}
	case resp.StatusCode == http.StatusBadRequest:
		return &syncer.ValidationError{Reason: apiError(resp.Body)}
	case resp.StatusCode >= 500:
		return &syncer.NetworkError{Op: method + " " + path, Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: %s", method, path, apiError(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &syncer.NetworkError{Op: "decoding " + path, Err: err}
	}
	return nil
}

func apiError(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "request rejected"
	}
	return payload.Error
}

func toMessage(r dto.MessageResponse) model.Message {
	return model.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Content:        r.Content,
		Kind:           model.MessageKind(r.Kind),
		MediaRef:       r.MediaRef,
		CreatedAt:      r.CreatedAt,
		Read:           r.Read,
	}
}
