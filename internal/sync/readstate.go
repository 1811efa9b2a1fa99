package sync

import (
	"context"
	"log/slog"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
)

// ReadStateTracker marks messages read and keeps unread counts honest.
// Server-side read marks are fire-and-forget relative to the UI: their
// failure never blocks viewing, and the next index rebuild recomputes
// counts from the server anyway.
type ReadStateTracker struct {
	backend  Backend
	gate     *Gate
	viewerID int64
}

func NewReadStateTracker(backend Backend, gate *Gate, viewerID int64) *ReadStateTracker {
	return &ReadStateTracker{
		backend:  backend,
		gate:     gate,
		viewerID: viewerID,
	}
}

// ConversationActivated marks all currently-known unread counterpart messages
// in the conversation as read.
func (t *ReadStateTracker) ConversationActivated(ctx context.Context, conversationID int64, known []model.Message) {
	for _, m := range known {
		if !m.Read && m.SenderID != t.viewerID {
			t.markRead(ctx, conversationID)
			return
		}
	}
}

// MessageArrived handles a new push/poll delivery: if its conversation is
// active and it was authored by the counterpart, it is marked read as well.
func (t *ReadStateTracker) MessageArrived(ctx context.Context, msg model.Message) {
	if msg.SenderID == t.viewerID {
		return
	}
	if !t.gate.IsActive(msg.ConversationID) {
		return
	}
	t.markRead(ctx, msg.ConversationID)
}

func (t *ReadStateTracker) markRead(ctx context.Context, conversationID int64) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conversationID),
		Component:      "messenger.sync.readstate",
	})

	if err := t.backend.MarkConversationRead(ctx, conversationID); err != nil {
		slog.WarnContext(ctx, "mark read failed", "error", err)
	}
}
