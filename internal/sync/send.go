package sync

import (
	"context"
	"log/slog"
	"strings"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
)

// Optimistic send pipeline: the provisional message appears in the timeline
// before the round trip completes, and is reconciled against server truth by
// a full refetch rather than by trusting the single returned message. The
// refetch rebuilds the store keyed by server ids, so the provisional entry is
// dropped rather than duplicated. On failure the provisional entry is rolled
// back and the typed text is returned to the caller, which restores the
// input field: a failed send never loses content and never leaves a ghost
// message behind.

// SendText sends a text message on the open conversation. The returned
// string is the trimmed text to restore into the input field when err is
// non-nil; it is empty on success.
func (s *Session) SendText(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &ValidationError{Reason: "message is empty"}
	}

	s.mu.Lock()
	if s.timeline == nil {
		s.mu.Unlock()
		return trimmed, &ValidationError{Reason: "no open conversation"}
	}
	conversationID := s.timeline.ConversationID()
	provisional := model.NewProvisional(conversationID, s.viewerID, trimmed)
	s.timeline.AppendProvisional(provisional)
	snapshot := s.timeline.Messages()
	s.mu.Unlock()

	s.notifyTimeline(snapshot)

	return s.completeSend(ctx, conversationID, provisional.ID, trimmed, func(ctx context.Context) error {
		_, err := s.backend.SendTextMessage(ctx, conversationID, trimmed)
		return err
	})
}

// SendImage sends an image message through the same pipeline.
func (s *Session) SendImage(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Reason: "image is empty"}
	}

	s.mu.Lock()
	if s.timeline == nil {
		s.mu.Unlock()
		return "", &ValidationError{Reason: "no open conversation"}
	}
	conversationID := s.timeline.ConversationID()
	provisional := model.NewProvisionalImage(conversationID, s.viewerID, "pending-upload")
	s.timeline.AppendProvisional(provisional)
	snapshot := s.timeline.Messages()
	s.mu.Unlock()

	s.notifyTimeline(snapshot)

	return s.completeSend(ctx, conversationID, provisional.ID, "", func(ctx context.Context) error {
		_, err := s.backend.SendImageMessage(ctx, conversationID, data)
		return err
	})
}

// completeSend performs the authoritative round trip and reconciles.
func (s *Session) completeSend(ctx context.Context, conversationID, provisionalID int64, restoreText string, send func(ctx context.Context) error) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conversationID),
		Component:      "messenger.sync.send",
	})

	if err := send(ctx); err != nil {
		s.rollbackProvisional(ctx, conversationID, provisionalID)
		slog.WarnContext(ctx, "send failed, provisional rolled back", "error", err)
		return restoreText, err
	}

	// Full refetch is the documented reconciliation contract: regardless of
	// what the poller or push channel delivered meanwhile, ReplaceAll
	// converges the timeline on server truth.
	msgs, err := s.backend.FetchMessages(ctx, conversationID)
	if err != nil {
		// The send is confirmed server-side, so the provisional must go now:
		// the poller only appends by id and would otherwise deliver the
		// confirmed copy alongside the local-only one.
		s.rollbackProvisional(ctx, conversationID, provisionalID)
		slog.WarnContext(ctx, "post-send refetch failed, poller delivers the confirmed copy", "error", err)
		return "", nil
	}

	s.mu.Lock()
	if s.timeline == nil || s.timeline.ConversationID() != conversationID {
		s.mu.Unlock()
		slog.DebugContext(ctx, "discarding stale send reconciliation")
		return "", nil
	}
	s.timeline.ReplaceAll(msgs)
	snapshot := s.timeline.Messages()
	s.mu.Unlock()

	s.notifyTimeline(snapshot)
	return "", nil
}

func (s *Session) rollbackProvisional(ctx context.Context, conversationID, provisionalID int64) {
	s.mu.Lock()
	if s.timeline == nil || s.timeline.ConversationID() != conversationID {
		s.mu.Unlock()
		return
	}
	removed := s.timeline.Remove(provisionalID)
	snapshot := s.timeline.Messages()
	s.mu.Unlock()

	if removed {
		s.notifyTimeline(snapshot)
	} else {
		slog.DebugContext(ctx, "no provisional entry to roll back")
	}
}
