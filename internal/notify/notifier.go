package notify

import (
	"context"
	"log/slog"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
	syncer "tradepost.app/messenger/internal/sync"
)

// Banner is a user-facing new-message alert.
type Banner struct {
	ConversationID int64
	Title          string
	Body           string
}

// Presenter renders a banner to the user. The transport (APNs, local
// notification, terminal bell) is out of scope; only the suppression policy
// lives here.
type Presenter interface {
	Present(ctx context.Context, banner Banner)
}

// Notifier decides whether a delivered message deserves a banner. A message
// for the conversation currently on screen is already visible, so its banner
// is suppressed; so is anything the viewer sent themselves.
type Notifier struct {
	gate      *syncer.Gate
	presenter Presenter
	viewerID  int64
}

func New(gate *syncer.Gate, presenter Presenter, viewerID int64) *Notifier {
	return &Notifier{
		gate:      gate,
		presenter: presenter,
		viewerID:  viewerID,
	}
}

// HandleMessage applies the suppression policy to one delivery.
func (n *Notifier) HandleMessage(ctx context.Context, ev syncer.PushEvent) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(ev.ConversationID),
		MessageID:      logger.Ptr(ev.Message.ID),
		Component:      "messenger.notify",
	})

	if ev.Message.SenderID == n.viewerID {
		return
	}

	if n.gate.IsActive(ev.ConversationID) {
		slog.DebugContext(ctx, "banner suppressed, conversation on screen")
		return
	}

	n.presenter.Present(ctx, Banner{
		ConversationID: ev.ConversationID,
		Title:          "New message",
		Body:           preview(ev.Message),
	})
}

func preview(m model.Message) string {
	return logger.Truncate(m.Preview(), 120)
}
