package sync

import (
	"context"
	"log/slog"
	stdsync "sync"

	"tradepost.app/messenger/common/logger"
)

// IndexWatcher feeds the conversation list screen. It consumes the global
// activity stream: every message-created event triggers a summary refresh,
// whichever conversation is open, and is forwarded outward so the
// notification collaborator can decide whether to present a banner.
type IndexWatcher struct {
	subscriber PushSubscriber

	// OnActivity is invoked for each event after Refresh; the list screen
	// rebuilds its index from it.
	OnActivity func(ctx context.Context, ev PushEvent)

	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

func NewIndexWatcher(subscriber PushSubscriber, onActivity func(ctx context.Context, ev PushEvent)) *IndexWatcher {
	return &IndexWatcher{
		subscriber: subscriber,
		OnActivity: onActivity,
	}
}

// Start subscribes to the activity stream. A failed subscription is logged
// and left alone: the list screen still refreshes on its own lifecycle and
// the per-conversation channels are unaffected.
func (w *IndexWatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "messenger.sync.watcher",
	})
	w.cancel = cancel

	events, err := w.subscriber.SubscribeActivity(ctx)
	if err != nil {
		slog.WarnContext(ctx, "activity subscription failed", "error", err)
		cancel()
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if w.OnActivity != nil {
					w.OnActivity(ctx, ev)
				}
			}
		}
	}()
}

// Stop tears down the activity subscription.
func (w *IndexWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
