package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
)

// ChannelState tracks the push-subscription half of a SyncChannel. Polling is
// not a state: it is always active while the channel runs.
type ChannelState string

const (
	StateIdle        ChannelState = "idle"
	StateSubscribing ChannelState = "subscribing"
	StateLive        ChannelState = "live"
	StateStopped     ChannelState = "stopped"
)

// Sink receives deliveries from both sources. Implementations must be
// idempotent (dedup by message id): no ordering is guaranteed across the two
// sources, and both may deliver the same message.
type Sink interface {
	// KnownCount reports how many messages the sink currently holds for the
	// conversation. A poll result is only fed through when it is longer.
	KnownCount() int
	// FetchedMessages receives a full poll result, in server order.
	FetchedMessages(ctx context.Context, conversationID int64, msgs []model.Message)
	// PushedMessage receives a single push-delivered message.
	PushedMessage(ctx context.Context, ev PushEvent)
}

// SyncChannel merges the two delivery sources for one open conversation:
// a fixed-interval poller and a push subscription. Both stay active
// simultaneously — polling is not suspended once the push channel is live,
// because the sink's dedup is what makes redundant delivery harmless and
// polling is the guaranteed path when the subscription fails.
type SyncChannel struct {
	backend        Backend
	subscriber     PushSubscriber
	conversationID int64
	interval       time.Duration
	sink           Sink

	mu    stdsync.Mutex
	state ChannelState

	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

func NewSyncChannel(backend Backend, subscriber PushSubscriber, conversationID int64, interval time.Duration, sink Sink) *SyncChannel {
	return &SyncChannel{
		backend:        backend,
		subscriber:     subscriber,
		conversationID: conversationID,
		interval:       interval,
		sink:           sink,
		state:          StateIdle,
	}
}

// Start begins polling immediately and attempts the push subscription in
// parallel; it does not wait for the subscription to establish.
func (c *SyncChannel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(c.conversationID),
		Component:      "messenger.sync.channel",
	})

	c.mu.Lock()
	c.cancel = cancel
	c.state = StateSubscribing
	c.mu.Unlock()

	c.wg.Add(2)
	go c.pollLoop(ctx)
	go c.pushLoop(ctx)
}

// Stop tears down the poll timer and the push subscription and waits for
// both loops to exit. Leaving a channel running against a conversation no
// longer on screen is a leak; the Session always stops the previous channel
// before opening the next conversation.
func (c *SyncChannel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.state = StateStopped
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// State returns the push-subscription state.
func (c *SyncChannel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *SyncChannel) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

// pollOnce fetches the full list and hands it to the sink when it has grown
// past what the sink already holds. Poll failures are swallowed and retried
// on the next tick: polling is inherently self-healing.
func (c *SyncChannel) pollOnce(ctx context.Context) {
	msgs, err := c.backend.FetchMessages(ctx, c.conversationID)
	if err != nil {
		slog.DebugContext(ctx, "poll cycle failed, retrying next tick", "error", err)
		return
	}

	if len(msgs) > c.sink.KnownCount() {
		c.sink.FetchedMessages(ctx, c.conversationID, msgs)
	}
}

// pushLoop establishes the subscription and forwards its events. A failed
// establishment does not crash the flow — polling remains the delivery path.
func (c *SyncChannel) pushLoop(ctx context.Context) {
	defer c.wg.Done()

	events, err := c.subscriber.Subscribe(ctx, c.conversationID)
	if err != nil {
		slog.WarnContext(ctx, "push subscription failed, relying on polling", "error", err)
		return
	}

	c.mu.Lock()
	if c.state == StateSubscribing {
		c.state = StateLive
	}
	c.mu.Unlock()

	slog.DebugContext(ctx, "push subscription live")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.sink.PushedMessage(ctx, ev)
		}
	}
}
