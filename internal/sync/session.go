package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
)

// MessageEvent is the outward "new message received" notification. The
// notification-delivery collaborator checks it against the Gate before
// presenting a user-facing banner.
type MessageEvent struct {
	ConversationID int64
	Message        model.Message
}

// SessionConfig wires a Session's collaborators.
type SessionConfig struct {
	Backend      Backend
	Subscriber   PushSubscriber
	Gate         *Gate
	PollInterval time.Duration

	// OnTimelineChanged fires after any mutation of the open timeline, with
	// the messages in display order. The view layer renders from this.
	OnTimelineChanged func(msgs []model.Message)
	// OnMessage fires for every newly inserted counterpart delivery on the
	// open conversation.
	OnMessage func(ev MessageEvent)
}

// Session drives synchronization for at most one open conversation at a time.
// All timeline mutation happens under one mutex: asynchronous completions
// from the poller, the push subscription and in-flight sends interleave, they
// never run in parallel against the store. Combined with dedup-by-id in the
// Timeline, that is the whole correctness argument; no sequencing across the
// delivery sources is assumed.
type Session struct {
	backend    Backend
	subscriber PushSubscriber
	gate       *Gate
	interval   time.Duration

	onTimelineChanged func(msgs []model.Message)
	onMessage         func(ev MessageEvent)

	mu       stdsync.Mutex
	viewerID int64
	timeline *Timeline
	channel  *SyncChannel
	reads    *ReadStateTracker
}

func NewSession(cfg SessionConfig) *Session {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Session{
		backend:           cfg.Backend,
		subscriber:        cfg.Subscriber,
		gate:              cfg.Gate,
		interval:          interval,
		onTimelineChanged: cfg.OnTimelineChanged,
		onMessage:         cfg.OnMessage,
	}
}

// Open makes the given conversation the foreground one: it closes any
// previously open conversation, loads the authoritative timeline, marks the
// gate active, kicks off read marking, and starts the dual-source channel.
// An unauthenticated user surfaces as AuthError; the screen cannot load.
func (s *Session) Open(ctx context.Context, conversationID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conversationID),
		Component:      "messenger.sync.session",
	})

	viewerID, err := s.backend.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	// The previous conversation's poller and subscription must be gone
	// before the new timeline exists, or their callbacks would race a store
	// that now represents a different conversation.
	s.Close()

	msgs, err := s.backend.FetchMessages(ctx, conversationID)
	if err != nil {
		return err
	}

	timeline := NewTimeline(conversationID)
	timeline.ReplaceAll(msgs)

	s.mu.Lock()
	s.viewerID = viewerID
	s.timeline = timeline
	s.reads = NewReadStateTracker(s.backend, s.gate, viewerID)
	s.channel = NewSyncChannel(s.backend, s.subscriber, conversationID, s.interval, (*sessionSink)(s))
	channel := s.channel
	reads := s.reads
	s.mu.Unlock()

	s.gate.SetActive(conversationID)

	// Fire-and-forget relative to the view: read-mark failure never blocks
	// opening the screen.
	go reads.ConversationActivated(context.WithoutCancel(ctx), conversationID, msgs)

	channel.Start(ctx)
	s.notifyTimeline(timeline.Messages())

	slog.InfoContext(ctx, "conversation opened", "message_count", len(msgs))
	return nil
}

// Close dismisses the open conversation, if any: the poll timer and push
// subscription are torn down and the gate is cleared. The timeline is
// discarded, not reused.
func (s *Session) Close() {
	s.mu.Lock()
	channel := s.channel
	var conversationID int64
	if s.timeline != nil {
		conversationID = s.timeline.ConversationID()
	}
	s.channel = nil
	s.timeline = nil
	s.reads = nil
	s.mu.Unlock()

	if channel != nil {
		channel.Stop()
	}
	if conversationID != 0 && s.gate.IsActive(conversationID) {
		s.gate.Clear()
	}
}

// Navigate is the deep-link entry point: it switches the session to the
// given conversation (e.g. from an order notification elsewhere in the app).
func (s *Session) Navigate(ctx context.Context, conversationID int64) error {
	return s.Open(ctx, conversationID)
}

// Messages returns the open timeline in display order, or nil when no
// conversation is open.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeline == nil {
		return nil
	}
	return s.timeline.Messages()
}

// Conversation returns the open conversation id, if any.
func (s *Session) Conversation() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeline == nil {
		return 0, false
	}
	return s.timeline.ConversationID(), true
}

func (s *Session) notifyTimeline(msgs []model.Message) {
	if s.onTimelineChanged != nil {
		s.onTimelineChanged(msgs)
	}
}

// sessionSink adapts Session to the channel's Sink. Every reconciliation
// callback re-checks that its conversation id still matches the open one and
// discards stale results: a previous conversation's in-flight poll must not
// mutate a timeline that now represents a different conversation.
type sessionSink Session

func (s *sessionSink) KnownCount() int {
	sess := (*Session)(s)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.timeline == nil {
		return 0
	}
	return sess.timeline.Len()
}

func (s *sessionSink) FetchedMessages(ctx context.Context, conversationID int64, msgs []model.Message) {
	sess := (*Session)(s)

	sess.mu.Lock()
	if sess.timeline == nil || sess.timeline.ConversationID() != conversationID {
		sess.mu.Unlock()
		slog.DebugContext(ctx, "discarding stale poll result", "conversation_id", conversationID)
		return
	}

	var inserted []model.Message
	for _, m := range msgs {
		if sess.timeline.AppendIfAbsent(m) {
			inserted = append(inserted, m)
		}
	}
	snapshot := sess.timeline.Messages()
	reads := sess.reads
	sess.mu.Unlock()

	if len(inserted) == 0 {
		return
	}

	sess.notifyTimeline(snapshot)
	for _, m := range inserted {
		sess.fanOut(ctx, reads, m)
	}
}

func (s *sessionSink) PushedMessage(ctx context.Context, ev PushEvent) {
	sess := (*Session)(s)

	sess.mu.Lock()
	if sess.timeline == nil || sess.timeline.ConversationID() != ev.ConversationID {
		sess.mu.Unlock()
		slog.DebugContext(ctx, "discarding push event for closed conversation", "conversation_id", ev.ConversationID)
		return
	}

	added := sess.timeline.AppendIfAbsent(ev.Message)
	snapshot := sess.timeline.Messages()
	reads := sess.reads
	sess.mu.Unlock()

	if !added {
		return
	}

	sess.notifyTimeline(snapshot)
	sess.fanOut(ctx, reads, ev.Message)
}

func (s *Session) fanOut(ctx context.Context, reads *ReadStateTracker, msg model.Message) {
	s.mu.Lock()
	viewerID := s.viewerID
	s.mu.Unlock()

	if msg.SenderID == viewerID {
		return
	}

	if reads != nil {
		go reads.MessageArrived(context.WithoutCancel(ctx), msg)
	}
	if s.onMessage != nil {
		s.onMessage(MessageEvent{ConversationID: msg.ConversationID, Message: msg})
	}
}
