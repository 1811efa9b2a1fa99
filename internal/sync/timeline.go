package sync

import (
	"sort"

	"tradepost.app/messenger/internal/model"
)

// Timeline holds the ordered message list for exactly one open conversation.
// It owns deduplication and ordering; it is deliberately not safe for
// concurrent use — the Session serializes all access, which is what makes
// interleaved poll/push/send completions harmless.
//
// Deduplication is strictly by message id. Content-based matching (same
// author, identical text arriving shortly after a local send) is rejected:
// two messages with identical text sent twice must both survive.
type Timeline struct {
	conversationID int64
	messages       []model.Message
	seen           map[int64]struct{}
}

func NewTimeline(conversationID int64) *Timeline {
	return &Timeline{
		conversationID: conversationID,
		seen:           make(map[int64]struct{}),
	}
}

func (t *Timeline) ConversationID() int64 {
	return t.conversationID
}

// ReplaceAll replaces the timeline wholesale with the authoritative list,
// sorted ascending by CreatedAt (ties keep input order). Any provisional
// entry is implicitly dropped, which is how a successful send reconciles.
func (t *Timeline) ReplaceAll(messages []model.Message) {
	replacement := make([]model.Message, len(messages))
	copy(replacement, messages)
	sort.SliceStable(replacement, func(i, j int) bool {
		return replacement[i].CreatedAt.Before(replacement[j].CreatedAt)
	})

	t.messages = replacement
	t.seen = make(map[int64]struct{}, len(replacement))
	for _, m := range replacement {
		t.seen[m.ID] = struct{}{}
	}
}

// AppendIfAbsent inserts a message unless one with the same id is already
// present, and reports whether an insertion occurred. Used both for
// push/poll-delivered messages and for reconciling redundant deliveries.
func (t *Timeline) AppendIfAbsent(msg model.Message) bool {
	if _, ok := t.seen[msg.ID]; ok {
		return false
	}
	t.seen[msg.ID] = struct{}{}

	// Messages almost always arrive in order; walk back from the tail for
	// the rare out-of-order delivery.
	i := len(t.messages)
	for i > 0 && msg.CreatedAt.Before(t.messages[i-1].CreatedAt) {
		i--
	}
	t.messages = append(t.messages, model.Message{})
	copy(t.messages[i+1:], t.messages[i:])
	t.messages[i] = msg
	return true
}

// AppendProvisional inserts a local-only message at the tail. The timeline is
// append-ordered for sends: the client's own send is always "now".
func (t *Timeline) AppendProvisional(msg model.Message) {
	t.seen[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)
}

// Remove drops the local-only entry with the given id, reporting whether it
// was present. Only provisional entries are removable; confirmed messages are
// untouchable — reconciliation replaces them, rollback never does.
func (t *Timeline) Remove(id int64) bool {
	for i, m := range t.messages {
		if m.ID != id {
			continue
		}
		if !m.LocalOnly {
			return false
		}
		delete(t.seen, id)
		t.messages = append(t.messages[:i], t.messages[i+1:]...)
		return true
	}
	return false
}

// Messages returns a copy of the timeline in display order.
func (t *Timeline) Messages() []model.Message {
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int {
	return len(t.messages)
}

// HasProvisional reports whether any local-only entry remains.
func (t *Timeline) HasProvisional() bool {
	for _, m := range t.messages {
		if m.LocalOnly {
			return true
		}
	}
	return false
}
