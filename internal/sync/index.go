package sync

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/internal/model"
)

// Segment selects which side of the marketplace a conversation list shows.
type Segment string

const (
	SegmentAll     Segment = "all"
	SegmentSelling Segment = "selling"
	SegmentBuying  Segment = "buying"
)

// UnreadCounter is the counting collaborator consulted during Rebuild.
// Backend satisfies it.
type UnreadCounter interface {
	CountUnread(ctx context.Context, conversationID, forUser int64) (int, error)
}

// ConversationIndex maintains conversation summaries for the list screen,
// independent of which conversation (if any) is open. Unread counts are
// recomputed on every Rebuild rather than incrementally maintained, to avoid
// drift between the multiple update sources feeding the list.
type ConversationIndex struct {
	viewerID  int64
	counter   UnreadCounter
	summaries []model.Conversation
}

func NewConversationIndex(viewerID int64, counter UnreadCounter) *ConversationIndex {
	return &ConversationIndex{
		viewerID: viewerID,
		counter:  counter,
	}
}

// Rebuild recomputes unread counts for every conversation and sorts the
// summaries descending by last activity (conversations without a message yet
// sort last). A failed count is logged and left at zero; the next rebuild
// will correct it.
func (x *ConversationIndex) Rebuild(ctx context.Context, conversations []model.Conversation) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "messenger.sync.index",
	})

	summaries := make([]model.Conversation, len(conversations))
	copy(summaries, conversations)

	for i := range summaries {
		count, err := x.counter.CountUnread(ctx, summaries[i].ID, x.viewerID)
		if err != nil {
			slog.WarnContext(ctx, "unread count failed, keeping zero",
				"error", err,
				"conversation_id", summaries[i].ID)
			continue
		}
		summaries[i].UnreadCount = count
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	x.summaries = summaries
}

// ApplyFilter is a pure function over the current summaries. The segment is
// determined by whether the viewer is the conversation's seller or buyer;
// search matches product title or counterpart name, case-insensitive.
func (x *ConversationIndex) ApplyFilter(segment Segment, search string) []model.Conversation {
	needle := strings.ToLower(strings.TrimSpace(search))

	var out []model.Conversation
	for _, c := range x.summaries {
		switch segment {
		case SegmentSelling:
			if !c.IsSeller(x.viewerID) {
				continue
			}
		case SegmentBuying:
			if c.IsSeller(x.viewerID) {
				continue
			}
		}

		if needle != "" &&
			!strings.Contains(strings.ToLower(c.ProductTitle), needle) &&
			!strings.Contains(strings.ToLower(c.CounterpartName), needle) {
			continue
		}

		out = append(out, c)
	}
	return out
}

// Summaries returns a copy of the current summaries in display order.
func (x *ConversationIndex) Summaries() []model.Conversation {
	out := make([]model.Conversation, len(x.summaries))
	copy(out, x.summaries)
	return out
}
