package sync

import stdsync "sync"

// Gate records which conversation (if any) is currently in the foreground.
// It is the one piece of process-wide mutable state in the messaging core:
// the notification collaborator consults it to suppress a banner for a
// message that is already visible on screen.
//
// Set and Clear must be called symmetrically on every visibility transition,
// including abnormal dismissal, or notifications will be incorrectly
// suppressed for a conversation no longer on screen.
type Gate struct {
	mu     stdsync.Mutex
	active *int64
}

func NewGate() *Gate {
	return &Gate{}
}

// SetActive records the conversation now in the foreground, replacing any
// previously active one.
func (g *Gate) SetActive(conversationID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = &conversationID
}

// Clear records that no conversation is visible.
func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = nil
}

// IsActive reports whether the given conversation is in the foreground.
func (g *Gate) IsActive(conversationID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active != nil && *g.active == conversationID
}

// Active returns the foreground conversation id, if any.
func (g *Gate) Active() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return 0, false
	}
	return *g.active, true
}
