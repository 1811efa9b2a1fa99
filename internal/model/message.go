package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageKind distinguishes the message payload shape.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
)

// Message is one entry in a conversation timeline.
//
// Confirmed messages carry a server-assigned snowflake ID. A provisional
// message (LocalOnly=true) exists only in the client's in-memory timeline
// between the moment the user hits send and the moment the server's confirmed
// copy arrives; it is never persisted.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	Content        string
	Kind           MessageKind
	MediaRef       *string // upload reference, set when Kind is image
	CreatedAt      time.Time
	Read           bool
	LocalOnly      bool
}

// NewProvisional builds a local-only text message awaiting server confirmation.
// The temporary id is negative so it can never collide with a server-assigned
// snowflake id, which are always positive.
func NewProvisional(conversationID, senderID int64, content string) Message {
	return Message{
		ID:             provisionalID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        strings.TrimSpace(content),
		Kind:           MessageKindText,
		CreatedAt:      time.Now(),
		LocalOnly:      true,
	}
}

// NewProvisionalImage builds a local-only image message awaiting confirmation.
func NewProvisionalImage(conversationID, senderID int64, mediaRef string) Message {
	return Message{
		ID:             provisionalID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Kind:           MessageKindImage,
		MediaRef:       &mediaRef,
		CreatedAt:      time.Now(),
		LocalOnly:      true,
	}
}

func provisionalID() int64 {
	u := uuid.New()
	var n int64
	for _, b := range u[:8] {
		n = n<<8 | int64(b)
	}
	if n < 0 {
		return n
	}
	return -n - 1
}

// Preview returns the short text used in conversation list rows.
func (m Message) Preview() string {
	if m.Kind == MessageKindImage {
		return "[photo]"
	}
	return m.Content
}
