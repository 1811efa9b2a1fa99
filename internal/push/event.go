package push

import (
	"encoding/json"
	"fmt"
	"time"

	"tradepost.app/messenger/internal/model"
)

const EventTypeMessageCreated = "message_created"

// Envelope is the wire format on the Redis channels. Meta travels with every
// event so consumers can filter by type and link traces across processes.
type Envelope struct {
	Meta Meta        `json:"meta"`
	Data messageData `json:"data"`
}

type Meta struct {
	EventType   string    `json:"event_type"`
	TraceID     string    `json:"trace_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type messageData struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content,omitempty"`
	Kind           string    `json:"kind"`
	MediaRef       *string   `json:"media_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

func encodeEnvelope(msg model.Message, traceID string) ([]byte, error) {
	env := Envelope{
		Meta: Meta{
			EventType:   EventTypeMessageCreated,
			TraceID:     traceID,
			PublishedAt: time.Now().UTC(),
		},
		Data: messageData{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Content:        msg.Content,
			Kind:           string(msg.Kind),
			MediaRef:       msg.MediaRef,
			CreatedAt:      msg.CreatedAt,
			Read:           msg.Read,
		},
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding push envelope: %w", err)
	}
	return payload, nil
}

func decodeEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding push envelope: %w", err)
	}
	if env.Meta.EventType != EventTypeMessageCreated {
		return Envelope{}, fmt.Errorf("unknown event_type %q", env.Meta.EventType)
	}
	return env, nil
}

func (e Envelope) message() model.Message {
	return model.Message{
		ID:             e.Data.ID,
		ConversationID: e.Data.ConversationID,
		SenderID:       e.Data.SenderID,
		Content:        e.Data.Content,
		Kind:           model.MessageKind(e.Data.Kind),
		MediaRef:       e.Data.MediaRef,
		CreatedAt:      e.Data.CreatedAt,
		Read:           e.Data.Read,
	}
}
