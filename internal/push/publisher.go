package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"tradepost.app/messenger/internal/model"
)

// Publisher fans a confirmed message out to the push channels. The server
// calls this after persisting; delivery is best-effort because polling is
// the guaranteed path.
type Publisher interface {
	PublishMessageCreated(ctx context.Context, msg model.Message) error
	Close() error
}

type redisPublisher struct {
	client          *redis.Client
	channelPrefix   string
	activityChannel string
}

func NewRedisPublisher(client *redis.Client, channelPrefix, activityChannel string) Publisher {
	return &redisPublisher{
		client:          client,
		channelPrefix:   channelPrefix,
		activityChannel: activityChannel,
	}
}

// PublishMessageCreated publishes to the per-conversation channel and to the
// global activity channel. Subscribers on the open conversation get the
// message for their timeline; activity subscribers refresh list summaries.
func (p *redisPublisher) PublishMessageCreated(ctx context.Context, msg model.Message) error {
	traceID := ""
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
	}

	payload, err := encodeEnvelope(msg, traceID)
	if err != nil {
		return err
	}

	channel := conversationChannel(p.channelPrefix, msg.ConversationID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	if err := p.client.Publish(ctx, p.activityChannel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.activityChannel, err)
	}

	slog.DebugContext(ctx, "push event published",
		"channel", channel,
		"message_id", msg.ID,
		"conversation_id", msg.ConversationID)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

func conversationChannel(prefix string, conversationID int64) string {
	return fmt.Sprintf("%s%d", prefix, conversationID)
}
