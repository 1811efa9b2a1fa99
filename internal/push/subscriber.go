package push

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"tradepost.app/messenger/common/logger"
	syncer "tradepost.app/messenger/internal/sync"
)

// RedisSubscriber implements sync.PushSubscriber over Redis pub/sub.
// Subscriptions live until their context is cancelled; the event channel is
// closed on teardown.
type RedisSubscriber struct {
	client          *redis.Client
	channelPrefix   string
	activityChannel string
}

func NewRedisSubscriber(client *redis.Client, channelPrefix, activityChannel string) *RedisSubscriber {
	return &RedisSubscriber{
		client:          client,
		channelPrefix:   channelPrefix,
		activityChannel: activityChannel,
	}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, conversationID int64) (<-chan syncer.PushEvent, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conversationID),
		Component:      "messenger.push.subscriber",
	})
	return s.run(ctx, conversationChannel(s.channelPrefix, conversationID))
}

func (s *RedisSubscriber) SubscribeActivity(ctx context.Context) (<-chan syncer.PushEvent, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "messenger.push.subscriber",
	})
	return s.run(ctx, s.activityChannel)
}

func (s *RedisSubscriber) run(ctx context.Context, channel string) (<-chan syncer.PushEvent, error) {
	pubsub := s.client.Subscribe(ctx, channel)

	// Receive confirms SUBSCRIBE so a broken connection surfaces here
	// instead of as a silently dead channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, &syncer.NetworkError{Op: "subscribing to " + channel, Err: err}
	}

	events := make(chan syncer.PushEvent, 16)

	go func() {
		defer close(events)
		defer func() {
			_ = pubsub.Close()
		}()

		incoming := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-incoming:
				if !ok {
					return
				}
				env, err := decodeEnvelope([]byte(raw.Payload))
				if err != nil {
					slog.WarnContext(ctx, "dropping undecodable push event",
						"error", err,
						"channel", channel)
					continue
				}
				msg := env.message()
				ev := syncer.PushEvent{
					ConversationID: msg.ConversationID,
					Message:        msg,
					TraceID:        env.Meta.TraceID,
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	slog.DebugContext(ctx, "subscribed", "channel", channel)
	return events, nil
}
