package sync_test

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/internal/model"
	syncer "tradepost.app/messenger/internal/sync"
)

var _ = Describe("SyncChannel", func() {
	const (
		conversationID = int64(100)
		interval       = 10 * time.Millisecond
	)

	var (
		backend    *mockBackend
		subscriber *mockSubscriber
		sink       *recordingSink
		channel    *syncer.SyncChannel
		ctx        context.Context
		base       time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = &mockBackend{}
		subscriber = newMockSubscriber()
		sink = &recordingSink{}
		channel = syncer.NewSyncChannel(backend, subscriber, conversationID, interval, sink)
		base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		channel.Stop()
	})

	It("should start idle and stop as stopped", func() {
		Expect(channel.State()).To(Equal(syncer.StateIdle))
		channel.Start(ctx)
		channel.Stop()
		Expect(channel.State()).To(Equal(syncer.StateStopped))
	})

	Describe("polling", func() {
		It("should feed the sink when the server list grows past what it holds", func() {
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					return []model.Message{
						textMessage(1, conversationID, 2, "hello", base),
					}, nil
				}
			})

			channel.Start(ctx)

			Eventually(sink.fetchedCount, time.Second).Should(BeNumerically(">=", 1))
		})

		It("should not feed the sink when nothing new arrived", func() {
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					return []model.Message{
						textMessage(1, conversationID, 2, "hello", base),
					}, nil
				}
			})
			sink.mu.Lock()
			sink.known = 1
			sink.mu.Unlock()

			channel.Start(ctx)

			Consistently(sink.fetchedCount, 100*time.Millisecond).Should(BeZero())
		})

		It("should swallow a poll failure and succeed on a later tick", func() {
			var mu stdsync.Mutex
			calls := 0
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					mu.Lock()
					defer mu.Unlock()
					calls++
					if calls == 1 {
						return nil, errors.New("connection reset")
					}
					return []model.Message{
						textMessage(1, conversationID, 2, "recovered", base),
					}, nil
				}
			})

			channel.Start(ctx)

			Eventually(sink.fetchedCount, time.Second).Should(BeNumerically(">=", 1))
		})
	})

	Describe("push subscription", func() {
		It("should report live once the subscription establishes", func() {
			channel.Start(ctx)
			Eventually(channel.State, time.Second).Should(Equal(syncer.StateLive))
		})

		It("should forward pushed events to the sink", func() {
			channel.Start(ctx)
			Eventually(channel.State, time.Second).Should(Equal(syncer.StateLive))

			subscriber.push(syncer.PushEvent{
				ConversationID: conversationID,
				Message:        textMessage(5, conversationID, 2, "pushed", base),
			})

			Eventually(sink.pushedCount, time.Second).Should(Equal(1))
		})

		It("should keep polling when the subscription fails", func() {
			subscriber.subscribeErr = errors.New("broker unreachable")
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					return []model.Message{
						textMessage(1, conversationID, 2, "via poll", base),
					}, nil
				}
			})

			channel.Start(ctx)

			Eventually(sink.fetchedCount, time.Second).Should(BeNumerically(">=", 1))
			Expect(channel.State()).NotTo(Equal(syncer.StateLive))
		})

		It("should keep polling while the push channel is live", func() {
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					return []model.Message{
						textMessage(1, conversationID, 2, "poll one", base),
						textMessage(2, conversationID, 2, "poll two", base.Add(time.Second)),
					}, nil
				}
			})

			channel.Start(ctx)
			Eventually(channel.State, time.Second).Should(Equal(syncer.StateLive))
			Eventually(sink.fetchedCount, time.Second).Should(BeNumerically(">=", 1))
		})
	})

	Describe("Stop", func() {
		It("should halt both loops", func() {
			backend.set(func(b *mockBackend) {
				b.fetchMessagesFn = func(_ context.Context, _ int64) ([]model.Message, error) {
					return []model.Message{
						textMessage(1, conversationID, 2, "hello", base),
					}, nil
				}
			})

			channel.Start(ctx)
			Eventually(sink.fetchedCount, time.Second).Should(BeNumerically(">=", 1))
			channel.Stop()

			stopped := sink.fetchedCount()
			Consistently(sink.fetchedCount, 100*time.Millisecond).Should(Equal(stopped))
		})
	})
})
