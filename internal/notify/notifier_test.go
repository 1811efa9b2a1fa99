package notify_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/internal/model"
	"tradepost.app/messenger/internal/notify"
	syncer "tradepost.app/messenger/internal/sync"
)

type mockPresenter struct {
	banners []notify.Banner
}

func (m *mockPresenter) Present(_ context.Context, banner notify.Banner) {
	m.banners = append(m.banners, banner)
}

var _ = Describe("Notifier", func() {
	const (
		viewerID       = int64(1)
		counterpartID  = int64(2)
		conversationID = int64(100)
	)

	var (
		gate      *syncer.Gate
		presenter *mockPresenter
		notifier  *notify.Notifier
		ctx       context.Context
	)

	event := func(senderID int64, content string) syncer.PushEvent {
		return syncer.PushEvent{
			ConversationID: conversationID,
			Message: model.Message{
				ID:             7,
				ConversationID: conversationID,
				SenderID:       senderID,
				Content:        content,
				Kind:           model.MessageKindText,
				CreatedAt:      time.Now(),
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		gate = syncer.NewGate()
		presenter = &mockPresenter{}
		notifier = notify.New(gate, presenter, viewerID)
	})

	It("should present a banner for a counterpart message off screen", func() {
		notifier.HandleMessage(ctx, event(counterpartID, "is it still for sale?"))

		Expect(presenter.banners).To(HaveLen(1))
		Expect(presenter.banners[0].ConversationID).To(Equal(conversationID))
		Expect(presenter.banners[0].Body).To(Equal("is it still for sale?"))
	})

	It("should suppress the banner while the conversation is on screen", func() {
		gate.SetActive(conversationID)

		notifier.HandleMessage(ctx, event(counterpartID, "hello"))

		Expect(presenter.banners).To(BeEmpty())
	})

	It("should present again once the conversation leaves the screen", func() {
		gate.SetActive(conversationID)
		notifier.HandleMessage(ctx, event(counterpartID, "seen live"))
		gate.Clear()
		notifier.HandleMessage(ctx, event(counterpartID, "after dismissal"))

		Expect(presenter.banners).To(HaveLen(1))
		Expect(presenter.banners[0].Body).To(Equal("after dismissal"))
	})

	It("should not suppress for a different active conversation", func() {
		gate.SetActive(conversationID + 1)

		notifier.HandleMessage(ctx, event(counterpartID, "other thread open"))

		Expect(presenter.banners).To(HaveLen(1))
	})

	It("should never banner the viewer's own messages", func() {
		notifier.HandleMessage(ctx, event(viewerID, "my own send"))

		Expect(presenter.banners).To(BeEmpty())
	})

	It("should use the photo placeholder for image messages", func() {
		ev := event(counterpartID, "")
		ev.Message.Kind = model.MessageKindImage

		notifier.HandleMessage(ctx, ev)

		Expect(presenter.banners).To(HaveLen(1))
		Expect(presenter.banners[0].Body).To(Equal("[photo]"))
	})

	It("should truncate a long preview", func() {
		notifier.HandleMessage(ctx, event(counterpartID, strings.Repeat("a", 500)))

		Expect(presenter.banners).To(HaveLen(1))
		Expect(len(presenter.banners[0].Body)).To(BeNumerically("<=", 123))
	})
})
