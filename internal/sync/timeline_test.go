package sync_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/internal/model"
	syncer "tradepost.app/messenger/internal/sync"
)

func textMessage(id, conversationID, senderID int64, content string, at time.Time) model.Message {
	return model.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Kind:           model.MessageKindText,
		CreatedAt:      at,
	}
}

var _ = Describe("Timeline", func() {
	var (
		timeline *syncer.Timeline
		base     time.Time
	)

	BeforeEach(func() {
		timeline = syncer.NewTimeline(100)
		base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	Describe("ReplaceAll", func() {
		It("should sort ascending by creation time", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(3, 100, 1, "third", base.Add(2*time.Second)),
				textMessage(1, 100, 2, "first", base),
				textMessage(2, 100, 1, "second", base.Add(time.Second)),
			})

			msgs := timeline.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[0].ID).To(Equal(int64(1)))
			Expect(msgs[1].ID).To(Equal(int64(2)))
			Expect(msgs[2].ID).To(Equal(int64(3)))
		})

		It("should drop a provisional entry on reconciliation", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "hi", base),
			})
			timeline.AppendProvisional(model.NewProvisional(100, 1, "on my way"))
			Expect(timeline.HasProvisional()).To(BeTrue())

			// Server truth after the send confirmed.
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "hi", base),
				textMessage(2, 100, 1, "on my way", base.Add(time.Second)),
			})

			Expect(timeline.Len()).To(Equal(2))
			Expect(timeline.HasProvisional()).To(BeFalse())
		})
	})

	Describe("AppendIfAbsent", func() {
		It("should reject a message whose id is already present", func() {
			msg := textMessage(5, 100, 2, "hello", base)
			Expect(timeline.AppendIfAbsent(msg)).To(BeTrue())
			Expect(timeline.AppendIfAbsent(msg)).To(BeFalse())
			Expect(timeline.Len()).To(Equal(1))
		})

		It("should keep two messages with identical content but different ids", func() {
			Expect(timeline.AppendIfAbsent(textMessage(1, 100, 2, "ok", base))).To(BeTrue())
			Expect(timeline.AppendIfAbsent(textMessage(2, 100, 2, "ok", base.Add(time.Second)))).To(BeTrue())
			Expect(timeline.Len()).To(Equal(2))
		})

		It("should place an out-of-order delivery by creation time", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "first", base),
				textMessage(3, 100, 2, "third", base.Add(2*time.Second)),
			})

			Expect(timeline.AppendIfAbsent(textMessage(2, 100, 1, "second", base.Add(time.Second)))).To(BeTrue())

			msgs := timeline.Messages()
			Expect(msgs[0].ID).To(Equal(int64(1)))
			Expect(msgs[1].ID).To(Equal(int64(2)))
			Expect(msgs[2].ID).To(Equal(int64(3)))
		})

		It("should survive the same message arriving via both delivery paths", func() {
			pushCopy := textMessage(7, 100, 2, "dupe", base)
			pollCopy := textMessage(7, 100, 2, "dupe", base)

			Expect(timeline.AppendIfAbsent(pushCopy)).To(BeTrue())
			Expect(timeline.AppendIfAbsent(pollCopy)).To(BeFalse())
			Expect(timeline.Len()).To(Equal(1))
		})
	})

	Describe("Remove", func() {
		It("should remove a provisional entry by id", func() {
			provisional := model.NewProvisional(100, 1, "oops")
			timeline.AppendProvisional(provisional)

			Expect(timeline.Remove(provisional.ID)).To(BeTrue())
			Expect(timeline.Len()).To(BeZero())
			Expect(timeline.HasProvisional()).To(BeFalse())
		})

		It("should remove the provisional even when deliveries landed after it", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "earlier", base),
			})
			provisional := model.NewProvisional(100, 1, "in flight")
			timeline.AppendProvisional(provisional)
			Expect(timeline.AppendIfAbsent(textMessage(2, 100, 2, "meanwhile", provisional.CreatedAt.Add(time.Second)))).To(BeTrue())

			Expect(timeline.Remove(provisional.ID)).To(BeTrue())

			msgs := timeline.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].ID).To(Equal(int64(1)))
			Expect(msgs[1].ID).To(Equal(int64(2)))
			Expect(timeline.HasProvisional()).To(BeFalse())
		})

		It("should refuse to remove a confirmed entry", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "confirmed", base),
			})
			Expect(timeline.Remove(1)).To(BeFalse())
			Expect(timeline.Len()).To(Equal(1))
		})

		It("should report an unknown id", func() {
			Expect(timeline.Remove(-42)).To(BeFalse())
		})

		It("should allow re-adding the removed message's content afterwards", func() {
			provisional := model.NewProvisional(100, 1, "retry me")
			timeline.AppendProvisional(provisional)
			Expect(timeline.Remove(provisional.ID)).To(BeTrue())

			timeline.AppendProvisional(model.NewProvisional(100, 1, "retry me"))
			Expect(timeline.Len()).To(Equal(1))
		})
	})

	Describe("Messages", func() {
		It("should return a copy callers cannot mutate through", func() {
			timeline.ReplaceAll([]model.Message{
				textMessage(1, 100, 2, "original", base),
			})

			snapshot := timeline.Messages()
			snapshot[0].Content = "mutated"

			Expect(timeline.Messages()[0].Content).To(Equal("original"))
		})
	})
})
