package sync_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/internal/model"
	syncer "tradepost.app/messenger/internal/sync"
)

var _ = Describe("ConversationIndex", func() {
	const viewerID = int64(1)

	var (
		index   *syncer.ConversationIndex
		backend *mockBackend
		ctx     context.Context
		base    time.Time
	)

	conversation := func(id int64, title string, sellerID int64, counterpart string, lastAt *time.Time) model.Conversation {
		buyerID := viewerID
		if sellerID == viewerID {
			buyerID = sellerID + 100
		}
		return model.Conversation{
			ID:              id,
			ProductID:       id * 10,
			ProductTitle:    title,
			BuyerID:         buyerID,
			SellerID:        sellerID,
			CounterpartName: counterpart,
			LastMessageAt:   lastAt,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		backend = &mockBackend{}
		index = syncer.NewConversationIndex(viewerID, backend)
		base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	Describe("Rebuild", func() {
		It("should sort by last activity descending with empty conversations last", func() {
			older := base
			newer := base.Add(time.Hour)

			index.Rebuild(ctx, []model.Conversation{
				conversation(1, "Bike", 2, "Ann", &older),
				conversation(2, "Lamp", 3, "Bob", nil),
				conversation(3, "Desk", 4, "Cal", &newer),
			})

			summaries := index.Summaries()
			Expect(summaries).To(HaveLen(3))
			Expect(summaries[0].ID).To(Equal(int64(3)))
			Expect(summaries[1].ID).To(Equal(int64(1)))
			Expect(summaries[2].ID).To(Equal(int64(2)))
		})

		It("should recompute unread counts per conversation", func() {
			backend.countUnreadFn = func(_ context.Context, conversationID, forUser int64) (int, error) {
				Expect(forUser).To(Equal(viewerID))
				if conversationID == 1 {
					return 3, nil
				}
				return 0, nil
			}

			index.Rebuild(ctx, []model.Conversation{
				conversation(1, "Bike", 2, "Ann", &base),
				conversation(2, "Lamp", 3, "Bob", &base),
			})

			summaries := index.Summaries()
			byID := map[int64]model.Conversation{}
			for _, s := range summaries {
				byID[s.ID] = s
			}
			Expect(byID[int64(1)].UnreadCount).To(Equal(3))
			Expect(byID[int64(2)].UnreadCount).To(BeZero())
		})

		It("should keep a zero count when counting fails", func() {
			backend.countUnreadFn = func(_ context.Context, conversationID, _ int64) (int, error) {
				if conversationID == 1 {
					return 0, errors.New("backend unavailable")
				}
				return 5, nil
			}

			index.Rebuild(ctx, []model.Conversation{
				conversation(1, "Bike", 2, "Ann", &base),
				conversation(2, "Lamp", 3, "Bob", &base),
			})

			byID := map[int64]model.Conversation{}
			for _, s := range index.Summaries() {
				byID[s.ID] = s
			}
			Expect(byID[int64(1)].UnreadCount).To(BeZero())
			Expect(byID[int64(2)].UnreadCount).To(Equal(5))
		})
	})

	Describe("ApplyFilter", func() {
		BeforeEach(func() {
			selling := conversation(1, "Road Bike", viewerID, "Ann", &base)
			index.Rebuild(ctx, []model.Conversation{
				selling,
				conversation(2, "Desk Lamp", 3, "Bob", &base),
				conversation(3, "Standing Desk", 4, "Carla", &base),
			})
		})

		It("should include everything for the all segment", func() {
			Expect(index.ApplyFilter(syncer.SegmentAll, "")).To(HaveLen(3))
		})

		It("should split selling and buying by the viewer's role", func() {
			selling := index.ApplyFilter(syncer.SegmentSelling, "")
			Expect(selling).To(HaveLen(1))
			Expect(selling[0].ID).To(Equal(int64(1)))

			buying := index.ApplyFilter(syncer.SegmentBuying, "")
			Expect(buying).To(HaveLen(2))
		})

		It("should match product title case-insensitively", func() {
			out := index.ApplyFilter(syncer.SegmentAll, "desk")
			Expect(out).To(HaveLen(2))
		})

		It("should match counterpart name", func() {
			out := index.ApplyFilter(syncer.SegmentAll, "carla")
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal(int64(3)))
		})

		It("should combine segment and search", func() {
			out := index.ApplyFilter(syncer.SegmentBuying, "desk lamp")
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal(int64(2)))
		})

		It("should not mutate the underlying summaries", func() {
			before := index.Summaries()
			_ = index.ApplyFilter(syncer.SegmentSelling, "bike")
			Expect(index.Summaries()).To(Equal(before))
		})
	})
})
