package sync_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	syncer "tradepost.app/messenger/internal/sync"
)

var _ = Describe("Gate", func() {
	var gate *syncer.Gate

	BeforeEach(func() {
		gate = syncer.NewGate()
	})

	It("should start with no active conversation", func() {
		_, ok := gate.Active()
		Expect(ok).To(BeFalse())
		Expect(gate.IsActive(1)).To(BeFalse())
	})

	It("should report the active conversation after SetActive", func() {
		gate.SetActive(42)

		Expect(gate.IsActive(42)).To(BeTrue())
		Expect(gate.IsActive(43)).To(BeFalse())

		active, ok := gate.Active()
		Expect(ok).To(BeTrue())
		Expect(active).To(Equal(int64(42)))
	})

	It("should replace the active conversation on a direct switch", func() {
		gate.SetActive(42)
		gate.SetActive(99)

		Expect(gate.IsActive(42)).To(BeFalse())
		Expect(gate.IsActive(99)).To(BeTrue())
	})

	It("should report nothing active after Clear", func() {
		gate.SetActive(42)
		gate.Clear()

		Expect(gate.IsActive(42)).To(BeFalse())
		_, ok := gate.Active()
		Expect(ok).To(BeFalse())
	})
})
