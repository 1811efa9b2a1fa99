package id_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/common/id"
)

var _ = Describe("id", func() {
	BeforeEach(func() {
		Expect(id.Init(1)).To(Succeed())
	})

	It("should mint positive ids, clear of the provisional range", func() {
		for i := 0; i < 100; i++ {
			Expect(id.New()).To(BeNumerically(">", 0))
		}
	})

	It("should mint strictly increasing ids on one node", func() {
		prev := id.New()
		for i := 0; i < 100; i++ {
			next := id.New()
			Expect(next).To(BeNumerically(">", prev))
			prev = next
		}
	})

	It("should ignore re-initialization", func() {
		Expect(id.Init(2)).To(Succeed())
		Expect(id.New()).To(BeNumerically(">", 0))
	})
})
