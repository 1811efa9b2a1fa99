package config_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradepost.app/messenger/core/config"
)

var _ = Describe("Load", func() {
	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	BeforeEach(func() {
		setenv("MESSENGER_ENV", "production")
	})

	It("should default the snowflake node id to 1", func() {
		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NodeID).To(Equal(int64(1)))
	})

	It("should read the snowflake node id from the environment", func() {
		setenv("SNOWFLAKE_NODE_ID", "7")

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NodeID).To(Equal(int64(7)))
	})

	It("should fall back on an unparsable node id", func() {
		setenv("SNOWFLAKE_NODE_ID", "not-a-number")

		cfg, err := config.Load(config.ServiceTypeServer)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NodeID).To(Equal(int64(1)))
	})

	It("should require an auth token for the client service", func() {
		Expect(os.Unsetenv("MESSENGER_AUTH_TOKEN")).To(Succeed())

		_, err := config.Load(config.ServiceTypeClient)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("MESSENGER_AUTH_TOKEN"))
	})

	It("should accept a client config with a token", func() {
		setenv("MESSENGER_AUTH_TOKEN", "token-1")

		cfg, err := config.Load(config.ServiceTypeClient)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Client.AuthToken).To(Equal("token-1"))
	})
})
