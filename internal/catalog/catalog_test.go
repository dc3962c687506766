package catalog_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marne-tools/status-bot/internal/catalog"
)

var _ = Describe("Catalog", func() {
	Describe("Default", func() {
		It("should know every bf1 and bfv level", func() {
			maps, modes := catalog.Default().Len()
			Expect(maps).To(Equal(62))
			Expect(modes).To(Equal(10))
		})

		It("should resolve display names and artwork", func() {
			c := catalog.Default()
			Expect(c.DisplayName("MP_Amiens")).To(Equal("Amiens"))
			Expect(c.DisplayName("MP_ArcticFjord")).To(Equal("Narvik"))
			Expect(c.ImageURL("MP_Hannut_US")).To(Equal(c.ImageURL("MP_Hannut")))
			Expect(c.ModeShort("BreakthroughLarge0")).To(Equal("OP"))
		})

		It("should fall back for unknown names", func() {
			c := catalog.Default()
			Expect(c.DisplayName("MP_Unreleased")).To(Equal("MP_Unreleased"))
			Expect(c.ImageURL("MP_Unreleased")).To(BeEmpty())
			Expect(c.ModeShort("Unknown0")).To(BeEmpty())
		})
	})

	Describe("InternalMapName", func() {
		DescribeTable("strips the level path",
			func(in, want string) {
				Expect(catalog.InternalMapName(in)).To(Equal(want))
			},
			Entry("full path", "Levels/MP/MP_Amiens/MP_Amiens", "MP_Amiens"),
			Entry("bare name", "MP_Suez", "MP_Suez"),
			Entry("empty", "", ""),
		)
	})

	Describe("Parse", func() {
		It("should reject duplicate maps", func() {
			_, err := catalog.Parse([]byte(`
maps:
  - internal: MP_A
  - internal: MP_A
`))
			Expect(err).To(MatchError(ContainSubstring("duplicate map")))
		})

		It("should reject malformed YAML", func() {
			_, err := catalog.Parse([]byte("maps: ["))
			Expect(err).To(HaveOccurred())
		})
	})
})
