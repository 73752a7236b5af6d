package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/insts"
)

var _ = Describe("Registers", func() {
	DescribeTable("RegisterIndex",
		func(name string, want int) {
			i, ok := insts.RegisterIndex(name)
			Expect(ok).To(BeTrue())
			Expect(i).To(Equal(want))
		},
		Entry("zero", "zero", 0),
		Entry("t1", "t1", 9),
		Entry("dollar form", "$t1", 9),
		Entry("upper case", "$T1", 9),
		Entry("numeric", "$9", 9),
		Entry("bare numeric", "31", 31),
		Entry("s8 alias", "s8", 30),
		Entry("ra", "ra", 31),
	)

	It("should not resolve unknown names", func() {
		for _, name := range []string{"", "t10", "$32", "-1", "pc", "x1"} {
			_, ok := insts.RegisterIndex(name)
			Expect(ok).To(BeFalse(), name)
		}
	})

	It("should name registers by index", func() {
		Expect(insts.RegisterName(0)).To(Equal("zero"))
		Expect(insts.RegisterName(29)).To(Equal("sp"))
		Expect(insts.RegisterName(32)).To(BeEmpty())
		Expect(insts.RegisterName(-1)).To(BeEmpty())
	})
})
