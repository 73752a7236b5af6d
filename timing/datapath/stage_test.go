package datapath_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/timing/datapath"
)

var _ = Describe("Stage", func() {
	DescribeTable("Next",
		func(s, want datapath.Stage) {
			Expect(s.Next()).To(Equal(want))
		},
		Entry("IF -> ID", datapath.StageFetch, datapath.StageDecode),
		Entry("ID -> EX", datapath.StageDecode, datapath.StageExecute),
		Entry("EX -> MEM", datapath.StageExecute, datapath.StageMemoryAccess),
		Entry("MEM -> WB", datapath.StageMemoryAccess, datapath.StageWriteBack),
		Entry("WB -> IF", datapath.StageWriteBack, datapath.StageFetch),
	)

	It("should return to Fetch after NumStages steps", func() {
		s := datapath.StageFetch
		for i := 0; i < datapath.NumStages; i++ {
			s = s.Next()
		}
		Expect(s).To(Equal(datapath.StageFetch))
	})

	It("should start at Fetch", func() {
		var s datapath.Stage
		Expect(s).To(Equal(datapath.StageFetch))
		Expect(s.String()).To(Equal("IF"))
	})
})
