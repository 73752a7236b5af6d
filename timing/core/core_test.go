package core_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/cache"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/timing/datapath"
	"github.com/sarchlab/mipsim/timing/latency"
)

// add $t1, $t1, $t1
var addT1 = insts.EncodeR(9, 9, 9, 0, insts.FunctADD)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		memory *emu.Memory
		dp     *datapath.Datapath
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		memory = emu.NewMemory()
		dp = datapath.NewDatapath(
			datapath.WithMemory(memory),
			datapath.WithLogger(quietLogger()),
		)
		dp.RegFile().GPR[9] = 5
	})

	newCore := func(opts ...core.Option) *core.Core {
		opts = append([]core.Option{core.WithLogger(quietLogger())}, opts...)
		return core.NewCore("Core", engine, core.DefaultFreq, dp, opts...)
	}

	It("should not be halted initially", func() {
		c := newCore()
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Err()).NotTo(HaveOccurred())
		Expect(c.Stats()).To(Equal(core.Stats{}))
	})

	It("should take one cycle per stage with default latencies", func() {
		Expect(memory.LoadWords(0, []uint32{addT1})).To(Succeed())
		c := newCore(core.WithHaltPC(4))

		Expect(c.RunCycles(4)).To(BeTrue())
		Expect(dp.Stage()).To(Equal(datapath.StageWriteBack))
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(5)))

		Expect(c.RunCycles(1)).To(BeTrue())
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(10)))
		Expect(dp.RegFile().PC).To(Equal(uint64(4)))

		Expect(c.Tick()).To(BeFalse())
		Expect(c.Halted()).To(BeTrue())

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(5)))
		Expect(stats.Instructions).To(Equal(uint64(1)))
		Expect(stats.Stalls).To(BeZero())
		Expect(stats.CPI()).To(BeNumerically("==", 5))
	})

	It("should run on the engine until the halt PC", func() {
		Expect(memory.LoadWords(0, []uint32{addT1, addT1, addT1})).To(Succeed())
		c := newCore(core.WithHaltPC(12))

		Expect(c.Run()).To(Succeed())

		Expect(c.Halted()).To(BeTrue())
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(40)))
		Expect(c.Stats().Instructions).To(Equal(uint64(3)))
		Expect(c.Stats().Cycles).To(Equal(uint64(15)))
	})

	It("should stop after the instruction limit", func() {
		Expect(memory.LoadWords(0, []uint32{addT1, addT1})).To(Succeed())
		c := newCore(core.WithMaxInstructions(1))

		Expect(c.Run()).To(Succeed())

		Expect(c.Stats().Instructions).To(Equal(uint64(1)))
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(10)))
		Expect(dp.RegFile().PC).To(Equal(uint64(4)))
	})

	It("should stall for multi-cycle stages", func() {
		Expect(memory.LoadWords(0, []uint32{addT1})).To(Succeed())
		config := latency.DefaultTimingConfig()
		config.ExecuteLatency = 3
		c := newCore(
			core.WithHaltPC(4),
			core.WithLatencyTable(latency.NewTableWithConfig(config)),
		)

		Expect(c.RunCycles(3)).To(BeTrue())
		Expect(dp.Stage()).To(Equal(datapath.StageExecute))
		Expect(c.RunCycles(2)).To(BeTrue())
		Expect(dp.Stage()).To(Equal(datapath.StageMemoryAccess))

		Expect(c.Run()).To(Succeed())
		Expect(c.Stats().Cycles).To(Equal(uint64(7)))
		Expect(c.Stats().Stalls).To(Equal(uint64(2)))
	})

	It("should charge fetches through the instruction cache", func() {
		Expect(memory.LoadWords(0, []uint32{addT1, addT1})).To(Succeed())
		icache := cache.New(cache.DefaultConfig(), cache.NewMemoryBacking(memory))
		c := newCore(core.WithHaltPC(8), core.WithICache(icache))

		Expect(c.Run()).To(Succeed())

		stats := c.Stats()
		Expect(stats.ICacheMisses).To(Equal(uint64(1)))
		Expect(stats.ICacheHits).To(Equal(uint64(1)))
		Expect(stats.Cycles).To(Equal(uint64(10 + 4 + 1 + 4)))
		Expect(stats.Stalls).To(Equal(uint64(9)))
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(20)))
	})

	It("should halt with the fault on an unsupported instruction", func() {
		// addi $t0, $zero, 1
		Expect(memory.LoadWords(0, []uint32{0x20080001})).To(Succeed())
		c := newCore(core.WithHaltPC(4))

		err := c.Run()

		Expect(err).To(MatchError(insts.ErrUnsupportedOpcode))
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Err()).To(MatchError(insts.ErrUnsupportedOpcode))
		Expect(dp.Stage()).To(Equal(datapath.StageDecode))
		Expect(c.Stats().Instructions).To(BeZero())
	})

	It("should run again after reset", func() {
		Expect(memory.LoadWords(0, []uint32{addT1})).To(Succeed())
		c := newCore(core.WithHaltPC(4))
		Expect(c.Run()).To(Succeed())

		dp.RegFile().PC = 0
		c.Reset()
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Stats()).To(Equal(core.Stats{}))

		Expect(c.RunCycles(5)).To(BeTrue())
		Expect(dp.RegFile().GPR[9]).To(Equal(uint64(20)))
	})
})
