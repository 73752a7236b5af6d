package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		memory  *emu.Memory
		backing *cache.MemoryBacking
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		backing = cache.NewMemoryBacking(memory)
		// 256B, 2-way, 16B lines: 8 sets
		config := cache.Config{
			Size:          256,
			Associativity: 2,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   10,
		}
		c = cache.New(config, backing)
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			Expect(memory.StoreWord(0x100, 0x01294820)).To(Succeed())

			result := c.Read(0x100, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Data).To(Equal(uint64(0x01294820)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			Expect(memory.StoreWord(0x100, 0xCAFEBABE)).To(Succeed())

			c.Read(0x100, 4)
			result := c.Read(0x100, 4)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(result.Data).To(Equal(uint64(0xCAFEBABE)))
			Expect(c.Stats().HitRate()).To(BeNumerically("==", 0.5))
		})

		It("should hit on different words in the same line", func() {
			Expect(memory.LoadWords(0x200, []uint32{0x11111111, 0x22222222})).To(Succeed())

			c.Read(0x200, 4)
			result := c.Read(0x204, 4)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint64(0x22222222)))
		})

		It("should evict the least recently used way", func() {
			// 0x000, 0x080 and 0x100 all map to set 0.
			c.Read(0x000, 4)
			c.Read(0x080, 4)
			c.Read(0x000, 4)

			result := c.Read(0x100, 4)

			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint64(0x080)))
			Expect(c.Read(0x000, 4).Hit).To(BeTrue())
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})
	})

	Describe("Invalidate", func() {
		It("should force a miss on the next read", func() {
			c.Read(0x40, 4)
			c.Invalidate(0x44)

			Expect(c.Read(0x40, 4).Hit).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should clear lines and statistics", func() {
			c.Read(0x40, 4)
			c.Reset()

			Expect(c.Stats()).To(BeZero())
			Expect(c.Read(0x40, 4).Hit).To(BeFalse())
		})
	})

	Describe("MemoryBacking", func() {
		It("should zero-fill past the end of memory", func() {
			small := emu.NewMemory(emu.WithCapacity(8))
			Expect(small.StoreWord(4, 0xAABBCCDD)).To(Succeed())

			data := cache.NewMemoryBacking(small).Read(4, 8)

			Expect(data).To(Equal([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 0}))
		})
	})

	It("should expose its configuration", func() {
		Expect(c.Config().BlockSize).To(Equal(16))
		Expect(cache.DefaultConfig().Size).To(Equal(1024))
	})
})
