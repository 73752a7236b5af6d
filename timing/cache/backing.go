package cache

import (
	"github.com/sarchlab/mipsim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory. Bytes past the end of memory
// read as zero; the datapath reports the out-of-bounds fetch itself.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.Read8(addr + uint64(i))
		if err != nil {
			break
		}
		data[i] = b
	}
	return data
}
