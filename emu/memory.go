// Package emu provides the architectural state of the MIPS datapath: the
// byte-addressable memory, the register file, and the ALU.
package emu

import (
	"errors"
	"fmt"
	"io"
)

// DefaultCapacity is the default memory size in bytes (one 4KB page).
const DefaultCapacity = 4 * 1024

// ErrOutOfBounds is returned when an access falls outside memory.
var ErrOutOfBounds = errors.New("memory access out of bounds")

// Memory is a fixed-capacity, zero-initialized, byte-addressable store.
// Words are big-endian: the most significant byte is at the lowest address.
type Memory struct {
	data []byte
}

// MemoryOption is a functional option for configuring Memory.
type MemoryOption func(*Memory)

// WithCapacity sets the memory size in bytes.
func WithCapacity(capacity int) MemoryOption {
	return func(m *Memory) {
		m.data = make([]byte, capacity)
	}
}

// NewMemory creates a zeroed memory of DefaultCapacity bytes unless
// overridden by WithCapacity.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{}
	for _, opt := range opts {
		opt(m)
	}
	if m.data == nil {
		m.data = make([]byte, DefaultCapacity)
	}
	return m
}

// Capacity returns the memory size in bytes.
func (m *Memory) Capacity() uint64 {
	return uint64(len(m.data))
}

func (m *Memory) check(addr, size uint64) error {
	if addr >= m.Capacity() || size > m.Capacity()-addr {
		return fmt.Errorf("%w: address 0x%X size %d capacity %d",
			ErrOutOfBounds, addr, size, m.Capacity())
	}
	return nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// LoadWord reads the big-endian 32-bit word at addr. All four bytes must be
// in bounds (addr+3 < capacity). No alignment is enforced.
func (m *Memory) LoadWord(addr uint64) (uint32, error) {
	if err := m.check(addr, 4); err != nil {
		return 0, err
	}

	var word uint32
	word |= uint32(m.data[addr]) << 24
	word |= uint32(m.data[addr+1]) << 16
	word |= uint32(m.data[addr+2]) << 8
	word |= uint32(m.data[addr+3])

	return word, nil
}

// StoreWord writes a 32-bit word big-endian at addr, with the same bounds
// contract as LoadWord. Nothing is written when the range is out of bounds.
func (m *Memory) StoreWord(addr uint64, word uint32) error {
	if err := m.check(addr, 4); err != nil {
		return err
	}

	m.data[addr] = byte(word >> 24)
	m.data[addr+1] = byte(word >> 16)
	m.data[addr+2] = byte(word >> 8)
	m.data[addr+3] = byte(word)

	return nil
}

// LoadProgram copies program bytes into memory starting at addr.
func (m *Memory) LoadProgram(addr uint64, program []byte) error {
	if len(program) == 0 {
		return nil
	}
	if err := m.check(addr, uint64(len(program))); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}

	copy(m.data[addr:], program)
	return nil
}

// LoadWords stores consecutive words starting at addr.
func (m *Memory) LoadWords(addr uint64, words []uint32) error {
	if len(words) == 0 {
		return nil
	}
	if err := m.check(addr, uint64(len(words))*4); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}

	for i, w := range words {
		if err := m.StoreWord(addr+uint64(i)*4, w); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the bytes in [from, to) in binary, one word per line, each
// line prefixed with its decimal address:
//
//	0000   00000001 00101001 01001000 00100000
func (m *Memory) Dump(w io.Writer, from, to uint64) error {
	if to > m.Capacity() {
		to = m.Capacity()
	}
	from &^= 3

	for addr := from; addr < to; addr += 4 {
		if _, err := fmt.Fprintf(w, "%04d  ", addr); err != nil {
			return err
		}
		for i := addr; i < addr+4 && i < to; i++ {
			if _, err := fmt.Fprintf(w, " %08b", m.data[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
