package emu

import (
	"strings"

	"github.com/sarchlab/mipsim/insts"
)

// RegFile represents the MIPS register file.
// It contains 32 general-purpose 64-bit registers and the program counter.
type RegFile struct {
	// GPR holds general-purpose registers $0-$31.
	// $0 is an ordinary register here; writes to it are kept.
	GPR [insts.NumRegisters]uint64

	// PC is the program counter.
	PC uint64
}

// ReadReg reads a register by index. Indices >= 32 return 0.
func (r *RegFile) ReadReg(reg uint32) uint64 {
	if reg >= insts.NumRegisters {
		return 0
	}
	return r.GPR[reg]
}

// WriteReg writes a register by index. Writes to indices >= 32 are ignored.
func (r *RegFile) WriteReg(reg uint32, value uint64) {
	if reg >= insts.NumRegisters {
		return
	}
	r.GPR[reg] = value
}

// Lookup reads a register by name: an ABI mnemonic, a "$"-prefixed or
// numeric form, or "pc". It reports false for unrecognized names.
func (r *RegFile) Lookup(name string) (uint64, bool) {
	if isPC(name) {
		return r.PC, true
	}

	i, ok := insts.RegisterIndex(name)
	if !ok {
		return 0, false
	}
	return r.GPR[i], true
}

// Set writes a register by name. It reports false for unrecognized names.
func (r *RegFile) Set(name string, value uint64) bool {
	if isPC(name) {
		r.PC = value
		return true
	}

	i, ok := insts.RegisterIndex(name)
	if !ok {
		return false
	}
	r.GPR[i] = value
	return true
}

func isPC(name string) bool {
	name = strings.TrimPrefix(strings.TrimSpace(name), "$")
	return strings.EqualFold(name, insts.PCName)
}
