package insts

import (
	"strconv"
	"strings"
)

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 32

// PCName is the reserved name of the program counter.
const PCName = "pc"

// registerNames lists the MIPS ABI mnemonics by register index.
var registerNames = [NumRegisters]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var registerIndex = func() map[string]int {
	m := make(map[string]int, NumRegisters+1)
	for i, name := range registerNames {
		m[name] = i
	}
	m["s8"] = 30
	return m
}()

// RegisterName returns the ABI mnemonic of a register index, or "" if the
// index is out of range.
func RegisterName(index int) string {
	if index < 0 || index >= NumRegisters {
		return ""
	}
	return registerNames[index]
}

// RegisterIndex resolves a register name to its index. It accepts ABI
// mnemonics ("t1"), "$"-prefixed forms ("$t1", "$9") and plain decimal
// indices ("9"). The program counter is not a general-purpose register and
// is reported as not found; see PCName.
func RegisterIndex(name string) (int, bool) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "$"))

	if i, ok := registerIndex[name]; ok {
		return i, true
	}

	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= NumRegisters {
		return 0, false
	}

	return i, true
}
