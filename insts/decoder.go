package insts

import "fmt"

// Opcode values (bits [31:26]).
const (
	// OpcodeRType selects the register-register class; the operation is
	// carried by the function code.
	OpcodeRType uint32 = 0b000000
)

// Function codes (bits [5:0]) for R-type instructions.
const (
	FunctADD  uint32 = 0b100000
	FunctSUB  uint32 = 0b100010
	FunctAND  uint32 = 0b100100
	FunctOR   uint32 = 0b100101
	FunctSLT  uint32 = 0b101010
	FunctSLTU uint32 = 0b101011
)

// Fields holds the bit fields of a decoded instruction word.
//
// Imm overlaps Rd, Shamt and Funct in the encoding. The opcode selects which
// interpretation the datapath acts on.
type Fields struct {
	Opcode uint32 // bits [31:26]
	Rs     uint32 // bits [25:21]
	Rt     uint32 // bits [20:16]
	Rd     uint32 // bits [15:11]
	Shamt  uint32 // bits [10:6]
	Funct  uint32 // bits [5:0]
	Imm    uint32 // bits [15:0]
}

// Decode partitions a 32-bit instruction word into its bit fields.
func Decode(word uint32) Fields {
	return Fields{
		Opcode: (word >> 26) & 0b111111,
		Rs:     (word >> 21) & 0b11111,
		Rt:     (word >> 16) & 0b11111,
		Rd:     (word >> 11) & 0b11111,
		Shamt:  (word >> 6) & 0b11111,
		Funct:  word & 0b111111,
		Imm:    word & 0xFFFF,
	}
}

// SignExtend16 widens the low 16 bits of imm to 64 bits. If bit 15 is clear
// the value is zero-extended, otherwise the upper 48 bits are filled with ones.
func SignExtend16(imm uint32) uint64 {
	imm &= 0xFFFF
	if imm&0x8000 == 0 {
		return uint64(imm)
	}
	return uint64(imm) | 0xFFFF_FFFF_FFFF_0000
}

// EncodeR builds an R-type instruction word (opcode 0).
func EncodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return OpcodeRType<<26 |
		(rs&0b11111)<<21 |
		(rt&0b11111)<<16 |
		(rd&0b11111)<<11 |
		(shamt&0b11111)<<6 |
		funct&0b111111
}

var functMnemonics = map[uint32]string{
	FunctADD:  "add",
	FunctSUB:  "sub",
	FunctAND:  "and",
	FunctOR:   "or",
	FunctSLT:  "slt",
	FunctSLTU: "sltu",
}

// Mnemonic returns assembly text for a supported instruction, or "unknown".
func Mnemonic(f Fields) string {
	if f.Opcode != OpcodeRType {
		return "unknown"
	}

	name, ok := functMnemonics[f.Funct]
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s $%s, $%s, $%s", name,
		RegisterName(int(f.Rd)), RegisterName(int(f.Rs)), RegisterName(int(f.Rt)))
}
