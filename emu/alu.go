package emu

import "github.com/sarchlab/mipsim/insts"

// ALU implements the datapath's arithmetic and logic operations on 64-bit
// operands. Addition and subtraction wrap around.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute applies op to the two operands. ALUShiftLeft16 uses only the
// second operand and ALUNot only the first.
func (a *ALU) Execute(op insts.ALUControl, op1, op2 uint64) uint64 {
	switch op {
	case insts.ALUAdd:
		return op1 + op2
	case insts.ALUSub:
		return op1 - op2
	case insts.ALUSetLessThanSigned:
		return boolToWord(int64(op1) < int64(op2))
	case insts.ALUSetLessThanUnsigned:
		return boolToWord(op1 < op2)
	case insts.ALUAnd:
		return op1 & op2
	case insts.ALUOr:
		return op1 | op2
	case insts.ALUShiftLeft16:
		return op2 << 16
	case insts.ALUNot:
		return ^op1
	default:
		return 0
	}
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
