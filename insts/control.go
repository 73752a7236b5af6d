package insts

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOpcode is returned when no control signal bundle is defined
// for an opcode.
var ErrUnsupportedOpcode = errors.New("unsupported opcode")

// ALUOp is the ALU operation class selected by the control unit.
type ALUOp uint8

// ALU operation classes.
const (
	ALUOpAddition ALUOp = iota
	ALUOpSubtraction
	ALUOpSetOnLessThanSigned
	ALUOpSetOnLessThanUnsigned
	ALUOpAnd
	ALUOpOr
	ALUOpLeftShift16
	ALUOpNot
	ALUOpUseFunctField // derive the operation from the function code
)

// ALUSrc selects the second ALU operand.
type ALUSrc uint8

// ALU second operand sources.
const (
	ALUSrcReadRegister2 ALUSrc = iota
	ALUSrcExtendedImmediate
)

// Branch enables conditional branching.
type Branch uint8

// Branch settings.
const (
	BranchNo Branch = iota
	BranchYes
)

// Jump enables unconditional jumps.
type Jump uint8

// Jump settings.
const (
	JumpNo Jump = iota
	JumpYes
)

// MemRead enables a data memory read in the memory stage.
type MemRead uint8

// Memory read settings.
const (
	MemReadNo MemRead = iota
	MemReadYes
)

// MemToReg selects the value committed in write-back.
type MemToReg uint8

// Write-back sources.
const (
	MemToRegUseALU MemToReg = iota
	MemToRegUseMemory
)

// MemWrite enables a data memory write in the memory stage.
type MemWrite uint8

// Memory write settings.
const (
	MemWriteNo MemWrite = iota
	MemWriteYes
)

// MemWriteSrc selects where store data comes from.
type MemWriteSrc uint8

// Store data sources.
const (
	MemWriteSrcPrimaryUnit MemWriteSrc = iota
	MemWriteSrcFloatingPointUnit
)

// RegDst selects the destination register field.
type RegDst uint8

// Destination register selectors.
const (
	RegDstRt RegDst = iota // second source register field
	RegDstRd               // destination field
)

// RegWrite enables the register file write in write-back.
type RegWrite uint8

// Register write settings.
const (
	RegWriteNo RegWrite = iota
	RegWriteYes
)

// ControlSignals is the bundle of selectors produced by the control unit for
// one instruction.
type ControlSignals struct {
	ALUOp       ALUOp
	ALUSrc      ALUSrc
	Branch      Branch
	Jump        Jump
	MemRead     MemRead
	MemToReg    MemToReg
	MemWrite    MemWrite
	MemWriteSrc MemWriteSrc
	RegDst      RegDst
	RegWrite    RegWrite
}

// GenerateSignals returns the control signal bundle for an opcode. Every
// supported opcode has exactly one explicit bundle; any other opcode yields
// ErrUnsupportedOpcode.
func GenerateSignals(opcode uint32) (ControlSignals, error) {
	switch opcode {
	case OpcodeRType:
		// add, sub, and, or, slt, sltu
		return ControlSignals{
			ALUOp:       ALUOpUseFunctField,
			ALUSrc:      ALUSrcReadRegister2,
			Branch:      BranchNo,
			Jump:        JumpNo,
			MemRead:     MemReadNo,
			MemToReg:    MemToRegUseALU,
			MemWrite:    MemWriteNo,
			MemWriteSrc: MemWriteSrcPrimaryUnit,
			RegDst:      RegDstRd,
			RegWrite:    RegWriteYes,
		}, nil
	default:
		return ControlSignals{}, fmt.Errorf("%w: 0b%06b", ErrUnsupportedOpcode, opcode)
	}
}

func (op ALUOp) String() string {
	switch op {
	case ALUOpAddition:
		return "add"
	case ALUOpSubtraction:
		return "sub"
	case ALUOpSetOnLessThanSigned:
		return "slt"
	case ALUOpSetOnLessThanUnsigned:
		return "sltu"
	case ALUOpAnd:
		return "and"
	case ALUOpOr:
		return "or"
	case ALUOpLeftShift16:
		return "lui"
	case ALUOpNot:
		return "not"
	case ALUOpUseFunctField:
		return "funct"
	default:
		return fmt.Sprintf("ALUOp(%d)", uint8(op))
	}
}

func (s ALUSrc) String() string {
	if s == ALUSrcExtendedImmediate {
		return "imm"
	}
	return "rt"
}

func (d RegDst) String() string {
	if d == RegDstRd {
		return "rd"
	}
	return "rt"
}

func (m MemToReg) String() string {
	if m == MemToRegUseMemory {
		return "mem"
	}
	return "alu"
}
