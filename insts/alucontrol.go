package insts

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFunct is returned when a function code has no ALU operation.
var ErrUnsupportedFunct = errors.New("unsupported function code")

// ALUControl is a concrete operation performed by the ALU.
type ALUControl uint8

// Concrete ALU operations.
const (
	ALUAdd ALUControl = iota
	ALUSub
	ALUSetLessThanSigned
	ALUSetLessThanUnsigned
	ALUAnd
	ALUOr
	ALUShiftLeft16 // ignores the first operand
	ALUNot         // ignores the second operand
)

var functALUControl = map[uint32]ALUControl{
	FunctADD:  ALUAdd,
	FunctSUB:  ALUSub,
	FunctAND:  ALUAnd,
	FunctOR:   ALUOr,
	FunctSLT:  ALUSetLessThanSigned,
	FunctSLTU: ALUSetLessThanUnsigned,
}

// ResolveALUControl maps an ALU operation class to a concrete operation.
// funct is consulted only for ALUOpUseFunctField.
func ResolveALUControl(op ALUOp, funct uint32) (ALUControl, error) {
	switch op {
	case ALUOpAddition:
		return ALUAdd, nil
	case ALUOpSubtraction:
		return ALUSub, nil
	case ALUOpSetOnLessThanSigned:
		return ALUSetLessThanSigned, nil
	case ALUOpSetOnLessThanUnsigned:
		return ALUSetLessThanUnsigned, nil
	case ALUOpAnd:
		return ALUAnd, nil
	case ALUOpOr:
		return ALUOr, nil
	case ALUOpLeftShift16:
		return ALUShiftLeft16, nil
	case ALUOpNot:
		return ALUNot, nil
	case ALUOpUseFunctField:
		ctrl, ok := functALUControl[funct]
		if !ok {
			return 0, fmt.Errorf("%w: 0b%06b", ErrUnsupportedFunct, funct)
		}
		return ctrl, nil
	default:
		return 0, fmt.Errorf("unknown ALU operation class %d", uint8(op))
	}
}

func (c ALUControl) String() string {
	switch c {
	case ALUAdd:
		return "add"
	case ALUSub:
		return "sub"
	case ALUSetLessThanSigned:
		return "slt"
	case ALUSetLessThanUnsigned:
		return "sltu"
	case ALUAnd:
		return "and"
	case ALUOr:
		return "or"
	case ALUShiftLeft16:
		return "sll16"
	case ALUNot:
		return "not"
	default:
		return fmt.Sprintf("ALUControl(%d)", uint8(c))
	}
}
