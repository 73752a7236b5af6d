package datapath

import "github.com/sarchlab/mipsim/insts"

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister struct {
	// Valid indicates if this register contains valid data.
	Valid bool

	// PC is the program counter of the fetched instruction.
	PC uint64

	// Instruction is the raw 32-bit instruction word.
	Instruction uint32
}

// Clear resets the IF/ID register to empty state.
func (r *IFIDRegister) Clear() {
	*r = IFIDRegister{}
}

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister struct {
	// Valid indicates if this register contains valid data.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint64

	// Fields are the decoded bit fields.
	Fields insts.Fields

	// SignExtended is the sign-extended immediate.
	SignExtended uint64

	// Register values read from the register file.
	ReadData1 uint64
	ReadData2 uint64

	// Signals is the control signal bundle for this instruction.
	Signals insts.ControlSignals

	// ALUControl is the resolved ALU operation.
	ALUControl insts.ALUControl
}

// Clear resets the ID/EX register to empty state.
func (r *IDEXRegister) Clear() {
	*r = IDEXRegister{}
}

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister struct {
	// Valid indicates if this register contains valid data.
	Valid bool

	// ALU result (address for load/store, result for ALU ops).
	ALUResult uint64

	// StoreValue is the data written by a store.
	StoreValue uint64

	// Destination register number, already selected by RegDst.
	Dest uint32

	// Control signals (propagated from ID/EX).
	MemRead     insts.MemRead
	MemWrite    insts.MemWrite
	MemWriteSrc insts.MemWriteSrc
	MemToReg    insts.MemToReg
	RegWrite    insts.RegWrite
}

// Clear resets the EX/MEM register to empty state.
func (r *EXMEMRegister) Clear() {
	*r = EXMEMRegister{}
}

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister struct {
	// Valid indicates if this register contains valid data.
	Valid bool

	// ALU result (for ALU instructions).
	ALUResult uint64

	// Data read from memory (for load instructions).
	MemData uint64

	// Destination register number.
	Dest uint32

	// Control signals.
	MemToReg insts.MemToReg
	RegWrite insts.RegWrite
}

// Clear resets the MEM/WB register to empty state.
func (r *MEMWBRegister) Clear() {
	*r = MEMWBRegister{}
}
