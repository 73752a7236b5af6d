package datapath

import (
	"errors"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

// ErrUnsupportedWriteSource is returned when a store selects a data source
// the datapath does not model.
var ErrUnsupportedWriteSource = errors.New("unsupported memory write source")

// FetchStage handles instruction fetch from memory.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch reads the instruction at the given PC.
func (s *FetchStage) Fetch(pc uint64) (IFIDRegister, error) {
	word, err := s.memory.LoadWord(pc)
	if err != nil {
		return IFIDRegister{}, err
	}

	return IFIDRegister{
		Valid:       true,
		PC:          pc,
		Instruction: word,
	}, nil
}

// DecodeStage handles instruction decode, control and register read.
type DecodeStage struct {
	regFile *emu.RegFile
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile}
}

// Decode splits the instruction into fields, sign-extends the immediate,
// generates control signals, reads both source registers and resolves the
// ALU operation. The returned register replaces the previous one entirely.
func (s *DecodeStage) Decode(ifid *IFIDRegister) (IDEXRegister, error) {
	fields := insts.Decode(ifid.Instruction)

	signals, err := insts.GenerateSignals(fields.Opcode)
	if err != nil {
		return IDEXRegister{}, err
	}

	aluControl, err := insts.ResolveALUControl(signals.ALUOp, fields.Funct)
	if err != nil {
		return IDEXRegister{}, err
	}

	return IDEXRegister{
		Valid:        true,
		PC:           ifid.PC,
		Fields:       fields,
		SignExtended: insts.SignExtend16(fields.Imm),
		ReadData1:    s.regFile.ReadReg(fields.Rs),
		ReadData2:    s.regFile.ReadReg(fields.Rt),
		Signals:      signals,
		ALUControl:   aluControl,
	}, nil
}

// ExecuteStage handles ALU operations.
type ExecuteStage struct {
	alu *emu.ALU
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(alu *emu.ALU) *ExecuteStage {
	return &ExecuteStage{alu: alu}
}

// Execute runs the ALU on the first register value and the operand chosen
// by ALUSrc, and selects the destination register.
func (s *ExecuteStage) Execute(idex *IDEXRegister) EXMEMRegister {
	op2 := idex.ReadData2
	if idex.Signals.ALUSrc == insts.ALUSrcExtendedImmediate {
		op2 = idex.SignExtended
	}

	dest := idex.Fields.Rt
	if idex.Signals.RegDst == insts.RegDstRd {
		dest = idex.Fields.Rd
	}

	return EXMEMRegister{
		Valid:       true,
		ALUResult:   s.alu.Execute(idex.ALUControl, idex.ReadData1, op2),
		StoreValue:  idex.ReadData2,
		Dest:        dest,
		MemRead:     idex.Signals.MemRead,
		MemWrite:    idex.Signals.MemWrite,
		MemWriteSrc: idex.Signals.MemWriteSrc,
		MemToReg:    idex.Signals.MemToReg,
		RegWrite:    idex.Signals.RegWrite,
	}
}

// MemoryStage handles data memory reads and writes.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Access performs the memory read or write enabled by the control signals.
// For register-register instructions neither is enabled and it only passes
// values through.
func (s *MemoryStage) Access(exmem *EXMEMRegister) (MEMWBRegister, error) {
	result := MEMWBRegister{
		Valid:     true,
		ALUResult: exmem.ALUResult,
		Dest:      exmem.Dest,
		MemToReg:  exmem.MemToReg,
		RegWrite:  exmem.RegWrite,
	}

	if exmem.MemRead == insts.MemReadYes {
		word, err := s.memory.LoadWord(exmem.ALUResult)
		if err != nil {
			return MEMWBRegister{}, err
		}
		result.MemData = uint64(word)
	}

	if exmem.MemWrite == insts.MemWriteYes {
		if exmem.MemWriteSrc != insts.MemWriteSrcPrimaryUnit {
			return MEMWBRegister{}, ErrUnsupportedWriteSource
		}
		if err := s.memory.StoreWord(exmem.ALUResult, uint32(exmem.StoreValue)); err != nil {
			return MEMWBRegister{}, err
		}
	}

	return result, nil
}

// WritebackStage handles register file writeback and the PC update.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback selects the value to commit, writes it if RegWrite is set, and
// advances the PC by 4. It returns the selected value.
func (s *WritebackStage) Writeback(memwb *MEMWBRegister) uint64 {
	value := memwb.ALUResult
	if memwb.MemToReg == insts.MemToRegUseMemory {
		value = memwb.MemData
	}

	if memwb.RegWrite == insts.RegWriteYes {
		s.regFile.WriteReg(memwb.Dest, value)
	}

	s.regFile.PC += 4

	return value
}
