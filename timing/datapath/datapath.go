package datapath

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

// ErrHalted is returned by every execution call after a fault. The first
// fault is wrapped alongside it.
var ErrHalted = errors.New("datapath halted")

// StageEvent describes one completed stage.
type StageEvent struct {
	// Cycle is the zero-based index of the stage across the whole run.
	Cycle uint64
	// Stage is the stage that just completed.
	Stage Stage
	// PC is the address of the instruction in flight.
	PC uint64
	// Instruction is the instruction word in flight.
	Instruction uint32
	// ALUResult is the ALU output, valid from Execute on.
	ALUResult uint64
	// Result is the value selected for write-back, valid after WriteBack.
	Result uint64
}

// Observer is notified after every stage that completes without a fault.
type Observer interface {
	OnStage(event StageEvent)
}

// Option is a functional option for configuring the Datapath.
type Option func(*Datapath)

// WithRegFile uses the given register file instead of a fresh one.
func WithRegFile(regFile *emu.RegFile) Option {
	return func(d *Datapath) {
		d.regFile = regFile
	}
}

// WithMemory uses the given memory instead of a fresh default one.
func WithMemory(memory *emu.Memory) Option {
	return func(d *Datapath) {
		d.memory = memory
	}
}

// WithLogger sets the logger used for stage traces and faults.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Datapath) {
		d.logger = logger
	}
}

// WithObserver registers an observer for completed stages.
func WithObserver(observer Observer) Option {
	return func(d *Datapath) {
		d.observers = append(d.observers, observer)
	}
}

// Datapath sequences the five stages of one instruction at a time. It owns
// the latch registers between stages; architectural state lives in the
// register file and memory.
type Datapath struct {
	regFile *emu.RegFile
	memory  *emu.Memory

	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Latch registers
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	// Value committed by the last write-back.
	result uint64

	stage            Stage
	fault            error
	cycleCount       uint64
	instructionCount uint64

	logger    logrus.FieldLogger
	observers []Observer
}

// NewDatapath creates a datapath with zeroed registers and memory unless
// overridden by options.
func NewDatapath(opts ...Option) *Datapath {
	d := &Datapath{}

	for _, opt := range opts {
		opt(d)
	}

	if d.regFile == nil {
		d.regFile = &emu.RegFile{}
	}
	if d.memory == nil {
		d.memory = emu.NewMemory()
	}
	if d.logger == nil {
		d.logger = logrus.StandardLogger()
	}

	d.fetchStage = NewFetchStage(d.memory)
	d.decodeStage = NewDecodeStage(d.regFile)
	d.executeStage = NewExecuteStage(emu.NewALU())
	d.memoryStage = NewMemoryStage(d.memory)
	d.writebackStage = NewWritebackStage(d.regFile)

	return d
}

// RegFile returns the datapath's register file.
func (d *Datapath) RegFile() *emu.RegFile {
	return d.regFile
}

// Memory returns the datapath's memory.
func (d *Datapath) Memory() *emu.Memory {
	return d.memory
}

// LoadProgram copies program into memory at entry and points the PC at it.
func (d *Datapath) LoadProgram(entry uint64, program []byte) error {
	if err := d.memory.LoadProgram(entry, program); err != nil {
		return err
	}
	d.regFile.PC = entry
	return nil
}

// Stage returns the stage that will run next.
func (d *Datapath) Stage() Stage {
	return d.stage
}

// Instruction returns the word latched by the last fetch.
func (d *Datapath) Instruction() uint32 {
	return d.ifid.Instruction
}

// Signals returns the control signals of the instruction in flight.
func (d *Datapath) Signals() insts.ControlSignals {
	return d.idex.Signals
}

// ALUControl returns the resolved ALU operation of the instruction in flight.
func (d *Datapath) ALUControl() insts.ALUControl {
	return d.idex.ALUControl
}

// Fault returns the error that halted the datapath, or nil.
func (d *Datapath) Fault() error {
	return d.fault
}

// InstructionCount returns the number of completed instructions.
func (d *Datapath) InstructionCount() uint64 {
	return d.instructionCount
}

// CycleCount returns the number of completed stages.
func (d *Datapath) CycleCount() uint64 {
	return d.cycleCount
}

// Register returns the committed value of a register by name ("t1", "$9",
// "pc", ...). It reports false for unrecognized names.
func (d *Datapath) Register(name string) (uint64, bool) {
	return d.regFile.Lookup(name)
}

// RegisterByIndex returns the committed value of a general-purpose register.
func (d *Datapath) RegisterByIndex(index int) (uint64, bool) {
	if index < 0 || index >= insts.NumRegisters {
		return 0, false
	}
	return d.regFile.GPR[index], true
}

// Reset returns the datapath to Fetch and clears latches, counters and any
// fault. Registers and memory are kept.
func (d *Datapath) Reset() {
	d.clearLatches()
	d.stage = StageFetch
	d.fault = nil
	d.cycleCount = 0
	d.instructionCount = 0
}

// ExecuteInstruction runs one instruction from Fetch through WriteBack. If a
// previous ExecuteStage call left an instruction in flight, only that
// instruction's remaining stages run.
func (d *Datapath) ExecuteInstruction() error {
	for {
		if err := d.ExecuteStage(); err != nil {
			return err
		}
		if d.stage == StageFetch {
			return nil
		}
	}
}

// ExecuteStage runs the current stage and advances to the next one. On a
// fault the stage does not advance and the datapath halts.
func (d *Datapath) ExecuteStage() error {
	if d.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, d.fault)
	}

	stage := d.stage

	var err error
	switch stage {
	case StageFetch:
		err = d.stageFetch()
	case StageDecode:
		err = d.stageDecode()
	case StageExecute:
		d.stageExecute()
	case StageMemoryAccess:
		err = d.stageMemoryAccess()
	case StageWriteBack:
		d.stageWriteback()
	}

	if err != nil {
		d.fault = fmt.Errorf("%s at pc 0x%X: %w", stage, d.ifid.PC, err)
		d.logger.WithFields(logrus.Fields{
			"stage":       stage.String(),
			"pc":          fmt.Sprintf("0x%X", d.ifid.PC),
			"instruction": fmt.Sprintf("0x%08X", d.ifid.Instruction),
		}).WithError(err).Error("datapath fault")
		return d.fault
	}

	if debugEnabled(d.logger) {
		d.logger.WithFields(logrus.Fields{
			"stage":       stage.String(),
			"pc":          fmt.Sprintf("0x%X", d.ifid.PC),
			"instruction": fmt.Sprintf("0x%08X", d.ifid.Instruction),
		}).Debug("stage complete")
	}

	d.notify(stage)

	d.cycleCount++
	if stage == StageWriteBack {
		d.instructionCount++
	}
	d.stage = stage.Next()

	return nil
}

// debugEnabled reports whether logger emits Debug entries. Loggers of
// unknown type are assumed to.
func debugEnabled(logger logrus.FieldLogger) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	default:
		return true
	}
}

func (d *Datapath) stageFetch() error {
	d.clearLatches()

	ifid, err := d.fetchStage.Fetch(d.regFile.PC)
	if err != nil {
		d.ifid.PC = d.regFile.PC
		return err
	}

	d.ifid = ifid
	return nil
}

func (d *Datapath) stageDecode() error {
	idex, err := d.decodeStage.Decode(&d.ifid)
	if err != nil {
		return err
	}

	d.idex = idex
	return nil
}

func (d *Datapath) stageExecute() {
	d.exmem = d.executeStage.Execute(&d.idex)
}

func (d *Datapath) stageMemoryAccess() error {
	memwb, err := d.memoryStage.Access(&d.exmem)
	if err != nil {
		return err
	}

	d.memwb = memwb
	return nil
}

func (d *Datapath) stageWriteback() {
	d.result = d.writebackStage.Writeback(&d.memwb)
}

func (d *Datapath) clearLatches() {
	d.ifid.Clear()
	d.idex.Clear()
	d.exmem.Clear()
	d.memwb.Clear()
	d.result = 0
}

func (d *Datapath) notify(stage Stage) {
	if len(d.observers) == 0 {
		return
	}

	event := StageEvent{
		Cycle:       d.cycleCount,
		Stage:       stage,
		PC:          d.ifid.PC,
		Instruction: d.ifid.Instruction,
		ALUResult:   d.exmem.ALUResult,
		Result:      d.result,
	}

	for _, o := range d.observers {
		o.OnStage(event)
	}
}
