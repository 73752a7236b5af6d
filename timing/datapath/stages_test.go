package datapath_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/datapath"
)

var _ = Describe("Stages", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory(emu.WithCapacity(64))
	})

	Describe("FetchStage", func() {
		It("should latch the word at PC", func() {
			Expect(memory.StoreWord(8, 0x01294820)).To(Succeed())
			ifid, err := datapath.NewFetchStage(memory).Fetch(8)

			Expect(err).NotTo(HaveOccurred())
			Expect(ifid.Valid).To(BeTrue())
			Expect(ifid.PC).To(Equal(uint64(8)))
			Expect(ifid.Instruction).To(Equal(uint32(0x01294820)))
		})

		It("should fail past the end of memory", func() {
			_, err := datapath.NewFetchStage(memory).Fetch(62)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("DecodeStage", func() {
		It("should read both source registers", func() {
			regFile.WriteReg(8, 3)
			regFile.WriteReg(9, 4)
			ifid := &datapath.IFIDRegister{
				Valid:       true,
				Instruction: insts.EncodeR(8, 9, 10, 0, insts.FunctSUB),
			}

			idex, err := datapath.NewDecodeStage(regFile).Decode(ifid)

			Expect(err).NotTo(HaveOccurred())
			Expect(idex.ReadData1).To(Equal(uint64(3)))
			Expect(idex.ReadData2).To(Equal(uint64(4)))
			Expect(idex.ALUControl).To(Equal(insts.ALUSub))
			Expect(idex.Signals.RegDst).To(Equal(insts.RegDstRd))
		})

		It("should sign-extend the immediate field", func() {
			ifid := &datapath.IFIDRegister{Instruction: insts.EncodeR(0, 0, 31, 31, insts.FunctOR)}

			idex, err := datapath.NewDecodeStage(regFile).Decode(ifid)

			Expect(err).NotTo(HaveOccurred())
			Expect(idex.Fields.Imm).To(Equal(uint32(0xFFE5)))
			Expect(idex.SignExtended).To(Equal(uint64(0xFFFFFFFFFFFFFFE5)))
		})

		It("should fail on an unsupported function code", func() {
			ifid := &datapath.IFIDRegister{Instruction: insts.EncodeR(1, 2, 3, 0, 0b001000)}
			_, err := datapath.NewDecodeStage(regFile).Decode(ifid)
			Expect(err).To(MatchError(insts.ErrUnsupportedFunct))
		})
	})

	Describe("ExecuteStage", func() {
		var stage *datapath.ExecuteStage

		BeforeEach(func() {
			stage = datapath.NewExecuteStage(emu.NewALU())
		})

		It("should use the second register by default", func() {
			idex := &datapath.IDEXRegister{
				ReadData1:    10,
				ReadData2:    20,
				SignExtended: 1000,
				ALUControl:   insts.ALUAdd,
				Fields:       insts.Fields{Rt: 2, Rd: 3},
				Signals:      insts.ControlSignals{RegDst: insts.RegDstRd},
			}

			exmem := stage.Execute(idex)

			Expect(exmem.ALUResult).To(Equal(uint64(30)))
			Expect(exmem.Dest).To(Equal(uint32(3)))
		})

		It("should select the immediate and rt destination", func() {
			idex := &datapath.IDEXRegister{
				ReadData1:    10,
				ReadData2:    20,
				SignExtended: 1000,
				ALUControl:   insts.ALUAdd,
				Fields:       insts.Fields{Rt: 2, Rd: 3},
				Signals: insts.ControlSignals{
					ALUSrc: insts.ALUSrcExtendedImmediate,
					RegDst: insts.RegDstRt,
				},
			}

			exmem := stage.Execute(idex)

			Expect(exmem.ALUResult).To(Equal(uint64(1010)))
			Expect(exmem.Dest).To(Equal(uint32(2)))
		})
	})

	Describe("MemoryStage", func() {
		It("should pass values through when memory is not enabled", func() {
			exmem := &datapath.EXMEMRegister{ALUResult: 9999, Dest: 4, RegWrite: insts.RegWriteYes}

			memwb, err := datapath.NewMemoryStage(memory).Access(exmem)

			Expect(err).NotTo(HaveOccurred())
			Expect(memwb.ALUResult).To(Equal(uint64(9999)))
			Expect(memwb.Dest).To(Equal(uint32(4)))
			Expect(memwb.MemData).To(BeZero())
		})

		It("should load a word when MemRead is set", func() {
			Expect(memory.StoreWord(16, 0xCAFEBABE)).To(Succeed())
			exmem := &datapath.EXMEMRegister{ALUResult: 16, MemRead: insts.MemReadYes}

			memwb, err := datapath.NewMemoryStage(memory).Access(exmem)

			Expect(err).NotTo(HaveOccurred())
			Expect(memwb.MemData).To(Equal(uint64(0xCAFEBABE)))
		})

		It("should store a word when MemWrite is set", func() {
			exmem := &datapath.EXMEMRegister{
				ALUResult:  20,
				StoreValue: 0x1122334455667788,
				MemWrite:   insts.MemWriteYes,
			}

			_, err := datapath.NewMemoryStage(memory).Access(exmem)

			Expect(err).NotTo(HaveOccurred())
			word, _ := memory.LoadWord(20)
			Expect(word).To(Equal(uint32(0x55667788)))
		})

		It("should reject floating-point store data", func() {
			exmem := &datapath.EXMEMRegister{
				MemWrite:    insts.MemWriteYes,
				MemWriteSrc: insts.MemWriteSrcFloatingPointUnit,
			}
			_, err := datapath.NewMemoryStage(memory).Access(exmem)
			Expect(err).To(MatchError(datapath.ErrUnsupportedWriteSource))
		})

		It("should fail on an out-of-bounds access", func() {
			exmem := &datapath.EXMEMRegister{ALUResult: 63, MemRead: insts.MemReadYes}
			_, err := datapath.NewMemoryStage(memory).Access(exmem)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("WritebackStage", func() {
		It("should commit the ALU result and advance the PC", func() {
			regFile.PC = 12
			memwb := &datapath.MEMWBRegister{
				ALUResult: 5,
				MemData:   6,
				Dest:      7,
				RegWrite:  insts.RegWriteYes,
			}

			value := datapath.NewWritebackStage(regFile).Writeback(memwb)

			Expect(value).To(Equal(uint64(5)))
			Expect(regFile.GPR[7]).To(Equal(uint64(5)))
			Expect(regFile.PC).To(Equal(uint64(16)))
		})

		It("should commit memory data when selected", func() {
			memwb := &datapath.MEMWBRegister{
				ALUResult: 5,
				MemData:   6,
				Dest:      7,
				MemToReg:  insts.MemToRegUseMemory,
				RegWrite:  insts.RegWriteYes,
			}

			Expect(datapath.NewWritebackStage(regFile).Writeback(memwb)).To(Equal(uint64(6)))
			Expect(regFile.GPR[7]).To(Equal(uint64(6)))
		})

		It("should not write when RegWrite is clear", func() {
			memwb := &datapath.MEMWBRegister{ALUResult: 5, Dest: 7}

			datapath.NewWritebackStage(regFile).Writeback(memwb)

			Expect(regFile.GPR[7]).To(BeZero())
			Expect(regFile.PC).To(Equal(uint64(4)))
		})
	})
})
