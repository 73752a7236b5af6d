package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/insts"
)

var _ = Describe("Control", func() {
	Describe("GenerateSignals", func() {
		It("should route R-type instructions through the function code", func() {
			s, err := insts.GenerateSignals(insts.OpcodeRType)

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(insts.ControlSignals{
				ALUOp:       insts.ALUOpUseFunctField,
				ALUSrc:      insts.ALUSrcReadRegister2,
				Branch:      insts.BranchNo,
				Jump:        insts.JumpNo,
				MemRead:     insts.MemReadNo,
				MemToReg:    insts.MemToRegUseALU,
				MemWrite:    insts.MemWriteNo,
				MemWriteSrc: insts.MemWriteSrcPrimaryUnit,
				RegDst:      insts.RegDstRd,
				RegWrite:    insts.RegWriteYes,
			}))
		})

		It("should reject every other opcode", func() {
			for op := uint32(1); op < 64; op++ {
				_, err := insts.GenerateSignals(op)
				Expect(err).To(MatchError(insts.ErrUnsupportedOpcode))
			}
		})
	})

	Describe("ResolveALUControl", func() {
		DescribeTable("function codes",
			func(funct uint32, want insts.ALUControl) {
				got, err := insts.ResolveALUControl(insts.ALUOpUseFunctField, funct)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("add", insts.FunctADD, insts.ALUAdd),
			Entry("sub", insts.FunctSUB, insts.ALUSub),
			Entry("and", insts.FunctAND, insts.ALUAnd),
			Entry("or", insts.FunctOR, insts.ALUOr),
			Entry("slt", insts.FunctSLT, insts.ALUSetLessThanSigned),
			Entry("sltu", insts.FunctSLTU, insts.ALUSetLessThanUnsigned),
		)

		DescribeTable("fixed operation classes ignore funct",
			func(op insts.ALUOp, want insts.ALUControl) {
				got, err := insts.ResolveALUControl(op, 0b111111)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("addition", insts.ALUOpAddition, insts.ALUAdd),
			Entry("subtraction", insts.ALUOpSubtraction, insts.ALUSub),
			Entry("slt", insts.ALUOpSetOnLessThanSigned, insts.ALUSetLessThanSigned),
			Entry("sltu", insts.ALUOpSetOnLessThanUnsigned, insts.ALUSetLessThanUnsigned),
			Entry("and", insts.ALUOpAnd, insts.ALUAnd),
			Entry("or", insts.ALUOpOr, insts.ALUOr),
			Entry("lui", insts.ALUOpLeftShift16, insts.ALUShiftLeft16),
			Entry("not", insts.ALUOpNot, insts.ALUNot),
		)

		It("should reject an unknown function code", func() {
			_, err := insts.ResolveALUControl(insts.ALUOpUseFunctField, 0b000000)
			Expect(err).To(MatchError(insts.ErrUnsupportedFunct))
		})
	})
})
