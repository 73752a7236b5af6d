package benchmarks

import (
	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

// Register indices used by the microbenchmarks.
const (
	regT0 = 8 + iota
	regT1
	regT2
	regT3
	regT4
	regT5
	regT6
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark is straight-line code that ends by running off the end of
// the program.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		subtractChain(),
		logicMix(),
		compareMix(),
		longStraightLine(),
	}
}

func add(rd, rs, rt uint32) uint32 { return insts.EncodeR(rs, rt, rd, 0, insts.FunctADD) }
func sub(rd, rs, rt uint32) uint32 { return insts.EncodeR(rs, rt, rd, 0, insts.FunctSUB) }
func and(rd, rs, rt uint32) uint32 { return insts.EncodeR(rs, rt, rd, 0, insts.FunctAND) }
func or(rd, rs, rt uint32) uint32  { return insts.EncodeR(rs, rt, rd, 0, insts.FunctOR) }
func slt(rd, rs, rt uint32) uint32 { return insts.EncodeR(rs, rt, rd, 0, insts.FunctSLT) }

func sltu(rd, rs, rt uint32) uint32 {
	return insts.EncodeR(rs, rt, rd, 0, insts.FunctSLTU)
}

// 1. Arithmetic Sequential - independent adds across five registers
func arithmeticSequential() Benchmark {
	var program []uint32
	for i := 0; i < 4; i++ {
		for r := uint32(regT0); r <= regT4; r++ {
			program = append(program, add(r, r, regT5))
		}
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDs - measures ALU throughput",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT5, 1)
		},
		Program: program,
		Expected: map[uint32]uint64{
			regT0: 4, regT1: 4, regT2: 4, regT3: 4, regT4: 4,
		},
	}
}

// 2. Dependency Chain - every add reads the previous result
func dependencyChain() Benchmark {
	program := make([]uint32, 20)
	for i := range program {
		program[i] = add(regT0, regT0, regT5)
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDs ($t0 = $t0 + 1)",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT5, 1)
		},
		Program:  program,
		Expected: map[uint32]uint64{regT0: 20},
	}
}

// 3. Subtract Chain - wraps below zero
func subtractChain() Benchmark {
	program := make([]uint32, 12)
	for i := range program {
		program[i] = sub(regT0, regT0, regT5)
	}

	return Benchmark{
		Name:        "subtract_chain",
		Description: "12 dependent SUBs from 30 by 3, ending below zero",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT0, 30)
			regFile.WriteReg(regT5, 3)
		},
		Program:  program,
		Expected: map[uint32]uint64{regT0: ^uint64(0) - 5},
	}
}

// 4. Logic Mix - AND/OR on overlapping masks
func logicMix() Benchmark {
	return Benchmark{
		Name:        "logic_mix",
		Description: "AND/OR combinations of two masks",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT0, 0xF0)
			regFile.WriteReg(regT1, 0x3C)
		},
		Program: []uint32{
			and(regT2, regT0, regT1),
			or(regT3, regT0, regT1),
			and(regT4, regT2, regT3),
			or(regT6, regT2, regT0),
		},
		Expected: map[uint32]uint64{
			regT2: 0x30,
			regT3: 0xFC,
			regT4: 0x30,
			regT6: 0xF0,
		},
	}
}

// 5. Compare Mix - signed and unsigned set-on-less-than
func compareMix() Benchmark {
	return Benchmark{
		Name:        "compare_mix",
		Description: "SLT/SLTU with a negative operand",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT0, ^uint64(0))
			regFile.WriteReg(regT1, 1)
		},
		Program: []uint32{
			slt(regT2, regT0, regT1),
			sltu(regT3, regT0, regT1),
			slt(regT4, regT1, regT0),
			sltu(regT6, regT1, regT0),
		},
		Expected: map[uint32]uint64{
			regT2: 1,
			regT3: 0,
			regT4: 0,
			regT6: 1,
		},
	}
}

// 6. Long Straight Line - spans many cache lines
func longStraightLine() Benchmark {
	program := make([]uint32, 256)
	for i := range program {
		program[i] = add(regT0, regT0, regT5)
	}

	return Benchmark{
		Name:        "long_straight_line",
		Description: "256 ADDs - exercises instruction cache fills",
		Setup: func(regFile *emu.RegFile) {
			regFile.WriteReg(regT5, 1)
		},
		Program:  program,
		Expected: map[uint32]uint64{regT0: 256},
	}
}
