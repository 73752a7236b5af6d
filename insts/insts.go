// Package insts provides MIPS instruction definitions and decoding.
//
// This package splits 32-bit MIPS machine words into their bit fields and
// derives everything the datapath needs from them:
//   - Field decode and 16-bit immediate sign extension
//   - Control signal generation from the opcode
//   - ALU control resolution from the ALU operation class and function code
//   - Register naming (MIPS ABI mnemonics) and a small R-type encoder
//
// Usage:
//
//	fields := insts.Decode(0x01294820) // add $t1, $t1, $t1
//	signals, err := insts.GenerateSignals(fields.Opcode)
//	op, err := insts.ResolveALUControl(signals.ALUOp, fields.Funct)
package insts
