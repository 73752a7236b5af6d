package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/mipsim/insts"
)

const prompt = "mipsim> "

const replHelp = `Commands:
  s, stage      run one stage
  i, inst       run the rest of the current instruction
  r, regs       print the register file
  m, mem        print program memory
  reg NAME      print one register (t1, $9, pc, ...)
  h, help       print this help
  q, quit       exit`

// repl reads commands from in until q or end of input. Faults are reported
// and leave the datapath halted; later steps report the halt. The fault, if
// any, is returned when the loop ends.
func (m *machine) repl(in io.Reader, out io.Writer, interactive bool) error {
	scanner := bufio.NewScanner(in)

	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return m.dp.Fault()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "s", "stage":
			stage := m.dp.Stage()
			if err := m.dp.ExecuteStage(); err != nil {
				fmt.Fprintf(out, "fault: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s done, next %s, pc 0x%X\n",
				stage, m.dp.Stage(), m.dp.RegFile().PC)
		case "i", "inst":
			if err := m.dp.ExecuteInstruction(); err != nil {
				fmt.Fprintf(out, "fault: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s retired, pc 0x%X\n",
				insts.Mnemonic(insts.Decode(m.dp.Instruction())), m.dp.RegFile().PC)
		case "r", "regs":
			fmt.Fprintf(out, "PC: 0x%X\n", m.dp.RegFile().PC)
			printRegisters(out, m.dp.RegFile())
		case "m", "mem":
			m.printMemory(out)
		case "reg":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: reg NAME")
				continue
			}
			v, ok := m.dp.Register(fields[1])
			if !ok {
				fmt.Fprintf(out, "unknown register %q\n", fields[1])
				continue
			}
			fmt.Fprintf(out, "%s = 0x%X (%d)\n", fields[1], v, int64(v))
		case "h", "help":
			fmt.Fprintln(out, replHelp)
		case "q", "quit":
			return m.dp.Fault()
		default:
			fmt.Fprintf(out, "unknown command %q, try help\n", fields[0])
		}
	}
}
