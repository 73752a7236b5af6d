package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/loader"
	"github.com/sarchlab/mipsim/timing/cache"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/timing/datapath"
	"github.com/sarchlab/mipsim/timing/latency"
	"github.com/sarchlab/mipsim/trace"
)

// demoProgram is add $t1, $t1, $t1 with $t1 = 5.
var demoProgram = &loader.Program{
	Entry: 0,
	Segments: []loader.Segment{{
		VirtAddr: 0,
		Data:     []byte{0x01, 0x29, 0x48, 0x20},
		MemSize:  4,
		Flags:    loader.SegmentFlagRead | loader.SegmentFlagExecute,
	}},
}

type machine struct {
	opts     *options
	logger   logrus.FieldLogger
	prog     *loader.Program
	entry    uint64
	demo     bool
	mem      *emu.Memory
	dp       *datapath.Datapath
	recorder *trace.Recorder
	timing   *latency.TimingConfig
}

func newMachine(opts *options, logger logrus.FieldLogger) (*machine, error) {
	m := &machine{opts: opts, logger: logger}

	if opts.memSize <= 0 {
		return nil, fmt.Errorf("invalid memory size %d", opts.memSize)
	}
	m.mem = emu.NewMemory(emu.WithCapacity(opts.memSize))

	timing := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		timing, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading timing config: %w", err)
		}
	}
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}
	m.timing = timing

	dpOpts := []datapath.Option{
		datapath.WithMemory(m.mem),
		datapath.WithLogger(logger),
	}
	if opts.trace {
		m.recorder = trace.NewRecorder()
		dpOpts = append(dpOpts, datapath.WithObserver(m.recorder))
	}
	m.dp = datapath.NewDatapath(dpOpts...)

	if err := m.loadProgram(); err != nil {
		return nil, err
	}

	for _, s := range opts.sets {
		name, value, _ := strings.Cut(s, "=")
		v, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value in -set %q: %w", s, err)
		}
		if !m.dp.RegFile().Set(name, v) {
			return nil, fmt.Errorf("unknown register %q", name)
		}
	}

	return m, nil
}

func (m *machine) loadProgram() error {
	m.prog = demoProgram
	if m.opts.program == "" {
		m.demo = true
		m.dp.RegFile().GPR[9] = 5
	} else {
		format, err := loader.ParseFormat(m.opts.format)
		if err != nil {
			return err
		}
		m.prog, err = loader.Load(m.opts.program, format)
		if err != nil {
			return fmt.Errorf("loading program: %w", err)
		}
	}

	if err := m.prog.LoadInto(m.mem); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	entry := m.prog.Entry
	if m.opts.entry != "" {
		v, err := parseValue(m.opts.entry)
		if err != nil {
			return fmt.Errorf("invalid entry %q: %w", m.opts.entry, err)
		}
		entry = v
	}
	m.entry = entry
	m.dp.RegFile().PC = entry

	m.logger.WithFields(logrus.Fields{
		"program":  m.programName(),
		"entry":    fmt.Sprintf("0x%X", entry),
		"segments": len(m.prog.Segments),
	}).Debug("program loaded")

	return nil
}

func (m *machine) programName() string {
	if m.demo {
		return "demo"
	}
	return m.opts.program
}

func (m *machine) newCore() *core.Core {
	opts := []core.Option{
		core.WithLatencyTable(latency.NewTableWithConfig(m.timing)),
		core.WithHaltPC(m.prog.CodeEndFrom(m.entry)),
		core.WithMaxInstructions(m.opts.maxInsts),
		core.WithLogger(m.logger),
	}

	if m.timing.ICacheEnabled {
		icache := cache.New(cache.Config{
			Size:          m.timing.ICacheSize,
			Associativity: m.timing.ICacheAssociativity,
			BlockSize:     m.timing.ICacheBlockSize,
			HitLatency:    m.timing.ICacheHitLatency,
			MissLatency:   m.timing.ICacheMissLatency,
		}, cache.NewMemoryBacking(m.mem))
		opts = append(opts, core.WithICache(icache))
	}

	return core.NewCore("Core", sim.NewSerialEngine(), core.DefaultFreq, m.dp, opts...)
}

// runToEnd runs the program on the clocked core until the PC leaves the
// code, then prints the machine state and statistics.
func (m *machine) runToEnd(w io.Writer) error {
	if m.demo {
		fmt.Fprintln(w, "Before:")
		m.printState(w)
		fmt.Fprintln(w)
	}

	c := m.newCore()
	runErr := c.Run()

	if m.demo {
		fmt.Fprintln(w, "After:")
	}
	m.printState(w)
	fmt.Fprintln(w)
	printStats(w, m.programName(), c.Stats())

	return runErr
}

func (m *machine) printState(w io.Writer) {
	fmt.Fprintf(w, "PC: 0x%X\n", m.dp.RegFile().PC)
	printRegisters(w, m.dp.RegFile())
	m.printMemory(w)
}

func (m *machine) printMemory(w io.Writer) {
	for _, seg := range m.prog.Segments {
		if err := m.mem.Dump(w, seg.VirtAddr, seg.End()); err != nil {
			fmt.Fprintf(w, "memory dump failed: %v\n", err)
		}
	}
}

func printRegisters(w io.Writer, regFile *emu.RegFile) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Register", "Hex", "Decimal"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i := 0; i < insts.NumRegisters; i++ {
		v := regFile.GPR[i]
		table.Append([]string{
			"$" + insts.RegisterName(i),
			fmt.Sprintf("0x%016X", v),
			fmt.Sprintf("%d", int64(v)),
		})
	}

	table.Render()
}

func printStats(w io.Writer, program string, stats core.Stats) {
	fmt.Fprintf(w, "Program: %s\n", program)
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "Stall Cycles: %d\n", stats.Stalls)
	if stats.ICacheHits+stats.ICacheMisses > 0 {
		fmt.Fprintf(w, "ICache Hits: %d\n", stats.ICacheHits)
		fmt.Fprintf(w, "ICache Misses: %d\n", stats.ICacheMisses)
	}
}
