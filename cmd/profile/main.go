// Package main provides a profiling wrapper for mipsim to identify
// performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/loader"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/timing/datapath"
	"github.com/sarchlab/mipsim/timing/latency"
)

var (
	timing      = flag.Bool("timing", false, "Run on the clocked core instead of stepping the datapath directly")
	format      = flag.String("format", "auto", "Program format: auto, elf, bin or hex")
	memSize     = flag.Int("mem", emu.DefaultCapacity, "Memory size in bytes")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	fmtName, err := loader.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	prog, err := loader.Load(programPath, fmtName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.Entry)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	memory := emu.NewMemory(emu.WithCapacity(*memSize))
	if err := prog.LoadInto(memory); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	dp := datapath.NewDatapath(
		datapath.WithMemory(memory),
		datapath.WithLogger(logger),
	)
	dp.RegFile().PC = prog.Entry

	start := time.Now()

	var instrCount uint64
	if *timing {
		instrCount, err = runTimingProfile(dp, prog, logger)
	} else {
		instrCount, err = runDatapathProfile(dp, prog)
	}

	elapsed := time.Since(start)

	if *memProfile != "" {
		f, ferr := os.Create(*memProfile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", ferr)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if werr := pprof.WriteHeapProfile(f); werr != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", werr)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	if err != nil {
		fmt.Printf("Stopped on fault: %v\n", err)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// runDatapathProfile steps the datapath one instruction at a time.
func runDatapathProfile(dp *datapath.Datapath, prog *loader.Program) (uint64, error) {
	end := prog.CodeEnd()

	for dp.RegFile().PC != end {
		if *instruction > 0 && dp.InstructionCount() >= *instruction {
			break
		}
		if err := dp.ExecuteInstruction(); err != nil {
			return dp.InstructionCount(), err
		}
	}

	return dp.InstructionCount(), nil
}

// runTimingProfile runs the program on the clocked core.
func runTimingProfile(
	dp *datapath.Datapath,
	prog *loader.Program,
	logger logrus.FieldLogger,
) (uint64, error) {
	c := core.NewCore("Core", sim.NewSerialEngine(), core.DefaultFreq, dp,
		core.WithLatencyTable(latency.NewTable()),
		core.WithHaltPC(prog.CodeEnd()),
		core.WithMaxInstructions(*instruction),
		core.WithLogger(logger),
	)

	err := c.Run()
	return c.Stats().Instructions, err
}
