// Package main provides the mipsim command line driver.
//
// mipsim loads a MIPS program, runs it through the five-stage datapath and
// prints the resulting machine state. Without a program it runs a one
// instruction demo.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/sarchlab/mipsim/emu"
)

// setFlags collects repeated -set reg=value arguments.
type setFlags []string

func (s *setFlags) String() string {
	return strings.Join(*s, ",")
}

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected reg=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

type options struct {
	program    string
	configPath string
	memSize    int
	format     string
	entry      string
	maxInsts   uint64
	step       bool
	trace      bool
	verbose    bool
	sets       setFlags
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("mipsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.IntVar(&opts.memSize, "mem", emu.DefaultCapacity, "Memory size in bytes")
	fs.StringVar(&opts.format, "format", "auto", "Program format: auto, elf, bin or hex")
	fs.StringVar(&opts.entry, "entry", "", "Override the entry point address")
	fs.Uint64Var(&opts.maxInsts, "max", 0, "Stop after this many instructions (0 for no limit)")
	fs.BoolVar(&opts.step, "step", false, "Step through the program interactively")
	fs.BoolVar(&opts.trace, "trace", false, "Print a stage-by-stage trace after the run")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Var(&opts.sets, "set", "Set a register before running, as reg=value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mipsim [options] [program]\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 1 {
		fs.Usage()
		return nil, errors.New("too many arguments")
	}
	opts.program = fs.Arg(0)

	return opts, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func parseValue(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 64)
		return uint64(v), err
	}
	return strconv.ParseUint(s, 0, 64)
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, interactive bool) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := newLogger(stderr, opts.verbose)

	m, err := newMachine(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.step {
		err = m.repl(stdin, stdout, interactive)
	} else {
		err = m.runToEnd(stdout)
	}

	if opts.trace && m.recorder != nil {
		fmt.Fprintln(stdout)
		if rerr := m.recorder.Render(stdout); rerr != nil && err == nil {
			err = rerr
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, interactive))
}
