// Package benchmarks provides timing benchmark infrastructure for mipsim
// calibration.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/cache"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/timing/datapath"
	"github.com/sarchlab/mipsim/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles spent in multi-cycle stages
	StallCycles uint64 `json:"stall_cycles"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// Verified is true when the run ended without a fault and every
	// expected register held its expected value
	Verified bool `json:"verified"`

	// Error describes a fault or a register mismatch
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the initial register state
	Setup func(regFile *emu.RegFile)

	// Program is the instruction words, loaded at address 0
	Program []uint32

	// Expected maps register indices to their values after the run
	Expected map[uint32]uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing holds stage latencies and the instruction cache setup
	Timing *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives datapath and core logs (default: discarded)
	Logger logrus.FieldLogger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing: latency.DefaultTimingConfig(),
		Output: os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	if config.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		config.Logger = logger
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark on fresh state.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	if bench.Setup != nil {
		bench.Setup(regFile)
	}

	if err := memory.LoadWords(0, bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	dp := datapath.NewDatapath(
		datapath.WithRegFile(regFile),
		datapath.WithMemory(memory),
		datapath.WithLogger(h.config.Logger),
	)

	opts := []core.Option{
		core.WithLatencyTable(latency.NewTableWithConfig(h.config.Timing)),
		core.WithHaltPC(uint64(len(bench.Program)) * 4),
		core.WithLogger(h.config.Logger),
	}
	if h.config.Timing.ICacheEnabled {
		opts = append(opts, core.WithICache(cache.New(cache.Config{
			Size:          h.config.Timing.ICacheSize,
			Associativity: h.config.Timing.ICacheAssociativity,
			BlockSize:     h.config.Timing.ICacheBlockSize,
			HitLatency:    h.config.Timing.ICacheHitLatency,
			MissLatency:   h.config.Timing.ICacheMissLatency,
		}, cache.NewMemoryBacking(memory))))
	}

	c := core.NewCore("Core", sim.NewSerialEngine(), core.DefaultFreq, dp, opts...)

	start := time.Now()
	err := c.Run()
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.Stalls
	result.ICacheHits = stats.ICacheHits
	result.ICacheMisses = stats.ICacheMisses

	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := verify(regFile, bench.Expected); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Verified = true

	return result
}

func verify(regFile *emu.RegFile, expected map[uint32]uint64) error {
	for i := uint32(0); i < insts.NumRegisters; i++ {
		want, ok := expected[i]
		if !ok {
			continue
		}
		if got := regFile.ReadReg(i); got != want {
			return fmt.Errorf("$%s = 0x%X, expected 0x%X",
				insts.RegisterName(int(i)), got, want)
		}
	}
	return nil
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== mipsim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	table := tablewriter.NewWriter(h.config.Output)
	table.SetHeader([]string{"Benchmark", "Cycles", "Insts", "CPI", "Stalls", "I$ Hits", "I$ Misses", "Status"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range results {
		status := "ok"
		if !r.Verified {
			status = "FAIL: " + r.Error
		}
		table.Append([]string{
			r.Name,
			fmt.Sprintf("%d", r.SimulatedCycles),
			fmt.Sprintf("%d", r.InstructionsRetired),
			fmt.Sprintf("%.3f", r.CPI),
			fmt.Sprintf("%d", r.StallCycles),
			fmt.Sprintf("%d", r.ICacheHits),
			fmt.Sprintf("%d", r.ICacheMisses),
			status,
		})
	}

	table.Render()
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,icache_hits,icache_misses,verified")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.ICacheHits,
			r.ICacheMisses,
			r.Verified,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the timing configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	Failed            int           `json:"failed"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if !r.Verified {
			summary.Failed++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.config.Timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
