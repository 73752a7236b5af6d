// Package core provides the clocked CPU core model.
// It drives the datapath one stage at a time on an Akita engine, charging
// each stage its configured latency.
package core

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/timing/cache"
	"github.com/sarchlab/mipsim/timing/datapath"
	"github.com/sarchlab/mipsim/timing/latency"
)

// DefaultFreq is the default core clock.
const DefaultFreq = 1 * sim.GHz

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of cycles spent waiting on multi-cycle stages.
	Stalls uint64
	// ICacheHits is the number of fetches that hit the instruction cache.
	ICacheHits uint64
	// ICacheMisses is the number of fetches that missed the instruction cache.
	ICacheMisses uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithLatencyTable sets the stage latency table.
func WithLatencyTable(table *latency.Table) Option {
	return func(c *Core) {
		c.latencyTable = table
	}
}

// WithICache routes fetch timing through an instruction cache. Fetched data
// still comes from memory through the datapath.
func WithICache(icache *cache.Cache) Option {
	return func(c *Core) {
		c.icache = icache
	}
}

// WithHaltPC stops the core when an instruction would be fetched at pc.
func WithHaltPC(pc uint64) Option {
	return func(c *Core) {
		c.haltPC = pc
		c.hasHaltPC = true
	}
}

// WithMaxInstructions stops the core after n instructions. 0 means no limit.
func WithMaxInstructions(n uint64) Option {
	return func(c *Core) {
		c.maxInstructions = n
	}
}

// WithLogger sets the logger used for halt reports.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// Core represents a clocked CPU core model.
type Core struct {
	*sim.TickingComponent

	// Datapath is the underlying five-stage datapath.
	Datapath *datapath.Datapath

	engine       sim.Engine
	latencyTable *latency.Table
	icache       *cache.Cache
	logger       logrus.FieldLogger

	haltPC          uint64
	hasHaltPC       bool
	maxInstructions uint64

	// Cycles left before the current stage completes.
	wait   uint64
	halted bool
	err    error
	stats  Stats
}

// NewCore creates a Core named name that ticks at freq on engine.
func NewCore(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	dp *datapath.Datapath,
	opts ...Option,
) *Core {
	c := &Core{
		Datapath:     dp,
		engine:       engine,
		latencyTable: latency.NewTable(),
		logger:       logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	return c
}

// Tick advances the core by one cycle. A stage runs on the last cycle of
// its latency. It returns false once the core has halted.
func (c *Core) Tick() bool {
	if c.halted {
		return false
	}

	if c.wait == 0 {
		if c.shouldHalt() {
			c.halt(nil)
			return false
		}
		c.wait = c.stageLatency()
	}

	c.stats.Cycles++
	c.wait--
	if c.wait > 0 {
		c.stats.Stalls++
		return true
	}

	stage := c.Datapath.Stage()
	if err := c.Datapath.ExecuteStage(); err != nil {
		c.halt(err)
		return false
	}

	if stage == datapath.StageWriteBack {
		c.stats.Instructions++
	}

	return true
}

func (c *Core) shouldHalt() bool {
	if c.Datapath.Stage() != datapath.StageFetch {
		return false
	}
	if c.hasHaltPC && c.Datapath.RegFile().PC == c.haltPC {
		return true
	}
	return c.maxInstructions > 0 && c.stats.Instructions >= c.maxInstructions
}

// stageLatency returns the cycles the next stage takes, at least 1.
func (c *Core) stageLatency() uint64 {
	stage := c.Datapath.Stage()

	var cycles uint64
	if stage == datapath.StageFetch && c.icache != nil {
		result := c.icache.Read(c.Datapath.RegFile().PC, 4)
		if result.Hit {
			c.stats.ICacheHits++
		} else {
			c.stats.ICacheMisses++
		}
		cycles = result.Latency
	} else {
		cycles = c.latencyTable.GetLatency(stage, c.Datapath.Signals())
	}

	if cycles == 0 {
		return 1
	}
	return cycles
}

func (c *Core) halt(err error) {
	c.halted = true
	c.err = err

	fields := logrus.Fields{
		"cycles":       c.stats.Cycles,
		"instructions": c.stats.Instructions,
		"pc":           c.Datapath.RegFile().PC,
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Error("core halted on fault")
		return
	}
	c.logger.WithFields(fields).Info("core halted")
}

// Halted returns true if the core has stopped.
func (c *Core) Halted() bool {
	return c.halted
}

// Err returns the fault that stopped the core, or nil.
func (c *Core) Err() error {
	return c.err
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Run schedules the first tick and runs the engine until the core halts.
// It returns the fault that stopped the core, if any.
func (c *Core) Run() error {
	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return err
	}

	return c.err
}

// RunCycles executes the core for the given number of cycles without the
// engine. Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles; i++ {
		if !c.Tick() {
			return false
		}
	}
	return true
}

// Reset clears core state and the datapath's latches. Registers and memory
// are kept.
func (c *Core) Reset() {
	c.Datapath.Reset()
	c.wait = 0
	c.halted = false
	c.err = nil
	c.stats = Stats{}
	if c.icache != nil {
		c.icache.Reset()
	}
}
