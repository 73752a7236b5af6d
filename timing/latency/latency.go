// Package latency provides per-stage timing for the clocked datapath model.
//
// The latency values can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/datapath"
)

// Table provides stage latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the number of cycles the given stage takes for an
// instruction with the given control signals. Signals are only consulted
// for the memory stage.
func (t *Table) GetLatency(stage datapath.Stage, signals insts.ControlSignals) uint64 {
	switch stage {
	case datapath.StageFetch:
		return t.config.FetchLatency
	case datapath.StageDecode:
		return t.config.DecodeLatency
	case datapath.StageExecute:
		return t.config.ExecuteLatency
	case datapath.StageMemoryAccess:
		if t.IsMemoryOp(signals) {
			return t.config.MemoryLatency
		}
		return 1
	case datapath.StageWriteBack:
		return t.config.WritebackLatency
	default:
		return 1
	}
}

// IsMemoryOp returns true if the signals enable a data memory access.
func (t *Table) IsMemoryOp(signals insts.ControlSignals) bool {
	return signals.MemRead == insts.MemReadYes || signals.MemWrite == insts.MemWriteYes
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
