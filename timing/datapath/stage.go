// Package datapath provides a single-issue, five-stage MIPS datapath that can
// be driven a whole instruction or a single stage at a time.
package datapath

import "fmt"

// Stage identifies a datapath stage.
type Stage uint8

// Datapath stages, in execution order.
const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemoryAccess
	StageWriteBack
)

// NumStages is the number of stages in one instruction cycle.
const NumStages = 5

// Next returns the stage that follows s. WriteBack wraps around to Fetch.
func (s Stage) Next() Stage {
	switch s {
	case StageFetch:
		return StageDecode
	case StageDecode:
		return StageExecute
	case StageExecute:
		return StageMemoryAccess
	case StageMemoryAccess:
		return StageWriteBack
	default:
		return StageFetch
	}
}

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "IF"
	case StageDecode:
		return "ID"
	case StageExecute:
		return "EX"
	case StageMemoryAccess:
		return "MEM"
	case StageWriteBack:
		return "WB"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}
