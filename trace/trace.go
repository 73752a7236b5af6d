// Package trace records the datapath's progress stage by stage.
package trace

import (
	"fmt"
	"io"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/datapath"
)

// Column names of the recorded frame.
const (
	ColCycle       = "cycle"
	ColStage       = "stage"
	ColPC          = "pc"
	ColInstruction = "instruction"
	ColMnemonic    = "mnemonic"
	ColALUResult   = "alu_result"
	ColResult      = "result"
)

// Recorder collects one row per completed stage. Register it with
// datapath.WithObserver.
type Recorder struct {
	frame *dataframe.DataFrame
}

var _ datapath.Observer = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.Reset()
	return r
}

// Reset drops all recorded rows.
func (r *Recorder) Reset() {
	r.frame = dataframe.NewDataFrame(
		dataframe.NewSeriesInt64(ColCycle, nil),
		dataframe.NewSeriesString(ColStage, nil),
		dataframe.NewSeriesString(ColPC, nil),
		dataframe.NewSeriesString(ColInstruction, nil),
		dataframe.NewSeriesString(ColMnemonic, nil),
		dataframe.NewSeriesString(ColALUResult, nil),
		dataframe.NewSeriesString(ColResult, nil),
	)
}

// OnStage appends a row for the completed stage. Addresses and values are
// recorded in hex. Values not yet produced by the instruction (the ALU
// result before Execute, the result before WriteBack) are recorded as 0x0.
func (r *Recorder) OnStage(event datapath.StageEvent) {
	mnemonic := ""
	if event.Stage != datapath.StageFetch {
		mnemonic = insts.Mnemonic(insts.Decode(event.Instruction))
	}

	r.frame.Append(nil,
		int64(event.Cycle),
		event.Stage.String(),
		fmt.Sprintf("0x%X", event.PC),
		fmt.Sprintf("0x%08X", event.Instruction),
		mnemonic,
		fmt.Sprintf("0x%X", event.ALUResult),
		fmt.Sprintf("0x%X", event.Result),
	)
}

// Len returns the number of recorded stages.
func (r *Recorder) Len() int {
	return r.frame.NRows()
}

// Frame returns the underlying data frame.
func (r *Recorder) Frame() *dataframe.DataFrame {
	return r.frame
}

// Render writes the recorded stages as a table.
func (r *Recorder) Render(w io.Writer) error {
	if r.Len() == 0 {
		_, err := fmt.Fprintln(w, "no stages recorded")
		return err
	}

	_, err := io.WriteString(w, r.frame.Table())
	return err
}
