package action

import (
	"slices"

	"github.com/nrednav/cuid2"
)

// StepType identifies the builder call that produced a trace step.
type StepType string

// Builder calls recorded in a Trace.
const (
	StepUse    StepType = "use"
	StepQuery  StepType = "query"
	StepJSON   StepType = "json"
	StepMethod StepType = "method"
	StepAction StepType = "action"
)

// Step is a single entry of a Trace.
type Step struct {
	Type StepType `json:"type"`
	Data any      `json:"data,omitempty"`
}

// Trace is the diagnostic record of the calls made on a builder lineage. The
// ID is minted once when the lineage starts, and steps are only ever appended.
type Trace struct {
	ID    string `json:"id"`
	Steps []Step `json:"steps"`
}

func newTrace() Trace {
	return Trace{ID: cuid2.Generate(), Steps: []Step{}}
}

// with returns a copy of the trace with step appended. The receiver's steps are
// never modified, so sibling builders don't share appended entries.
func (t Trace) with(step Step) Trace {
	return Trace{ID: t.ID, Steps: append(slices.Clip(t.Steps), step)}
}

func (t Trace) clone() Trace {
	steps := slices.Clone(t.Steps)
	if steps == nil {
		steps = []Step{}
	}
	return Trace{ID: t.ID, Steps: steps}
}
