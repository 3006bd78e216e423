package proof

import "github.com/qsmtlab/qsmt/internal/term"

// NoOp is the default Tracer (spec.md §7's "disabled tracer" case):
// every AddStep call is free and returns SentinelStep.
type NoOp struct{}

func (NoOp) AddStep(string, []StepID, []int, []term.ID) StepID { return SentinelStep }

func (NoOp) Enabled() bool { return false }
