package proof

import "github.com/qsmtlab/qsmt/internal/term"

// Memory keeps every step in a slice, for tests and in-process proof
// inspection. It is the one concrete non-trivial Tracer this repo ships
// (spec.md §9 leaves any on-disk encoding unspecified).
type Memory struct {
	steps []Step
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AddStep(rule string, premises []StepID, literals []int, terms []term.ID) StepID {
	id := StepID(len(m.steps))
	m.steps = append(m.steps, Step{
		ID:       id,
		Rule:     rule,
		Premises: premises,
		Literals: literals,
		Terms:    terms,
	})
	return id
}

func (m *Memory) Enabled() bool { return true }

// Step returns the recorded step with the given id.
func (m *Memory) Step(id StepID) Step { return m.steps[id] }

// Len returns how many steps have been recorded.
func (m *Memory) Len() int { return len(m.steps) }
