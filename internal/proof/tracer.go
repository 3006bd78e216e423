// Package proof implements the proof-step sink spec.md §6 describes: an
// append-only stream of proof steps, each carrying an id, a rule name,
// ordered references to premise step ids, and the literals/terms the
// rule is about. The on-disk encoding is explicitly left unspecified
// (spec.md §9's Open Question notes the source's own FIXME here); this
// package provides only an in-memory sink and a no-op default, the same
// latitude the source takes.
package proof

import "github.com/qsmtlab/qsmt/internal/term"

// StepID identifies one proof step. SentinelStep is returned by a
// disabled Tracer (spec.md §7: "when the tracer is disabled, proof-step
// ids are a sentinel and all add_step calls are no-ops").
type StepID int

const SentinelStep StepID = -1

// Step is one node of the proof graph. Literals are raw satcore.Literal
// codes (its 2v/2v+1 encoding) rather than the satcore type itself:
// satcore, internal/cc and internal/datatype all report proof steps
// through a Tracer, and satcore.Literal living here would force satcore
// to import this package while this package already needs term.ID from
// one further down the stack, not a type from the package calling it.
type Step struct {
	ID       StepID
	Rule     string
	Premises []StepID
	Literals []int
	Terms    []term.ID
}

// Tracer is the sink every solver-internal proof-producing call site
// (level-0 SAT refutations, CC conflicts, datatype conflicts) reports
// through.
// Emission never fails and is never consulted for control flow: a
// Tracer only records.
type Tracer interface {
	// AddStep records a new step and returns its id. Call with Enabled()
	// false only if you want the sentinel back for free; AddStep itself
	// is always safe to call unconditionally.
	AddStep(rule string, premises []StepID, literals []int, terms []term.ID) StepID

	// Enabled reports whether this Tracer actually records steps, so a
	// caller can skip building premises/literals/terms slices it would
	// otherwise discard.
	Enabled() bool
}
