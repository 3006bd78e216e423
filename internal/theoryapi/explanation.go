package theoryapi

import "github.com/qsmtlab/qsmt/internal/satcore"

// Explanation is a lazy theory-propagation justification (spec.md §9:
// "explanations are produced lazily"). It has the same contract as
// satcore.ExplainFunc: it returns the literals currently true in the
// trail that entail the propagated literal.
type Explanation = satcore.ExplainFunc

// Because returns an Explanation that always answers with the given,
// already-computed literals. Use it when the antecedents are cheap to
// gather eagerly; use a closure directly when they are not (e.g. walking
// a congruence-closure proof forest only when asked).
func Because(lits ...satcore.Literal) Explanation {
	cached := append([]satcore.Literal(nil), lits...)
	return func() []satcore.Literal { return cached }
}

// Conflict is the result a Theory reports from PartialCheck/FinalCheck
// when the current (partial or total) boolean assignment is
// theory-inconsistent.
type Conflict struct {
	// Literals is the set of currently-true boolean literals
	// responsible for the conflict; satcore negates them to form the
	// learnt clause fed into conflict analysis.
	Literals []satcore.Literal

	// Rule names the theory rule that fired (e.g. "cc-disequality",
	// "dt-disjoint"), for proof tracing and diagnostics. Optional.
	Rule string
}
