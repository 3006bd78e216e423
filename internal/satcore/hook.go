package satcore

// TheoryHook is the narrow interface the SAT core drives a theory
// through (spec.md §4.6's SAT <-> theory loop). It deliberately exposes
// only satcore's own types, so the core never imports anything above it:
// internal/cdclt implements TheoryHook as an adapter around the richer
// theoryapi.Theory interface.
type TheoryHook interface {
	// OnAssume is called once for every literal that lands on the trail,
	// whether by decision, clause propagation or theory propagation.
	OnAssume(l Literal)

	// PartialCheck runs after boolean propagation quiesces mid-search. It
	// may assert theory-implied literals via Solver.EnqueueTheory or add
	// clauses via Solver.AddLemma; if it detects a theory conflict it
	// returns the set of currently-true literals responsible, otherwise
	// nil.
	PartialCheck(s *Solver) []Literal

	// FinalCheck runs when the SAT core has a total boolean assignment
	// and would otherwise declare the formula satisfiable. Same
	// contract as PartialCheck, except the plugin must also resolve any
	// remaining theory case-splits here (e.g. by calling AddLemma): a
	// nil result with nothing newly enqueued ends the search as SAT.
	FinalCheck(s *Solver) []Literal

	// PushLevel/PopLevels mirror the solver's own decision level so the
	// theory can keep its backtrackable state (e.g. a congruence closure
	// journal) synchronized with the trail.
	PushLevel()
	PopLevels(n int)
}
