// Package theoryapi defines the plugin interface a theory solver
// implements to hook into the CDCL(T) search loop (spec.md §4.6): a
// small bundle of narrow methods, in the style of a Solver/Heuristic/
// RestartStrategy split, rather than one monolithic interface.
//
// internal/cdclt adapts a Theory into a satcore.TheoryHook; internal/cc
// and internal/datatype are the theories this package's consumers plug
// in.
package theoryapi

import "github.com/qsmtlab/qsmt/internal/satcore"

// Theory is implemented by a decision procedure that wants to observe
// and influence CDCL search. All methods operate on the shared
// *satcore.Solver so a Theory can assert propagations (EnqueueTheory) or
// lemmas (AddLemma) directly, rather than returning them indirectly.
type Theory interface {
	// OnAssume is notified of every literal landing on the trail, in
	// trail order, whether by decision, boolean propagation or a
	// previous theory propagation.
	OnAssume(s *satcore.Solver, lit satcore.Literal)

	// PartialCheck runs after boolean propagation quiesces mid-search.
	// It may call s.EnqueueTheory to assert theory-implied literals or
	// s.AddLemma to add a clause; if it detects the current partial
	// assignment is theory-inconsistent it returns the Conflict,
	// otherwise nil.
	PartialCheck(s *satcore.Solver) *Conflict

	// FinalCheck runs once the boolean assignment is total and the SAT
	// core would otherwise declare the formula satisfiable. Same
	// contract as PartialCheck, except the theory must also resolve any
	// remaining case-splits here (typically via s.AddLemma): returning
	// nil with nothing newly asserted ends the search as SAT.
	FinalCheck(s *satcore.Solver) *Conflict

	// PushLevel/PopLevels mirror the solver's decision level so the
	// theory can keep its own backtrackable state synchronized.
	PushLevel()
	PopLevels(n int)

	// Name identifies the theory for diagnostics and proof step labels.
	Name() string
}
