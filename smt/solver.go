// Package smt is the public, external-facing API (spec.md §6): it wires
// internal/term, internal/cc, internal/datatype and internal/cdclt
// together behind the in-process interface the spec describes
// (Create/Assume/Solve/model-query/push-pop) so a driver (SMT-LIB
// front end, DIMACS reader, or direct Go caller) never has to touch the
// internal packages individually.
package smt

import (
	"github.com/qsmtlab/qsmt/internal/cc"
	"github.com/qsmtlab/qsmt/internal/cdclt"
	"github.com/qsmtlab/qsmt/internal/datatype"
	"github.com/qsmtlab/qsmt/internal/proof"
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
)

// Solver is the facade over one solve session: one term.Store, one
// congruence closure (the uninterpreted-function theory, always
// present), an optional datatype theory plugin, and the CDCL(T) driver
// tying them to the SAT core.
type Solver struct {
	store  *term.Store
	sat    *satcore.Solver
	cc     *cc.Closure
	driver *cdclt.Driver
	dt     *datatype.Theory
	tracer proof.Tracer

	// litOf caches the satcore.Literal minted for each boolean atom the
	// first time it appears in an Assume'd clause or a Solve assumption,
	// so repeated references to the same atom share one variable.
	litOf map[term.ID]satcore.Literal
}

// Create builds a new Solver over store (already populated with
// whatever sorts and function symbols the caller's clauses will use)
// and reg (the datatype schemas those clauses reference, or nil for a
// solver with no datatype theory, i.e. plain uninterpreted functions and
// equality only, via congruence closure). tracer may be nil, which
// installs proof.NoOp (spec.md §7).
func Create(store *term.Store, reg *datatype.Registry, tracer proof.Tracer, ops Options) *Solver {
	if tracer == nil {
		tracer = ops.Tracer
	}
	if tracer == nil {
		tracer = proof.NoOp{}
	}

	closure := cc.NewClosure(store)
	closure.SetTracer(tracer)

	var dt *datatype.Theory
	if reg != nil {
		dt = datatype.NewTheory(reg)
		closure.RegisterPlugin(dt)
	}

	driver := cdclt.NewDriver(closure)
	sat := satcore.NewSolver(ops.satcoreOptions())
	sat.SetHook(driver)
	sat.SetTracer(tracer)

	return &Solver{
		store:  store,
		sat:    sat,
		cc:     closure,
		driver: driver,
		dt:     dt,
		tracer: tracer,
		litOf:  make(map[term.ID]satcore.Literal, ops.SizeHint),
	}
}

// Store returns the term store this solver was created over, so callers
// can keep building terms to pass to Assume/Solve.
func (s *Solver) Store() *term.Store { return s.store }

// Tracer returns the proof sink this solver reports to.
func (s *Solver) Tracer() proof.Tracer { return s.tracer }

// atomLiteral returns the satcore.Literal bound to atom, minting a fresh
// boolean variable and registering atom with the congruence closure the
// first time it is seen.
func (s *Solver) atomLiteral(atom term.ID) satcore.Literal {
	if lit, ok := s.litOf[atom]; ok {
		return lit
	}
	s.cc.AddTerm(atom)
	v := s.sat.AddVariable(true)
	lit := satcore.PositiveLiteral(v)
	s.cc.BindLiteral(lit, atom)
	s.litOf[atom] = lit
	return lit
}

func (s *Solver) satLiteral(l term.Lit) satcore.Literal {
	lit := s.atomLiteral(l.Atom)
	if l.Neg {
		return lit.Opposite()
	}
	return lit
}

// Assume asserts clauses at the root level (spec.md §6: "assume(clauses)
// where clauses is a list of lists of literals; all are added at level
// 0"). It must be called before the first Solve, or between Solve calls
// only once any live Sat model has been abandoned (PushLevel/PopLevels
// implicitly do this; calling Assume directly after a Sat result does
// not, and will error since the solver is not at level 0).
func (s *Solver) Assume(clauses [][]term.Lit) error {
	for _, clause := range clauses {
		lits := make([]satcore.Literal, len(clause))
		for i, l := range clause {
			lits[i] = s.satLiteral(l)
		}
		if err := s.sat.AddClause(lits); err != nil {
			return err
		}
	}
	return nil
}

// Solve looks for a model extending assumptions (spec.md §6).
// Assumptions behave as decisions at level 1..k for the duration of this
// call; they are not retained afterward.
func (s *Solver) Solve(assumptions []term.Lit) Result {
	lits := make([]satcore.Literal, len(assumptions))
	for i, a := range assumptions {
		lits[i] = s.satLiteral(a)
	}

	status := s.sat.Solve(lits)
	res := Result{Status: status}

	switch status {
	case satcore.StatusSat:
		res.model = &Model{s: s}
	case satcore.StatusUnsat:
		core := s.sat.UnsatCore(lits)
		if len(core) > 0 {
			inCore := make(map[satcore.Literal]bool, len(core))
			for _, l := range core {
				inCore[l] = true
			}
			for i, a := range assumptions {
				if inCore[lits[i]] {
					res.core = append(res.core, a)
				}
			}
		}
	}
	return res
}

// PushLevel opens a new backtracking point at the solver boundary
// (spec.md §6), synchronized across the SAT trail and CC/theory state.
func (s *Solver) PushLevel() { s.sat.PushLevel() }

// PopLevels undoes the last n PushLevel calls, including every clause
// and theory mutation made since.
func (s *Solver) PopLevels(n int) { s.sat.PopLevels(n) }
