package smt

import (
	"github.com/qsmtlab/qsmt/internal/datatype"
	"github.com/qsmtlab/qsmt/internal/term"
)

// Model is a satisfying assignment produced by a StatusSat Result (spec.md
// §6: "On Sat, each literal/term can be evaluated; datatype terms return
// an explicit constructor tree"). It borrows the solver's own CC/theory
// state rather than copying it, so it is only valid until the next call
// that mutates that state (Assume, Solve, PushLevel, PopLevels).
type Model struct {
	s *Solver
}

// Eval reports l's truth value in this model. An atom that was never
// bound to a boolean variable (e.g. an equality whose truth only follows
// from congruence, never directly asserted) is evaluated against live CC
// class membership instead.
func (m *Model) Eval(l term.Lit) bool {
	val := m.evalAtom(l.Atom)
	if l.Neg {
		return !val
	}
	return val
}

func (m *Model) evalAtom(atom term.ID) bool {
	if lit, ok := m.s.litOf[atom]; ok {
		value, _ := m.s.sat.LitValue(lit).Resolved()
		return value
	}

	tm := m.s.store.Term(atom)
	if tm.Kind() == term.KindEq {
		a, b := m.s.cc.NodeOf(tm.Args()[0]), m.s.cc.NodeOf(tm.Args()[1])
		m.s.cc.Flush()
		return m.s.cc.Same(a, b)
	}
	n := m.s.cc.NodeOf(atom)
	m.s.cc.Flush()
	return m.s.cc.Same(n, m.s.cc.TrueNode())
}

// Value builds the explicit constructor tree for a datatype-sorted term
// (spec.md §4.8's "model generation"). It returns nil if no datatype
// theory is registered on this solver or if t's sort is not a datatype.
func (m *Model) Value(t term.ID) *datatype.Value {
	if m.s.dt == nil {
		return nil
	}
	tm := m.s.store.Term(t)
	if tm.Sort().Kind != term.SortDatatype {
		return nil
	}
	return m.s.dt.ModelOf(m.s.cc, m.s.cc.FindTerm(t))
}
