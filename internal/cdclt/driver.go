// Package cdclt wires internal/satcore and internal/theoryapi together
// into the CDCL(T) loop spec.md §4.6 describes: a Driver adapts a single
// theoryapi.Theory into the satcore.TheoryHook the SAT core drives,
// translating the richer *theoryapi.Conflict result into the plain
// literal slice satcore expects and folding it into ordinary conflict
// analysis exactly like a propagation conflict.
package cdclt

import (
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

// Driver implements satcore.TheoryHook around a theoryapi.Theory.
type Driver struct {
	theory theoryapi.Theory
	solver *satcore.Solver
}

// NewDriver returns a Driver for theory, ready to be installed on a
// solver via satcore.Solver.SetHook.
func NewDriver(theory theoryapi.Theory) *Driver {
	return &Driver{theory: theory}
}

func (d *Driver) OnAssume(l satcore.Literal) {
	// satcore.TheoryHook.OnAssume only carries the literal; the solver
	// itself is threaded in at PartialCheck/FinalCheck time instead,
	// since OnAssume fires from deep inside enqueue() before the caller
	// has a Solver receiver conveniently at hand. theoryapi.Theory's
	// OnAssume takes *satcore.Solver for symmetry with PartialCheck, so
	// d.solver (cached from the most recent check call) fills it in.
	d.theory.OnAssume(d.solver, l)
}

func (d *Driver) PartialCheck(s *satcore.Solver) []satcore.Literal {
	d.solver = s
	conf := d.theory.PartialCheck(s)
	return conflictLiterals(conf)
}

func (d *Driver) FinalCheck(s *satcore.Solver) []satcore.Literal {
	d.solver = s
	conf := d.theory.FinalCheck(s)
	return conflictLiterals(conf)
}

func (d *Driver) PushLevel()      { d.theory.PushLevel() }
func (d *Driver) PopLevels(n int) { d.theory.PopLevels(n) }

func conflictLiterals(conf *theoryapi.Conflict) []satcore.Literal {
	if conf == nil {
		return nil
	}
	if conf.Literals == nil {
		// An unconditional theory conflict still has to read as one: the
		// SAT core distinguishes "no conflict" (nil) from "conflict with
		// no antecedents" (empty).
		return []satcore.Literal{}
	}
	return conf.Literals
}
