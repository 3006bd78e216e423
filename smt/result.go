package smt

import (
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
)

// Status is the outcome of a Solve call (spec.md §6: "solve(assumptions)
// returns Sat(model_handle) or Unsat(final_clause)", plus spec.md §5's
// dedicated resource-out abort).
type Status = satcore.Status

const (
	StatusSat         = satcore.StatusSat
	StatusUnsat       = satcore.StatusUnsat
	StatusResourceOut = satcore.StatusResourceOut
)

// Result is what Solve returns: the outcome, a Model handle on Sat, and
// (on an assumption-conflict Unsat) the subset of assumptions implicated
// by the conflict.
type Result struct {
	Status Status

	model *Model
	core  []term.Lit
}

// Model returns the satisfying assignment, or nil if Status != StatusSat.
// It is a live view over solver state and is only valid until the next
// Assume/Solve/PushLevel/PopLevels call.
func (r Result) Model() *Model { return r.model }

// UnsatCore returns the subset of the assumptions passed to Solve that
// were implicated in the conflict. It is empty unless Status ==
// StatusUnsat and assumptions were given.
func (r Result) UnsatCore() []term.Lit { return r.core }
