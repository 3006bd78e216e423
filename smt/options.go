package smt

import (
	"log"
	"time"

	"github.com/qsmtlab/qsmt/internal/proof"
	"github.com/qsmtlab/qsmt/internal/satcore"
)

// Options configures a new Solver (spec.md §6: "create(theories, tracer,
// options) where options include size hint, random seed, restart
// policy, reduction aggressiveness"). Most fields pass straight through
// to satcore.Options; SizeHint and RandomSeed are accepted for fidelity
// to that enumeration but, like the teacher's own solver, this core
// makes no random choices (EVSIDS tie-breaks are deterministic by
// declaration order), so RandomSeed is accepted but not stored or used.
type Options struct {
	// SizeHint pre-sizes the atom-to-literal cache; 0 picks no particular
	// capacity. The term store and the SAT core's per-variable arrays are
	// not pre-sized.
	SizeHint int

	// RandomSeed is accepted for interface parity with spec.md §6 but
	// does not currently influence search, which is fully deterministic
	// given the same sequence of assume/solve calls.
	RandomSeed int64

	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool

	// RestartUnit is the base unit of the Luby restart sequence (spec.md
	// §4.4).
	RestartUnit int64

	// LBDDecay smooths the moving average of learnt-clause LBD the SAT
	// core tracks; that average does not influence search.
	LBDDecay float64

	// MinLearnts is the learnt-clause budget floor before database
	// reduction fires; lower is more aggressive.
	MinLearnts int

	MaxConflicts int64 // < 0 disables the conflict budget
	Timeout      time.Duration

	// Logger receives search progress lines (spec.md's ambient logging);
	// nil disables them.
	Logger *log.Logger

	// Tracer receives proof steps for level-0 SAT refutations and for
	// CC and datatype conflicts; nil installs proof.NoOp (spec.md §7: disabled
	// tracer, all add_step calls are no-ops).
	Tracer proof.Tracer
}

// DefaultOptions mirrors satcore.DefaultOptions, with no proof tracer.
var DefaultOptions = Options{
	ClauseDecay:   satcore.DefaultOptions.ClauseDecay,
	VariableDecay: satcore.DefaultOptions.VariableDecay,
	PhaseSaving:   satcore.DefaultOptions.PhaseSaving,
	RestartUnit:   satcore.DefaultOptions.RestartUnit,
	LBDDecay:      satcore.DefaultOptions.LBDDecay,
	MinLearnts:    satcore.DefaultOptions.MinLearnts,
	MaxConflicts:  satcore.DefaultOptions.MaxConflicts,
	Timeout:       satcore.DefaultOptions.Timeout,
}

func (o Options) satcoreOptions() satcore.Options {
	return satcore.Options{
		ClauseDecay:   o.ClauseDecay,
		VariableDecay: o.VariableDecay,
		PhaseSaving:   o.PhaseSaving,
		RestartUnit:   o.RestartUnit,
		LBDDecay:      o.LBDDecay,
		MinLearnts:    o.MinLearnts,
		MaxConflicts:  o.MaxConflicts,
		Timeout:       o.Timeout,
		Logger:        o.Logger,
	}
}
