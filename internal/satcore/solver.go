package satcore

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/qsmtlab/qsmt/internal/proof"
)

// Solver is a CDCL SAT engine (spec.md §4). It knows nothing about the
// meaning of its variables; internal/cdclt binds a TheoryHook to drive a
// theory plugin from the two check points PartialCheck/FinalCheck, and
// the smt package maps SMT atoms onto the variables minted by
// AddVariable.
type Solver struct {
	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64

	// Variable ordering (EVSIDS heap + phase saving), see ordering.go.
	order *VarOrder

	// Propagation and watchers, see watch.go.
	watchers  [][]watcher
	propQueue *propagationQueue

	// Value assigned to each literal (indexed by Literal, not VarID).
	assigns []LBool

	// Trail, see trail.go.
	trail    []Literal
	trailLim []int
	reason   []Reason
	level    []int

	// rootLevel is the decision level below which the solver may never
	// backjump: pushBase outside of Solve, or pushBase plus the number of
	// assumptions pushed by the current Solve(assumptions) call.
	rootLevel int

	// pushBase is the decision level established by the caller's own
	// PushLevel/PopLevels calls (spec.md §6's incremental API), as
	// opposed to the ephemeral levels Solve itself pushes for
	// assumptions and search decisions. Solve cancels down to pushBase
	// on entry and, unless it returns StatusSat, on exit; a StatusSat
	// result instead leaves its trail (and therefore CC/theory state)
	// live above pushBase so the caller can query the model, up until
	// the next PushLevel/PopLevels/Solve call cancels it away.
	pushBase int

	// unsat is permanent: once set at rootLevel 0, the clause set itself
	// is contradictory and every future Solve call returns StatusUnsat
	// without search. A conflict below a non-zero rootLevel instead
	// means the *assumptions* are contradictory, which lastConflict
	// records for UnsatCore without touching this flag.
	unsat        bool
	lastConflict []Literal

	// frameUnsat is the shallowest incremental frame (pushBase value) at
	// which AddClause found the clause set contradictory, or -1. Unlike
	// unsat it is undone by PopLevels past that frame.
	frameUnsat int

	// Theory integration point (spec.md §4.6). Nil for a bare SAT solve.
	hook TheoryHook

	// tracer receives a proof step whenever the solver derives a
	// permanent, level-0 refutation (spec.md §4.3: "emit the derivation
	// through the proof tracer and terminate"). Defaults to proof.NoOp
	// so the common case costs nothing.
	tracer proof.Tracer

	// Restart schedule and search statistics.
	restartUnit int64
	restarts    *restartSchedule
	lbdEMA      EMA
	minLearnts  int

	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
	startTime       time.Time

	// Stop conditions.
	hasStopCond bool
	maxConflict int64
	timeout     time.Duration
	resourceOut bool

	// Satisfying assignments found so far, one entry per Solve call that
	// returned StatusSat.
	Models [][]bool

	// Optional destination for the teacher-style "c ..." progress lines
	// (spec.md's ambient logging: printf-style stats, no structured
	// logger). Nil means silent.
	Logger *log.Logger

	// seen marks which variables analyze() has already folded into the
	// learnt clause during the current First-UIP walk, so resolving
	// through the same variable twice (it can appear in more than one
	// antecedent set) is a no-op rather than a duplicate literal.
	seen *seenSet

	// Scratch slices, reused across calls to avoid reallocating on every
	// Propagate/analyze/explain.
	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal
}

// Options configures a new Solver. The zero value is not meaningful; use
// DefaultOptions or start from a copy of it.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool

	// RestartUnit is the base unit of the Luby restart sequence (spec.md
	// §4.4): search restarts after RestartUnit*luby(i) conflicts at
	// restart i.
	RestartUnit int64

	// LBDDecay is lbdEMA's smoothing factor in (0, 1): how much weight
	// each newly learnt clause's LBD carries against the running
	// average (spec.md §4.4's glossary entry for LBD).
	LBDDecay float64

	// MinLearnts is the floor of the learnt-clause budget before ReduceDB
	// fires (spec.md §4.5's growing threshold starts here): the knob for
	// reduction aggressiveness, lower meaning more aggressive.
	MinLearnts int

	MaxConflicts int64 // < 0 disables the conflict budget
	Timeout      time.Duration

	// Logger receives search progress lines. Nil disables them.
	Logger *log.Logger
}

var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	PhaseSaving:   true,
	RestartUnit:   100,
	LBDDecay:      0.95,
	MinLearnts:    16,
	MaxConflicts:  -1,
	Timeout:       -1,
}

// NewSolver returns an empty solver configured with ops.
func NewSolver(ops Options) *Solver {
	s := &Solver{
		clauseDecay: ops.ClauseDecay,
		clauseInc:   1,
		order:       NewVarOrder(ops.VariableDecay, ops.PhaseSaving),
		propQueue:   newPropagationQueue(128),
		frameUnsat:  -1,
		maxConflict: -1,
		timeout:     -1,
		restartUnit: ops.RestartUnit,
		minLearnts:  ops.MinLearnts,
		seen:        &seenSet{},
		Logger:      ops.Logger,
		lbdEMA:      NewEMA(ops.LBDDecay),
		tracer:      proof.NoOp{},
	}

	if ops.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = ops.MaxConflicts
	}
	if ops.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = ops.Timeout
	}
	if s.restartUnit <= 0 {
		s.restartUnit = 100
	}
	if s.minLearnts <= 0 {
		s.minLearnts = 16
	}

	return s
}

// SetHook installs the theory integration point (spec.md §4.6). Passing
// nil runs the solver as a bare SAT engine.
func (s *Solver) SetHook(hook TheoryHook) {
	s.hook = hook
}

// SetTracer installs the proof-step sink used for level-0 refutations.
// Passing nil installs proof.NoOp.
func (s *Solver) SetTracer(tracer proof.Tracer) {
	if tracer == nil {
		tracer = proof.NoOp{}
	}
	s.tracer = tracer
}

// literalCodes converts a trail-ordered literal slice into the raw
// codes a proof.Tracer records, so satcore never has to hand proof its
// own Literal type back (see proof.Step's doc comment).
func literalCodes(lits []Literal) []int {
	codes := make([]int, len(lits))
	for i, l := range lits {
		codes[i] = int(l)
	}
	return codes
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}
	return false
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// VarValue returns the current assignment of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current assignment of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// AddVariable mints a new variable and returns its ID. defaultPolarity is
// the fallback orientation the decision heuristic uses the first time
// this variable is picked, before phase saving has recorded anything
// (spec.md §4.4).
func (s *Solver) AddVariable(defaultPolarity bool) int {
	index := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil) // one per literal
	s.reason = append(s.reason, Reason{})
	s.seen.grow()

	s.assigns = append(s.assigns, Unknown, Unknown)
	s.level = append(s.level, -1)
	s.order.NewVar(defaultPolarity)
	return index
}

// AddClause adds a constraint at the solver's current incremental base
// (spec.md §6's pushBase: 0 unless the caller has PushLevel'd). It
// returns an error only if called while the solver is inside a decision
// or search-time theory callback, i.e. below that base; use AddLemma for
// clauses raised while search is in progress.
func (s *Solver) AddClause(clause []Literal) error {
	if s.decisionLevel() != s.pushBase {
		return fmt.Errorf("satcore: AddClause called at decision level %d, want %d", s.decisionLevel(), s.pushBase)
	}
	c, ok := NewClause(s, clause, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.markUnsat()
	}
	return nil
}

// markUnsat records a contradiction discovered at the current incremental
// base: permanent at base 0, frame-scoped otherwise.
func (s *Solver) markUnsat() {
	if s.pushBase == 0 {
		s.unsat = true
	} else if s.frameUnsat < 0 {
		s.frameUnsat = s.pushBase
	}
}

// isUnsat reports whether the clause set is known contradictory at the
// current incremental base.
func (s *Solver) isUnsat() bool {
	return s.unsat || s.frameUnsat >= 0
}

// AddLemma adds a clause learnt by a theory plugin (spec.md §4.6's "the
// plugin may add clauses") at the current decision level, rather than
// requiring a backtrack to the root. The clause is tracked alongside
// CDCL-learnt clauses. Unlike a clause learnt from conflict analysis, a
// lemma may arrive in any relation to the current assignment, so it is
// evaluated on the spot: a unit lemma propagates its one open literal,
// and an already-falsified lemma is returned as a conflict (the set of
// currently-true literals negating it) for the caller to surface from
// its PartialCheck/FinalCheck.
func (s *Solver) AddLemma(lits []Literal) []Literal {
	// Move the non-false literals up front so NewClause watches them.
	ordered := append([]Literal(nil), lits...)
	j := 0
	for i, l := range ordered {
		if s.LitValue(l) != False {
			ordered[i], ordered[j] = ordered[j], ordered[i]
			j++
		}
	}

	c, ok := NewClause(s, ordered, true)
	if !ok {
		// The lemma was empty or a unit whose literal is already false:
		// report it as a conflict and let ordinary conflict handling
		// decide whether that makes the whole problem unsatisfiable.
		if len(ordered) == 1 {
			return []Literal{ordered[0].Opposite()}
		}
		return []Literal{}
	}
	if c == nil {
		return nil
	}

	// Theory lemmas hold regardless of the incremental frame or any
	// clause learnt from search, so they survive both ReduceDB and
	// PopLevels. Plugins rely on this: they mark a lemma as emitted
	// exactly once (e.g. a finished case-split).
	c.isProtected = true
	c.frame = 0
	s.learnts = append(s.learnts, c)

	open := -1
	numOpen := 0
	for i, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return nil // already satisfied
		case Unknown:
			numOpen++
			open = i
		}
	}
	switch numOpen {
	case 0:
		conflict := make([]Literal, len(c.literals))
		for i, l := range c.literals {
			conflict[i] = l.Opposite()
		}
		return conflict
	case 1:
		s.enqueue(c.literals[open], ClauseReason(c))
	}
	return nil
}

// EnqueueTheory lets a theory plugin assert a theory-implied literal from
// PartialCheck/FinalCheck. explain is invoked lazily, only if conflict
// analysis later needs the antecedent set (spec.md §9). If lit is already
// false, EnqueueTheory instead returns the conflict as the set of
// literals currently true in the trail, for the caller to hand straight
// back as its PartialCheck/FinalCheck result.
func (s *Solver) EnqueueTheory(lit Literal, explain ExplainFunc) (ok bool, conflict []Literal) {
	switch s.LitValue(lit) {
	case True:
		return true, nil
	case False:
		conflict = append(explain(), lit.Opposite())
		return false, conflict
	default:
		s.enqueue(lit, TheoryReason(explain))
		return true, nil
	}
}

// Simplify drops satisfied clauses from the constraint and learnt
// databases according to the root-level assignment. It must only be
// called at the solver's current incremental base (pushBase).
func (s *Solver) Simplify() bool {
	if l := s.decisionLevel(); l != s.pushBase {
		log.Panicf("satcore: Simplify called at decision level %d, want %d", l, s.pushBase)
	}
	if s.propQueue.Size() != 0 {
		log.Panic("satcore: Simplify called with a non-empty propagation queue")
	}

	if s.isUnsat() || s.Propagate() != nil {
		s.markUnsat()
		return false
	}

	s.simplifyPtr(&s.learnts)
	s.simplifyPtr(&s.constraints)
	return true
}

func (s *Solver) simplifyPtr(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := 0; i < len(clauses); i++ {
		if clauses[i].Simplify(s) {
			clauses[i].Remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}

// ReduceDB discards the worse half of the learnt clause database,
// ranking clauses by LBD first and activity second (spec.md §4.5: "an
// equivalent ranking to lowest activity is highest LBD"). Clauses
// currently locking a trail assignment, or with LBD <= 2 ("glue"
// clauses), are never discarded.
func (s *Solver) ReduceDB() {
	sort.Slice(s.learnts, func(i, j int) bool {
		if s.learnts[i].lbd != s.learnts[j].lbd {
			return s.learnts[i].lbd > s.learnts[j].lbd
		}
		return s.learnts[i].activity < s.learnts[j].activity
	})

	lim := s.clauseInc / float64(len(s.learnts))
	i, j := 0, 0

	for ; i < len(s.learnts)/2; i++ {
		c := s.learnts[i]
		if c.isProtected || c.locked(s) || c.lbd <= 2 {
			s.learnts[j] = c
			j++
		} else {
			c.Remove(s)
		}
	}

	for ; i < len(s.learnts); i++ {
		c := s.learnts[i]
		if !c.isProtected && !c.locked(s) && c.lbd > 2 && c.activity < lim {
			c.Remove(s)
		} else {
			s.learnts[j] = c
			j++
		}
	}

	s.learnts = s.learnts[:j]
}

func (s *Solver) BumpClaActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) DecayClaActivity() {
	s.clauseInc *= s.clauseDecay
}

// computeLBD returns the number of distinct decision levels among lits
// (spec.md §4.5), the clause-quality metric ReduceDB ranks by.
func (s *Solver) computeLBD(lits []Literal) int {
	seen := make(map[int]struct{}, len(lits))
	for _, l := range lits {
		seen[s.level[l.VarID()]] = struct{}{}
	}
	return len(seen)
}

// explain dispatches to the right antecedent producer for confl/l: l ==
// -1 means confl is itself the conflicting clause (ExplainFailure),
// anything else means confl propagated l (ExplainAssign).
func (s *Solver) explain(confl *Clause, l Literal) []Literal {
	if l == -1 {
		return confl.ExplainFailure(s)
	}
	return confl.ExplainAssign(s, l)
}

// seenSet tracks which variables analyze() has already resolved through
// during the current conflict, so it never double-counts a variable
// reachable via two different antecedent clauses. It resets in O(1) by
// bumping an epoch counter instead of clearing a bitset, since analyze()
// runs once per conflict and conflicts vastly outnumber variables.
type seenSet struct {
	markedAt []uint16
	epoch    uint16
}

// has reports whether v was marked during the current epoch.
func (s *seenSet) has(v int) bool {
	return s.markedAt[v] == s.epoch
}

// mark records v as seen for the current epoch.
func (s *seenSet) mark(v int) {
	s.markedAt[v] = s.epoch
}

// reset starts a fresh epoch, implicitly unmarking every variable.
func (s *seenSet) reset() {
	s.epoch++
	if s.epoch == 0 { // wrapped back to 0, which no stale entry can equal
		s.epoch = 1
		for i := range s.markedAt {
			s.markedAt[i] = 0
		}
	}
}

// grow extends the set to cover one more variable, called from
// AddVariable in step with every other per-variable slice.
func (s *seenSet) grow() {
	s.markedAt = append(s.markedAt, 0)
}

// analyze runs First-UIP conflict analysis (spec.md §4.3) starting from
// confl, and returns the learnt clause (asserting literal first) and the
// decision level to backjump to.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	nImplicationPoints := 0

	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1) // reserved for the FUIP

	nextLiteral := len(s.trail) - 1
	l := Literal(-1) // sentinel: confl is the conflicting clause itself
	reason := Reason{}
	s.seen.reset()
	backtrackLevel := 0

	antecedents := s.explain(confl, l)

	for {
		for _, q := range antecedents {
			v := q.VarID()
			if s.seen.has(v) {
				continue
			}

			s.seen.mark(v)
			s.order.BumpActivity(v)

			if s.level[v] == s.decisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lvl := s.level[v]; lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			reason = s.reason[v]
			if s.seen.has(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}

		antecedents = reason.explainLiterals(s, l)
	}

	s.tmpLearnts[0] = l.Opposite()
	return s.tmpLearnts, backtrackLevel
}

func (s *Solver) record(clause []Literal) {
	c, _ := NewClause(s, clause, true)
	s.enqueue(clause[0], ClauseReason(c))
	if c != nil {
		s.learnts = append(s.learnts, c)
		s.lbdEMA.Add(float64(c.lbd))
	}
}

// conflictClauseFrom builds an ephemeral, unwatched clause from a set of
// literals currently true in the trail (a theory hook's conflict
// report), so it can be fed into analyze() exactly like a propagation
// conflict: its ExplainFailure returns the negation of its own literals,
// i.e. trueLits again.
func conflictClauseFrom(trueLits []Literal) *Clause {
	lits := make([]Literal, len(trueLits))
	for i, l := range trueLits {
		lits[i] = l.Opposite()
	}
	return &Clause{literals: lits}
}

// handleTheoryConflict aligns the decision level with the deepest
// literal a theory check blames before running conflict analysis: a
// theory conflict may surface several decisions after the last literal
// it depends on was assigned (an acyclicity cycle completed long before
// final-check ran, say), and analyze expects the conflict to involve
// the current level.
func (s *Solver) handleTheoryConflict(trueLits []Literal) bool {
	maxLevel := 0
	for _, l := range trueLits {
		if lvl := s.level[l.VarID()]; lvl > maxLevel {
			maxLevel = lvl
		}
	}
	if maxLevel < s.decisionLevel() {
		if maxLevel < s.rootLevel {
			maxLevel = s.rootLevel
		}
		s.cancelUntil(maxLevel)
	}
	return s.handleConflict(conflictClauseFrom(trueLits))
}

// analyzeAssumptions reduces a conflict to the assumption decisions it
// depends on: seed the seen set with the conflict's literals, then walk
// the trail backwards expanding reasons, keeping only the decisions
// (i.e. the assumptions; ordinary search decisions are gone by the
// time an assumption-level conflict is being diagnosed). The result
// lands in lastConflict for UnsatCore.
func (s *Solver) analyzeAssumptions(confl []Literal) {
	s.lastConflict = s.lastConflict[:0]
	s.seen.reset()
	for _, q := range confl {
		if s.level[q.VarID()] > s.pushBase {
			s.seen.mark(q.VarID())
		}
	}
	for i := len(s.trail) - 1; i >= 0; i-- {
		l := s.trail[i]
		v := l.VarID()
		if !s.seen.has(v) {
			continue
		}
		if r := s.reason[v]; r.IsDecision() {
			s.lastConflict = append(s.lastConflict, l)
		} else {
			for _, q := range r.explainLiterals(s, l) {
				if s.level[q.VarID()] > s.pushBase {
					s.seen.mark(q.VarID())
				}
			}
		}
	}
}

// handleConflict runs conflict analysis on confl, learns the resulting
// clause and backjumps. It reports whether the conflict held
// unconditionally at the solver's current root level, meaning the
// problem (or, if rootLevel > pushBase, the current assumptions) is
// unsatisfiable.
func (s *Solver) handleConflict(confl *Clause) bool {
	if s.decisionLevel() <= s.rootLevel {
		if s.rootLevel == s.pushBase {
			s.markUnsat()
			s.lastConflict = append(s.lastConflict[:0], confl.ExplainFailure(s)...)
			if s.unsat && s.tracer.Enabled() {
				s.tracer.AddStep("sat-refutation", nil, literalCodes(s.lastConflict), nil)
			}
		} else {
			s.analyzeAssumptions(confl.ExplainFailure(s))
		}
		return true
	}

	learntClause, backtrackLevel := s.analyze(confl)
	if backtrackLevel < s.rootLevel {
		backtrackLevel = s.rootLevel
	}
	s.cancelUntil(backtrackLevel)
	s.record(learntClause)
	s.DecayClaActivity()
	s.order.DecayActivity()
	return false
}

// Search runs until it finds a model, proves unsatisfiability (relative
// to rootLevel), hits its conflict budget (returning StatusUnknown so the
// caller can restart with the next budget of the Luby schedule), or runs
// out of resources.
func (s *Solver) Search(nConflicts int64, nLearnts int) Status {
	if s.isUnsat() {
		return StatusUnsat
	}

	var conflictsThisRound int64

	for {
		if s.shouldStop() {
			s.resourceOut = true
			return StatusResourceOut
		}
		s.TotalIterations++
		if s.Logger != nil && s.TotalIterations%10000 == 0 {
			s.printSearchStats()
		}

		if conflict := s.Propagate(); conflict != nil {
			conflictsThisRound++
			s.TotalConflicts++
			if s.handleConflict(conflict) {
				return StatusUnsat
			}
			continue
		}

		if s.hook != nil {
			if theoryConfl := s.hook.PartialCheck(s); theoryConfl != nil {
				conflictsThisRound++
				s.TotalConflicts++
				if s.handleTheoryConflict(theoryConfl) {
					return StatusUnsat
				}
				continue
			}
		}

		if s.propQueue.Size() > 0 {
			continue // a hook asserted new literals; propagate them first
		}

		// Simplify requires the solver to actually sit at its incremental
		// base; under assumptions the root level is above it and the
		// root-level assignment never changes during this Solve call, so
		// there is nothing new to simplify against anyway.
		if s.decisionLevel() == s.pushBase && s.rootLevel == s.pushBase {
			s.Simplify()
		}

		if len(s.learnts)-s.NumAssigns() >= nLearnts {
			s.ReduceDB()
		}

		if s.NumAssigns() == s.NumVariables() {
			if s.hook != nil {
				if theoryConfl := s.hook.FinalCheck(s); theoryConfl != nil {
					conflictsThisRound++
					s.TotalConflicts++
					if s.handleTheoryConflict(theoryConfl) {
						return StatusUnsat
					}
					continue
				}
				// FinalCheck may have asserted new literals or minted new
				// variables (a case-split lemma over fresh testers); either
				// way the assignment is no longer total and the search must
				// resume rather than declare SAT.
				if s.propQueue.Size() > 0 || s.NumAssigns() < s.NumVariables() {
					continue
				}
			}
			// Deliberately no cancelUntil here: the caller may query the
			// model (including live CC/theory state) until the next
			// PushLevel/PopLevels/Solve call, see pushBase's doc comment.
			s.saveModel()
			return StatusSat
		}

		if conflictsThisRound > nConflicts {
			s.TotalRestarts++
			s.cancelUntil(s.rootLevel)
			return StatusUnknown
		}

		l := s.order.Select(s)
		s.assume(l)
	}
}

// Solve looks for a model extending assumptions (spec.md §6's
// incremental API). Assumptions are pushed as forced decisions at the
// root; if they are jointly contradictory, Solve returns StatusUnsat
// without touching the solver's permanent unsat flag, and UnsatCore
// reports which of them were implicated.
func (s *Solver) Solve(assumptions []Literal) Status {
	s.cancelUntil(s.pushBase)
	if s.isUnsat() {
		return StatusUnsat
	}

	s.rootLevel = s.pushBase
	s.resourceOut = false

	for _, a := range assumptions {
		if !s.assume(a) {
			// a's negation is already implied by the clauses and the
			// assumptions pushed so far: the core is a itself plus
			// whichever earlier assumptions that implication used.
			s.analyzeAssumptions([]Literal{a.Opposite()})
			s.lastConflict = append(s.lastConflict, a)
			s.cancelUntil(s.pushBase)
			return StatusUnsat
		}
		if conflict := s.Propagate(); conflict != nil {
			s.analyzeAssumptions(conflict.ExplainFailure(s))
			s.cancelUntil(s.pushBase)
			return StatusUnsat
		}
	}
	s.rootLevel = s.decisionLevel()

	numLearnts := s.NumConstraints() / 3
	if numLearnts < s.minLearnts {
		numLearnts = s.minLearnts
	}

	status := StatusUnknown
	s.startTime = time.Now()
	s.restarts = newRestartSchedule(s.restartUnit)

	if s.Logger != nil {
		s.printSeparator()
		s.printSearchHeader()
		s.printSeparator()
	}

	for status == StatusUnknown {
		status = s.Search(s.restarts.Next(), numLearnts)
		numLearnts += numLearnts / 20
	}

	if s.Logger != nil {
		s.printSearchStats()
		s.printSeparator()
	}

	// A Sat result deliberately leaves the trail live above pushBase (see
	// Search's comment and pushBase's doc comment) so the caller can
	// query the model; only an Unsat/ResourceOut result is unwound back
	// to the caller's own incremental floor here.
	if status != StatusSat {
		s.cancelUntil(s.pushBase)
	}
	return status
}

// UnsatCore returns the subset of assumptions implicated in the most
// recent Solve call that returned StatusUnsat with rootLevel > 0. The
// conflict literals are matched by variable: an assumption shows up in a
// conflict either as itself (it was true on the trail) or negated (it
// was the assumption that failed to take).
func (s *Solver) UnsatCore(assumptions []Literal) []Literal {
	core := make([]Literal, 0, len(assumptions))
	for _, a := range assumptions {
		for _, l := range s.lastConflict {
			if l.VarID() == a.VarID() {
				core = append(core, a)
				break
			}
		}
	}
	return core
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			log.Panic("satcore: saveModel called with an unassigned variable")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}

func (s *Solver) printSeparator() {
	fmt.Fprintln(s.Logger.Writer(), "c ---------------------------------------------------------------------------")
}

func (s *Solver) printSearchHeader() {
	fmt.Fprintln(s.Logger.Writer(), "c            time     iterations      conflicts       restarts        learnts")
}

func (s *Solver) printSearchStats() {
	fmt.Fprintf(
		s.Logger.Writer(),
		"c %14.3fs %14d %14d %14d %14d\n",
		time.Since(s.startTime).Seconds(),
		s.TotalIterations,
		s.TotalConflicts,
		s.TotalRestarts,
		len(s.learnts))
}
