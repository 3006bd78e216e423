package satcore

import "strings"

// Clause is a non-empty ordered sequence of distinct literals (a
// disjunction). Positions 0 and 1 are, by convention, the two watched
// literals (spec.md §3's "Clause"). Learnt clauses additionally carry an
// activity (bumped during conflict analysis, decayed over time) and an
// LBD (literal block distance: the number of distinct decision levels
// among the clause's literals) used by ReduceDB to rank clause quality.
type Clause struct {
	activity float64

	// The clause's literals. Must always contain at least two literals.
	literals []Literal

	// Whether the clause was learnt or not.
	learnt bool

	// Literal block distance, computed once at learning time (spec.md
	// §4.5: "highest LBD" is an equivalent ranking to lowest activity).
	lbd int

	// If true, ReduceDB never deletes the clause. Set on theory lemmas
	// (AddLemma), whose plugins track "already emitted" state that would
	// go stale if the clause silently disappeared.
	isProtected bool

	// frame is the solver's incremental base (pushBase) at the time the
	// clause was added; PopLevels discards every clause whose frame is
	// deeper than the level popped back to.
	frame int
}

// NewClause builds (and, for size >= 2, watches) a clause from
// tmpLiterals. For original (non-learnt) clauses it first simplifies
// away duplicate/always-true/root-false literals. It returns (clause,
// ok): ok is false only when the clause is unsatisfiable at the root
// level (an empty clause after simplification); clause is nil whenever
// no arena slot was needed (the clause was trivially true, or collapsed
// to a unit fact that was enqueued directly).
func NewClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			// If the opposite literal is in the clause, the clause is
			// always true.
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true
			}

			// Remove the literal if it is already present.
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}

			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause is always true
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		// Empty clauses cannot be valid.
		return nil, false
	case 1:
		// Directly enqueue unit facts.
		return nil, s.enqueue(tmpLiterals[0], DecisionReason)
	default:
		c := &Clause{}
		c.learnt = learnt
		c.frame = s.pushBase
		c.literals = make([]Literal, 0, len(tmpLiterals))
		c.literals = append(c.literals, tmpLiterals...)

		if learnt {
			// Watch the literal assigned at the deepest level, so the
			// clause wakes up exactly when backtracking makes it relevant
			// again. A theory lemma may arrive with every literal still
			// unassigned (e.g. a case-split clause over freshly minted
			// testers); there is nothing to prefer then and the literals
			// stay in the given order.
			maxLevel := -1
			wl := -1
			for i := 1; i < len(c.literals); i++ {
				if level := s.level[c.literals[i].VarID()]; level > maxLevel {
					maxLevel = level
					wl = i
				}
			}
			if wl > 1 {
				c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
			}
			c.lbd = s.computeLBD(c.literals)
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// locked reports whether c is currently the reason some variable is
// assigned, which makes it unsafe to delete during ReduceDB.
func (c *Clause) locked(solver *Solver) bool {
	return solver.reason[c.literals[0].VarID()].Clause() == c
}

// Remove detaches c from the watch lists. It does not need to touch the
// trail: callers only remove clauses that are not currently locking any
// assignment.
func (c *Clause) Remove(s *Solver) {
	s.Unwatch(c, c.literals[0].Opposite())
	s.Unwatch(c, c.literals[1].Opposite())
}

// Simplify discards literals that are false at the root level and
// reports whether the clause is already satisfied (and can therefore be
// dropped entirely).
func (c *Clause) Simplify(s *Solver) bool {
	j := 0
	for i := 0; i < len(c.literals); i++ {
		switch s.LitValue(c.literals[i]) {
		case True:
			return true
		case False:
			// discard the literal.
		case Unknown:
			c.literals[j] = c.literals[i]
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

// Propagate is invoked when l has just been assigned true (so ¬l has
// just become false) and c was watching ¬l. It implements the
// watch-swap scheme of spec.md §4.2.
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	// Make sure that the triggering literal is c.literals[1]. This
	// simplifies the rest of this function as c.literals[0] is always
	// the literal to be potentially enqueued (if all other literals are
	// false).
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	// If c.literals[0] is True, the clause is already true.
	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	// Look for a new literal to watch. If another literal set to true is
	// found, the clause is already true.
	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1] = c.literals[i]
			c.literals[i] = l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// The first literal must be true if all other literals are false.
	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], ClauseReason(c))
}

// ExplainFailure returns the negation of every literal in c: used when c
// is itself the conflict clause (spec.md §4.3).
func (c *Clause) ExplainFailure(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	if c.learnt {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

// ExplainAssign returns the negation of every literal but c.literals[0]:
// the antecedent of c.literals[0] having been forced true.
func (c *Clause) ExplainAssign(s *Solver, l Literal) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for i := 1; i < len(c.literals); i++ {
		s.tmpReason = append(s.tmpReason, c.literals[i].Opposite())
	}
	if c.learnt {
		s.BumpClaActivity(c)
	}
	return s.tmpReason
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
