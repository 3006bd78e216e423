package satcore

// trail.go holds the ordered log of assigned literals (spec.md §3
// "Trail") and the non-chronological backtracking machinery
// (cancelUntil/undoOne), adapted directly from the teacher's solver.go.
// PushLevel/PopLevels are the exported incremental-API entry points
// (spec.md §6) built on top of the same assume/cancel pair the teacher
// uses internally for decisions and restarts.

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// DecisionLevel returns the solver's current decision level.
func (s *Solver) DecisionLevel() int {
	return s.decisionLevel()
}

func (s *Solver) enqueue(l Literal, from Reason) bool {
	switch s.LitValue(l) {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = s.decisionLevel()
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.propQueue.Enqueue(l)
		if s.hook != nil {
			s.hook.OnAssume(l)
		}
		return true
	}
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.Undo(v, s.assigns[l])
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = Reason{}
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

// assume pushes a new decision level and enqueues l as a decision.
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	if s.hook != nil {
		s.hook.PushLevel()
	}
	return s.enqueue(l, DecisionReason)
}

func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n != 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
	if s.hook != nil {
		s.hook.PopLevels(1)
	}
}

func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
}

// PushLevel opens a new decision level without making a decision. It is
// the incremental-API entry point (spec.md §6); internally it is
// indistinguishable from assume() except that no literal is forced, so
// it is implemented directly rather than through assume to avoid
// requiring a dummy literal.
//
// Any trail left over from a previous Solve call that returned
// StatusSat (kept live so the caller could query the model, see Solve)
// is discarded first: pushBase is the floor a fresh Solve call cancels
// to, and it must always reflect levels the caller deliberately pushed,
// not ephemeral assumption/decision levels from a prior search.
func (s *Solver) PushLevel() {
	s.cancelUntil(s.pushBase)
	s.trailLim = append(s.trailLim, len(s.trail))
	if s.hook != nil {
		s.hook.PushLevel()
	}
	s.pushBase = s.decisionLevel()
}

// PopLevels undoes n decision levels, including any clauses/theory state
// pushed since. It is the incremental-API counterpart to PushLevel.
func (s *Solver) PopLevels(n int) {
	s.cancelUntil(s.pushBase)
	target := s.pushBase - n
	if target < 0 {
		target = 0
	}
	s.cancelUntil(target)
	s.pushBase = target

	s.dropFramesAbove(&s.constraints, target)
	s.dropFramesAbove(&s.learnts, target)
	if s.frameUnsat > target {
		s.frameUnsat = -1
	}
}

// dropFramesAbove retracts every clause added under an incremental frame
// deeper than target. The trail has already been cancelled down to
// target, so none of these clauses can still be locking an assignment:
// anything they propagated was assigned at a deeper level and is gone.
// Clauses learnt from search under a popped frame go too: they were
// derived using the retracted constraints and may no longer be implied.
// Theory lemmas are exempt (AddLemma pins them to frame 0).
func (s *Solver) dropFramesAbove(clausesPtr *[]*Clause, target int) {
	clauses := *clausesPtr
	j := 0
	for i := 0; i < len(clauses); i++ {
		if clauses[i].frame > target {
			clauses[i].Remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}
