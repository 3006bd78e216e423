package satcore

import (
	"log"

	"github.com/rhartert/yagh"
)

// VarOrder maintains the EVSIDS variable order (spec.md §4.4): a
// max-heap keyed by activity, with ties broken by declaration order,
// plus phase saving for the default polarity of the next decision.
type VarOrder struct {
	// Binary heap giving access to the unassigned variable with the
	// highest activity. Keyed by -activity since yagh is a min-heap.
	heap *yagh.IntMap[float64]

	activities []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]

	phases      []LBool
	phaseSaving bool
}

// NewVarOrder returns an empty VarOrder. decay is the EVSIDS decay
// factor; phaseSaving selects whether the saved polarity of a variable
// (rather than its declared default) is used for the next decision.
func NewVarOrder(decay float64, phaseSaving bool) *VarOrder {
	return &VarOrder{
		heap:        yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
}

// NewVar registers a new variable with zero activity and the given
// default polarity (spec.md §4.4's "default fallback provided at
// literal creation time").
func (vo *VarOrder) NewVar(defaultPol bool) {
	varID := len(vo.activities)
	vo.activities = append(vo.activities, 0)
	vo.phases = append(vo.phases, Lift(defaultPol))
	vo.heap.GrowBy(1)
	vo.heap.Put(varID, 0)
}

// Undo re-inserts variable v into the set of decision candidates after
// it is unassigned (e.g. by backtracking). val is the value v held
// before being unassigned; with phase saving enabled it becomes v's new
// default polarity.
func (vo *VarOrder) Undo(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	vo.heap.Put(v, -vo.activities[v])
}

// update re-bumps v's position in the heap after its activity changed,
// if v is currently a candidate (unassigned).
func (vo *VarOrder) update(v int) {
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.activities[v])
	}
}

// BumpActivity increases v's activity by the current EVSIDS increment,
// rescaling all activities if any exceeds the overflow guard.
func (vo *VarOrder) BumpActivity(v int) {
	vo.activities[v] += vo.scoreInc
	vo.update(v)
	if vo.activities[v] > 1e100 {
		vo.rescale()
	}
}

// DecayActivity increases the EVSIDS increment, which has the effect of
// decaying all past activity bumps relative to future ones.
func (vo *VarOrder) DecayActivity() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, a := range vo.activities {
		vo.activities[v] = a * 1e-100
	}
	for v := range vo.activities {
		vo.update(v)
	}
}

// Select pops and returns the next decision literal: the unassigned
// variable with the highest activity, oriented by its saved (or
// default) polarity.
func (vo *VarOrder) Select(s *Solver) Literal {
	for {
		next, ok := vo.heap.Pop()
		if !ok {
			log.Panic("satcore: variable order exhausted with unassigned variables remaining")
		}
		if s.VarValue(next.Elem) != Unknown {
			continue // already assigned, stale heap entry
		}
		if vo.phases[next.Elem] == False {
			return NegativeLiteral(next.Elem)
		}
		return PositiveLiteral(next.Elem)
	}
}
