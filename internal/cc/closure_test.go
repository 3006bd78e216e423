package cc

import (
	"testing"

	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

func TestMergeFindSame(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())
	na, nb := c.AddTerm(a), c.AddTerm(b)

	if c.Same(na, nb) {
		t.Fatal("a and b must start in distinct classes")
	}

	lit := satcore.PositiveLiteral(0)
	if conf := c.Merge(na, nb, theoryapi.Because(lit)); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}
	if !c.Same(na, nb) {
		t.Fatal("expected a and b in the same class after Merge")
	}

	got := c.Explain(na, nb)
	if len(got) != 1 || got[0] != lit {
		t.Fatalf("Explain(a, b) = %v, want [%v]", got, lit)
	}
}

// TestCongruenceClosure checks that merging a = b schedules and performs
// f(a) = f(b) automatically (spec.md §4.7).
func TestCongruenceClosure(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	fa := store.NewApp(f, a)
	fb := store.NewApp(f, b)

	na, nb := c.AddTerm(a), c.AddTerm(b)
	nfa, nfb := c.AddTerm(fa), c.AddTerm(fb)

	if c.Same(nfa, nfb) {
		t.Fatal("f(a) and f(b) must not start in the same class")
	}

	lit := satcore.PositiveLiteral(1)
	if conf := c.Merge(na, nb, theoryapi.Because(lit)); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}

	if !c.Same(nfa, nfb) {
		t.Fatal("expected f(a) = f(b) via congruence once a = b")
	}

	expl := c.Explain(nfa, nfb)
	if len(expl) == 0 {
		t.Fatal("Explain(f(a), f(b)) returned no literals")
	}
	found := false
	for _, l := range expl {
		if l == lit {
			found = true
		}
	}
	if !found {
		t.Errorf("Explain(f(a), f(b)) = %v, want it to include the a=b literal %v", expl, lit)
	}
}

// TestCongruenceTransitiveChain checks that a chain of merges a=b, b=c
// still closes f(a) = f(c) via congruence, and that the explanation uses
// only the literals actually asserted.
func TestCongruenceTransitiveChain(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	cc := store.NewConst("c", elem)
	fa := store.NewApp(f, a)
	fc := store.NewApp(f, cc)

	na, nb, ncc := c.AddTerm(a), c.AddTerm(b), c.AddTerm(cc)
	nfa, nfc := c.AddTerm(fa), c.AddTerm(fc)

	litAB := satcore.PositiveLiteral(0)
	litBC := satcore.PositiveLiteral(1)

	if conf := c.Merge(na, nb, theoryapi.Because(litAB)); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}
	if conf := c.Merge(nb, ncc, theoryapi.Because(litBC)); conf != nil {
		t.Fatalf("Merge(b, c) = conflict %+v, want nil", conf)
	}

	if !c.Same(nfa, nfc) {
		t.Fatal("expected f(a) = f(c) via transitive congruence")
	}
}

// TestPushLevelPopLevelsRoundTrip checks that a merge made inside a
// pushed level is fully undone by the matching pop (spec.md §8: a
// push/pop pair not crossing a conflict is a no-op).
func TestPushLevelPopLevelsRoundTrip(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())
	na, nb := c.AddTerm(a), c.AddTerm(b)

	c.PushLevel()
	if conf := c.Merge(na, nb, theoryapi.Because()); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}
	if !c.Same(na, nb) {
		t.Fatal("expected a and b merged inside the pushed level")
	}
	c.PopLevels(1)

	if c.Same(na, nb) {
		t.Fatal("expected the merge to be undone after PopLevels")
	}

	// The closure must still be usable: a fresh merge after the pop
	// should behave exactly as it would have with no push/pop at all.
	lit := satcore.PositiveLiteral(2)
	if conf := c.Merge(na, nb, theoryapi.Because(lit)); conf != nil {
		t.Fatalf("Merge after pop = conflict %+v, want nil", conf)
	}
	if !c.Same(na, nb) {
		t.Fatal("expected a and b merged again after the pop")
	}
}

// TestNestedPushLevelPopLevels checks that only as many merges as levels
// popped are undone, and the rest survive.
func TestNestedPushLevelPopLevels(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())
	x := store.NewConst("x", store.BoolSort())
	na, nb, nx := c.AddTerm(a), c.AddTerm(b), c.AddTerm(x)

	if conf := c.Merge(na, nb, theoryapi.Because()); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}

	c.PushLevel()
	if conf := c.Merge(nb, nx, theoryapi.Because()); conf != nil {
		t.Fatalf("Merge(b, x) = conflict %+v, want nil", conf)
	}
	if !c.Same(na, nx) {
		t.Fatal("expected a, b, x all merged inside the pushed level")
	}

	c.PopLevels(1)

	if !c.Same(na, nb) {
		t.Fatal("expected a = b to survive the pop (merged before the push)")
	}
	if c.Same(na, nx) {
		t.Fatal("expected a = x to be undone by the pop (merged after the push)")
	}
}

// TestCongruenceUndoneByPop checks that the signature table tracks
// backtracking: a congruence established inside a pushed level must be
// gone after the pop, and re-merging must re-derive it rather than trip
// over stale table entries.
func TestCongruenceUndoneByPop(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	fa := store.NewApp(f, a)
	fb := store.NewApp(f, b)

	na, nb := c.AddTerm(a), c.AddTerm(b)
	nfa, nfb := c.AddTerm(fa), c.AddTerm(fb)

	c.PushLevel()
	if conf := c.Merge(na, nb, theoryapi.Because(satcore.PositiveLiteral(0))); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}
	if !c.Same(nfa, nfb) {
		t.Fatal("expected f(a) = f(b) inside the pushed level")
	}
	c.PopLevels(1)

	if c.Same(na, nb) || c.Same(nfa, nfb) {
		t.Fatal("expected both the merge and its congruence undone by the pop")
	}

	if conf := c.Merge(na, nb, theoryapi.Because(satcore.PositiveLiteral(1))); conf != nil {
		t.Fatalf("Merge(a, b) after pop = conflict %+v, want nil", conf)
	}
	if !c.Same(nfa, nfb) {
		t.Fatal("expected f(a) = f(b) re-derived after the pop")
	}
}

// TestSignatureSurvivesUnrelatedPop checks that applications registered
// at the base level keep detecting congruences after a pushed level with
// unrelated merges is popped.
func TestSignatureSurvivesUnrelatedPop(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	x := store.NewConst("x", elem)
	y := store.NewConst("y", elem)

	na, nb := c.AddTerm(a), c.AddTerm(b)
	nfa, nfb := c.AddTerm(store.NewApp(f, a)), c.AddTerm(store.NewApp(f, b))
	nx, ny := c.AddTerm(x), c.AddTerm(y)

	c.PushLevel()
	if conf := c.Merge(nx, ny, theoryapi.Because(satcore.PositiveLiteral(0))); conf != nil {
		t.Fatalf("Merge(x, y) = conflict %+v, want nil", conf)
	}
	c.PopLevels(1)

	if conf := c.Merge(na, nb, theoryapi.Because(satcore.PositiveLiteral(1))); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}
	if !c.Same(nfa, nfb) {
		t.Fatal("expected f(a) = f(b) despite the earlier unrelated push/pop")
	}
}

func TestAddTermIdempotent(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)

	a := store.NewConst("a", store.BoolSort())
	n1 := c.AddTerm(a)
	n2 := c.AddTerm(a)
	if n1 != n2 {
		t.Errorf("AddTerm(a) twice = %v, %v, want identical NodeIDs", n1, n2)
	}
}

func TestDisequalityRaisesConflict(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)
	s := satcore.NewSolver(satcore.DefaultOptions)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	eq := store.NewEq(a, b)

	diseqLit := satcore.NegativeLiteral(s.AddVariable(true))
	c.BindLiteral(diseqLit, eq)
	c.OnAssume(s, diseqLit)

	if conf := c.PartialCheck(s); conf != nil {
		t.Fatalf("PartialCheck with only a disequality = conflict %+v, want nil", conf)
	}

	mergeLit := satcore.PositiveLiteral(s.AddVariable(true))
	if conf := c.Merge(c.NodeOf(a), c.NodeOf(b), theoryapi.Because(mergeLit)); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}

	conf := c.PartialCheck(s)
	if conf == nil {
		t.Fatal("expected a conflict: a = b contradicts the asserted disequality")
	}
	var sawDiseq, sawMerge bool
	for _, l := range conf.Literals {
		sawDiseq = sawDiseq || l == diseqLit
		sawMerge = sawMerge || l == mergeLit
	}
	if !sawDiseq || !sawMerge {
		t.Errorf("conflict literals = %v, want both %v and %v", conf.Literals, diseqLit, mergeLit)
	}
}

func TestTrueFalseCollapseIsConflict(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)
	s := satcore.NewSolver(satcore.DefaultOptions)

	p := store.NewConst("p", store.BoolSort())
	np := c.AddTerm(p)

	l1 := satcore.PositiveLiteral(s.AddVariable(true))
	l2 := satcore.PositiveLiteral(s.AddVariable(true))
	if conf := c.Merge(np, c.TrueNode(), theoryapi.Because(l1)); conf != nil {
		t.Fatalf("Merge(p, true) = conflict %+v, want nil", conf)
	}
	if conf := c.Merge(np, c.FalseNode(), theoryapi.Because(l2)); conf != nil {
		t.Fatalf("Merge(p, false) = conflict %+v, want nil", conf)
	}

	conf := c.PartialCheck(s)
	if conf == nil {
		t.Fatal("expected a conflict once true and false share a class")
	}
	if conf.Rule != "cc-bool" {
		t.Errorf("conflict rule = %q, want %q", conf.Rule, "cc-bool")
	}
}

// TestEntailedAtomPropagatedToSolver checks the theory-propagation path:
// an equality atom whose two sides merge must be asserted at the boolean
// level by the next PartialCheck, without being decided.
func TestEntailedAtomPropagatedToSolver(t *testing.T) {
	store := term.NewStore()
	c := NewClosure(store)
	s := satcore.NewSolver(satcore.DefaultOptions)

	elem := store.NewSort(term.SortUninterpreted, "E", term.CardInfinite)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	eq := store.NewEq(a, b)

	eqLit := satcore.PositiveLiteral(s.AddVariable(true))
	c.BindLiteral(eqLit, eq)

	mergeLit := satcore.PositiveLiteral(s.AddVariable(true))
	if conf := c.Merge(c.NodeOf(a), c.NodeOf(b), theoryapi.Because(mergeLit)); conf != nil {
		t.Fatalf("Merge(a, b) = conflict %+v, want nil", conf)
	}

	if conf := c.PartialCheck(s); conf != nil {
		t.Fatalf("PartialCheck = conflict %+v, want nil", conf)
	}
	if got := s.LitValue(eqLit); got != satcore.True {
		t.Errorf("LitValue(a = b) = %v after merge, want True", got)
	}
}
