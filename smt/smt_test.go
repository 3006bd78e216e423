package smt_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/qsmtlab/qsmt/internal/datatype"
	"github.com/qsmtlab/qsmt/internal/term"
	"github.com/qsmtlab/qsmt/smt"
)

var sortLits = cmpopts.SortSlices(func(a, b term.Lit) bool {
	if a.Atom != b.Atom {
		return a.Atom < b.Atom
	}
	return !a.Neg && b.Neg
})

// These tests exercise the end-to-end scenarios a CDCL(T) core is
// expected to get right: plain boolean propagation and conflict, plus
// the datatype theory's disjointness, injectivity/selector reduction,
// acyclicity and finite case-split rules.

func TestUnitPropagationChain(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())
	c := store.NewConst("c", store.BoolSort())

	err := s.Assume([][]term.Lit{
		{term.Pos(a)},
		{term.NegLit(a), term.Pos(b)},
		{term.NegLit(b), term.Pos(c)},
	})
	if err != nil {
		t.Fatalf("Assume: %v", err)
	}

	res := s.Solve(nil)
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve status = %v, want Sat", res.Status)
	}

	m := res.Model()
	for _, want := range []term.ID{a, b, c} {
		if !m.Eval(term.Pos(want)) {
			t.Errorf("Eval(%v) = false, want true", want)
		}
	}
}

func TestBinaryConflictUnsat(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())

	err := s.Assume([][]term.Lit{
		{term.Pos(a), term.Pos(b)},
		{term.Pos(a), term.NegLit(b)},
		{term.NegLit(a), term.Pos(b)},
		{term.NegLit(a), term.NegLit(b)},
	})
	if err != nil {
		t.Fatalf("Assume: %v", err)
	}

	if res := s.Solve(nil); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat", res.Status)
	}
}

// newEnumSchema declares a nullary-constructor datatype T = C0 | C1 | ...
// with one tester per constructor and no selectors.
func newEnumSchema(store *term.Store, name string, cstorNames ...string) (*term.Sort, *datatype.Schema) {
	sort := store.NewSort(term.SortDatatype, name, term.CardUnknown)
	schema := &datatype.Schema{Sort: sort}
	for i, cn := range cstorNames {
		fn := store.NewConstructor(cn, nil, sort, i)
		tester := store.NewTester("is-"+cn, sort, i)
		schema.Cstors = append(schema.Cstors, &datatype.Cstor{Fn: fn, Tester: tester})
	}
	return sort, schema
}

func TestDatatypeDisjointness(t *testing.T) {
	store := term.NewStore()
	_, schema := newEnumSchema(store, "T", "A", "B")

	reg := datatype.NewRegistry()
	reg.Declare(schema)
	s := smt.Create(store, reg, nil, smt.DefaultOptions)

	x := store.NewConst("x", schema.Sort)
	isA := store.NewApp(schema.Cstors[0].Tester, x)
	isB := store.NewApp(schema.Cstors[1].Tester, x)

	if err := s.Assume([][]term.Lit{{term.Pos(isA)}, {term.Pos(isB)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	if res := s.Solve(nil); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat", res.Status)
	}
}

// newListSchema declares T = cons(head: elem, tail: T) | nil.
func newListSchema(store *term.Store, elem *term.Sort) *datatype.Schema {
	sort := store.NewSort(term.SortDatatype, "List", term.CardUnknown)
	nilFn := store.NewConstructor("nil", nil, sort, 0)
	consFn := store.NewConstructor("cons", []*term.Sort{elem, sort}, sort, 1)
	nilTester := store.NewTester("is-nil", sort, 0)
	consTester := store.NewTester("is-cons", sort, 1)
	head := store.NewSelector("head", sort, elem, 1, 0)
	tail := store.NewSelector("tail", sort, sort, 1, 1)
	return &datatype.Schema{
		Sort: sort,
		Cstors: []*datatype.Cstor{
			{Fn: nilFn, Tester: nilTester},
			{Fn: consFn, Tester: consTester, Selectors: []*term.FuncSymbol{head, tail}},
		},
	}
}

func TestDatatypeInjectivityAndSelectors(t *testing.T) {
	store := term.NewStore()
	elem := store.NewSort(term.SortUninterpreted, "Elem", term.CardInfinite)
	schema := newListSchema(store, elem)

	reg := datatype.NewRegistry()
	reg.Declare(schema)
	s := smt.Create(store, reg, nil, smt.DefaultOptions)

	consFn := schema.Cstors[1].Fn
	x := store.NewConst("x", elem)
	u := store.NewConst("u", elem)
	y := store.NewConst("y", schema.Sort)
	v := store.NewConst("v", schema.Sort)

	consXY := store.NewApp(consFn, x, y)
	consUV := store.NewApp(consFn, u, v)
	eq := store.NewEq(consXY, consUV)

	if err := s.Assume([][]term.Lit{{term.Pos(eq)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	res := s.Solve(nil)
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve status = %v, want Sat", res.Status)
	}

	m := res.Model()
	if !m.Eval(term.Pos(store.NewEq(x, u))) {
		t.Errorf("Eval(x = u) = false, want true (injectivity)")
	}
	if !m.Eval(term.Pos(store.NewEq(y, v))) {
		t.Errorf("Eval(y = v) = false, want true (injectivity)")
	}
}

// newTreeSchema declares T = node(left: T, right: T) | leaf.
func newTreeSchema(store *term.Store) *datatype.Schema {
	sort := store.NewSort(term.SortDatatype, "Tree", term.CardUnknown)
	leafFn := store.NewConstructor("leaf", nil, sort, 0)
	nodeFn := store.NewConstructor("node", []*term.Sort{sort, sort}, sort, 1)
	leafTester := store.NewTester("is-leaf", sort, 0)
	nodeTester := store.NewTester("is-node", sort, 1)
	left := store.NewSelector("left", sort, sort, 1, 0)
	right := store.NewSelector("right", sort, sort, 1, 1)
	return &datatype.Schema{
		Sort: sort,
		Cstors: []*datatype.Cstor{
			{Fn: leafFn, Tester: leafTester},
			{Fn: nodeFn, Tester: nodeTester, Selectors: []*term.FuncSymbol{left, right}},
		},
	}
}

func TestDatatypeAcyclicity(t *testing.T) {
	store := term.NewStore()
	schema := newTreeSchema(store)

	reg := datatype.NewRegistry()
	reg.Declare(schema)
	s := smt.Create(store, reg, nil, smt.DefaultOptions)

	nodeFn := schema.Cstors[1].Fn
	x := store.NewConst("x", schema.Sort)
	y := store.NewConst("y", schema.Sort)
	w1 := store.NewConst("w1", schema.Sort)
	w2 := store.NewConst("w2", schema.Sort)

	xIsNodeY := store.NewEq(x, store.NewApp(nodeFn, y, w1))
	yIsNodeX := store.NewEq(y, store.NewApp(nodeFn, x, w2))

	err := s.Assume([][]term.Lit{
		{term.Pos(xIsNodeY)},
		{term.Pos(yIsNodeX)},
	})
	if err != nil {
		t.Fatalf("Assume: %v", err)
	}

	if res := s.Solve(nil); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat", res.Status)
	}
}

func TestDatatypeFiniteCaseSplit(t *testing.T) {
	store := term.NewStore()
	_, schema := newEnumSchema(store, "T", "A", "B")

	reg := datatype.NewRegistry()
	reg.Declare(schema)
	s := smt.Create(store, reg, nil, smt.DefaultOptions)

	x := store.NewConst("x", schema.Sort)
	isA := store.NewApp(schema.Cstors[0].Tester, x)

	// A tautology that still forces x (via is-A(x)'s argument) into the
	// congruence closure, without constraining its value, so the
	// finite-type case-split has something to decide.
	if err := s.Assume([][]term.Lit{{term.Pos(isA), term.NegLit(isA)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	res := s.Solve(nil)
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve status = %v, want Sat", res.Status)
	}

	m := res.Model()
	isB := store.NewApp(schema.Cstors[1].Tester, x)
	if m.Eval(term.Pos(isA)) == m.Eval(term.Pos(isB)) {
		t.Errorf("expected exactly one of is-A(x)/is-B(x) to hold, got is-A=%v is-B=%v",
			m.Eval(term.Pos(isA)), m.Eval(term.Pos(isB)))
	}

	v := m.Value(x)
	if v == nil || v.Cstor == nil {
		t.Fatalf("Value(x) = %v, want a concrete constructor", v)
	}
}

func TestCongruenceUnsat(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	elem := store.NewSort(term.SortUninterpreted, "Elem", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)
	fa := store.NewApp(f, a)
	fb := store.NewApp(f, b)

	err := s.Assume([][]term.Lit{
		{term.Pos(store.NewEq(a, b))},
		{term.NegLit(store.NewEq(fa, fb))},
	})
	if err != nil {
		t.Fatalf("Assume: %v", err)
	}

	if res := s.Solve(nil); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat (a = b forces f(a) = f(b))", res.Status)
	}
}

func TestCongruenceModelEval(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	elem := store.NewSort(term.SortUninterpreted, "Elem", term.CardInfinite)
	f := store.NewFunc("f", []*term.Sort{elem}, elem)
	a := store.NewConst("a", elem)
	b := store.NewConst("b", elem)

	if err := s.Assume([][]term.Lit{{term.Pos(store.NewEq(a, b))}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	res := s.Solve(nil)
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve status = %v, want Sat", res.Status)
	}

	// f(a)/f(b) were never part of any assertion; evaluation interns them
	// on the fly and must still see the congruence.
	fa := store.NewApp(f, a)
	fb := store.NewApp(f, b)
	if !res.Model().Eval(term.Pos(store.NewEq(fa, fb))) {
		t.Error("Eval(f(a) = f(b)) = false under a = b, want true")
	}
}

func TestPopRetractsNonUnitClause(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())

	if err := s.Assume([][]term.Lit{{term.Pos(a)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	s.PushLevel()
	if err := s.Assume([][]term.Lit{{term.NegLit(a), term.NegLit(b)}}); err != nil {
		t.Fatalf("Assume under push: %v", err)
	}
	if res := s.Solve([]term.Lit{term.Pos(b)}); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve(b) under push = %v, want Unsat", res.Status)
	}
	s.PopLevels(1)

	// With the pushed clause retracted, a and b are compatible again.
	res := s.Solve([]term.Lit{term.Pos(b)})
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve(b) after pop = %v, want Sat", res.Status)
	}
	if !res.Model().Eval(term.Pos(a)) || !res.Model().Eval(term.Pos(b)) {
		t.Error("expected both a and b true after the pop")
	}
}

// TestDatatypeExhaustiveness pins down the other half of the case-split
// contract: denying every constructor of a finite datatype term is
// unsatisfiable, even though no single assertion is contradictory.
func TestDatatypeExhaustiveness(t *testing.T) {
	store := term.NewStore()
	_, schema := newEnumSchema(store, "T", "A", "B")

	reg := datatype.NewRegistry()
	reg.Declare(schema)
	s := smt.Create(store, reg, nil, smt.DefaultOptions)

	x := store.NewConst("x", schema.Sort)
	isA := store.NewApp(schema.Cstors[0].Tester, x)
	isB := store.NewApp(schema.Cstors[1].Tester, x)

	if err := s.Assume([][]term.Lit{{term.NegLit(isA)}, {term.NegLit(isB)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	if res := s.Solve(nil); res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat (x must be some constructor)", res.Status)
	}
}

func TestUnsatCoreExcludesUnrelatedAssumptions(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	a := store.NewConst("a", store.BoolSort())
	b := store.NewConst("b", store.BoolSort())
	c := store.NewConst("c", store.BoolSort())

	// a and b can't both hold; c is unconstrained.
	if err := s.Assume([][]term.Lit{{term.NegLit(a), term.NegLit(b)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	res := s.Solve([]term.Lit{term.Pos(a), term.Pos(b), term.Pos(c)})
	if res.Status != smt.StatusUnsat {
		t.Fatalf("Solve status = %v, want Unsat", res.Status)
	}

	want := []term.Lit{term.Pos(a), term.Pos(b)}
	if diff := cmp.Diff(want, res.UnsatCore(), sortLits); diff != "" {
		t.Errorf("UnsatCore() mismatch (-want +got):\n%s", diff)
	}
}

func TestPushLevelPopLevelsRoundTrip(t *testing.T) {
	store := term.NewStore()
	s := smt.Create(store, nil, nil, smt.DefaultOptions)

	a := store.NewConst("a", store.BoolSort())
	if err := s.Assume([][]term.Lit{{term.Pos(a)}}); err != nil {
		t.Fatalf("Assume: %v", err)
	}

	s.PushLevel()
	b := store.NewConst("b", store.BoolSort())
	if err := s.Assume([][]term.Lit{{term.Pos(b)}}); err != nil {
		t.Fatalf("Assume under push: %v", err)
	}
	if res := s.Solve(nil); res.Status != smt.StatusSat {
		t.Fatalf("Solve status = %v, want Sat", res.Status)
	}
	s.PopLevels(1)

	// b's clause should be gone: asserting !b must be satisfiable again.
	if err := s.Assume([][]term.Lit{{term.NegLit(b)}}); err != nil {
		t.Fatalf("Assume !b: %v", err)
	}
	res := s.Solve(nil)
	if res.Status != smt.StatusSat {
		t.Fatalf("Solve status after pop = %v, want Sat", res.Status)
	}
	if res.Model().Eval(term.Pos(b)) {
		t.Errorf("Eval(b) = true after popping the level that asserted b")
	}
}
