package term

import "testing"

func TestHashConsingSharesIdentity(t *testing.T) {
	s := NewStore()
	elem := s.NewSort(SortUninterpreted, "E", CardInfinite)
	f := s.NewFunc("f", []*Sort{elem, elem}, elem)
	a := s.NewConst("a", elem)
	b := s.NewConst("b", elem)

	if got := s.NewConst("a", elem); got != a {
		t.Errorf("NewConst(a) twice = %v, %v, want identical IDs", a, got)
	}
	fab := s.NewApp(f, a, b)
	if got := s.NewApp(f, a, b); got != fab {
		t.Errorf("NewApp(f, a, b) twice = %v, %v, want identical IDs", fab, got)
	}
	if got := s.NewApp(f, b, a); got == fab {
		t.Error("NewApp(f, b, a) shares the ID of f(a, b): argument order lost")
	}
}

func TestEqualityIsCanonicallyOrdered(t *testing.T) {
	s := NewStore()
	elem := s.NewSort(SortUninterpreted, "E", CardInfinite)
	a := s.NewConst("a", elem)
	b := s.NewConst("b", elem)

	if s.NewEq(a, b) != s.NewEq(b, a) {
		t.Error("a = b and b = a interned to different terms")
	}
}

func TestConstantsDistinctAcrossSorts(t *testing.T) {
	s := NewStore()
	e1 := s.NewSort(SortUninterpreted, "E1", CardInfinite)
	e2 := s.NewSort(SortUninterpreted, "E2", CardInfinite)

	if s.NewConst("a", e1) == s.NewConst("a", e2) {
		t.Error("same-named constants of different sorts share an ID")
	}
}

func TestLitNegationIsInvolution(t *testing.T) {
	s := NewStore()
	p := s.NewConst("p", s.BoolSort())

	l := Pos(p)
	if got := l.Negate().Negate(); got != l {
		t.Errorf("Negate twice = %+v, want %+v", got, l)
	}
	if got := NegLit(p).Abs(); got != Pos(p) {
		t.Errorf("Abs() = %+v, want the positive literal", got)
	}
}
