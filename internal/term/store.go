package term

import (
	"fmt"
	"strings"
)

// Store owns the term arena and the hash-consing index (spec.md §9:
// "realize as arena+indices": terms never hold pointers to each other,
// only ids into this store). The zero value is not usable; use
// NewStore.
type Store struct {
	terms []Term
	index map[string]ID

	sorts []Sort
	funcs []FuncSymbol

	boolSort *Sort
}

func NewStore() *Store {
	s := &Store{index: map[string]ID{}}
	s.boolSort = s.NewSort(SortBool, "Bool", CardFinite)
	return s
}

func (s *Store) BoolSort() *Sort { return s.boolSort }

func (s *Store) NewSort(kind SortKind, name string, base Cardinality) *Sort {
	id := len(s.sorts)
	s.sorts = append(s.sorts, Sort{ID: id, Kind: kind, Name: name, Base: base})
	return &s.sorts[id]
}

func (s *Store) NewFunc(name string, params []*Sort, result *Sort) *FuncSymbol {
	id := len(s.funcs)
	s.funcs = append(s.funcs, FuncSymbol{ID: id, Name: name, Params: params, Result: result})
	return &s.funcs[id]
}

// NewConstructor declares a datatype constructor function symbol.
// cstorIndex is its position in the owning datatype's constructor list.
func (s *Store) NewConstructor(name string, params []*Sort, result *Sort, cstorIndex int) *FuncSymbol {
	f := s.NewFunc(name, params, result)
	f.Role = RoleConstructor
	f.CstorIndex = cstorIndex
	return f
}

// NewSelector declares sel_{C,i}: owner -> result, the i-th field
// accessor of constructor cstorIndex.
func (s *Store) NewSelector(name string, owner, result *Sort, cstorIndex, argIndex int) *FuncSymbol {
	f := s.NewFunc(name, []*Sort{owner}, result)
	f.Role = RoleSelector
	f.CstorIndex = cstorIndex
	f.ArgIndex = argIndex
	return f
}

// NewTester declares is-C: owner -> Bool.
func (s *Store) NewTester(name string, owner *Sort, cstorIndex int) *FuncSymbol {
	f := s.NewFunc(name, []*Sort{owner}, s.boolSort)
	f.Role = RoleTester
	f.CstorIndex = cstorIndex
	return f
}

func (s *Store) intern(key string, build func() Term) ID {
	if id, ok := s.index[key]; ok {
		return id
	}
	id := ID(len(s.terms))
	t := build()
	t.id = id
	s.terms = append(s.terms, t)
	s.index[key] = id
	return id
}

func (s *Store) NewConst(name string, sort *Sort) ID {
	key := fmt.Sprintf("c:%d:%s", sort.ID, name)
	return s.intern(key, func() Term {
		return Term{kind: KindConst, sort: sort, name: name}
	})
}

func (s *Store) NewApp(fn *FuncSymbol, args ...ID) ID {
	key := appKey(fn.ID, args)
	return s.intern(key, func() Term {
		return Term{kind: KindApp, sort: fn.Result, fn: fn, args: append([]ID(nil), args...)}
	})
}

func appKey(fnID int, args []ID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "a:%d", fnID)
	for _, a := range args {
		fmt.Fprintf(&sb, ":%d", a)
	}
	return sb.String()
}

// NewEq returns the equality between a and b, canonically ordering the
// two sides by ID (spec.md §3's "stored term is positive under a
// canonical-sign rule... for equalities the two sides are ordered") so
// that `a = b` and `b = a` intern to the same term.
func (s *Store) NewEq(a, b ID) ID {
	if a > b {
		a, b = b, a
	}
	key := fmt.Sprintf("e:%d:%d", a, b)
	return s.intern(key, func() Term {
		return Term{kind: KindEq, sort: s.boolSort, args: []ID{a, b}}
	})
}

func (s *Store) NewNot(a ID) ID {
	key := fmt.Sprintf("n:%d", a)
	return s.intern(key, func() Term {
		return Term{kind: KindNot, sort: s.boolSort, args: []ID{a}}
	})
}

func (s *Store) NewAnd(xs ...ID) ID { return s.newConn(KindAnd, "j", xs) }
func (s *Store) NewOr(xs ...ID) ID  { return s.newConn(KindOr, "o", xs) }

func (s *Store) newConn(kind Kind, tag string, xs []ID) ID {
	var sb strings.Builder
	sb.WriteString(tag)
	for _, x := range xs {
		fmt.Fprintf(&sb, ":%d", x)
	}
	return s.intern(sb.String(), func() Term {
		return Term{kind: kind, sort: s.boolSort, args: append([]ID(nil), xs...)}
	})
}

func (s *Store) Term(id ID) *Term { return &s.terms[id] }

func (s *Store) NumTerms() int { return len(s.terms) }
