package datatype

import "github.com/qsmtlab/qsmt/internal/term"

// Cardinalities computes, for every schema in a Registry, whether it is
// Finite or Infinite, plus a base constructor usable to complete a model
// (spec.md §4.8: "compute Finite or Infinite via fixpoint... also select
// a base_cstor per datatype").
type Cardinalities struct {
	reg  *Registry
	card map[*term.Sort]term.Cardinality
	base map[*term.Sort]*Cstor
}

// ComputeCardinalities seeds every datatype sort Infinite and recomputes
// to a fixpoint: a datatype is Finite iff every one of its constructors'
// argument types are all Finite. Seeding Infinite is what makes direct
// recursion (a constructor argument of the datatype's own sort) correctly
// stay Infinite instead of being treated as vacuously finite.
func ComputeCardinalities(reg *Registry) *Cardinalities {
	c := &Cardinalities{
		reg:  reg,
		card: map[*term.Sort]term.Cardinality{},
		base: map[*term.Sort]*Cstor{},
	}
	for sort := range reg.bySort {
		c.card[sort] = term.CardInfinite
	}

	for changed := true; changed; {
		changed = false
		for sort, schema := range reg.bySort {
			if c.card[sort] == term.CardFinite {
				continue
			}
			if c.datatypeFinite(schema) {
				c.card[sort] = term.CardFinite
				changed = true
			}
		}
	}

	for sort, schema := range reg.bySort {
		c.base[sort] = c.pickBaseCstor(schema)
	}
	return c
}

func (c *Cardinalities) sortFinite(s *term.Sort) bool {
	if s.Kind != term.SortDatatype {
		return s.Base == term.CardFinite
	}
	return c.card[s] == term.CardFinite
}

func (c *Cardinalities) cstorFinite(cstor *Cstor) bool {
	for _, p := range cstor.Fn.Params {
		if !c.sortFinite(p) {
			return false
		}
	}
	return true
}

func (c *Cardinalities) datatypeFinite(schema *Schema) bool {
	for _, cstor := range schema.Cstors {
		if !c.cstorFinite(cstor) {
			return false
		}
	}
	return true
}

func directlyRecursive(cstor *Cstor, sort *term.Sort) bool {
	for _, p := range cstor.Fn.Params {
		if p == sort {
			return true
		}
	}
	return false
}

// pickBaseCstor prefers a constructor whose arguments are already known
// finite, falling back to any constructor that isn't directly recursive,
// and finally to the first constructor declared.
func (c *Cardinalities) pickBaseCstor(schema *Schema) *Cstor {
	for _, cstor := range schema.Cstors {
		if c.cstorFinite(cstor) {
			return cstor
		}
	}
	for _, cstor := range schema.Cstors {
		if !directlyRecursive(cstor, schema.Sort) {
			return cstor
		}
	}
	if len(schema.Cstors) > 0 {
		return schema.Cstors[0]
	}
	return nil
}

// Of returns sort's computed cardinality.
func (c *Cardinalities) Of(sort *term.Sort) term.Cardinality {
	if sort.Kind != term.SortDatatype {
		return sort.Base
	}
	return c.card[sort]
}

// BaseCstor returns the constructor chosen to complete a model for sort.
func (c *Cardinalities) BaseCstor(sort *term.Sort) *Cstor {
	return c.base[sort]
}
