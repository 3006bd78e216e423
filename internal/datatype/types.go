// Package datatype implements the datatype theory (spec.md §4.8) as a
// cc.Plugin: injectivity and disjointness on merge, is-C/selector
// reduction, acyclicity checking and exhaustive case-split, plus model
// generation for datatype-sorted terms. It is the one illustrative
// theory client the SAT<->CC<->theory stack is built to support.
package datatype

import "github.com/qsmtlab/qsmt/internal/term"

// Cstor is one constructor of a datatype: its function symbol, the
// tester that recognizes values built with it, and its selectors in
// argument order.
type Cstor struct {
	Fn        *term.FuncSymbol // Role == RoleConstructor
	Tester    *term.FuncSymbol // Role == RoleTester
	Selectors []*term.FuncSymbol
}

// Schema is a datatype's full constructor/selector/tester declaration,
// keyed by the term store's Sort the same way internal/cc keys e-nodes
// by term.ID: the term store itself stays theory-agnostic (spec.md §3),
// this package owns the datatype-specific schema.
type Schema struct {
	Sort   *term.Sort
	Cstors []*Cstor // Cstors[i].Fn.CstorIndex == i
}

// Registry owns every declared datatype schema.
type Registry struct {
	bySort map[*term.Sort]*Schema
}

func NewRegistry() *Registry {
	return &Registry{bySort: map[*term.Sort]*Schema{}}
}

// Declare adds schema, keyed by its own Sort.
func (r *Registry) Declare(schema *Schema) {
	r.bySort[schema.Sort] = schema
}

// Schema looks up the declared schema for sort, if any.
func (r *Registry) Schema(sort *term.Sort) (*Schema, bool) {
	s, ok := r.bySort[sort]
	return s, ok
}
