package datatype

import (
	"fmt"

	"github.com/qsmtlab/qsmt/internal/cc"
)

// Value is a model witness for a datatype-sorted term (spec.md §4.8's
// "model generation"): a constructor applied to the recursively built
// models of its arguments, or (for a finite class nothing ever forced a
// case-split on) the datatype's base constructor applied to freshly
// named witnesses.
type Value struct {
	Cstor *Cstor
	Args  []*Value
	Fresh bool
}

func (v *Value) String() string {
	if v == nil {
		return "?"
	}
	if v.Cstor == nil {
		return "_"
	}
	if len(v.Args) == 0 {
		return v.Cstor.Fn.Name
	}
	s := "(" + v.Cstor.Fn.Name
	for _, a := range v.Args {
		s += " " + a.String()
	}
	return s + ")"
}

// ModelOf builds n's model value: if its class already carries a known
// constructor, recurse into the constructor's arguments; otherwise n's
// class was never forced to pick one (a finite datatype left undecided,
// which final-check's case-split should have ruled out, or an infinite
// one genuinely free), so synthesize the sort's base constructor with
// fresh, uninterpreted argument witnesses.
func (t *Theory) ModelOf(c *cc.Closure, n cc.NodeID) *Value {
	root := c.Find(n)
	if info, ok := t.cstors[root]; ok {
		v := &Value{Cstor: info.cstor}
		for _, a := range info.args {
			v.Args = append(v.Args, t.ModelOf(c, a))
		}
		return v
	}

	tm := c.Store().Term(c.Term(n))
	base := t.card.BaseCstor(tm.Sort())
	v := &Value{Cstor: base, Fresh: true}
	for range base.Fn.Params {
		v.Args = append(v.Args, &Value{Fresh: true})
	}
	return v
}

func (v *Value) GoString() string {
	return fmt.Sprintf("Value(%s)", v.String())
}
