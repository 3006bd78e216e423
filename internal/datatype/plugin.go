package datatype

import (
	"github.com/qsmtlab/qsmt/internal/cc"
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

// classInfo is what a class root knows once some member of it is a
// constructor application.
type classInfo struct {
	cstor *Cstor
	args  []cc.NodeID // CC nodes of the constructor's arguments, by position
	node  cc.NodeID    // the constructor-application node this came from
}

type parentKind uint8

const (
	parentTester parentKind = iota
	parentSelector
)

// parentRef is one is-C(v) or sel_{C,i}(v) application whose argument v
// belongs to the class it is filed under.
type parentRef struct {
	kind     parentKind
	node     cc.NodeID
	cstor    *Cstor
	argIndex int // valid iff kind == parentSelector
}

type testerInfo struct {
	node  cc.NodeID
	owner cc.NodeID
	cstor *Cstor
}

// Theory is the datatype decision procedure, registered into a
// cc.Closure via RegisterPlugin (spec.md §4.8). State mutations that
// must survive backtracking (cstors, parents) are recorded on the
// owning Closure's Journal so they undo in the same order as CC's own
// union-find mutations; to_decide/caseSplitDone/testers are monotonic
// (once true, permanently true) and need no journal entry, matching how
// a once-added lemma clause is never retracted either.
type Theory struct {
	reg  *Registry
	card *Cardinalities

	cstors  map[cc.NodeID]*classInfo
	parents map[cc.NodeID][]parentRef

	toDecide      map[cc.NodeID]bool
	caseSplitDone map[cc.NodeID]bool

	testers []testerInfo

	// cstorApps permanently lists every constructor-application node ever
	// created. cstors entries are journaled away with the merges that made
	// them, but the nodes themselves outlive backtracking; PartialCheck
	// re-derives any registration a pop discarded from this list.
	cstorApps []cc.NodeID
}

// NewTheory builds a datatype theory over the schemas declared in reg.
// Call ComputeCardinalities-backed cardinalities are derived internally;
// reg must be fully populated before the first term is added to the
// Closure this Theory is registered with.
func NewTheory(reg *Registry) *Theory {
	return &Theory{
		reg:           reg,
		card:          ComputeCardinalities(reg),
		cstors:        map[cc.NodeID]*classInfo{},
		parents:       map[cc.NodeID][]parentRef{},
		toDecide:      map[cc.NodeID]bool{},
		caseSplitDone: map[cc.NodeID]bool{},
	}
}

func (t *Theory) schemaOf(s *term.Sort) *Schema {
	schema, _ := t.reg.Schema(s)
	return schema
}

func combineExplanations(a, b theoryapi.Explanation) theoryapi.Explanation {
	return func() []satcore.Literal {
		return append(a(), b()...)
	}
}

// --- cc.Plugin -------------------------------------------------------

func (t *Theory) OnNewTerm(c *cc.Closure, n cc.NodeID) {
	store := c.Store()
	tm := store.Term(c.Term(n))

	if tm.Sort().Kind == term.SortDatatype {
		if t.card.Of(tm.Sort()) == term.CardFinite {
			t.toDecide[n] = true
		}
		// Selector applications are excluded: they are exactly what the
		// expansion mints, and expanding them in turn would chase a
		// recursive field forever.
		if schema := t.schemaOf(tm.Sort()); schema != nil && len(schema.Cstors) == 1 {
			if !isConstructorApp(tm, schema.Cstors[0]) && !isSelectorApp(tm) {
				t.preprocessSingleCstor(c, n, schema.Cstors[0])
			}
		}
	}

	if tm.Kind() != term.KindApp {
		return
	}
	fn := tm.Func()

	switch fn.Role {
	case term.RoleConstructor:
		t.cstorApps = append(t.cstorApps, n)
		t.setCstor(c, c.Find(n), t.infoFor(c, n))

	case term.RoleTester:
		owner := c.NodeOf(tm.Args()[0])
		schema := t.schemaOf(fn.Params[0])
		cstor := schema.Cstors[fn.CstorIndex]
		t.testers = append(t.testers, testerInfo{node: n, owner: owner, cstor: cstor})
		t.addParent(c, c.Find(owner), parentRef{kind: parentTester, node: n, cstor: cstor})
		t.reduceTester(c, n, owner, cstor)

	case term.RoleSelector:
		owner := c.NodeOf(tm.Args()[0])
		schema := t.schemaOf(fn.Params[0])
		cstor := schema.Cstors[fn.CstorIndex]
		t.addParent(c, c.Find(owner), parentRef{kind: parentSelector, node: n, cstor: cstor, argIndex: fn.ArgIndex})
		t.reduceSelector(c, n, owner, cstor, fn.ArgIndex)
	}
}

func isConstructorApp(tm *term.Term, cstor *Cstor) bool {
	return tm.Kind() == term.KindApp && tm.Func() == cstor.Fn
}

func isSelectorApp(tm *term.Term) bool {
	return tm.Kind() == term.KindApp && tm.Func().Role == term.RoleSelector
}

// infoFor rebuilds the classInfo for a constructor-application node from
// its term structure alone.
func (t *Theory) infoFor(c *cc.Closure, n cc.NodeID) *classInfo {
	tm := c.Store().Term(c.Term(n))
	schema := t.schemaOf(tm.Func().Result)
	cstor := schema.Cstors[tm.Func().CstorIndex]
	args := make([]cc.NodeID, len(tm.Args()))
	for i, a := range tm.Args() {
		args[i] = c.NodeOf(a)
	}
	return &classInfo{cstor: cstor, args: args, node: n}
}

// repairCstors re-registers every constructor application whose class
// lost its cstors entry to backtracking, applying the same disjointness
// and injectivity rules OnMerge would have. Registered applications hit
// the info.node == n fast path, so the pass is cheap in the steady
// state.
func (t *Theory) repairCstors(c *cc.Closure) *theoryapi.Conflict {
	for _, n := range t.cstorApps {
		root := c.Find(n)
		info, ok := t.cstors[root]
		if !ok {
			t.setCstor(c, root, t.infoFor(c, n))
			continue
		}
		if info.node == n {
			continue
		}
		mine := t.infoFor(c, n)
		if mine.cstor != info.cstor {
			lits := c.Explain(n, info.node)
			return c.Trace(&theoryapi.Conflict{Literals: lits, Rule: "dt-disjoint"})
		}
		for i := range mine.args {
			a, b := mine.args[i], info.args[i]
			expl := func() []satcore.Literal { return c.Explain(n, info.node) }
			if conf := c.Merge(a, b, expl); conf != nil {
				return conf
			}
		}
	}
	return nil
}

// preprocessSingleCstor implements "for a term of datatype type whose
// datatype has a single constructor C, assert t = C(sel_{C,0}(t), ...,
// sel_{C,k}(t)) once, skip further case-split": the equality holds
// unconditionally, so its Explanation is the empty antecedent set.
func (t *Theory) preprocessSingleCstor(c *cc.Closure, n cc.NodeID, cstor *Cstor) *theoryapi.Conflict {
	store := c.Store()
	selTerms := make([]term.ID, len(cstor.Selectors))
	for i, sel := range cstor.Selectors {
		selTerms[i] = store.NewApp(sel, c.Term(n))
	}
	built := store.NewApp(cstor.Fn, selTerms...)
	builtNode := c.AddTerm(built)
	return c.Merge(n, builtNode, theoryapi.Because())
}

// reduceTester implements "if u's class has a known constructor C',
// immediately merge is-C(u) with true/false according to C =? C'".
func (t *Theory) reduceTester(c *cc.Closure, testerNode, owner cc.NodeID, cstor *Cstor) *theoryapi.Conflict {
	info, ok := t.cstors[c.Find(owner)]
	if !ok {
		return nil
	}
	target := c.TrueNode()
	if info.cstor != cstor {
		target = c.FalseNode()
	}
	expl := func() []satcore.Literal { return c.Explain(owner, info.node) }
	return c.Merge(testerNode, target, expl)
}

// reduceSelector implements "if u's class has constructor C(a_0,...,a_k),
// merge sel_{C,i}(u) with a_i".
func (t *Theory) reduceSelector(c *cc.Closure, selNode, owner cc.NodeID, cstor *Cstor, argIndex int) *theoryapi.Conflict {
	info, ok := t.cstors[c.Find(owner)]
	if !ok || info.cstor != cstor {
		return nil
	}
	expl := func() []satcore.Literal { return c.Explain(owner, info.node) }
	return c.Merge(selNode, info.args[argIndex], expl)
}

// OnPreMerge fires the parent-set reductions spec.md §4.8 describes:
// whichever side already has a constructor reduces every is-C/selector
// application filed against the other side's class, before the merge
// itself commits.
func (t *Theory) OnPreMerge(c *cc.Closure, r1, r2 cc.NodeID, expl theoryapi.Explanation) *theoryapi.Conflict {
	if conf := t.propagateFromParents(c, r1, r2, expl); conf != nil {
		return conf
	}
	return t.propagateFromParents(c, r2, r1, expl)
}

func (t *Theory) propagateFromParents(c *cc.Closure, from, to cc.NodeID, mergeExpl theoryapi.Explanation) *theoryapi.Conflict {
	info, ok := t.cstors[from]
	if !ok {
		return nil
	}
	for _, ref := range t.parents[to] {
		fromExpl := func() []satcore.Literal { return c.Explain(from, info.node) }
		combined := combineExplanations(mergeExpl, fromExpl)

		switch ref.kind {
		case parentTester:
			target := c.TrueNode()
			if ref.cstor != info.cstor {
				target = c.FalseNode()
			}
			if conf := c.Merge(ref.node, target, combined); conf != nil {
				return conf
			}
		case parentSelector:
			if ref.cstor != info.cstor {
				continue
			}
			if conf := c.Merge(ref.node, info.args[ref.argIndex], combined); conf != nil {
				return conf
			}
		}
	}
	return nil
}

// OnMerge implements injectivity/disjointness and transfers cstors/
// parents bookkeeping onto the surviving root (the "monoidal map"
// spec.md §4.8 describes: concatenate parent lists, check cstor
// uniqueness).
func (t *Theory) OnMerge(c *cc.Closure, oldRoot, newRoot cc.NodeID) *theoryapi.Conflict {
	oldInfo, oldHad := t.cstors[oldRoot]
	newInfo, newHad := t.cstors[newRoot]

	switch {
	case oldHad && newHad:
		if oldInfo.cstor != newInfo.cstor {
			lits := c.Explain(oldRoot, newRoot)
			lits = append(lits, c.Explain(oldRoot, oldInfo.node)...)
			lits = append(lits, c.Explain(newRoot, newInfo.node)...)
			return c.Trace(&theoryapi.Conflict{Literals: lits, Rule: "dt-disjoint"})
		}
		for i := range oldInfo.args {
			a, b := oldInfo.args[i], newInfo.args[i]
			expl := func() []satcore.Literal { return c.Explain(oldRoot, newRoot) }
			if conf := c.Merge(a, b, expl); conf != nil {
				return conf
			}
		}
	case oldHad && !newHad:
		t.setCstor(c, newRoot, oldInfo)
	}

	t.mergeParents(c, oldRoot, newRoot)
	return nil
}

// PartialCheck implements "for each asserted is-C(t), assert t =
// C(sel_{C,0}(t), ..., sel_{C,k}(t))", detecting "asserted" as the
// tester's class having merged with the permanent true node.
func (t *Theory) PartialCheck(c *cc.Closure) *theoryapi.Conflict {
	if conf := t.repairCstors(c); conf != nil {
		return conf
	}

	store := c.Store()
	for _, ti := range t.testers {
		if !c.Same(ti.node, c.TrueNode()) {
			continue
		}
		selTerms := make([]term.ID, len(ti.cstor.Selectors))
		for i, sel := range ti.cstor.Selectors {
			selTerms[i] = store.NewApp(sel, c.Term(ti.owner))
		}
		built := store.NewApp(ti.cstor.Fn, selTerms...)
		builtNode := c.AddTerm(built)
		expl := func() []satcore.Literal { return c.Explain(ti.node, c.TrueNode()) }
		if conf := c.Merge(ti.owner, builtNode, expl); conf != nil {
			return conf
		}
	}
	return nil
}

// FinalCheck runs acyclicity checking, then (if the assignment is still
// consistent) resolves any remaining case-splits.
func (t *Theory) FinalCheck(c *cc.Closure) *theoryapi.Conflict {
	if conf := t.checkAcyclic(c); conf != nil {
		return conf
	}
	return t.caseSplit(c)
}

// --- bookkeeping helpers, journaled through the shared cc.Journal -----

func (t *Theory) setCstor(c *cc.Closure, root cc.NodeID, info *classInfo) {
	if _, ok := t.cstors[root]; ok {
		return
	}
	c.Journal().Record(func() { delete(t.cstors, root) })
	t.cstors[root] = info
}

func (t *Theory) recordParents(c *cc.Closure, root cc.NodeID, refs []parentRef) {
	old, had := t.parents[root]
	c.Journal().Record(func() {
		if had {
			t.parents[root] = old
		} else {
			delete(t.parents, root)
		}
	})
	t.parents[root] = refs
}

func (t *Theory) addParent(c *cc.Closure, root cc.NodeID, ref parentRef) {
	t.recordParents(c, root, append(append([]parentRef(nil), t.parents[root]...), ref))
}

func (t *Theory) mergeParents(c *cc.Closure, oldRoot, newRoot cc.NodeID) {
	oldParents := t.parents[oldRoot]
	if len(oldParents) == 0 {
		return
	}
	merged := append(append([]parentRef(nil), t.parents[newRoot]...), oldParents...)
	t.recordParents(c, newRoot, merged)
}
