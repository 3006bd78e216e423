// Package cc implements congruence closure over the hash-consed term
// store (spec.md §3-4): union-find equivalence classes refined by
// function-application congruence, a lazily-evaluated proof forest for
// minimal explanations, and a Plugin extension point through which a
// richer theory (internal/datatype) observes and vetoes merges.
//
// A Closure implements theoryapi.Theory directly: it is the single
// Theory object internal/cdclt drives (spec.md §9's design note, "the
// SAT core takes one Theory object; the theory takes one CC handle").
package cc

import (
	"github.com/qsmtlab/qsmt/internal/proof"
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

// Plugin is implemented by a theory layered on top of congruence closure
// (internal/datatype is the only one in this repo). A Closure owns the
// union-find and proof forest; a Plugin reacts to the structural events
// that matter to it and may veto or react to merges.
type Plugin interface {
	// OnNewTerm is called once, the first time t's node is created,
	// after its arguments (if any) have already been added.
	OnNewTerm(c *Closure, n NodeID)

	// OnPreMerge is called with the current roots of two classes about
	// to be unified and the explanation for why they are about to become
	// equal, so a plugin-derived merge triggered by this one can combine
	// it into its own explanation. Returning a non-nil Conflict vetoes
	// the merge.
	OnPreMerge(c *Closure, r1, r2 NodeID, expl theoryapi.Explanation) *theoryapi.Conflict

	// OnMerge is called after oldRoot's class has been absorbed into
	// newRoot's. It may itself raise a conflict (e.g. the datatype
	// theory's disjointness/injectivity rules) without having been able
	// to detect it in OnPreMerge.
	OnMerge(c *Closure, oldRoot, newRoot NodeID) *theoryapi.Conflict

	// PartialCheck/FinalCheck mirror theoryapi.Theory's methods but
	// operate on the Closure rather than the satcore.Solver directly.
	PartialCheck(c *Closure) *theoryapi.Conflict
	FinalCheck(c *Closure) *theoryapi.Conflict
}

type pendingEq struct {
	a, b NodeID
	expl theoryapi.Explanation
}

type pendingDiseq struct {
	a, b NodeID
	lit  satcore.Literal
}

// Closure is the congruence closure engine. The zero value is not
// usable; use NewClosure.
type Closure struct {
	store *term.Store

	nodes   []enode
	termIdx map[term.ID]NodeID

	sig *signatureTable

	journal *Journal

	forestParent []NodeID
	forestEdge   []*edge

	plugins []Plugin

	// atomOf maps a boolean variable to the term it was bound to via
	// BindLiteral; litOf is its inverse, used to build Because(lit)
	// explanations for merges caused by boolean assertions. boundAtoms
	// lists the atoms in binding order so the theory-propagation scan in
	// PartialCheck visits them deterministically.
	atomOf     map[int]term.ID
	litOf      map[term.ID]satcore.Literal
	boundAtoms []term.ID

	trueNode  NodeID
	falseNode NodeID

	pendingEq    []pendingEq
	pendingDiseq []pendingDiseq
	activeDiseq  []pendingDiseq

	// solver is cached from the most recent OnAssume/PartialCheck/
	// FinalCheck call so a Plugin can reach Solver.AddLemma (e.g. to add
	// a datatype case-split clause) without theoryapi.Theory needing to
	// thread it through Plugin's own, narrower methods.
	solver *satcore.Solver

	// tracer receives a proof step for every conflict this closure (or a
	// registered Plugin, via Trace) raises, so a CC merge veto or a
	// datatype disjointness/acyclicity conflict shows up in the proof
	// graph the same way a level-0 SAT refutation does.
	tracer proof.Tracer
}

// Store exposes the term store backing this closure, so a Plugin can
// inspect term structure (kind, function symbol, arguments) the same way
// Closure itself does.
func (c *Closure) Store() *term.Store { return c.store }

// Journal exposes the shared backtracking journal so a Plugin's own
// state mutations undo in the same LIFO order as CC's own, regardless of
// which one ran first.
func (c *Closure) Journal() *Journal { return c.journal }

// TrueNode and FalseNode are the two permanent nodes every asserted
// boolean atom is equated against.
func (c *Closure) TrueNode() NodeID  { return c.trueNode }
func (c *Closure) FalseNode() NodeID { return c.falseNode }

// Solver returns the satcore.Solver driving this closure, valid once the
// first PartialCheck/FinalCheck call has happened. An OnAssume routed
// through internal/cdclt before that call passes a nil solver.
func (c *Closure) Solver() *satcore.Solver { return c.solver }

// SetTracer installs the proof-step sink Trace reports conflicts
// through. Passing nil installs proof.NoOp.
func (c *Closure) SetTracer(tracer proof.Tracer) {
	if tracer == nil {
		tracer = proof.NoOp{}
	}
	c.tracer = tracer
}

// Trace reports conf through the installed tracer, if any conflict was
// actually raised and the tracer is enabled, then returns conf
// unchanged so a conflict-returning call site can wrap its return value
// unconditionally (a nil conf is a no-op). It is exported so Plugin
// implementations (internal/datatype's disjointness and acyclicity
// conflicts) report through the same sink CC's own conflicts do.
func (c *Closure) Trace(conf *theoryapi.Conflict) *theoryapi.Conflict {
	if conf == nil || !c.tracer.Enabled() {
		return conf
	}
	codes := make([]int, len(conf.Literals))
	for i, l := range conf.Literals {
		codes[i] = int(l)
	}
	c.tracer.AddStep(conf.Rule, nil, codes, nil)
	return conf
}

// LiteralFor returns the boolean literal bound to atom, minting a fresh
// satcore variable and binding it if this is the first time a Plugin
// needs to talk about atom at the boolean level (e.g. a datatype
// case-split synthesizing an is-C(t) clause that no user assertion ever
// mentioned).
func (c *Closure) LiteralFor(atom term.ID) satcore.Literal {
	if lit, ok := c.litOf[atom]; ok {
		return lit
	}
	v := c.solver.AddVariable(true)
	lit := satcore.PositiveLiteral(v)
	c.BindLiteral(lit, atom)
	return lit
}

// NewClosure creates an empty closure over store, pre-populated with the
// True and False boolean constants every asserted atom is equated
// against (spec.md §9's encoding of boolean atoms as terms).
func NewClosure(store *term.Store) *Closure {
	c := &Closure{
		store:   store,
		sig:     newSignatureTable(),
		journal: &Journal{},
		termIdx: map[term.ID]NodeID{},
		atomOf:  map[int]term.ID{},
		litOf:   map[term.ID]satcore.Literal{},
		tracer:  proof.NoOp{},
	}
	trueTerm := store.NewConst("true", store.BoolSort())
	falseTerm := store.NewConst("false", store.BoolSort())
	c.trueNode = c.AddTerm(trueTerm)
	c.falseNode = c.AddTerm(falseTerm)
	return c
}

// RegisterPlugin attaches p, which from this point on observes every new
// term and merge.
func (c *Closure) RegisterPlugin(p Plugin) {
	c.plugins = append(c.plugins, p)
}

// BindLiteral records that lit asserts atom (spec.md §4.6: the SAT
// variable layer and the term layer are connected by such a binding, not
// by the CC knowing anything about DIMACS-style numbering).
func (c *Closure) BindLiteral(lit satcore.Literal, atom term.ID) {
	if _, ok := c.litOf[atom]; !ok {
		c.boundAtoms = append(c.boundAtoms, atom)
	}
	c.atomOf[lit.VarID()] = atom
	c.litOf[atom] = satcore.PositiveLiteral(lit.VarID())
}

func (c *Closure) newNode(t term.ID) NodeID {
	n := NodeID(len(c.nodes))
	c.nodes = append(c.nodes, enode{term: t, parent: n, size: 1, next: n})
	c.forestParent = append(c.forestParent, n)
	c.forestEdge = append(c.forestEdge, nil)
	c.termIdx[t] = n
	return n
}

// AddTerm interns t into the closure, recursively adding its arguments
// first, and schedules a congruence merge if an existing application
// already shares t's signature (spec.md §4.7's "congruence closure
// step"). It is idempotent.
func (c *Closure) AddTerm(t term.ID) NodeID {
	if n, ok := c.termIdx[t]; ok {
		return n
	}

	tm := c.store.Term(t)
	var argNodes []NodeID
	for _, a := range tm.Args() {
		argNodes = append(argNodes, c.AddTerm(a))
	}

	n := c.newNode(t)

	if tm.Kind() == term.KindApp {
		sigArgs := make([]NodeID, len(argNodes))
		for i, a := range argNodes {
			sigArgs[i] = c.Find(a)
		}
		if existing, ok := c.sig.lookup(tm.Func().ID, sigArgs); ok {
			c.schedulePendingCongruence(existing, n, argNodes, sigArgs, tm.Func().ID)
		} else {
			c.registerSig(n, tm.Func().ID, sigArgs)
		}
		// Parent lists hang off the argument node itself, not its current
		// representative: nodes are permanent while representatives come
		// and go with backtracking, and rescanCongruences walks the whole
		// class anyway.
		for _, a := range argNodes {
			c.nodes[a].parentApps = append(c.nodes[a].parentApps, n)
		}
	}

	for _, p := range c.plugins {
		p.OnNewTerm(c, n)
	}

	return n
}

// schedulePendingCongruence queues a merge between two applications that
// were just found to share a signature. The merge itself is deferred to
// PartialCheck like any other, so it is explained the same way (an
// edgeCongruence edge over the argument pairs).
func (c *Closure) schedulePendingCongruence(existing, fresh NodeID, freshArgs, _ []NodeID, fnID int) {
	existingTerm := c.store.Term(c.Term(existing))
	existingArgs := make([]NodeID, len(existingTerm.Args()))
	for i, a := range existingTerm.Args() {
		existingArgs[i] = c.NodeOf(a)
	}

	pairs := make([][2]NodeID, len(freshArgs))
	for i := range freshArgs {
		pairs[i] = [2]NodeID{existingArgs[i], freshArgs[i]}
	}

	c.pendingEq = append(c.pendingEq, pendingEq{
		a: existing,
		b: fresh,
		expl: func() []satcore.Literal {
			e := &edge{kind: edgeCongruence, argPairs: pairs}
			return c.explainEdge(e)
		},
	})
}

// Merge unifies n1 and n2's classes, labeling the proof-forest edge with
// expl. It returns a non-nil Conflict if a registered plugin vetoes or
// objects to the merge.
func (c *Closure) Merge(n1, n2 NodeID, expl theoryapi.Explanation) *theoryapi.Conflict {
	r1, r2 := c.Find(n1), c.Find(n2)
	if r1 == r2 {
		return nil
	}

	for _, p := range c.plugins {
		if conf := p.OnPreMerge(c, r1, r2, expl); conf != nil {
			return c.Trace(conf)
		}
	}

	c.attachProofEdge(n1, n2, &edge{kind: edgeLit, lit: expl})

	if c.nodes[r1].size < c.nodes[r2].size {
		r1, r2 = r2, r1
	}
	c.unionClasses(r1, r2)

	for _, p := range c.plugins {
		if conf := p.OnMerge(c, r2, r1); conf != nil {
			return c.Trace(conf)
		}
	}

	return c.rescanCongruences(r1)
}

// unionClasses makes r2's class a child of r1's, splicing their circular
// member lists together. Both arguments must already be roots.
func (c *Closure) unionClasses(r1, r2 NodeID) {
	size1, size2 := c.nodes[r1].size, c.nodes[r2].size
	next1, next2 := c.nodes[r1].next, c.nodes[r2].next

	c.journal.Record(func() {
		c.nodes[r2].parent = r2
		c.nodes[r1].size = size1
		c.nodes[r1].next = next1
		c.nodes[r2].next = next2
	})

	c.nodes[r2].parent = r1
	c.nodes[r1].size = size1 + size2
	c.nodes[r1].next = next2
	c.nodes[r2].next = next1
}

// rescanCongruences looks for new signature collisions among the
// parents of everything that just became r's class, now that their
// arguments' representatives may have changed.
func (c *Closure) rescanCongruences(r NodeID) *theoryapi.Conflict {
	var apps []NodeID
	c.Class(r, func(n NodeID) {
		apps = append(apps, c.nodes[n].parentApps...)
	})

	for _, app := range apps {
		tm := c.store.Term(c.Term(app))
		if tm.Kind() != term.KindApp {
			continue
		}
		rawArgs := make([]NodeID, len(tm.Args()))
		for i, a := range tm.Args() {
			rawArgs[i] = c.NodeOf(a)
		}
		repArgs := make([]NodeID, len(rawArgs))
		for i, a := range rawArgs {
			repArgs[i] = c.Find(a)
		}
		if c.sigCurrent(app, tm.Func().ID, repArgs) {
			continue
		}
		if existing, ok := c.sig.lookup(tm.Func().ID, repArgs); ok {
			c.unregisterSig(app)
			if c.Find(existing) != c.Find(app) {
				c.schedulePendingCongruence(existing, app, rawArgs, repArgs, tm.Func().ID)
			}
		} else {
			c.registerSig(app, tm.Func().ID, repArgs)
		}
	}

	return c.Flush()
}

// Flush drains the pending-equality queue into the union-find. Besides
// PartialCheck, model evaluation calls it after interning a term the
// search never saw, so a congruence scheduled by that addition is
// reflected before the class is inspected.
func (c *Closure) Flush() *theoryapi.Conflict {
	for _, m := range c.pendingEq {
		if conf := c.Merge(m.a, m.b, m.expl); conf != nil {
			c.pendingEq = nil
			return conf
		}
	}
	c.pendingEq = nil
	return nil
}

// OnAssume records the equality or disequality lit asserts, deferring
// the actual union-find work to PartialCheck (theoryapi.Theory's
// OnAssume has no way to report a conflict).
func (c *Closure) OnAssume(s *satcore.Solver, lit satcore.Literal) {
	c.solver = s
	atom, ok := c.atomOf[lit.VarID()]
	if !ok {
		return
	}

	tm := c.store.Term(atom)
	if tm.Kind() == term.KindEq {
		a, b := c.NodeOf(tm.Args()[0]), c.NodeOf(tm.Args()[1])
		if lit.IsPositive() {
			c.pendingEq = append(c.pendingEq, pendingEq{a: a, b: b, expl: theoryapi.Because(lit)})
		} else {
			c.pendingDiseq = append(c.pendingDiseq, pendingDiseq{a: a, b: b, lit: lit})
		}
		return
	}

	n := c.NodeOf(atom)
	if lit.IsPositive() {
		c.pendingEq = append(c.pendingEq, pendingEq{a: n, b: c.trueNode, expl: theoryapi.Because(lit)})
	} else {
		c.pendingEq = append(c.pendingEq, pendingEq{a: n, b: c.falseNode, expl: theoryapi.Because(lit)})
	}
}

// PartialCheck drains pending equalities and disequalities into the
// union-find, checks already-active disequalities against the current
// classes, propagates boolean atoms the closure now entails, and defers
// to every registered plugin.
func (c *Closure) PartialCheck(s *satcore.Solver) *theoryapi.Conflict {
	c.solver = s
	if conf := c.Flush(); conf != nil {
		return conf
	}

	if len(c.pendingDiseq) > 0 {
		prev := len(c.activeDiseq)
		c.activeDiseq = append(c.activeDiseq, c.pendingDiseq...)
		c.journal.Record(func() { c.activeDiseq = c.activeDiseq[:prev] })
		c.pendingDiseq = c.pendingDiseq[:0]
	}

	if conf := c.checkConsistent(); conf != nil {
		return conf
	}

	if conf := c.propagateAtoms(s); conf != nil {
		return conf
	}

	for _, p := range c.plugins {
		if conf := p.PartialCheck(c); conf != nil {
			return conf
		}
	}
	return nil
}

// checkConsistent validates the two facts no merge sequence may ever
// establish: the permanent true and false nodes sharing a class, and an
// asserted disequality whose two sides now do.
func (c *Closure) checkConsistent() *theoryapi.Conflict {
	if c.Same(c.trueNode, c.falseNode) {
		return c.Trace(&theoryapi.Conflict{
			Literals: c.Explain(c.trueNode, c.falseNode),
			Rule:     "cc-bool",
		})
	}
	for _, d := range c.activeDiseq {
		if c.Same(d.a, d.b) {
			return c.Trace(&theoryapi.Conflict{
				Literals: append([]satcore.Literal{d.lit}, c.Explain(d.a, d.b)...),
				Rule:     "cc-disequality",
			})
		}
	}
	return nil
}

// propagateAtoms asserts, at the boolean level, every bound atom whose
// truth value the closure now entails: an equality whose two sides share
// a class, or any other atom whose class reached the permanent true or
// false node (spec.md §4.6's theory propagation, with the explanation
// produced lazily from the proof forest only if conflict analysis asks).
func (c *Closure) propagateAtoms(s *satcore.Solver) *theoryapi.Conflict {
	for _, atom := range c.boundAtoms {
		lit := c.litOf[atom]
		if s.LitValue(lit) != satcore.Unknown {
			continue
		}

		tm := c.store.Term(atom)
		if tm.Kind() == term.KindEq {
			a, b := c.NodeOf(tm.Args()[0]), c.NodeOf(tm.Args()[1])
			if !c.Same(a, b) {
				continue
			}
			if ok, confl := s.EnqueueTheory(lit, func() []satcore.Literal { return c.Explain(a, b) }); !ok {
				return c.Trace(&theoryapi.Conflict{Literals: confl, Rule: "cc-propagate"})
			}
			continue
		}

		n, ok := c.termIdx[atom]
		if !ok {
			continue
		}
		var assert satcore.Literal
		var against NodeID
		switch {
		case c.Same(n, c.trueNode):
			assert, against = lit, c.trueNode
		case c.Same(n, c.falseNode):
			assert, against = lit.Opposite(), c.falseNode
		default:
			continue
		}
		if ok, confl := s.EnqueueTheory(assert, func() []satcore.Literal { return c.Explain(n, against) }); !ok {
			return c.Trace(&theoryapi.Conflict{Literals: confl, Rule: "cc-propagate"})
		}
	}
	return nil
}

// FinalCheck runs PartialCheck's checks once more (a plugin's own
// FinalCheck may have produced new merges the caller hasn't drained
// yet) and then lets every plugin resolve remaining case-splits.
func (c *Closure) FinalCheck(s *satcore.Solver) *theoryapi.Conflict {
	if conf := c.PartialCheck(s); conf != nil {
		return conf
	}
	for _, p := range c.plugins {
		if conf := p.FinalCheck(c); conf != nil {
			return conf
		}
	}
	// A plugin's final check may itself have merged classes (a selector
	// expansion, an injectivity consequence); those merges ran after the
	// consistency sweep above, so validate once more before the SAT core
	// takes a nil result as permission to declare SAT.
	if conf := c.Flush(); conf != nil {
		return conf
	}
	return c.checkConsistent()
}

func (c *Closure) PushLevel() { c.journal.PushLevel() }

// PopLevels reverts n levels of journaled state. Pending queues are
// dropped wholesale: an undrained entry can only come from the levels
// being popped (every surviving level was drained by a PartialCheck
// before the next level was pushed), and its literal is leaving the
// trail with them.
func (c *Closure) PopLevels(n int) {
	c.journal.PopLevels(n)
	c.pendingEq = c.pendingEq[:0]
	c.pendingDiseq = c.pendingDiseq[:0]
}

func (c *Closure) Name() string { return "cc" }
