package datatype

import (
	"github.com/qsmtlab/qsmt/internal/cc"
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/term"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

type color uint8

const (
	white color = iota
	gray
	black
)

// checkAcyclic implements spec.md §4.8's final-check (a): build a graph
// where each class with a constructor points, via that constructor's
// datatype-sorted arguments, to their representatives; a three-color DFS
// back-edge is a cycle.
func (t *Theory) checkAcyclic(c *cc.Closure) *theoryapi.Conflict {
	colors := map[cc.NodeID]color{}
	var path []cc.NodeID

	var visit func(root cc.NodeID) *theoryapi.Conflict
	visit = func(root cc.NodeID) *theoryapi.Conflict {
		switch colors[root] {
		case black:
			return nil
		case gray:
			return t.cycleConflict(c, path, root)
		}

		colors[root] = gray
		path = append(path, root)

		if info, ok := t.cstors[root]; ok {
			for _, a := range info.args {
				childRoot := c.Find(a)
				childTerm := c.Store().Term(c.Term(childRoot))
				if childTerm.Sort().Kind != term.SortDatatype {
					continue
				}
				if conf := visit(childRoot); conf != nil {
					return conf
				}
			}
		}

		path = path[:len(path)-1]
		colors[root] = black
		return nil
	}

	for root := range t.cstors {
		if colors[root] == white {
			if conf := visit(root); conf != nil {
				return conf
			}
		}
	}
	return nil
}

// cycleConflict builds the conflict clause from the back-edge found at
// `back`: the explanations for every class-has-constructor fact and
// every constructor-argument-equals-next-class-in-path fact along the
// cyclic suffix of path.
func (t *Theory) cycleConflict(c *cc.Closure, path []cc.NodeID, back cc.NodeID) *theoryapi.Conflict {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	cycle := append(append([]cc.NodeID(nil), path[start:]...), back)

	var lits []satcore.Literal
	for i := 0; i+1 < len(cycle); i++ {
		info := t.cstors[cycle[i]]
		lits = append(lits, c.Explain(cycle[i], info.node)...)
		for _, a := range info.args {
			if c.Find(a) == cycle[i+1] {
				lits = append(lits, c.Explain(a, cycle[i+1])...)
				break
			}
		}
	}
	return c.Trace(&theoryapi.Conflict{Literals: lits, Rule: "dt-acyclic"})
}

// caseSplit implements spec.md §4.8's final-check (b): for each class
// still awaiting a decision, add the exhaustive is-C disjunction and the
// pairwise exclusions.
func (t *Theory) caseSplit(c *cc.Closure) *theoryapi.Conflict {
	store := c.Store()
	for n := range t.toDecide {
		root := c.Find(n)
		if _, ok := t.cstors[root]; ok {
			continue
		}
		if t.caseSplitDone[n] {
			continue
		}
		t.caseSplitDone[n] = true

		tm := store.Term(c.Term(n))
		schema := t.schemaOf(tm.Sort())
		if len(schema.Cstors) <= 1 {
			continue
		}

		lits := make([]satcore.Literal, len(schema.Cstors))
		for i, cstor := range schema.Cstors {
			testerTerm := store.NewApp(cstor.Tester, c.Term(n))
			c.AddTerm(testerTerm)
			lits[i] = c.LiteralFor(testerTerm)
		}

		solver := c.Solver()
		if confl := solver.AddLemma(append([]satcore.Literal(nil), lits...)); confl != nil {
			return c.Trace(&theoryapi.Conflict{Literals: confl, Rule: "dt-exhaustive"})
		}
		for i := range lits {
			for j := i + 1; j < len(lits); j++ {
				excl := []satcore.Literal{lits[i].Opposite(), lits[j].Opposite()}
				if confl := solver.AddLemma(excl); confl != nil {
					return c.Trace(&theoryapi.Conflict{Literals: confl, Rule: "dt-exclusive"})
				}
			}
		}
	}
	return nil
}
