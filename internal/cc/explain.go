package cc

import (
	"github.com/qsmtlab/qsmt/internal/satcore"
	"github.com/qsmtlab/qsmt/internal/theoryapi"
)

// edgeKind discriminates a proof-forest edge's justification (spec.md
// §3's Explanation: "Lit(l) | Congruence(n1,n2) | Theory(subs, rule)").
type edgeKind uint8

const (
	edgeLit edgeKind = iota
	edgeCongruence
	edgeTheory
)

// edge is one proof-forest edge connecting the two nodes a merge
// unified. Its content is direction-agnostic: walking it from either
// endpoint yields the same justification, so reroot never needs to
// transform it.
type edge struct {
	kind edgeKind

	// edgeLit: the Explanation passed to Merge. Merge labels every edge
	// it attaches this way, whether the merge came from an asserted
	// literal, a scheduled congruence or a plugin (e.g. the datatype
	// theory's selector/is-C reductions).
	lit theoryapi.Explanation

	// edgeCongruence: argument pairs (a_i, b_i) whose own equality,
	// recursively explained, justifies f(a) = f(b).
	argPairs [][2]NodeID

	// edgeTheory: an explanation expanded without walking the forest
	// further. No call site in this package attaches such an edge.
	theory theoryapi.Explanation
	rule   string
}

// reroot flips the proof-forest path from n up to its current root so
// that n becomes the new root, preserving every edge's content. Each
// flip is journaled so PopLevels restores the prior orientation.
func (c *Closure) reroot(n NodeID) {
	if c.forestParent[n] == n {
		return
	}
	parent := c.forestParent[n]
	e := c.forestEdge[n]
	c.reroot(parent)

	oldParentParent := c.forestParent[parent]
	oldParentEdge := c.forestEdge[parent]
	c.journal.Record(func() {
		c.forestParent[parent] = oldParentParent
		c.forestEdge[parent] = oldParentEdge
		c.forestParent[n] = n
		c.forestEdge[n] = nil
	})

	c.forestParent[parent] = n
	c.forestEdge[parent] = e
	c.forestParent[n] = n
	c.forestEdge[n] = nil
}

// attachProofEdge records that n1 and n2 were just merged, labeled e. n1
// is rerooted first so the edge can be attached without creating a
// cycle.
func (c *Closure) attachProofEdge(n1, n2 NodeID, e *edge) {
	c.reroot(n1)

	oldParent := c.forestParent[n1]
	oldEdge := c.forestEdge[n1]
	c.journal.Record(func() {
		c.forestParent[n1] = oldParent
		c.forestEdge[n1] = oldEdge
	})

	c.forestParent[n1] = n2
	c.forestEdge[n1] = e
}

// pathToRoot returns the sequence of nodes from n up to its proof-forest
// root, inclusive of both ends.
func (c *Closure) pathToRoot(n NodeID) []NodeID {
	path := []NodeID{n}
	for c.forestParent[n] != n {
		n = c.forestParent[n]
		path = append(path, n)
	}
	return path
}

// Explain returns the set of literals currently true on the trail whose
// conjunction entails a = b (spec.md §4.7). It requires a and b to
// currently be in the same class.
func (c *Closure) Explain(a, b NodeID) []satcore.Literal {
	pa := c.pathToRoot(a)
	pb := c.pathToRoot(b)

	// pa and pb necessarily share their final element (a and b are in
	// the same class, so their proof-forest roots coincide); find the
	// lowest common ancestor by trimming from the root end.
	onA := make(map[NodeID]int, len(pa))
	for i, n := range pa {
		onA[n] = i
	}
	lcaIdxB := -1
	var lcaIdxA int
	for i, n := range pb {
		if j, ok := onA[n]; ok {
			lcaIdxA, lcaIdxB = j, i
			break
		}
	}

	var out []satcore.Literal
	for i := 0; i < lcaIdxA; i++ {
		out = append(out, c.explainEdge(c.forestEdge[pa[i]])...)
	}
	for i := 0; i < lcaIdxB; i++ {
		out = append(out, c.explainEdge(c.forestEdge[pb[i]])...)
	}
	return out
}

func (c *Closure) explainEdge(e *edge) []satcore.Literal {
	switch e.kind {
	case edgeLit:
		return e.lit()
	case edgeTheory:
		return e.theory()
	case edgeCongruence:
		var out []satcore.Literal
		for _, pair := range e.argPairs {
			out = append(out, c.Explain(pair[0], pair[1])...)
		}
		return out
	default:
		return nil
	}
}
