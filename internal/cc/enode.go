package cc

import "github.com/qsmtlab/qsmt/internal/term"

// NodeID is an index into Closure's e-node arena (spec.md §9: "realize
// as arena+indices... an e-node is an index into a vector owned by the
// CC").
type NodeID int

// enode is one e-node: a term together with its position in the
// union-find forest and the class's circular member list (spec.md §3).
type enode struct {
	term term.ID

	parent NodeID // == self iff this node is a root
	size   int    // valid only when parent == self

	next NodeID // circular linked list over the whole equivalence class

	// parentApps lists every node whose term is a direct application
	// with this node as one of its (current) arguments, used to rescan
	// for new congruences after a merge.
	parentApps []NodeID

	// hasSig, sigFn and sigArgs record the signature-table key this node
	// is currently registered under (if it is an application and is its
	// own signature's canonical e-node), so rescanCongruences can retire
	// that entry once a merge changes the node's argument
	// representatives and it re-registers under a new key.
	hasSig  bool
	sigFn   int
	sigArgs []NodeID
}

// Find returns n's current representative. Path compression is
// deliberately omitted (spec.md §4.7 allows either choice): compression
// would itself need to be backtrackable, and the union-by-size bound
// already keeps Find at O(log n).
func (c *Closure) Find(n NodeID) NodeID {
	for c.nodes[n].parent != n {
		n = c.nodes[n].parent
	}
	return n
}

// FindTerm interns t if necessary and returns its representative.
func (c *Closure) FindTerm(t term.ID) NodeID {
	return c.Find(c.NodeOf(t))
}

// NodeOf returns the node for an already-interned term, adding it first
// if this is the first time CC has seen it.
func (c *Closure) NodeOf(t term.ID) NodeID {
	if n, ok := c.termIdx[t]; ok {
		return n
	}
	return c.AddTerm(t)
}

// Same reports whether a and b are currently in the same class.
func (c *Closure) Same(a, b NodeID) bool {
	return c.Find(a) == c.Find(b)
}

// Term returns the term backing node n (not necessarily the class's
// representative choice of "canonical" term; any member carries the
// same class membership).
func (c *Closure) Term(n NodeID) term.ID {
	return c.nodes[n].term
}

// Class calls f for every node in n's equivalence class, including n.
func (c *Closure) Class(n NodeID, f func(NodeID)) {
	start := n
	for {
		f(n)
		n = c.nodes[n].next
		if n == start {
			return
		}
	}
}
