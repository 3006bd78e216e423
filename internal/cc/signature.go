package cc

import (
	"fmt"
	"strings"
)

// signatureTable maps (function symbol, representative argument list) to
// a canonical e-node, so that whenever two applications share a
// signature they are due for a congruence merge (spec.md §4.7).
type signatureTable struct {
	table map[string]NodeID
}

func newSignatureTable() *signatureTable {
	return &signatureTable{table: map[string]NodeID{}}
}

func sigKey(fnID int, args []NodeID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", fnID)
	for _, a := range args {
		fmt.Fprintf(&sb, ":%d", a)
	}
	return sb.String()
}

func (st *signatureTable) lookup(fnID int, args []NodeID) (NodeID, bool) {
	n, ok := st.table[sigKey(fnID, args)]
	return n, ok
}

// registerSig points the signature table at n for (fnID, repArgs),
// retiring n's previous registration if its argument representatives
// have changed. Every mutation is journaled: the table must describe
// exactly the merges currently in effect, or a stale entry left behind
// by backtracking could pair two applications whose arguments are not
// actually equal anymore.
func (c *Closure) registerSig(n NodeID, fnID int, repArgs []NodeID) {
	c.unregisterSig(n)

	key := sigKey(fnID, repArgs)
	old, hadOld := c.sig.table[key]
	c.journal.Record(func() {
		if hadOld {
			c.sig.table[key] = old
		} else {
			delete(c.sig.table, key)
		}
		c.nodes[n].hasSig = false
	})

	c.sig.table[key] = n
	c.nodes[n].hasSig = true
	c.nodes[n].sigFn = fnID
	c.nodes[n].sigArgs = append([]NodeID(nil), repArgs...)
}

// unregisterSig retires n's current signature-table entry, if n is the
// node that entry points at.
func (c *Closure) unregisterSig(n NodeID) {
	if !c.nodes[n].hasSig {
		return
	}
	fnID := c.nodes[n].sigFn
	args := c.nodes[n].sigArgs
	key := sigKey(fnID, args)
	if cur, ok := c.sig.table[key]; ok && cur == n {
		c.journal.Record(func() {
			c.sig.table[key] = n
			c.nodes[n].hasSig = true
			c.nodes[n].sigFn = fnID
			c.nodes[n].sigArgs = args
		})
		delete(c.sig.table, key)
	}
	c.nodes[n].hasSig = false
}

// sigCurrent reports whether n is already registered under exactly
// (fnID, repArgs), in which case a rescan can skip it.
func (c *Closure) sigCurrent(n NodeID, fnID int, repArgs []NodeID) bool {
	if !c.nodes[n].hasSig || c.nodes[n].sigFn != fnID {
		return false
	}
	stored := c.nodes[n].sigArgs
	if len(stored) != len(repArgs) {
		return false
	}
	for i := range stored {
		if stored[i] != repArgs[i] {
			return false
		}
	}
	return true
}
