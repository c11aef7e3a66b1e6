// Package tree implements C2: immutable, labelled derivation trees with
// stable path addressing and O(1) stringification-friendly structure.
//
// Per spec.md §9's design note, nodes are allocated in a contiguous arena
// (Forest) and referenced by index rather than by pointer; this avoids deep
// recursive ownership graphs. Traversals (Walk, and DescendantsOfType and
// Paths built on it) still walk the subtree recursively from its root; none
// scans the arena linearly.
package tree

// Path is a node's address within a tree: the sequence of child indices from
// the root. Paths are totally ordered by lexicographic comparison of their
// index sequences, which coincides with left-to-right pre-order
// (spec.md §3).
type Path []int

// Compare returns -1, 0, or 1 according to whether p sorts before, equal to,
// or after q in the lexicographic order of spec.md §3.
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] < q[i] {
			return -1
		} else if p[i] > q[i] {
			return 1
		}
	}

	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	default:
		return 0
	}
}

// IsPrefixOf reports whether p is a (non-strict) prefix of q.
func (p Path) IsPrefixOf(q Path) bool {
	if len(p) > len(q) {
		return false
	}

	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}

	return true
}

// Equal reports whether p and q name the same node.
func (p Path) Equal(q Path) bool { return p.Compare(q) == 0 }

// Clone returns an independent copy of p, safe to extend without aliasing.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)

	return out
}

// node is the arena-resident representation of a single tree node.
type node struct {
	label    string
	terminal bool
	// expanded distinguishes an "open" nonterminal node (no children yet)
	// from an "inner" one; terminal nodes never have children and are never
	// "expanded" in this sense.
	expanded bool
	children []int
}

// Forest is an arena of nodes, shared by every Tree handle constructed from
// it. Forests grow monotonically; once a node is appended it is never
// mutated, which is what lets Tree values be freely copied and compared.
type Forest struct {
	nodes []node
}

// NewForest constructs an empty arena.
func NewForest() *Forest {
	return &Forest{}
}

// Tree is a handle to a single node within a Forest: a (forest, index) pair.
// Tree values are cheap to copy and compare by (forest pointer, index).
type Tree struct {
	forest *Forest
	index  int
}

// Terminal allocates a new terminal (leaf) node labelled with a literal
// string and returns a handle to it.
func (f *Forest) Terminal(value string) Tree {
	f.nodes = append(f.nodes, node{label: value, terminal: true})
	return Tree{f, len(f.nodes) - 1}
}

// Open allocates a new open nonterminal node (no children) and returns a
// handle to it. An open node can later be closed with Expand.
func (f *Forest) Open(nonterminal string) Tree {
	f.nodes = append(f.nodes, node{label: nonterminal})
	return Tree{f, len(f.nodes) - 1}
}

// Inner allocates a new nonterminal node with the given children (which must
// belong to the same forest) and returns a handle to it.
func (f *Forest) Inner(nonterminal string, children []Tree) Tree {
	idxs := make([]int, len(children))

	for i, c := range children {
		if c.forest != f {
			panic("tree: child belongs to a different forest")
		}

		idxs[i] = c.index
	}

	f.nodes = append(f.nodes, node{label: nonterminal, expanded: true, children: idxs})

	return Tree{f, len(f.nodes) - 1}
}

// Expand turns an open node into an inner node by attaching children. It
// panics if t is not open, preserving the invariant that a node's shape
// (open/terminal/inner) never changes after first becoming inner or
// terminal — only open nodes may still be filled in, which models
// incremental tree construction (e.g. while reading the CLI's tree
// notation) without otherwise compromising immutability.
func (t Tree) Expand(children []Tree) {
	n := &t.forest.nodes[t.index]
	if n.terminal || n.expanded {
		panic("tree: cannot expand a terminal or already-inner node")
	}

	idxs := make([]int, len(children))

	for i, c := range children {
		if c.forest != t.forest {
			panic("tree: child belongs to a different forest")
		}

		idxs[i] = c.index
	}

	n.expanded = true
	n.children = idxs
}

// Forest returns the arena this tree handle belongs to.
func (t Tree) Forest() *Forest { return t.forest }

// Label returns this node's label: a nonterminal name (without brackets) or
// a terminal literal string.
func (t Tree) Label() string { return t.forest.nodes[t.index].label }

// IsTerminal reports whether this node's label is a terminal literal.
func (t Tree) IsTerminal() bool { return t.forest.nodes[t.index].terminal }

// IsOpen reports whether this node is a nonterminal without children yet.
func (t Tree) IsOpen() bool {
	n := t.forest.nodes[t.index]
	return !n.terminal && !n.expanded
}

// IsInner reports whether this node is a nonterminal with children.
func (t Tree) IsInner() bool {
	n := t.forest.nodes[t.index]
	return !n.terminal && n.expanded
}

// Children returns this node's children, or nil for a terminal or open node.
func (t Tree) Children() []Tree {
	idxs := t.forest.nodes[t.index].children
	out := make([]Tree, len(idxs))

	for i, idx := range idxs {
		out[i] = Tree{t.forest, idx}
	}

	return out
}

// IsClosed reports whether every leaf beneath this node is terminal, i.e.
// there is no open node in this subtree.
func (t Tree) IsClosed() bool {
	if t.IsOpen() {
		return false
	}

	for _, c := range t.Children() {
		if !c.IsClosed() {
			return false
		}
	}

	return true
}

// Yield returns the concatenation of terminal labels beneath this node, in
// left-to-right depth-first order.
func (t Tree) Yield() string {
	if t.IsTerminal() {
		return t.Label()
	}

	var out string
	for _, c := range t.Children() {
		out += c.Yield()
	}

	return out
}

// At returns the node reachable from t by following the given path, or false
// if the path is out of range at some step.
func (t Tree) At(path Path) (Tree, bool) {
	cur := t

	for _, i := range path {
		children := cur.Children()
		if i < 0 || i >= len(children) {
			return Tree{}, false
		}

		cur = children[i]
	}

	return cur, true
}

// Subtree is an alias of At, named to match the C2 operation of spec.md
// §4.2.
func (t Tree) Subtree(path Path) (Tree, bool) { return t.At(path) }

// PathedTree pairs a node with its path from some ancestor (usually the
// root passed to Paths/DescendantsOfType).
type PathedTree struct {
	Path Path
	Tree Tree
}

// Paths returns every node beneath (and including) t, paired with its path
// relative to t, in pre-order. Conceptually a lazy sequence per spec.md
// §4.2; trees arising from ISLa formulas are small enough that eager
// materialisation is the simpler and sufficiently efficient choice here —
// Walk is provided below for callers that do want to short-circuit.
func (t Tree) Paths() []PathedTree {
	var out []PathedTree

	t.Walk(func(p Path, n Tree) bool {
		out = append(out, PathedTree{p, n})
		return true
	})

	return out
}

// Walk visits every node beneath (and including) t in pre-order, calling
// visit with each node's path relative to t. Walking stops early if visit
// returns false for some node (though its siblings already enumerated are
// unaffected).
func (t Tree) Walk(visit func(Path, Tree) bool) bool {
	return t.walk(Path{}, visit)
}

func (t Tree) walk(prefix Path, visit func(Path, Tree) bool) bool {
	if !visit(prefix, t) {
		return false
	}

	for i, c := range t.Children() {
		if !c.walk(append(prefix.Clone(), i), visit) {
			return false
		}
	}

	return true
}

// DescendantsOfType returns every node beneath (and including) t whose label
// is the given nonterminal name, paired with its path relative to t, in
// pre-order.
func (t Tree) DescendantsOfType(nonterminal string) []PathedTree {
	var out []PathedTree

	t.Walk(func(p Path, n Tree) bool {
		if !n.IsTerminal() && n.Label() == nonterminal {
			out = append(out, PathedTree{p, n})
		}

		return true
	})

	return out
}

// Equal reports whether t and other are structurally equal: same labels and
// same child structure, regardless of which forest(s) they were allocated
// in.
func (t Tree) Equal(other Tree) bool {
	if t.IsTerminal() != other.IsTerminal() || t.Label() != other.Label() {
		return false
	}

	if t.IsOpen() != other.IsOpen() {
		return false
	}

	tc, oc := t.Children(), other.Children()
	if len(tc) != len(oc) {
		return false
	}

	for i := range tc {
		if !tc[i].Equal(oc[i]) {
			return false
		}
	}

	return true
}

// Contains reports whether node is some descendant (or t itself) of t,
// within the same forest. Used by predicate evaluation (C7) to check that a
// bound variable's tree is actually part of the top-level constant's tree,
// per spec.md §4.7.
func (t Tree) Contains(node Tree) bool {
	if node.forest != t.forest {
		return false
	}

	found := false

	t.Walk(func(_ Path, n Tree) bool {
		if n.index == node.index {
			found = true
			return false
		}

		return true
	})

	return found
}

// PathOf returns the path from t to node, if node lies within t's subtree.
func (t Tree) PathOf(node Tree) (Path, bool) {
	if node.forest != t.forest {
		return nil, false
	}

	var found Path

	ok := false

	t.Walk(func(p Path, n Tree) bool {
		if n.index == node.index {
			found = p.Clone()
			ok = true

			return false
		}

		return true
	})

	return found, ok
}
