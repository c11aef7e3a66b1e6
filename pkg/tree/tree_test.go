package tree

import "testing"

func buildAssignment(f *Forest, lhs, rhs string) Tree {
	v1 := f.Terminal(lhs)
	varL := f.Inner("var", []Tree{v1})
	v2 := f.Terminal(rhs)
	varR := f.Inner("var", []Tree{v2})
	rhsNode := f.Inner("rhs", []Tree{varR})

	return f.Inner("assgn", []Tree{varL, rhsNode})
}

func TestYield(t *testing.T) {
	f := NewForest()
	a := buildAssignment(f, "a", "b")

	if a.Yield() != "ab" {
		t.Errorf("expected yield 'ab', got %q", a.Yield())
	}
}

func TestIsClosed(t *testing.T) {
	f := NewForest()
	a := buildAssignment(f, "a", "b")

	if !a.IsClosed() {
		t.Errorf("expected closed tree")
	}

	open := f.Open("var")
	if open.IsClosed() {
		t.Errorf("expected open node to make tree non-closed")
	}
}

func TestAtAndSubtree(t *testing.T) {
	f := NewForest()
	a := buildAssignment(f, "a", "b")

	n, ok := a.At(Path{0})
	if !ok || n.Label() != "var" {
		t.Fatalf("expected path [0] to reach <var>, got %v ok=%v", n, ok)
	}

	_, ok = a.At(Path{5})
	if ok {
		t.Errorf("expected out-of-range path to fail")
	}
}

func TestDescendantsOfType(t *testing.T) {
	f := NewForest()
	a := buildAssignment(f, "a", "b")

	vars := a.DescendantsOfType("var")
	if len(vars) != 2 {
		t.Fatalf("expected 2 <var> descendants, got %d", len(vars))
	}

	if vars[0].Path.Compare(vars[1].Path) >= 0 {
		t.Errorf("expected pre-order paths to be increasing")
	}
}

func TestPathOrdering(t *testing.T) {
	p1 := Path{0, 1}
	p2 := Path{0, 2}
	p3 := Path{0}

	if p1.Compare(p2) >= 0 {
		t.Errorf("expected [0,1] < [0,2]")
	}

	if !p3.IsPrefixOf(p1) {
		t.Errorf("expected [0] to be a prefix of [0,1]")
	}

	if p1.IsPrefixOf(p3) {
		t.Errorf("did not expect [0,1] to be a prefix of [0]")
	}
}

func TestEqual(t *testing.T) {
	f1 := NewForest()
	a1 := buildAssignment(f1, "a", "b")

	f2 := NewForest()
	a2 := buildAssignment(f2, "a", "b")
	a3 := buildAssignment(f2, "a", "c")

	if !a1.Equal(a2) {
		t.Errorf("expected structurally equal trees across forests to be Equal")
	}

	if a1.Equal(a3) {
		t.Errorf("did not expect trees with different yields to be Equal")
	}
}

func TestContainsAndPathOf(t *testing.T) {
	f := NewForest()
	a := buildAssignment(f, "a", "b")

	lhsVar, _ := a.At(Path{0})

	if !a.Contains(lhsVar) {
		t.Errorf("expected root to contain its own descendant")
	}

	path, ok := a.PathOf(lhsVar)
	if !ok || !path.Equal(Path{0}) {
		t.Errorf("expected PathOf to recover [0], got %v ok=%v", path, ok)
	}
}

func TestExpandOpenNode(t *testing.T) {
	f := NewForest()
	open := f.Open("var")

	if !open.IsOpen() {
		t.Fatalf("expected freshly allocated node to be open")
	}

	leaf := f.Terminal("a")
	open.Expand([]Tree{leaf})

	if !open.IsInner() {
		t.Errorf("expected expanded node to be inner")
	}

	if open.Yield() != "a" {
		t.Errorf("expected yield 'a' after expansion, got %q", open.Yield())
	}
}
