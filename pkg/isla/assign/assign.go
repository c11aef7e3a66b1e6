// Package assign defines the assignment β of spec.md §3: a partial mapping
// from variable names to bound values, trees for Tree<·> sorts and integers
// for Int. Assignments are immutable and extended only by producing a new
// Env (spec.md §3's "logically functional" ownership note).
package assign

import "github.com/MaGaroo/isla/pkg/tree"

// Value is a bound value: either a derivation subtree or an integer.
type Value struct {
	isInt bool
	tree  tree.Tree
	n     int
}

// TreeValue wraps a derivation subtree as a Tree<·>-sorted value.
func TreeValue(t tree.Tree) Value { return Value{tree: t} }

// IntValue wraps an integer as an Int-sorted value.
func IntValue(n int) Value { return Value{isInt: true, n: n} }

// IsInt reports whether this value is Int-sorted.
func (v Value) IsInt() bool { return v.isInt }

// Tree returns the bound subtree; only meaningful when IsInt() is false.
func (v Value) Tree() tree.Tree { return v.tree }

// Int returns the bound integer; only meaningful when IsInt() is true.
func (v Value) Int() int { return v.n }

// Env is an immutable variable assignment. The zero value is the empty
// environment.
type Env struct {
	bindings map[string]Value
}

// NewEnv constructs an empty environment.
func NewEnv() Env { return Env{bindings: map[string]Value{}} }

// With returns a new environment extending e with name bound to v, without
// mutating e (quantifier instantiation never mutates an enclosing scope's
// assignment).
func (e Env) With(name string, v Value) Env {
	out := make(map[string]Value, len(e.bindings)+1)

	for k, val := range e.bindings {
		out[k] = val
	}

	out[name] = v

	return Env{bindings: out}
}

// Lookup returns the value bound to name, and whether it is bound.
func (e Env) Lookup(name string) (Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Names returns every variable name currently bound.
func (e Env) Names() []string {
	out := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		out = append(out, k)
	}

	return out
}
