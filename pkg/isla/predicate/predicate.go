// Package predicate implements C7 (the fixed structural predicate library)
// and C8 (the extensible semantic predicate registry) of spec.md §4.7/§4.8.
// Both are "trait/capability" registries per spec.md §9's replacement for
// dict-keyed predicate tables: immutable maps from name to a {arity, eval}
// pair, populated once at initialisation and thereafter read-only.
package predicate

import (
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/tree"
)

// ArgKind identifies the resolved shape of one predicate argument, after
// variables and XPath expressions have already been resolved against an
// assignment (spec.md §4.7: "arguments are resolved via β").
type ArgKind int

// Resolved argument kinds.
const (
	ArgTree ArgKind = iota
	ArgInt
	ArgString
)

// Arg is one resolved predicate argument.
type Arg struct {
	Kind ArgKind
	Tree tree.Tree
	Int  int
	Str  string
}

// Predicate is a single named entry of a registry: its fixed arity and its
// evaluator. top is the tree bound to the top-level constant, needed to
// compute a node's path.
type Predicate struct {
	Name  string
	Arity int
	Eval  func(top tree.Tree, args []Arg) verdict.Verdict
}

func pathOf(top tree.Tree, node tree.Tree) (tree.Path, bool) {
	return top.PathOf(node)
}

// Structural is the fixed registry of C7, keyed by name. Every member is
// defined purely in terms of the path ordering of spec.md §3: if any
// argument does not resolve to a tree node within top, the predicate is
// UNDEF (spec.md §4.7).
var Structural = map[string]Predicate{
	"before":             {"before", 2, evalBefore},
	"after":              {"after", 2, evalAfter},
	"same_position":      {"same_position", 2, evalSamePosition},
	"different_position": {"different_position", 2, evalDifferentPosition},
	"direct_child":       {"direct_child", 2, evalDirectChild},
	"inside":             {"inside", 2, evalInside},
	"nth":                {"nth", 3, evalNth},
	"level":              {"level", 4, evalLevel},
}

func evalBefore(top tree.Tree, args []Arg) verdict.Verdict {
	pa, ok1 := pathOf(top, args[0].Tree)
	pb, ok2 := pathOf(top, args[1].Tree)

	if !ok1 || !ok2 {
		return verdict.Undef
	}

	return verdict.FromBool(pa.Compare(pb) < 0 && !pa.IsPrefixOf(pb) && !pb.IsPrefixOf(pa))
}

func evalAfter(top tree.Tree, args []Arg) verdict.Verdict {
	return evalBefore(top, []Arg{args[1], args[0]})
}

func evalSamePosition(top tree.Tree, args []Arg) verdict.Verdict {
	pa, ok1 := pathOf(top, args[0].Tree)
	pb, ok2 := pathOf(top, args[1].Tree)

	if !ok1 || !ok2 {
		return verdict.Undef
	}

	return verdict.FromBool(pa.Equal(pb))
}

func evalDifferentPosition(top tree.Tree, args []Arg) verdict.Verdict {
	return evalSamePosition(top, args).Not()
}

func evalDirectChild(top tree.Tree, args []Arg) verdict.Verdict {
	pa, ok1 := pathOf(top, args[0].Tree)
	pb, ok2 := pathOf(top, args[1].Tree)

	if !ok1 || !ok2 {
		return verdict.Undef
	}

	return verdict.FromBool(len(pa) == len(pb)+1 && pb.IsPrefixOf(pa))
}

func evalInside(top tree.Tree, args []Arg) verdict.Verdict {
	pa, ok1 := pathOf(top, args[0].Tree)
	pb, ok2 := pathOf(top, args[1].Tree)

	if !ok1 || !ok2 {
		return verdict.Undef
	}

	return verdict.FromBool(len(pa) > len(pb) && pb.IsPrefixOf(pa))
}

// evalNth holds iff a (args[1]) is the k-th (1-based, args[0]) direct child
// of b (args[2]): path(a) == path(b) appended with index k-1.
func evalNth(top tree.Tree, args []Arg) verdict.Verdict {
	k := args[0].Int

	pa, ok1 := pathOf(top, args[1].Tree)
	pb, ok2 := pathOf(top, args[2].Tree)

	if !ok1 || !ok2 || k < 1 {
		return verdict.Undef
	}

	want := append(pb.Clone(), k-1)

	return verdict.FromBool(pa.Equal(want))
}

// evalLevel compares, via comparator args[0] ("EQ", "LE", "GE", "LT", "GT"),
// the number of ancestors of nonterminal type args[1].Str strictly above
// args[2].Tree against the number strictly above args[3].Tree. This
// interprets spec.md §4.7's minimal signature `level(lvl, n, a, b)` as a
// relative-nesting-depth check with respect to type n; see DESIGN.md.
func evalLevel(top tree.Tree, args []Arg) verdict.Verdict {
	comparator := args[0].Str
	nonterminal := args[1].Str

	pa, ok1 := pathOf(top, args[2].Tree)
	pb, ok2 := pathOf(top, args[3].Tree)

	if !ok1 || !ok2 {
		return verdict.Undef
	}

	na := countAncestorsOfType(top, pa, nonterminal)
	nb := countAncestorsOfType(top, pb, nonterminal)

	switch comparator {
	case "EQ":
		return verdict.FromBool(na == nb)
	case "LE":
		return verdict.FromBool(na <= nb)
	case "GE":
		return verdict.FromBool(na >= nb)
	case "LT":
		return verdict.FromBool(na < nb)
	case "GT":
		return verdict.FromBool(na > nb)
	default:
		return verdict.Undef
	}
}

func countAncestorsOfType(top tree.Tree, path tree.Path, nonterminal string) int {
	count := 0

	for i := 0; i < len(path); i++ {
		ancestor, ok := top.At(path[:i])
		if ok && ancestor.Label() == nonterminal {
			count++
		}
	}

	return count
}

// SemanticEval is the signature required of a host-provided semantic
// predicate (spec.md §4.8): given the top-level tree and resolved
// arguments, decide satisfiability.
type SemanticEval func(top tree.Tree, args []Arg) verdict.Verdict

// SemanticRegistry is an immutable, caller-supplied mapping of semantic
// predicate names to arity and evaluator (spec.md §4.8's "registry mapping
// names to host-provided evaluators").
type SemanticRegistry map[string]Predicate

// NewSemanticRegistry builds a registry from a set of predicates, keyed by
// name.
func NewSemanticRegistry(preds ...Predicate) SemanticRegistry {
	reg := make(SemanticRegistry, len(preds))
	for _, p := range preds {
		reg[p.Name] = p
	}

	return reg
}
