// Package ast defines C6: the typed formula AST. Every node is a tagged
// variant (a Go struct implementing the Formula marker interface) rather
// than a class hierarchy, per spec.md §9's "replace dynamic dispatch"
// guidance — well-formedness (pkg/isla/resolve) and evaluation
// (pkg/isla/eval) both work by exhaustive type switch over these node
// types.
package ast

import (
	"github.com/MaGaroo/isla/pkg/isla/matchexpr"
	"github.com/MaGaroo/isla/pkg/sexp"
)

// Sort is one of the exactly two sorts of spec.md §3: a derivation subtree
// of a declared nonterminal type, or an integer.
type Sort struct {
	// IsInt is true for the Int sort; false for Tree<NonterminalType>.
	IsInt bool
	// NonterminalType names T in Tree<T>; meaningless when IsInt is true.
	NonterminalType string
}

// IntSort is the Int sort.
func IntSort() Sort { return Sort{IsInt: true} }

// TreeSort constructs the sort Tree<nonterminalType>.
func TreeSort(nonterminalType string) Sort { return Sort{NonterminalType: nonterminalType} }

func (s Sort) String() string {
	if s.IsInt {
		return "Int"
	}

	return "Tree<" + s.NonterminalType + ">"
}

// Variable is a named reference with a sort: introduced by a quantifier
// binder, a match-expression binder, or the optional top-level `const`.
type Variable struct {
	Name string
	Sort Sort
}

// Formula is the marker interface implemented by every node of the formula
// AST (spec.md §3).
type Formula interface {
	isFormula()
}

// SmtAtom wraps a normalised SMT-LIB boolean expression (spec.md §4.4: both
// the S-expression and infix/prefix notations are parsed down to this same
// representation) together with the ordered set of free variable names it
// references. An XPath expression occurring inside the SMT text (e.g.
// `a.<rhs>.<var>`) is represented in Expr as a synthesized symbol whose name
// is its own surface syntax; XPaths maps that synthesized name back to the
// parsed expression so the evaluator can resolve it against an assignment
// before substitution (see pkg/isla/parser's smt.go).
type SmtAtom struct {
	Expr   sexp.SExp
	Vars   []string
	XPaths map[string]*XPath
}

func (*SmtAtom) isFormula() {}

// PredArgKind identifies the shape of a single predicate argument, per
// spec.md §3's "arguments are variables, nonterminal types, XPath
// expressions, integers, or literal strings".
type PredArgKind int

// Predicate argument kinds.
const (
	ArgVariable PredArgKind = iota
	ArgNonterminalType
	ArgXPath
	ArgInt
	ArgString
)

// PredArg is one argument to a structural or semantic predicate call.
type PredArg struct {
	Kind PredArgKind
	// Variable name, for ArgVariable.
	Variable string
	// Nonterminal type name (no brackets), for ArgNonterminalType.
	Type string
	// Parsed XPath expression, for ArgXPath.
	XPath *XPath
	// Integer literal value, for ArgInt.
	Int int
	// String literal value, for ArgString.
	String string
}

// StructPred is a call to one of the fixed structural predicates of C7
// (before, after, inside, level, nth, ...).
type StructPred struct {
	Name string
	Args []PredArg
}

func (*StructPred) isFormula() {}

// SemPred is a call to a named semantic predicate resolved against the host
// registry of C8.
type SemPred struct {
	Name string
	Args []PredArg
}

func (*SemPred) isFormula() {}

// Not negates a sub-formula.
type Not struct{ Sub Formula }

func (*Not) isFormula() {}

// And, Or, Xor, Implies, and Iff are the binary propositional connectives.
type And struct{ Left, Right Formula }
type Or struct{ Left, Right Formula }
type Xor struct{ Left, Right Formula }
type Implies struct{ Left, Right Formula }
type Iff struct{ Left, Right Formula }

func (*And) isFormula()     {}
func (*Or) isFormula()      {}
func (*Xor) isFormula()     {}
func (*Implies) isFormula() {}
func (*Iff) isFormula()     {}

// Quantifier is the shared shape of Forall and Exists: a tree quantifier
// over nodes of type VarType, optionally named VarName, optionally filtered
// by a match expression, optionally ranging within InVar (otherwise the
// top-level constant), with a body formula.
type Quantifier struct {
	VarType string
	VarName string
	// Match is nil when no match expression was given.
	Match *MatchExpr
	// InVar is "" when no `in c` clause was given, meaning the top-level
	// constant.
	InVar string
	Body  Formula
}

// Forall is the universal tree quantifier.
type Forall struct{ Quantifier }

// Exists is the existential tree quantifier.
type Exists struct{ Quantifier }

func (*Forall) isFormula() {}
func (*Exists) isFormula() {}

// ForallInt and ExistsInt are the integer quantifiers of spec.md §3, ranging
// over all non-negative integers.
type ForallInt struct {
	VarName string
	Body    Formula
}

type ExistsInt struct {
	VarName string
	Body    Formula
}

func (*ForallInt) isFormula() {}
func (*ExistsInt) isFormula() {}

// BoolLit is the literal `true`/`false` formula.
type BoolLit struct{ Value bool }

func (*BoolLit) isFormula() {}

// MatchExpr is re-exported under ast so callers of this package need not
// also import pkg/isla/matchexpr directly; see that package for the full
// definition (C5).
type MatchExpr = matchexpr.MatchExpr

// Spec is the top-level parse result: an optional `const name : <T> ;`
// declaration followed by exactly one formula (spec.md §4.4).
type Spec struct {
	HasConst  bool
	ConstName string
	ConstType string
	Formula   Formula
}
