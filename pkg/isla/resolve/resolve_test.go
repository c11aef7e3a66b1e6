package resolve

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/grammar"
	"github.com/MaGaroo/isla/pkg/isla/parser"
	"github.com/MaGaroo/isla/pkg/source"
)

// assignmentGrammar builds the toy assignment-language grammar used
// throughout spec.md §8's worked scenarios:
//
//	<start>  ::= <stmt>
//	<stmt>   ::= <assgn> | <assgn> " ; " <stmt>
//	<assgn>  ::= <var> " := " <rhs>
//	<rhs>    ::= <var> | <digit>
//	<var>    ::= "a"
//	<digit>  ::= "0"
func assignmentGrammar() *grammar.Grammar {
	g := grammar.New("start")
	g.Define("start", []grammar.Alternative{{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "stmt"}}}})
	g.Define("stmt", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "assgn"}}},
		{Symbols: []grammar.Symbol{
			grammar.NonterminalRef{Name: "assgn"},
			grammar.Terminal{Value: " ; "},
			grammar.NonterminalRef{Name: "stmt"},
		}},
	})
	g.Define("assgn", []grammar.Alternative{{Symbols: []grammar.Symbol{
		grammar.NonterminalRef{Name: "var"},
		grammar.Terminal{Value: " := "},
		grammar.NonterminalRef{Name: "rhs"},
	}}})
	g.Define("rhs", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "var"}}},
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "digit"}}},
	})
	g.Define("var", []grammar.Alternative{{Symbols: []grammar.Symbol{grammar.Terminal{Value: "a"}}}})
	g.Define("digit", []grammar.Alternative{{Symbols: []grammar.Symbol{grammar.Terminal{Value: "0"}}}})

	return g
}

func checkText(t *testing.T, text string) *source.SyntaxError {
	t.Helper()

	f := source.NewFileFromString("test", text)

	spec, perr := parser.Parse(f, nil)
	if perr != nil {
		t.Fatalf("unexpected parse error: %s", perr.Error())
	}

	return Check(f, assignmentGrammar(), spec)
}

func TestCheckWellFormedUseAfterDef(t *testing.T) {
	err := checkText(t,
		`forall <assgn> a1: exists <assgn> a2: (before(a2, a1) and a1.<rhs>.<var> = a2.<var>)`)
	if err != nil {
		t.Fatalf("expected well-formed, got %s", err.Error())
	}
}

func TestCheckUnresolvedVariable(t *testing.T) {
	err := checkText(t, `forall <assgn> a: before(a, b)`)
	if err == nil || err.Kind() != KindUnresolvedVariable {
		t.Fatalf("expected unresolved-variable error, got %v", err)
	}
}

func TestCheckUnreachableXPathChild(t *testing.T) {
	err := checkText(t, `forall <assgn> a: a.<digit> = a.<digit>`)
	if err == nil || err.Kind() != KindUnreachableXPath {
		t.Fatalf("expected unreachable-xpath error, got %v", err)
	}
}

func TestCheckUnreachableXPathDescendant(t *testing.T) {
	err := checkText(t, `forall <assgn> a: a..<digit> = a..<digit>`)
	if err != nil {
		t.Fatalf("expected <digit> reachable as a descendant of <assgn>, got %s", err.Error())
	}
}

func TestCheckUndefinedNonterminalType(t *testing.T) {
	err := checkText(t, `forall <bogus> a: true`)
	if err == nil || err.Kind() != KindUnreachableXPath {
		t.Fatalf("expected undefined-type error, got %v", err)
	}
}

func TestCheckInVarMustBeTree(t *testing.T) {
	err := checkText(t, `forall int i: forall <assgn> a in i: true`)
	if err == nil || err.Kind() != KindSortMismatch {
		t.Fatalf("expected sort-mismatch for int 'in' clause, got %v", err)
	}
}

// TestCheckDuplicateMatchBinder covers a binder that shadows the enclosing
// quantifier's own variable name. matchexpr.Parse rejects duplicate/shadowed
// binders *within* one match expression, and shadowing of names already
// bound in an *enclosing* quantifier, but the quantifier's own varName is
// not yet in scope when its own match expression is parsed (see
// pkg/isla/parser's parseQuantifier), so this particular collision can only
// be caught here.
func TestCheckDuplicateMatchBinder(t *testing.T) {
	err := checkText(t, `forall <assgn> a = "{<var> a} := {<var> rhs}": true`)
	if err == nil || err.Kind() != KindDuplicateBinder {
		t.Fatalf("expected duplicate-binder error, got %v", err)
	}
}

func TestCheckSmtAtomStrToIntScenario(t *testing.T) {
	err := checkText(t, `forall <digit> d: (>= (str.to.int d) 0)`)
	if err != nil {
		t.Fatalf("expected well-formed, got %s", err.Error())
	}
}

func TestCheckSmtAtomRejectsTreeVarUsedAsInt(t *testing.T) {
	err := checkText(t, `forall <var> v: (>= v 0)`)
	if err == nil || err.Kind() != KindSortMismatch {
		t.Fatalf("expected sort-mismatch for a Tree variable compared numerically, got %v", err)
	}
}

func TestCheckSmtAtomRejectsIntVarUsedAsString(t *testing.T) {
	err := checkText(t, `forall int i: (str.<= i "9")`)
	if err == nil || err.Kind() != KindSortMismatch {
		t.Fatalf("expected sort-mismatch for an Int variable used as a string, got %v", err)
	}
}

func TestCheckSmtAtomEqualityAcceptsBothSorts(t *testing.T) {
	err := checkText(t, `forall <var> v: (and (= v "a") true)`)
	if err != nil {
		t.Fatalf("expected well-formed (v used as a string via '='), got %s", err.Error())
	}
}

func TestCheckMatchExpressionScenario(t *testing.T) {
	err := checkText(t, `forall <assgn> a = "{<var> lhs} := {<var> rhs}": lhs = rhs`)
	if err != nil {
		t.Fatalf("expected well-formed, got %s", err.Error())
	}
}
