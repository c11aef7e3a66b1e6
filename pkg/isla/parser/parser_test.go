package parser

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/source"
)

func mustParse(t *testing.T, text string) *ast.Spec {
	t.Helper()

	f := source.NewFileFromString("test", text)

	spec, err := Parse(f, nil)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %s", text, err.Error())
	}

	return spec
}

func TestParseConstDecl(t *testing.T) {
	spec := mustParse(t, `const c : <start> ; true`)

	if !spec.HasConst || spec.ConstName != "c" || spec.ConstType != "start" {
		t.Errorf("expected const c:<start>, got %#v", spec)
	}
}

func TestParseUseAfterDefScenario(t *testing.T) {
	spec := mustParse(t,
		`forall <assgn> a1: exists <assgn> a2: (before(a2, a1) and a1.<rhs>.<var> = a2.<var>)`)

	forall, ok := spec.Formula.(*ast.Forall)
	if !ok {
		t.Fatalf("expected top-level Forall, got %T", spec.Formula)
	}

	if forall.VarType != "assgn" || forall.VarName != "a1" {
		t.Errorf("expected forall <assgn> a1, got %#v", forall.Quantifier)
	}

	exists, ok := forall.Body.(*ast.Exists)
	if !ok {
		t.Fatalf("expected nested Exists, got %T", forall.Body)
	}

	and, ok := exists.Body.(*ast.And)
	if !ok {
		t.Fatalf("expected And body, got %T", exists.Body)
	}

	if _, ok := and.Left.(*ast.StructPred); !ok {
		t.Errorf("expected left operand to be a structural predicate, got %T", and.Left)
	}

	atom, ok := and.Right.(*ast.SmtAtom)
	if !ok {
		t.Fatalf("expected right operand to be an SmtAtom, got %T", and.Right)
	}

	if len(atom.XPaths) != 2 {
		t.Errorf("expected 2 XPath expressions in the equality atom, got %d", len(atom.XPaths))
	}

	fv := ast.FreeVars(spec.Formula)
	if len(fv) != 0 {
		t.Errorf("expected no free variables in a fully-quantified formula, got %v", fv)
	}
}

func TestParseSmtPrefixScenario(t *testing.T) {
	spec := mustParse(t, `forall <digit> d: (>= (str.to.int d) 0)`)

	forall, ok := spec.Formula.(*ast.Forall)
	if !ok {
		t.Fatalf("expected Forall, got %T", spec.Formula)
	}

	atom, ok := forall.Body.(*ast.SmtAtom)
	if !ok {
		t.Fatalf("expected SmtAtom body, got %T", forall.Body)
	}

	if len(atom.Vars) != 1 || atom.Vars[0] != "d" {
		t.Errorf("expected free variable [d], got %v", atom.Vars)
	}
}

func TestParseMatchExpressionScenario(t *testing.T) {
	spec := mustParse(t, `forall <assgn> a = "{<var> lhs} := {<var> rhs}": lhs = rhs`)

	forall, ok := spec.Formula.(*ast.Forall)
	if !ok {
		t.Fatalf("expected Forall, got %T", spec.Formula)
	}

	if forall.Match == nil {
		t.Fatalf("expected a match expression")
	}

	binders := forall.Match.Binders()
	if len(binders) != 2 || binders[0].Name != "lhs" || binders[1].Name != "rhs" {
		t.Errorf("expected binders [lhs rhs], got %v", binders)
	}

	atom, ok := forall.Body.(*ast.SmtAtom)
	if !ok {
		t.Fatalf("expected SmtAtom body, got %T", forall.Body)
	}

	if len(atom.Vars) != 2 || atom.Vars[0] != "lhs" || atom.Vars[1] != "rhs" {
		t.Errorf("expected free variables [lhs rhs], got %v", atom.Vars)
	}
}

func TestParsePrecedence(t *testing.T) {
	spec := mustParse(t, `true and false or true implies false iff true`)

	if _, ok := spec.Formula.(*ast.Iff); !ok {
		t.Fatalf("expected top-level Iff (lowest precedence), got %T", spec.Formula)
	}
}

func TestParseDoubleNegation(t *testing.T) {
	spec := mustParse(t, `not not true`)

	outer, ok := spec.Formula.(*ast.Not)
	if !ok {
		t.Fatalf("expected outer Not, got %T", spec.Formula)
	}

	if _, ok := outer.Sub.(*ast.Not); !ok {
		t.Fatalf("expected inner Not, got %T", outer.Sub)
	}
}

func TestParseGroupedFormula(t *testing.T) {
	spec := mustParse(t, `not (true and false)`)

	outer, ok := spec.Formula.(*ast.Not)
	if !ok {
		t.Fatalf("expected outer Not, got %T", spec.Formula)
	}

	if _, ok := outer.Sub.(*ast.And); !ok {
		t.Fatalf("expected grouped And, got %T", outer.Sub)
	}
}

func TestParseGroupedPredicateCall(t *testing.T) {
	spec := mustParse(t, `forall <assgn> a: forall <assgn> b: (before(a, b))`)

	forall := spec.Formula.(*ast.Forall)
	inner := forall.Body.(*ast.Forall)

	if _, ok := inner.Body.(*ast.StructPred); !ok {
		t.Fatalf("expected grouped predicate call, got %T", inner.Body)
	}
}

func TestParseArityMismatch(t *testing.T) {
	f := source.NewFileFromString("test", `forall <assgn> a: forall <assgn> b: before(a, b, a)`)

	_, err := Parse(f, nil)
	if err == nil || err.Kind() != KindArityMismatch {
		t.Fatalf("expected arity-mismatch error, got %v", err)
	}
}

func TestParseUnknownPredicate(t *testing.T) {
	f := source.NewFileFromString("test", `forall <assgn> a: forall <assgn> b: frobnicate(a, b)`)

	_, err := Parse(f, nil)
	if err == nil || err.Kind() != KindUnknownPredicate {
		t.Fatalf("expected unknown-predicate error, got %v", err)
	}
}

func TestParseUnresolvedTrailingInput(t *testing.T) {
	f := source.NewFileFromString("test", `true true`)

	_, err := Parse(f, nil)
	if err == nil || err.Kind() != KindParseError {
		t.Fatalf("expected parse error for trailing input, got %v", err)
	}
}

func TestParseIntQuantifier(t *testing.T) {
	spec := mustParse(t, `forall int i : true`)

	fi, ok := spec.Formula.(*ast.ForallInt)
	if !ok || fi.VarName != "i" {
		t.Fatalf("expected ForallInt i, got %#v", spec.Formula)
	}
}

func TestParseNthPredicate(t *testing.T) {
	spec := mustParse(t, `forall <assgn> a: forall <assgn> b: nth(1, a, b)`)

	forall := spec.Formula.(*ast.Forall)
	inner := forall.Body.(*ast.Forall)

	sp, ok := inner.Body.(*ast.StructPred)
	if !ok || sp.Name != "nth" || len(sp.Args) != 3 {
		t.Fatalf("expected nth/3, got %#v", inner.Body)
	}

	if sp.Args[0].Kind != ast.ArgInt || sp.Args[0].Int != 1 {
		t.Errorf("expected first nth argument to be the integer 1, got %#v", sp.Args[0])
	}
}
