package eval

import (
	"strconv"
	"testing"

	"github.com/MaGaroo/isla/pkg/isla/parser"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/sexp"
	"github.com/MaGaroo/isla/pkg/source"
	"github.com/MaGaroo/isla/pkg/tree"
)

// buildAssignment builds the derivation tree for "a := 1 ; b := a", the
// worked scenario of spec.md §8: a use of b after a's definition.
//
//	<start> -> <stmt>
//	<stmt>  -> <assgn> " ; " <stmt>
//	<assgn1> -> <var:a> " := " <rhs1:digit:1>
//	<stmt>  -> <assgn2>
//	<assgn2> -> <var:b> " := " <rhs2:var:a>
func buildAssignment(f *tree.Forest) (top tree.Tree) {
	a := f.Inner("var", []tree.Tree{f.Terminal("a")})
	one := f.Inner("digit", []tree.Tree{f.Terminal("1")})
	rhs1 := f.Inner("rhs", []tree.Tree{one})
	assgn1 := f.Inner("assgn", []tree.Tree{a, f.Terminal(" := "), rhs1})

	b := f.Inner("var", []tree.Tree{f.Terminal("b")})
	aRef := f.Inner("var", []tree.Tree{f.Terminal("a")})
	rhs2 := f.Inner("rhs", []tree.Tree{aRef})
	assgn2 := f.Inner("assgn", []tree.Tree{b, f.Terminal(" := "), rhs2})

	stmt2 := f.Inner("stmt", []tree.Tree{assgn2})
	stmt1 := f.Inner("stmt", []tree.Tree{assgn1, f.Terminal(" ; "), stmt2})

	return f.Inner("start", []tree.Tree{stmt1})
}

// stringEqualityOracle decides ground equality/inequality atoms over the
// string and integer literals the evaluator substitutes in; it is not a
// general SMT decision procedure, only enough of one to exercise the
// evaluator's plumbing in tests without a real solver dependency.
func stringEqualityOracle() smt.Oracle {
	return smt.OracleFunc(func(expr sexp.SExp, env smt.Env) verdict.Verdict {
		list, ok := expr.(*sexp.List)
		if !ok || len(list.Elements) != 3 {
			return verdict.Undef
		}

		head, ok := list.Elements[0].(*sexp.Symbol)
		if !ok {
			return verdict.Undef
		}

		left, lok := groundValue(list.Elements[1], env)
		right, rok := groundValue(list.Elements[2], env)

		if !lok || !rok {
			return verdict.Undef
		}

		switch head.Value {
		case "=":
			return verdict.FromBool(left == right)
		case ">=":
			return verdict.FromBool(left >= right)
		default:
			return verdict.Undef
		}
	})
}

// groundValue renders a leaf symbol (a literal or a name bound in env) or a
// single-argument "str.to.int" application to its ground string value, for
// the '='/'>=' comparisons above to compare textually.
func groundValue(e sexp.SExp, env smt.Env) (string, bool) {
	switch n := e.(type) {
	case *sexp.Symbol:
		if v, ok := env[n.Value]; ok {
			if v.IsInt() {
				return strconv.Itoa(v.Int()), true
			}

			return v.String(), true
		}

		return n.Value, true
	case *sexp.List:
		if len(n.Elements) != 2 {
			return "", false
		}

		head, ok := n.Elements[0].(*sexp.Symbol)
		if !ok || head.Value != "str.to.int" {
			return "", false
		}

		s, ok := groundValue(n.Elements[1], env)
		if !ok {
			return "", false
		}

		i, err := strconv.Atoi(s)
		if err != nil {
			return "", false
		}

		return strconv.Itoa(i), true
	default:
		return "", false
	}
}

func mustCheck(t *testing.T, text string, top tree.Tree) verdict.Verdict {
	t.Helper()

	f := source.NewFileFromString("test", text)

	spec, perr := parser.Parse(f, nil)
	if perr != nil {
		t.Fatalf("unexpected parse error: %s", perr.Error())
	}

	e := New(stringEqualityOracle(), predicate.SemanticRegistry{})

	v, err := e.Check(spec, top)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %s", err.Error())
	}

	return v
}

// Both scenarios below quantify a1 over assignments whose right-hand side
// is itself a variable reference (the match expression's second slot,
// declared <var>, only matches an <assgn> whose <rhs> wraps a <var> and not
// one whose <rhs> wraps a <digit> — filtering out "a := 1" while keeping
// "b := a") — this is exactly the guard a real def-before-use property
// needs, since an assignment from a literal makes no variable use at all.

func TestUseAfterDefIsSat(t *testing.T) {
	forest := tree.NewForest()
	top := buildAssignment(forest)

	v := mustCheck(t,
		`const c : <start> ; `+
			`forall <assgn> a1 = "{<var> lhs1} := {<var> rhs1}": `+
			`exists <assgn> a2 = "{<var> lhs2} := {<rhs> rhs2}": (before(a2, a1) and rhs1 = lhs2)`,
		top)

	if v != verdict.Sat {
		t.Errorf("expected SAT, got %s", v)
	}
}

func TestUseBeforeDefIsUnsat(t *testing.T) {
	forest := tree.NewForest()
	top := buildAssignment(forest)

	// Same guarded shape, but now requiring a *later* assignment to define
	// the variable used by "b := a" — there is none, so this is UNSAT.
	v := mustCheck(t,
		`const c : <start> ; `+
			`forall <assgn> a1 = "{<var> lhs1} := {<var> rhs1}": `+
			`exists <assgn> a2 = "{<var> lhs2} := {<rhs> rhs2}": (before(a1, a2) and rhs1 = lhs2)`,
		top)

	if v != verdict.Unsat {
		t.Errorf("expected UNSAT, got %s", v)
	}
}

func TestForallVarInsideAssignment(t *testing.T) {
	forest := tree.NewForest()
	top := buildAssignment(forest)

	v := mustCheck(t, `const c : <start> ; forall <assgn> a: forall <var> v in a: inside(v, a)`, top)
	if v != verdict.Sat {
		t.Errorf("expected SAT, got %s", v)
	}
}

func TestVacuousForallOverEmptyDomainIsSat(t *testing.T) {
	forest := tree.NewForest()
	top := forest.Inner("start", []tree.Tree{forest.Terminal("")})

	v := mustCheck(t, `const c : <start> ; forall <assgn> a: before(a, a)`, top)
	if v != verdict.Sat {
		t.Errorf("expected vacuous SAT, got %s", v)
	}
}

func TestExistsOverEmptyDomainIsUnsat(t *testing.T) {
	forest := tree.NewForest()
	top := forest.Inner("start", []tree.Tree{forest.Terminal("")})

	v := mustCheck(t, `const c : <start> ; exists <assgn> a: before(a, a)`, top)
	if v != verdict.Unsat {
		t.Errorf("expected UNSAT, got %s", v)
	}
}

// TestSmtAtomStrToIntScenario covers spec.md §8's sixth worked scenario:
// str.to.int applied to every <digit> node's yield is always >= 0.
func TestSmtAtomStrToIntScenario(t *testing.T) {
	forest := tree.NewForest()
	top := buildAssignment(forest)

	v := mustCheck(t, `const c : <start> ; forall <digit> d: (>= (str.to.int d) 0)`, top)
	if v != verdict.Sat {
		t.Errorf("expected SAT, got %s", v)
	}
}

func TestMatchExpressionScenario(t *testing.T) {
	forest := tree.NewForest()
	top := buildAssignment(forest)

	v := mustCheck(t,
		`const c : <start> ; forall <assgn> a = "{<var> lhs} := {<var> rhs}": not (lhs = rhs)`,
		top)

	if v != verdict.Sat {
		t.Errorf("expected SAT (no self-assignment), got %s", v)
	}
}
