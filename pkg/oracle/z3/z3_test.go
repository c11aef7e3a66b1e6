//go:build cgo

package z3

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/sexp"
)

func TestSubstituteReplacesBoundSymbolsOnly(t *testing.T) {
	expr := sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("="),
		sexp.NewSymbol("x"),
		sexp.NewSymbol("y"),
	})

	env := smt.Env{"x": smt.StringValue("a")}

	got := substitute(expr, env).String()
	want := `(= "a" y)`

	if got != want {
		t.Errorf("substitute() = %q, want %q", got, want)
	}
}

func TestSubstituteIntValueRendersBare(t *testing.T) {
	expr := sexp.NewList([]sexp.SExp{sexp.NewSymbol(">="), sexp.NewSymbol("n"), sexp.NewSymbol("0")})
	env := smt.Env{"n": smt.IntValue(5)}

	got := substitute(expr, env).String()
	want := "(>= 5 0)"

	if got != want {
		t.Errorf("substitute() = %q, want %q", got, want)
	}
}

func TestCheckDecidesGroundEquality(t *testing.T) {
	o := New(1000)
	defer o.Close()

	expr := sexp.NewList([]sexp.SExp{sexp.NewSymbol("="), sexp.NewSymbol("x"), sexp.NewSymbol("x")})

	if v := o.Check(expr, smt.Env{"x": smt.StringValue("a")}); v.String() != "SAT" {
		t.Errorf("expected SAT for a reflexive ground equality, got %s", v)
	}
}

// TestCheckDecidesStrToIntScenario exercises spec.md §8's sixth worked
// scenario through the real Z3 backend: str.to.int applied to a grounded
// digit string is always >= 0.
func TestCheckDecidesStrToIntScenario(t *testing.T) {
	o := New(1000)
	defer o.Close()

	expr := sexp.NewList([]sexp.SExp{
		sexp.NewSymbol(">="),
		sexp.NewList([]sexp.SExp{sexp.NewSymbol("str.to.int"), sexp.NewSymbol("d")}),
		sexp.NewSymbol("0"),
	})

	if v := o.Check(expr, smt.Env{"d": smt.StringValue("1")}); v.String() != "SAT" {
		t.Errorf("expected SAT for str.to.int of a digit compared >= 0, got %s", v)
	}
}
