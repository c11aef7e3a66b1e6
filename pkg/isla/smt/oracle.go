// Package smt defines C9: the abstract contract through which the
// evaluator (C10) delegates ground SMT-LIB satisfiability queries. The core
// never implements an SMT theory itself; it only composes atoms and their
// negations (spec.md §1's "Non-goals: solving SMT itself").
package smt

import (
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/sexp"
)

// Value is a ground value bound to a free identifier of a query: either a
// string (spec.md §4.9: "treat a derivation tree argument as its yield when
// the atom's sort is string") or an integer.
type Value struct {
	isInt bool
	str   string
	n     int
}

// StringValue wraps a string-sorted ground value.
func StringValue(s string) Value { return Value{str: s} }

// IntValue wraps an integer-sorted ground value.
func IntValue(n int) Value { return Value{isInt: true, n: n} }

// IsInt reports whether this value is integer-sorted.
func (v Value) IsInt() bool { return v.isInt }

// String returns the bound string; only meaningful when IsInt() is false.
func (v Value) String() string { return v.str }

// Int returns the bound integer; only meaningful when IsInt() is true.
func (v Value) Int() int { return v.n }

// Env maps the free identifiers of a ground query to their bound values.
type Env map[string]Value

// Oracle is the abstract contract of C9. Implementations decide
// satisfiability of a ground SMT-LIB boolean expression; they may return
// Undef on timeout or theory limitation, which callers treat as non-fatal
// (spec.md §4.9, §7). Oracle is independent of the core and may be backed
// by any decision procedure; pkg/oracle/z3 supplies one concrete
// implementation.
type Oracle interface {
	// Check decides whether expr is satisfiable under env's bindings.
	Check(expr sexp.SExp, env Env) verdict.Verdict
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(expr sexp.SExp, env Env) verdict.Verdict

// Check implements Oracle.
func (f OracleFunc) Check(expr sexp.SExp, env Env) verdict.Verdict { return f(expr, env) }
