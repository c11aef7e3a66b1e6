//go:build cgo

// Package z3 supplies A5 and the SPEC_FULL.md DOMAIN STACK's concrete
// smt.Oracle: a ground SMT-LIB satisfiability decision procedure backed by a
// real Z3 Context/Solver, via github.com/vhavlena/z3-go. It is kept out of
// the core packages (C1–C10), which stay free of any concrete solver
// dependency per spec.md §9 and §1's Non-goals — the core only ever talks to
// the abstract smt.Oracle interface of pkg/isla/smt.
//
// Built behind the cgo build tag the upstream z3-go package itself requires;
// callers without cgo/Z3 available should use a stub oracle (such as
// smt.OracleFunc) instead.
package z3

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/sexp"
	z3 "github.com/vhavlena/z3-go/z3"
)

// SmtOracle decides ground SMT-LIB queries (C9's Check contract) against a
// single, long-lived Z3 context. One SmtOracle is safe to reuse across many
// Check calls from a single goroutine, mirroring the pattern of a single
// `isla check` invocation: build once, query once per atom the evaluator
// encounters.
type SmtOracle struct {
	cfg *z3.Config
	ctx *z3.Context
}

// New constructs a Z3-backed oracle, optionally configuring a timeout in
// milliseconds (0 disables the timeout, letting Z3 run to completion).
func New(timeoutMS uint) *SmtOracle {
	cfg := z3.NewConfig()
	if timeoutMS > 0 {
		cfg.SetParam("timeout", fmt.Sprintf("%d", timeoutMS))
	}

	return &SmtOracle{cfg: cfg, ctx: z3.NewContext(cfg)}
}

// Close releases the underlying Z3 context. Safe to call once the oracle is
// no longer needed; subsequent Check calls must not be made afterward.
func (o *SmtOracle) Close() {
	if o == nil {
		return
	}

	o.ctx.Close()
	o.cfg.Close()
}

var _ smt.Oracle = (*SmtOracle)(nil)

// Check grounds expr's free identifiers using env, then asks Z3 whether the
// resulting closed SMT-LIB formula is satisfiable. Since every free
// identifier is substituted with a literal, the expression has no remaining
// free variables (other than those bound by an embedded forall/exists, per
// the evaluator's SMT-lifting of integer quantifiers), so satisfiability of
// the closed sentence coincides with its truth value — exactly the
// SAT/UNSAT/UNDEF verdict spec.md §4.9 asks of an oracle. An Unknown result
// (timeout, or a theory fragment Z3 cannot decide) is reported as UNDEF,
// never as a hard failure, per spec.md §7's non-fatal-incompleteness rule.
func (o *SmtOracle) Check(expr sexp.SExp, env smt.Env) verdict.Verdict {
	ground := substitute(expr, env)
	script := fmt.Sprintf("(assert %s)\n(check-sat)\n", ground.String())

	solver := o.ctx.NewSolver()
	defer solver.Close()

	result, err := solver.SolveSMTLIB2String(script)
	if err != nil {
		log.WithError(err).WithField("query", script).Debug("z3 oracle could not decide query")
		return verdict.Undef
	}

	switch result {
	case z3.Sat:
		return verdict.Sat
	case z3.Unsat:
		return verdict.Unsat
	default:
		log.WithField("query", script).Debug("z3 oracle returned unknown")
		return verdict.Undef
	}
}

// substitute replaces every symbol of e bound in env with an SMT-LIB literal
// of the appropriate sort (a quoted string, or a bare integer), leaving any
// other symbol (an operator, a quantifier-bound variable, an unbound
// constant) untouched.
func substitute(e sexp.SExp, env smt.Env) sexp.SExp {
	switch n := e.(type) {
	case *sexp.Symbol:
		if v, ok := env[n.Value]; ok {
			if v.IsInt() {
				return sexp.NewSymbol(fmt.Sprintf("%d", v.Int()))
			}

			return sexp.NewStringLiteral(v.String())
		}

		return n
	case *sexp.List:
		elems := make([]sexp.SExp, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = substitute(el, env)
		}

		return sexp.NewList(elems)
	default:
		return e
	}
}
