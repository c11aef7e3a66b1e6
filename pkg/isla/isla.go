// Package isla is the public entry point of the ISLa core: the three
// operations of spec.md §6's abstract API (parse_grammar, parse_formula,
// check), composed from the C1–C10 components implemented by this module's
// subpackages. Callers needing finer control (a custom semantic predicate
// registry, a specific oracle, direct AST access) can use those
// subpackages directly; this package is the common path.
package isla

import (
	"github.com/MaGaroo/isla/pkg/grammar"
	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/isla/eval"
	"github.com/MaGaroo/isla/pkg/isla/parser"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/isla/resolve"
	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/source"
	"github.com/MaGaroo/isla/pkg/tree"
)

// ParseGrammar parses BNF source text into a reference grammar (C1),
// per spec.md §6's `parse_grammar`.
func ParseGrammar(srcfile *source.File, start string) (*grammar.Grammar, *source.SyntaxError) {
	return grammar.Parse(srcfile, start)
}

// Formula is a parsed and well-formedness-checked ISLa specification: a
// formula AST together with any top-level `const` declaration, ready for
// Check. It is produced only by ParseFormula, which runs both the parser
// (C4/C5) and the well-formedness pass (C6) before returning one, matching
// spec.md §6's `parse_formula` contract of returning either a usable
// Formula or a ParseError — never a syntactically valid but ill-formed one.
type Formula struct {
	spec *ast.Spec
}

// ParseFormula parses and well-formedness-checks ISLa source text against a
// reference grammar, per spec.md §6's `parse_formula(text, grammar,
// sem_pred_registry?)`. semPreds may be nil when the formula uses no
// semantic predicates.
func ParseFormula(
	srcfile *source.File,
	g *grammar.Grammar,
	semPreds predicate.SemanticRegistry,
) (*Formula, *source.SyntaxError) {
	spec, err := parser.Parse(srcfile, semPreds)
	if err != nil {
		return nil, err
	}

	if err := resolve.Check(srcfile, g, spec); err != nil {
		return nil, err
	}

	return &Formula{spec: spec}, nil
}

// ConstName and ConstType report the formula's top-level `const`
// declaration, if any.
func (f *Formula) ConstName() (string, bool) { return f.spec.ConstName, f.spec.HasConst }
func (f *Formula) ConstType() string         { return f.spec.ConstType }

// FreeVars returns the formula's free variable names, per spec.md §3.
func (f *Formula) FreeVars() map[string]bool { return ast.FreeVars(f.spec.Formula) }

// String re-prints f from its AST back into ISLa concrete syntax, used by
// the isla parse command and the parse/print round-trip test of spec.md §8.
func (f *Formula) String() string { return ast.Print(f.spec) }

// Check decides whether t satisfies f under the given SMT oracle and
// semantic predicate registry (C10), per spec.md §6's
// `check(tree, formula, oracle) → SAT | UNSAT | UNDEF`. t is bound to f's
// top-level constant, if it declared one.
func Check(f *Formula, t tree.Tree, oracle smt.Oracle, semPreds predicate.SemanticRegistry) (verdict.Verdict, error) {
	return eval.New(oracle, semPreds).Check(f.spec, t)
}
