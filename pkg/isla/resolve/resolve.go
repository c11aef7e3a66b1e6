// Package resolve implements the well-formedness checks of C6, beyond the
// purely structural ast.FreeVars: every identifier must resolve to an
// in-scope binder or the top-level constant, every free variable of an SMT
// atom must carry a consistent sort, and every XPath must be reachable in
// the reference grammar. Checks are grounded in the Consensys/go-corset
// resolver's binding-context-walk idiom (pkg/corset name/column resolution)
// adapted to ISLa's quantifier/match-expression scoping.
package resolve

import (
	"fmt"

	"github.com/MaGaroo/isla/pkg/grammar"
	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/sexp"
	"github.com/MaGaroo/isla/pkg/source"
)

// Error kinds raised during well-formedness checking, per spec.md §4.6/§7.
const (
	KindUnresolvedVariable source.Kind = "unresolved-variable"
	KindSortMismatch       source.Kind = "sort-mismatch"
	KindUnreachableXPath   source.Kind = "unreachable-xpath"
	KindDuplicateBinder    source.Kind = "duplicate-binder"
)

// binding records what a name in scope is bound to.
type binding struct {
	sort ast.Sort
}

// scope is a stack of binder frames, innermost last; a frame may bind more
// than one name at once (a quantifier's own variable plus its match
// expression's binders all open together).
type scope struct {
	frames []map[string]binding
}

func newScope() *scope { return &scope{} }

func (s *scope) push() { s.frames = append(s.frames, map[string]binding{}) }

func (s *scope) pop() { s.frames = s.frames[:len(s.frames)-1] }

// bind adds name to the innermost frame, replacing any earlier binding of
// the same name there. It reports nothing; callers that must raise
// KindDuplicateBinder for a name bound twice by the same quantifier check
// boundInCurrentFrame first. A same-named variable introduced by an
// enclosing quantifier is ordinary, intentional shadowing and is not itself
// an error here (pkg/isla/matchexpr rejects a name bound twice within one
// match expression with KindDuplicateBind, and a match binder shadowing an
// enclosing binder with KindShadowedBind).
func (s *scope) bind(name string, b binding) {
	s.frames[len(s.frames)-1][name] = b
}

func (s *scope) lookup(name string) (binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}

	return binding{}, false
}

func (s *scope) boundInCurrentFrame(name string) bool {
	_, ok := s.frames[len(s.frames)-1][name]
	return ok
}

// Resolver checks a parsed ast.Spec for well-formedness against a reference
// grammar and an optional top-level constant.
type Resolver struct {
	srcfile *source.File
	g       *grammar.Grammar
	scope   *scope
}

// Check performs the full well-formedness pass of C6 over spec, reporting
// the first violation found. srcfile supplies source spans for diagnostics;
// g is the reference grammar used for XPath reachability checks.
func Check(srcfile *source.File, g *grammar.Grammar, spec *ast.Spec) *source.SyntaxError {
	r := &Resolver{srcfile: srcfile, g: g, scope: newScope()}

	r.scope.push()

	if spec.HasConst {
		r.scope.bind(spec.ConstName, binding{sort: ast.TreeSort(spec.ConstType)})
	}

	err := r.checkFormula(spec.Formula)

	r.scope.pop()

	return err
}

func (r *Resolver) errorf(kind source.Kind, format string, args ...interface{}) *source.SyntaxError {
	return r.srcfile.SyntaxError(source.Span{}, kind, fmt.Sprintf(format, args...))
}

func (r *Resolver) checkFormula(f ast.Formula) *source.SyntaxError {
	switch n := f.(type) {
	case *ast.BoolLit:
		return nil
	case *ast.SmtAtom:
		return r.checkSmtAtom(n)
	case *ast.StructPred:
		return r.checkPredArgs(n.Name, n.Args)
	case *ast.SemPred:
		return r.checkPredArgs(n.Name, n.Args)
	case *ast.Not:
		return r.checkFormula(n.Sub)
	case *ast.And:
		return r.checkBinary(n.Left, n.Right)
	case *ast.Or:
		return r.checkBinary(n.Left, n.Right)
	case *ast.Xor:
		return r.checkBinary(n.Left, n.Right)
	case *ast.Implies:
		return r.checkBinary(n.Left, n.Right)
	case *ast.Iff:
		return r.checkBinary(n.Left, n.Right)
	case *ast.Forall:
		return r.checkQuantifier(n.Quantifier)
	case *ast.Exists:
		return r.checkQuantifier(n.Quantifier)
	case *ast.ForallInt:
		return r.checkIntQuantifier(n.VarName, n.Body)
	case *ast.ExistsInt:
		return r.checkIntQuantifier(n.VarName, n.Body)
	default:
		return r.errorf(KindUnresolvedVariable, "unsupported formula node %T", f)
	}
}

func (r *Resolver) checkBinary(left, right ast.Formula) *source.SyntaxError {
	if err := r.checkFormula(left); err != nil {
		return err
	}

	return r.checkFormula(right)
}

func (r *Resolver) checkIntQuantifier(varName string, body ast.Formula) *source.SyntaxError {
	r.scope.push()
	r.scope.bind(varName, binding{sort: ast.IntSort()})

	err := r.checkFormula(body)

	r.scope.pop()

	return err
}

func (r *Resolver) checkQuantifier(q ast.Quantifier) *source.SyntaxError {
	if q.InVar != "" {
		b, ok := r.scope.lookup(q.InVar)
		if !ok {
			return r.errorf(KindUnresolvedVariable, "unresolved variable %q in 'in' clause", q.InVar)
		}

		if b.sort.IsInt || b.sort.NonterminalType == "" {
			return r.errorf(KindSortMismatch, "%q in 'in' clause must be a tree variable", q.InVar)
		}
	}

	if !r.g.IsDefined(q.VarType) {
		return r.errorf(KindUnreachableXPath, "undefined nonterminal type <%s>", q.VarType)
	}

	r.scope.push()

	if q.VarName != "" {
		r.scope.bind(q.VarName, binding{sort: ast.TreeSort(q.VarType)})
	}

	if q.Match != nil {
		for _, b := range q.Match.Binders() {
			if r.scope.boundInCurrentFrame(b.Name) {
				return r.errorf(KindDuplicateBinder, "duplicate binder %q in match expression", b.Name)
			}

			r.scope.bind(b.Name, binding{sort: ast.TreeSort(b.Type)})
		}
	}

	err := r.checkFormula(q.Body)

	r.scope.pop()

	return err
}

// checkSmtAtom checks that every free variable and XPath referenced by an
// SMT atom resolves, that every XPath is grammar-reachable, and that every
// reference is used at the sort its syntactic position expects (spec.md
// §4.6(d): an Int-sorted variable may not appear where a string is
// expected, and vice versa, except through an explicit str.to.int or
// str.from_int conversion).
func (r *Resolver) checkSmtAtom(n *ast.SmtAtom) *source.SyntaxError {
	// Vars holds an XPath's base variable rather than its pseudo-name, so
	// every XPath is checked here directly.
	for _, x := range n.XPaths {
		if err := r.checkXPath(x); err != nil {
			return err
		}
	}

	for _, name := range n.Vars {
		if _, ok := n.XPaths[name]; ok {
			continue
		}

		if _, ok := r.scope.lookup(name); !ok {
			return r.errorf(KindUnresolvedVariable, "unresolved variable %q", name)
		}
	}

	return r.checkSmtSort(n, n.Expr, smtSortUnknown)
}

// smtSort is the sort a position within an embedded SMT-LIB expression is
// expected to hold, inferred purely from its enclosing operator — the
// expression itself carries no separate sort annotations (spec.md §4.4).
type smtSort int

const (
	smtSortUnknown smtSort = iota
	smtSortBool
	smtSortInt
	smtSortString
)

// smtIntOps take only Int-sorted operands.
var smtIntOps = map[string]bool{
	"+": true, "-": true, "*": true, "div": true, "mod": true,
	">=": true, "<=": true, ">": true, "<": true,
}

// smtStringOps take only string-sorted operands.
var smtStringOps = map[string]bool{
	"str.++": true, "str.<=": true, "re.++": true,
}

// checkSmtSort walks expr, comparing every variable or XPath leaf's actual
// sort against what its position expects. A bound Tree<·> variable or an
// XPath reference both ground to a string for the oracle (see
// pkg/isla/eval's groundSmtEnv), so either may stand where a string is
// expected; an Int-sorted variable may stand only where Int is expected.
// str.to.int/str.from_int are the only coercions: they shift the expected
// sort of their own argument rather than being transparent to it.
func (r *Resolver) checkSmtSort(n *ast.SmtAtom, expr sexp.SExp, expected smtSort) *source.SyntaxError {
	switch e := expr.(type) {
	case *sexp.Symbol:
		if e.Quoted || isSmtIntLiteral(e.Value) || e.Value == "true" || e.Value == "false" {
			return nil
		}

		return r.checkSmtVarSort(n, e.Value, expected)
	case *sexp.List:
		if len(e.Elements) == 0 {
			return nil
		}

		head, ok := e.Elements[0].(*sexp.Symbol)
		if !ok {
			return nil
		}

		args := e.Elements[1:]

		switch {
		case head.Value == "and" || head.Value == "or" || head.Value == "xor" || head.Value == "=>":
			return r.checkSmtArgs(n, args, smtSortBool)
		case smtIntOps[head.Value]:
			return r.checkSmtArgs(n, args, smtSortInt)
		case smtStringOps[head.Value]:
			return r.checkSmtArgs(n, args, smtSortString)
		case head.Value == "str.to.int":
			return r.checkSmtArgs(n, args, smtSortString)
		case head.Value == "str.from_int":
			return r.checkSmtArgs(n, args, smtSortInt)
		case head.Value == "=":
			return r.checkSmtArgs(n, args, r.inferSmtEqualitySort(args))
		default:
			// An unrecognised function/predicate name (e.g. a theory operator
			// this checker does not enumerate): no sort can be inferred, so no
			// mismatch is raised for its arguments.
			return r.checkSmtArgs(n, args, smtSortUnknown)
		}
	default:
		return nil
	}
}

func (r *Resolver) checkSmtArgs(n *ast.SmtAtom, args []sexp.SExp, expected smtSort) *source.SyntaxError {
	for _, a := range args {
		if err := r.checkSmtSort(n, a, expected); err != nil {
			return err
		}
	}

	return nil
}

// inferSmtEqualitySort infers the common sort "=" compares its two sides at,
// from whichever side carries a concrete hint: a literal, a bound
// variable's declared sort, or a sort-determining application. "=" itself
// is polymorphic over Int and String.
func (r *Resolver) inferSmtEqualitySort(args []sexp.SExp) smtSort {
	for _, a := range args {
		switch e := a.(type) {
		case *sexp.Symbol:
			if e.Quoted {
				return smtSortString
			}

			if isSmtIntLiteral(e.Value) {
				return smtSortInt
			}

			if b, ok := r.scope.lookup(e.Value); ok {
				if b.sort.IsInt {
					return smtSortInt
				}

				return smtSortString
			}
		case *sexp.List:
			if len(e.Elements) == 0 {
				continue
			}

			if head, ok := e.Elements[0].(*sexp.Symbol); ok {
				switch {
				case smtIntOps[head.Value] || head.Value == "str.to.int":
					return smtSortInt
				case smtStringOps[head.Value] || head.Value == "str.from_int":
					return smtSortString
				}
			}
		}
	}

	return smtSortUnknown
}

// checkSmtVarSort compares name's actual declared sort — an XPath reference
// is always Tree<·>, grounding to a string — against what expected requires.
func (r *Resolver) checkSmtVarSort(n *ast.SmtAtom, name string, expected smtSort) *source.SyntaxError {
	if expected == smtSortUnknown || expected == smtSortBool {
		return nil
	}

	actualIsInt := false

	if _, ok := n.XPaths[name]; !ok {
		b, ok := r.scope.lookup(name)
		if !ok {
			return nil // already reported by the unresolved-variable pass above
		}

		actualIsInt = b.sort.IsInt
	}

	if expected == smtSortInt && !actualIsInt {
		return r.errorf(KindSortMismatch, "%q is a string-sorted variable used where Int is expected; convert with str.to.int", name)
	}

	if expected == smtSortString && actualIsInt {
		return r.errorf(KindSortMismatch, "%q is an Int variable used where a string is expected; convert with str.from_int", name)
	}

	return nil
}

func isSmtIntLiteral(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func (r *Resolver) checkPredArgs(name string, args []ast.PredArg) *source.SyntaxError {
	for _, a := range args {
		switch a.Kind {
		case ast.ArgVariable:
			if _, ok := r.scope.lookup(a.Variable); !ok {
				return r.errorf(KindUnresolvedVariable, "unresolved variable %q in %s(...)", a.Variable, name)
			}
		case ast.ArgNonterminalType:
			if !r.g.IsDefined(a.Type) {
				return r.errorf(KindUnreachableXPath, "undefined nonterminal type <%s> in %s(...)", a.Type, name)
			}
		case ast.ArgXPath:
			if err := r.checkXPath(a.XPath); err != nil {
				return err
			}
		case ast.ArgInt, ast.ArgString:
			// Literals need no resolution.
		}
	}

	return nil
}

// checkXPath resolves an XPath's base (a bound variable's declared
// nonterminal type, or a literal type name) and walks its segments,
// checking each single-dot hop is a possible direct child and each
// double-dot hop a possible descendant of the type preceding it (spec.md
// §4.6(f)).
func (r *Resolver) checkXPath(x *ast.XPath) *source.SyntaxError {
	var baseType string

	if x.BaseIsType {
		if !r.g.IsDefined(x.BaseType) {
			return r.errorf(KindUnreachableXPath, "undefined nonterminal type <%s>", x.BaseType)
		}

		baseType = x.BaseType
	} else {
		b, ok := r.scope.lookup(x.BaseVar)
		if !ok {
			return r.errorf(KindUnresolvedVariable, "unresolved variable %q", x.BaseVar)
		}

		if b.sort.IsInt {
			return r.errorf(KindSortMismatch, "%q is an Int variable and cannot be an XPath base", x.BaseVar)
		}

		baseType = b.sort.NonterminalType
	}

	cur := baseType

	for _, seg := range x.Segments {
		if !r.g.IsDefined(seg.Type) {
			return r.errorf(KindUnreachableXPath, "undefined nonterminal type <%s>", seg.Type)
		}

		switch seg.Kind {
		case ast.SegChild, ast.SegChildIndexed:
			if !r.g.IsChildType(cur, seg.Type) {
				return r.errorf(KindUnreachableXPath, "<%s> is not a direct child position of <%s>", seg.Type, cur)
			}
		case ast.SegDescendant:
			if !r.g.IsDescendantType(cur, seg.Type) {
				return r.errorf(KindUnreachableXPath, "<%s> is not reachable as a descendant of <%s>", seg.Type, cur)
			}
		}

		cur = seg.Type
	}

	return nil
}
