// Package eval implements C10: the three-valued satisfaction evaluator
// β ⊨ φ of spec.md §4.10, by structural recursion over the formula AST of
// pkg/isla/ast, delegating to pkg/isla/predicate for C7/C8 predicates and to
// an smt.Oracle for C9's ground SMT-LIB queries. Kleene combination of
// sub-verdicts never collapses an UNDEF, per pkg/isla/verdict.
package eval

import (
	"fmt"

	"github.com/MaGaroo/isla/pkg/isla/assign"
	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/isla/matchexpr"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/sexp"
	"github.com/MaGaroo/isla/pkg/tree"
)

// EvalError reports a malformed assignment encountered during evaluation:
// a formula referenced a free variable with no binding in scope. A
// well-formed spec (pkg/isla/resolve.Check) never triggers this for a
// closed formula; it can still arise when Check is called directly against
// a formula with free variables.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return e.Message }

func evalErrorf(format string, args ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}

// Evaluator holds the collaborators C10 needs but does not itself define:
// the SMT oracle of C9 and the semantic predicate registry of C8.
type Evaluator struct {
	oracle   smt.Oracle
	semPreds predicate.SemanticRegistry
}

// New constructs an Evaluator. semPreds may be nil if the spec uses no
// semantic predicates.
func New(oracle smt.Oracle, semPreds predicate.SemanticRegistry) *Evaluator {
	return &Evaluator{oracle: oracle, semPreds: semPreds}
}

// Check decides β ⊨ φ for spec.Formula, where β binds spec's top-level
// constant (if any) to top.
func (e *Evaluator) Check(spec *ast.Spec, top tree.Tree) (verdict.Verdict, error) {
	env := assign.NewEnv()

	if spec.HasConst {
		env = env.With(spec.ConstName, assign.TreeValue(top))
	}

	return e.Eval(spec.Formula, top, env)
}

// Eval decides β ⊨ f for an arbitrary formula and assignment, where top is
// the tree bound to the specification's top-level constant (used by
// structural predicates to compute node paths, and as the default domain
// of a quantifier with no `in` clause).
func (e *Evaluator) Eval(f ast.Formula, top tree.Tree, env assign.Env) (verdict.Verdict, error) {
	switch n := f.(type) {
	case *ast.BoolLit:
		return verdict.FromBool(n.Value), nil

	case *ast.Not:
		v, err := e.Eval(n.Sub, top, env)
		return v.Not(), err

	case *ast.And:
		return e.evalBinary(n.Left, n.Right, top, env, verdict.Verdict.And)
	case *ast.Or:
		return e.evalBinary(n.Left, n.Right, top, env, verdict.Verdict.Or)
	case *ast.Xor:
		return e.evalBinary(n.Left, n.Right, top, env, verdict.Verdict.Xor)
	case *ast.Implies:
		return e.evalBinary(n.Left, n.Right, top, env, verdict.Verdict.Implies)
	case *ast.Iff:
		return e.evalBinary(n.Left, n.Right, top, env, verdict.Verdict.Iff)

	case *ast.StructPred:
		return e.evalPred(predicate.Structural, n.Name, n.Args, top, env)
	case *ast.SemPred:
		return e.evalPred(e.semPreds, n.Name, n.Args, top, env)

	case *ast.SmtAtom:
		return e.evalSmtAtom(n, top, env)

	case *ast.Forall:
		return e.evalTreeQuantifier(n.Quantifier, false, top, env)
	case *ast.Exists:
		return e.evalTreeQuantifier(n.Quantifier, true, top, env)

	case *ast.ForallInt:
		return e.evalIntQuantifier(false, n.VarName, n.Body, top, env)
	case *ast.ExistsInt:
		return e.evalIntQuantifier(true, n.VarName, n.Body, top, env)

	default:
		return verdict.Undef, evalErrorf("unsupported formula node %T", f)
	}
}

func (e *Evaluator) evalBinary(
	left, right ast.Formula,
	top tree.Tree,
	env assign.Env,
	combine func(verdict.Verdict, verdict.Verdict) verdict.Verdict,
) (verdict.Verdict, error) {
	lv, err := e.Eval(left, top, env)
	if err != nil {
		return verdict.Undef, err
	}

	rv, err := e.Eval(right, top, env)
	if err != nil {
		return verdict.Undef, err
	}

	return combine(lv, rv), nil
}

// ---------------------------------------------------------------------
// Predicate calls
// ---------------------------------------------------------------------

// evalPred resolves every argument and delegates to the named predicate's
// evaluator. Per spec.md §4.7, an argument that fails to resolve against
// the current assignment (an XPath with no match, typically) makes the
// whole call UNDEF rather than a hard evaluation failure; only a reference
// to a name with no binder at all anywhere in scope — a genuinely malformed
// assignment that pkg/isla/resolve.Check should already have rejected for a
// closed formula — is reported as an EvalError. A predicate name with no
// evaluator in registry is UNDEF as well.
func (e *Evaluator) evalPred(
	registry map[string]predicate.Predicate,
	name string,
	args []ast.PredArg,
	top tree.Tree,
	env assign.Env,
) (verdict.Verdict, error) {
	pred, ok := registry[name]
	if !ok {
		return verdict.Undef, nil
	}

	resolved := make([]predicate.Arg, len(args))

	for i, a := range args {
		arg, resolvedOK, err := e.resolvePredArg(a, top, env)
		if err != nil {
			return verdict.Undef, err
		}

		if !resolvedOK {
			return verdict.Undef, nil
		}

		resolved[i] = arg
	}

	return pred.Eval(top, resolved), nil
}

func (e *Evaluator) resolvePredArg(a ast.PredArg, top tree.Tree, env assign.Env) (predicate.Arg, bool, error) {
	switch a.Kind {
	case ast.ArgInt:
		return predicate.Arg{Kind: predicate.ArgInt, Int: a.Int}, true, nil
	case ast.ArgString:
		return predicate.Arg{Kind: predicate.ArgString, Str: a.String}, true, nil
	case ast.ArgNonterminalType:
		return predicate.Arg{Kind: predicate.ArgString, Str: a.Type}, true, nil
	case ast.ArgVariable:
		v, ok := env.Lookup(a.Variable)
		if !ok {
			return predicate.Arg{}, false, evalErrorf("unbound variable %q", a.Variable)
		}

		if v.IsInt() {
			return predicate.Arg{Kind: predicate.ArgInt, Int: v.Int()}, true, nil
		}

		return predicate.Arg{Kind: predicate.ArgTree, Tree: v.Tree()}, true, nil
	case ast.ArgXPath:
		node, ok := resolveXPath(a.XPath, top, env)
		if !ok {
			return predicate.Arg{}, false, nil
		}

		return predicate.Arg{Kind: predicate.ArgTree, Tree: node}, true, nil
	default:
		return predicate.Arg{}, false, evalErrorf("unsupported predicate argument kind %v", a.Kind)
	}
}

// ---------------------------------------------------------------------
// SMT atoms
// ---------------------------------------------------------------------

// evalSmtAtom grounds every free variable of n (substituting a bound tree
// with its yield, per spec.md §4.9) and delegates satisfiability of the
// fully-instantiated expression to the oracle. An XPath that fails to
// resolve against the current assignment makes the atom UNDEF, matching the
// predicate convention of spec.md §4.7; an outright unbound plain variable
// is an EvalError (see evalPred's doc comment).
func (e *Evaluator) evalSmtAtom(n *ast.SmtAtom, top tree.Tree, env assign.Env) (verdict.Verdict, error) {
	smtEnv, resolvedOK, err := e.groundSmtEnv(n.Vars, n.XPaths, &top, env)
	if err != nil {
		return verdict.Undef, err
	}

	if !resolvedOK {
		return verdict.Undef, nil
	}

	return e.oracle.Check(n.Expr, smtEnv), nil
}

// groundSmtEnv resolves every XPath pseudo-name in xpaths against top/env
// and binds it to the yield of the node it selects, then binds each other
// name in vars to its value in env (tree values contribute their yield, int
// values pass through). A type-rooted XPath base is searched for within
// *top, so top must be non-nil whenever xpaths holds one.
func (e *Evaluator) groundSmtEnv(
	vars []string,
	xpaths map[string]*ast.XPath,
	top *tree.Tree,
	env assign.Env,
) (smt.Env, bool, error) {
	out := make(smt.Env, len(vars)+len(xpaths))

	for name, xp := range xpaths {
		var rootForSearch tree.Tree

		if top != nil {
			rootForSearch = *top
		} else if v, ok := env.Lookup(xp.BaseVar); ok && !v.IsInt() {
			rootForSearch = v.Tree()
		}

		node, ok := resolveXPathWithRoot(xp, rootForSearch, env)
		if !ok {
			return nil, false, nil
		}

		out[name] = smt.StringValue(node.Yield())
	}

	for _, name := range vars {
		if _, ok := xpaths[name]; ok {
			continue
		}

		v, ok := env.Lookup(name)
		if !ok {
			return nil, false, evalErrorf("unbound variable %q in SMT atom", name)
		}

		if v.IsInt() {
			out[name] = smt.IntValue(v.Int())
		} else {
			out[name] = smt.StringValue(v.Tree().Yield())
		}
	}

	return out, true, nil
}

// ---------------------------------------------------------------------
// XPath resolution
// ---------------------------------------------------------------------

// resolveXPath resolves x against the current assignment, using top as the
// search root when x's base names a nonterminal type rather than a bound
// variable (spec.md §3 allows either). See DESIGN.md: a type-rooted base is
// resolved against every occurrence of that type in top, in pre-order,
// taking the first one for which the whole segment chain also resolves —
// there is no further disambiguation signal available at this layer.
func resolveXPath(x *ast.XPath, top tree.Tree, env assign.Env) (tree.Tree, bool) {
	return resolveXPathWithRoot(x, top, env)
}

func resolveXPathWithRoot(x *ast.XPath, root tree.Tree, env assign.Env) (tree.Tree, bool) {
	if !x.BaseIsType {
		v, ok := env.Lookup(x.BaseVar)
		if !ok || v.IsInt() {
			return tree.Tree{}, false
		}

		return applyXPathSegments(v.Tree(), x.Segments)
	}

	for _, pt := range root.DescendantsOfType(x.BaseType) {
		if node, ok := applyXPathSegments(pt.Tree, x.Segments); ok {
			return node, true
		}
	}

	return tree.Tree{}, false
}

// applyXPathSegments walks node's descendants one XPath segment at a time:
// a single-dot segment steps to the first direct child of the declared
// type (DISAMBIGUATION: earlier siblings of the same type are skipped by
// giving the segment an explicit [k] index, per spec.md §3), a `[k]`
// segment to the k-th (1-based) direct child of that type, and a
// double-dot segment to the first descendant of the declared type
// encountered in pre-order.
func applyXPathSegments(node tree.Tree, segs []ast.XPathSegment) (tree.Tree, bool) {
	cur := node

	for _, seg := range segs {
		switch seg.Kind {
		case ast.SegChild:
			next, ok := nthChildOfType(cur, seg.Type, 1)
			if !ok {
				return tree.Tree{}, false
			}

			cur = next

		case ast.SegChildIndexed:
			next, ok := nthChildOfType(cur, seg.Type, seg.Index)
			if !ok {
				return tree.Tree{}, false
			}

			cur = next

		case ast.SegDescendant:
			ds := cur.DescendantsOfType(seg.Type)
			if len(ds) > 0 && len(ds[0].Path) == 0 {
				ds = ds[1:] // cur itself is not one of its descendants
			}

			if len(ds) == 0 {
				return tree.Tree{}, false
			}

			cur = ds[0].Tree

		default:
			return tree.Tree{}, false
		}
	}

	return cur, true
}

func nthChildOfType(node tree.Tree, typ string, k int) (tree.Tree, bool) {
	count := 0

	for _, c := range node.Children() {
		if c.IsTerminal() || c.Label() != typ {
			continue
		}

		count++

		if count == k {
			return c, true
		}
	}

	return tree.Tree{}, false
}

// ---------------------------------------------------------------------
// Tree quantifiers
// ---------------------------------------------------------------------

func (e *Evaluator) evalTreeQuantifier(
	q ast.Quantifier,
	existential bool,
	top tree.Tree,
	env assign.Env,
) (verdict.Verdict, error) {
	domain := top

	if q.InVar != "" {
		v, ok := env.Lookup(q.InVar)
		if !ok || v.IsInt() {
			return verdict.Undef, evalErrorf("'in' clause variable %q is not a bound tree variable", q.InVar)
		}

		domain = v.Tree()
	}

	candidates := domain.DescendantsOfType(q.VarType)

	sawUndef := false

	for _, pt := range candidates {
		inst := env

		if q.VarName != "" {
			inst = inst.With(q.VarName, assign.TreeValue(pt.Tree))
		}

		if q.Match != nil {
			bindings, ok := matchNode(pt.Tree, q.Match.Elements)
			if !ok {
				continue
			}

			for name, t := range bindings {
				inst = inst.With(name, assign.TreeValue(t))
			}
		}

		v, err := e.Eval(q.Body, top, inst)
		if err != nil {
			return verdict.Undef, err
		}

		switch v {
		case verdict.Unsat:
			if !existential {
				return verdict.Unsat, nil
			}
		case verdict.Sat:
			if existential {
				return verdict.Sat, nil
			}
		case verdict.Undef:
			sawUndef = true
		}
	}

	if sawUndef {
		return verdict.Undef, nil
	}

	// No candidate falsified a universal quantifier (or none satisfied an
	// existential one): forall is vacuously true over an empty or
	// all-matching domain; exists is false over an empty or
	// none-matching domain.
	return verdict.FromBool(!existential), nil
}

// ---------------------------------------------------------------------
// Integer quantifiers
// ---------------------------------------------------------------------

// evalIntQuantifier implements spec.md §3/§7's open question on forall
// int/exists int: it is decidable here only when body is built entirely
// from propositional connectives over SMT atoms that mention the quantified
// variable exclusively inside those atoms ("SMT-liftable"); the whole
// quantifier is then forwarded as a single SMT-LIB quantified query to the
// oracle, which (for a theory-complete backend) decides it directly. A
// mixed body — one that also uses a tree quantifier or a structural/
// semantic predicate — has no finite decision procedure in this core and
// evaluates to UNDEF rather than being silently mis-evaluated. No rewrite
// based on the body being functional in the quantified variable is
// performed, and there is no way to assert that property (see DESIGN.md).
func (e *Evaluator) evalIntQuantifier(
	existential bool,
	varName string,
	body ast.Formula,
	top tree.Tree,
	env assign.Env,
) (verdict.Verdict, error) {
	vars := map[string]bool{}
	xpaths := map[string]*ast.XPath{}

	expr, ok := smtLiftable(body, vars, xpaths)
	if !ok {
		// Not liftable into one SMT-LIB query: a mixed body (a tree
		// quantifier or a structural/semantic predicate alongside the
		// quantified integer) has no finite decision procedure in this
		// core. UNDEF rather than an error keeps this composable under an
		// enclosing connective instead of aborting the whole evaluation.
		return verdict.Undef, nil
	}

	delete(vars, varName)

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	smtEnv, resolvedOK, err := e.groundSmtEnv(names, xpaths, &top, env)
	if err != nil {
		return verdict.Undef, err
	}

	if !resolvedOK {
		return verdict.Undef, nil
	}

	quantifierSymbol := "forall"
	if existential {
		quantifierSymbol = "exists"
	}

	binder := sexp.NewList([]sexp.SExp{
		sexp.NewList([]sexp.SExp{sexp.NewSymbol(varName), sexp.NewSymbol("Int")}),
	})

	query := sexp.NewList([]sexp.SExp{sexp.NewSymbol(quantifierSymbol), binder, expr})

	return e.oracle.Check(query, smtEnv), nil
}

// smtLiftable recursively rewrites a formula built purely from SmtAtom
// leaves and propositional connectives into a single sexp.SExp, collecting
// every free variable and XPath it references into vars/xpaths. It reports
// false if f contains anything else (a tree quantifier or a predicate
// call), in which case it is not liftable into one SMT-LIB query.
func smtLiftable(f ast.Formula, vars map[string]bool, xpaths map[string]*ast.XPath) (sexp.SExp, bool) {
	switch n := f.(type) {
	case *ast.BoolLit:
		if n.Value {
			return sexp.NewSymbol("true"), true
		}

		return sexp.NewSymbol("false"), true

	case *ast.SmtAtom:
		for _, v := range n.Vars {
			vars[v] = true
		}

		for k, v := range n.XPaths {
			xpaths[k] = v
		}

		return n.Expr, true

	case *ast.Not:
		sub, ok := smtLiftable(n.Sub, vars, xpaths)
		if !ok {
			return nil, false
		}

		return sexp.NewList([]sexp.SExp{sexp.NewSymbol("not"), sub}), true

	case *ast.And:
		return smtLiftableBinary("and", n.Left, n.Right, vars, xpaths)
	case *ast.Or:
		return smtLiftableBinary("or", n.Left, n.Right, vars, xpaths)
	case *ast.Xor:
		return smtLiftableBinary("xor", n.Left, n.Right, vars, xpaths)
	case *ast.Implies:
		return smtLiftableBinary("=>", n.Left, n.Right, vars, xpaths)
	case *ast.Iff:
		return smtLiftableBinary("=", n.Left, n.Right, vars, xpaths)

	default:
		return nil, false
	}
}

func smtLiftableBinary(
	op string,
	left, right ast.Formula,
	vars map[string]bool,
	xpaths map[string]*ast.XPath,
) (sexp.SExp, bool) {
	l, ok := smtLiftable(left, vars, xpaths)
	if !ok {
		return nil, false
	}

	r, ok := smtLiftable(right, vars, xpaths)
	if !ok {
		return nil, false
	}

	return sexp.NewList([]sexp.SExp{sexp.NewSymbol(op), l, r}), true
}

// ---------------------------------------------------------------------
// Match-expression matching
// ---------------------------------------------------------------------

// matchNode attempts to match elems against node's expansion, returning the
// bindings produced by every Bind element if it succeeds. Matching proceeds
// by offset within node's yield string: a Text element must appear
// literally at the current offset; a Bind element locates, by a pre-order
// search of node's descendants, the first node whose own span starts at the
// current offset and whose label is the declared type — this lets a
// pattern's declared type "see through" a grammar's single-alternative
// wrapper nonterminals (e.g. a <rhs> that expands to a bare <var>), which is
// exactly what lets a match expression written in terms of <var> bind to a
// node nested one level below an <assgn>'s direct <rhs> child. An Optional
// fragment is matched on a best-effort basis: if it does not match at the
// current offset it contributes no binding and consumes no input, rather
// than failing the whole match (see DESIGN.md).
func matchNode(node tree.Tree, elems []matchexpr.Element) (map[string]tree.Tree, bool) {
	spans := spansOf(node)
	yield := node.Yield()

	bindings := map[string]tree.Tree{}

	pos, ok := matchElements(elems, yield, spans, 0, bindings)
	if !ok || pos != len(yield) {
		return nil, false
	}

	return bindings, true
}

// nodeSpan pairs a descendant (or node itself) with its start/end offsets
// within node's own yield.
type nodeSpan struct {
	tree       tree.Tree
	start, end int
}

// spansOf computes, for every node beneath and including root, its start and
// end offset within root's yield, in pre-order.
func spansOf(root tree.Tree) []nodeSpan {
	var out []nodeSpan

	offset := 0

	var walk func(tree.Tree)

	walk = func(t tree.Tree) {
		i := len(out)
		out = append(out, nodeSpan{t, offset, offset})

		if t.IsTerminal() {
			offset += len(t.Label())
		} else {
			for _, c := range t.Children() {
				walk(c)
			}
		}

		out[i].end = offset
	}

	walk(root)

	return out
}

func matchElements(
	elems []matchexpr.Element,
	yield string,
	spans []nodeSpan,
	pos int,
	bindings map[string]tree.Tree,
) (int, bool) {
	for _, el := range elems {
		switch el.Kind {
		case matchexpr.Text:
			if pos+len(el.Text) > len(yield) || yield[pos:pos+len(el.Text)] != el.Text {
				return pos, false
			}

			pos += len(el.Text)

		case matchexpr.Bind:
			node, end, ok := findSpanAt(spans, pos, el.Type)
			if !ok {
				return pos, false
			}

			bindings[el.Name] = node
			pos = end

		case matchexpr.Optional:
			trial := map[string]tree.Tree{}

			newPos, ok := matchElements(el.Inner, yield, spans, pos, trial)
			if ok {
				for k, v := range trial {
					bindings[k] = v
				}

				pos = newPos
			}

		default:
			return pos, false
		}
	}

	return pos, true
}

// findSpanAt locates, in pre-order, the first node whose span starts at pos
// and whose label equals typ; since spansOf is built in pre-order, this
// naturally prefers an outer node over one of its own descendants when both
// start at pos and share the declared label (they cannot share a label and
// both be candidates unless the grammar is directly left-recursive with no
// intervening terminal, an edge case this search does not special-case
// further).
func findSpanAt(spans []nodeSpan, pos int, typ string) (tree.Tree, int, bool) {
	for _, s := range spans {
		if s.start == pos && !s.tree.IsTerminal() && s.tree.Label() == typ {
			return s.tree, s.end, true
		}
	}

	return tree.Tree{}, 0, false
}
