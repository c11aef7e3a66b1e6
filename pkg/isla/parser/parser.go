// Package parser implements C4: the ISLa parser. It builds the formula AST
// (pkg/isla/ast) from the token stream produced by pkg/isla/lexer, invoking
// pkg/isla/matchexpr for quantifier match expressions and the embedded SMT
// sub-parser of smt.go for SMT-LIB atoms in either notation.
//
// Precedence, lowest to highest (spec.md §4.4): iff, implies, xor, or, and,
// not, then quantifier prefixes (right-associative into their body), then
// atoms. Parenthesised formulas override precedence.
package parser

import (
	"fmt"
	"strconv"

	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/isla/lexer"
	"github.com/MaGaroo/isla/pkg/isla/matchexpr"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/source"
)

// Error kinds raised by the parser, per spec.md §4.4/§7.
const (
	KindParseError       source.Kind = "parse-error"
	KindArityMismatch    source.Kind = "arity-mismatch"
	KindUnknownPredicate source.Kind = "unknown-predicate"
)

// Parser builds a formula AST from ISLa source text.
type Parser struct {
	srcfile *source.File
	toks    []lexer.Token
	pos     int
	// semPreds names the semantic predicate registry supplied by the host,
	// per spec.md §6's `parse_formula(text, grammar, sem_pred_registry?)`;
	// nil means no semantic predicates are available.
	semPreds predicate.SemanticRegistry
	// scope is the stack of currently in-scope quantifier/match-expression
	// binder names, used only to compute each match expression's
	// shadow-check set (pkg/isla/matchexpr already enforces the rule once
	// given that set).
	scope []string
}

// Parse parses a complete ISLa specification: an optional `const id : <T>;`
// declaration followed by exactly one formula (spec.md §4.4).
func Parse(srcfile *source.File, semPreds predicate.SemanticRegistry) (*ast.Spec, *source.SyntaxError) {
	toks, err := lexer.Tokenize(srcfile)
	if err != nil {
		return nil, err
	}

	p := &Parser{srcfile: srcfile, toks: toks, semPreds: semPreds}

	spec, perr := p.parseSpec()
	if perr != nil {
		return nil, perr
	}

	if p.cur().Kind != lexer.EOF {
		return nil, p.errorf(p.cur().Span, "unexpected %s after formula", p.cur().Kind)
	}

	return spec, nil
}

func (p *Parser) parseSpec() (*ast.Spec, *source.SyntaxError) {
	spec := &ast.Spec{}

	if p.cur().Kind == lexer.CONST {
		p.advance()

		name, err := p.expect(lexer.IDENT, "a constant name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}

		typ, err := p.expectNonterminalType()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
			return nil, err
		}

		spec.HasConst = true
		spec.ConstName = name.Value
		spec.ConstType = typ
	}

	formula, err := p.parseIff()
	if err != nil {
		return nil, err
	}

	spec.Formula = formula

	return spec, nil
}

// ---------------------------------------------------------------------
// Token stream helpers
// ---------------------------------------------------------------------

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[i]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *Parser) expect(k lexer.Kind, expected string) (lexer.Token, *source.SyntaxError) {
	if p.cur().Kind != k {
		return lexer.Token{}, p.errorf(p.cur().Span, "expected %s, found %s", expected, p.cur().Kind)
	}

	return p.advance(), nil
}

func (p *Parser) expectNonterminalType() (string, *source.SyntaxError) {
	tok, err := p.expect(lexer.NONTERMINAL, "a nonterminal type, e.g. <var>")
	if err != nil {
		return "", err
	}

	return tok.Value[1 : len(tok.Value)-1], nil
}

func (p *Parser) errorf(span source.Span, format string, args ...interface{}) *source.SyntaxError {
	return p.srcfile.SyntaxError(span, KindParseError, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------
// Connective precedence chain: iff < implies < xor < or < and < not <
// quantifier/atom.
// ---------------------------------------------------------------------

func (p *Parser) parseIff() (ast.Formula, *source.SyntaxError) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == lexer.IFF {
		p.advance()

		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}

		left = &ast.Iff{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseImplies() (ast.Formula, *source.SyntaxError) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == lexer.IMPLIES {
		p.advance()

		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}

		left = &ast.Implies{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseXor() (ast.Formula, *source.SyntaxError) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == lexer.XOR {
		p.advance()

		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		left = &ast.Xor{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseOr() (ast.Formula, *source.SyntaxError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == lexer.OR {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &ast.Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAnd() (ast.Formula, *source.SyntaxError) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == lexer.AND {
		p.advance()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &ast.And{Left: left, Right: right}
	}

	return left, nil
}

// parseNot implements the unary `not` level: right-associative, so "not not
// phi" parses as Not(Not(phi)).
func (p *Parser) parseNot() (ast.Formula, *source.SyntaxError) {
	if p.cur().Kind == lexer.NOT {
		p.advance()

		sub, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &ast.Not{Sub: sub}, nil
	}

	return p.parseQuantifierOrAtom()
}

func (p *Parser) parseQuantifierOrAtom() (ast.Formula, *source.SyntaxError) {
	switch p.cur().Kind {
	case lexer.FORALL:
		return p.parseQuantifier(false)
	case lexer.EXISTS:
		return p.parseQuantifier(true)
	default:
		return p.parseAtom()
	}
}

// ---------------------------------------------------------------------
// Quantifiers
// ---------------------------------------------------------------------

func (p *Parser) parseQuantifier(existential bool) (ast.Formula, *source.SyntaxError) {
	p.advance() // 'forall'/'exists'

	if p.cur().Kind == lexer.INTKW {
		p.advance()

		name, err := p.expect(lexer.IDENT, "a variable name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}

		p.scope = append(p.scope, name.Value)
		body, err := p.parseIff()
		p.scope = p.scope[:len(p.scope)-1]

		if err != nil {
			return nil, err
		}

		if existential {
			return &ast.ExistsInt{VarName: name.Value, Body: body}, nil
		}

		return &ast.ForallInt{VarName: name.Value, Body: body}, nil
	}

	varType, err := p.expectNonterminalType()
	if err != nil {
		return nil, err
	}

	varName := ""
	if p.cur().Kind == lexer.IDENT {
		varName = p.advance().Value
	}

	var match *ast.MatchExpr

	if p.cur().Kind == lexer.EQ {
		p.advance()

		tok, err := p.expect(lexer.STRING, "a match-expression string")
		if err != nil {
			return nil, err
		}

		outer := make(map[string]bool, len(p.scope))
		for _, n := range p.scope {
			outer[n] = true
		}

		m, merr := matchexpr.Parse(tok.Value, outer)
		if merr != nil {
			return nil, merr
		}

		match = m
	}

	inVar := ""

	if p.cur().Kind == lexer.IN {
		p.advance()

		name, err := p.expect(lexer.IDENT, "a variable name")
		if err != nil {
			return nil, err
		}

		inVar = name.Value
	}

	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}

	p.scope = append(p.scope, varName)

	if match != nil {
		for _, b := range match.Binders() {
			p.scope = append(p.scope, b.Name)
		}
	}

	body, err := p.parseIff()

	if match != nil {
		p.scope = p.scope[:len(p.scope)-len(match.Binders())]
	}

	p.scope = p.scope[:len(p.scope)-1]

	if err != nil {
		return nil, err
	}

	q := ast.Quantifier{VarType: varType, VarName: varName, Match: match, InVar: inVar, Body: body}

	if existential {
		return &ast.Exists{Quantifier: q}, nil
	}

	return &ast.Forall{Quantifier: q}, nil
}

// ---------------------------------------------------------------------
// Atoms: boolean literals, grouped/predicate/SMT atoms, bare infix SMT
// atoms.
// ---------------------------------------------------------------------

func (p *Parser) parseAtom() (ast.Formula, *source.SyntaxError) {
	switch p.cur().Kind {
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true}, nil
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false}, nil
	case lexer.LPAREN:
		return p.parseParenAtom()
	case lexer.IDENT:
		if p.peekAt(1).Kind == lexer.LPAREN {
			return p.parsePredicateCall()
		}

		return p.parseSmtAtomFormula()
	case lexer.NONTERMINAL:
		return p.parseSmtAtomFormula()
	default:
		return nil, p.errorf(p.cur().Span, "expected a formula, found %s", p.cur().Kind)
	}
}

// parseParenAtom handles a leading '(' at atom position, which either
// groups a nested ISLa formula or introduces an embedded SMT S-expression.
// Disambiguation (see DESIGN.md): peek the token immediately following the
// '(', and after an identifier the one after that. forall/exists/not/true/
// false/'(' mean grouping parens around a nested formula; so does an
// identifier followed by '(' (a predicate call), by '.'/'..' (an XPath) or
// by a comparison operator (an infix SMT atom such as `(lhs = rhs)`). Any
// other head — an SMT operator token, or an identifier followed by
// anything else — means this is an SMT S-expression.
func (p *Parser) parseParenAtom() (ast.Formula, *source.SyntaxError) {
	head := p.peekAt(1)

	groupingHead := false

	switch head.Kind {
	case lexer.FORALL, lexer.EXISTS, lexer.NOT, lexer.LPAREN, lexer.TRUE, lexer.FALSE:
		groupingHead = true
	case lexer.IDENT:
		switch p.peekAt(2).Kind {
		case lexer.LPAREN, lexer.DOT, lexer.DOTDOT, lexer.EQ, lexer.GE, lexer.LE, lexer.GT, lexer.LT:
			groupingHead = true
		}
	}

	if groupingHead {
		p.advance() // '('

		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}

		return inner, nil
	}

	return p.parseSmtAtomFormula()
}

// parseSmtAtomFormula parses one embedded SMT-LIB boolean expression,
// starting at the current token (either a leading '(' S-expression or bare
// infix/prefix notation), and wraps it as an ast.SmtAtom.
func (p *Parser) parseSmtAtomFormula() (ast.Formula, *source.SyntaxError) {
	c := newSmtCollector()

	expr, err := p.parseSmtImplies(c)
	if err != nil {
		return nil, err
	}

	return &ast.SmtAtom{Expr: expr, Vars: c.vars, XPaths: c.xpaths}, nil
}

// ---------------------------------------------------------------------
// Predicate calls
// ---------------------------------------------------------------------

func (p *Parser) parsePredicateCall() (ast.Formula, *source.SyntaxError) {
	nameTok := p.advance() // IDENT
	name := nameTok.Value

	p.advance() // '('

	var args []ast.PredArg

	if p.cur().Kind != lexer.RPAREN {
		for {
			arg, err := p.parsePredArg()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.cur().Kind == lexer.COMMA {
				p.advance()
				continue
			}

			break
		}
	}

	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}

	if sp, ok := predicate.Structural[name]; ok {
		if sp.Arity != len(args) {
			return nil, p.srcfile.SyntaxError(nameTok.Span, KindArityMismatch,
				fmt.Sprintf("%s expects %d argument(s), found %d", name, sp.Arity, len(args)))
		}

		return &ast.StructPred{Name: name, Args: args}, nil
	}

	if p.semPreds != nil {
		if sp, ok := p.semPreds[name]; ok {
			if sp.Arity != len(args) {
				return nil, p.srcfile.SyntaxError(nameTok.Span, KindArityMismatch,
					fmt.Sprintf("%s expects %d argument(s), found %d", name, sp.Arity, len(args)))
			}

			return &ast.SemPred{Name: name, Args: args}, nil
		}
	}

	return nil, p.srcfile.SyntaxError(nameTok.Span, KindUnknownPredicate,
		fmt.Sprintf("unknown predicate %q", name))
}

func (p *Parser) parsePredArg() (ast.PredArg, *source.SyntaxError) {
	switch p.cur().Kind {
	case lexer.NUMBER:
		tok := p.advance()
		n, _ := strconv.Atoi(tok.Value)

		return ast.PredArg{Kind: ast.ArgInt, Int: n}, nil
	case lexer.STRING:
		tok := p.advance()
		return ast.PredArg{Kind: ast.ArgString, String: tok.Value}, nil
	case lexer.IDENT:
		name := p.advance().Value

		if p.cur().Kind == lexer.DOT || p.cur().Kind == lexer.DOTDOT {
			segs, err := p.parseXPathSegments()
			if err != nil {
				return ast.PredArg{}, err
			}

			return ast.PredArg{Kind: ast.ArgXPath, XPath: &ast.XPath{BaseVar: name, Segments: segs}}, nil
		}

		return ast.PredArg{Kind: ast.ArgVariable, Variable: name}, nil
	case lexer.NONTERMINAL:
		typ, err := p.expectNonterminalType()
		if err != nil {
			return ast.PredArg{}, err
		}

		if p.cur().Kind == lexer.DOT || p.cur().Kind == lexer.DOTDOT {
			segs, err := p.parseXPathSegments()
			if err != nil {
				return ast.PredArg{}, err
			}

			return ast.PredArg{Kind: ast.ArgXPath, XPath: &ast.XPath{BaseIsType: true, BaseType: typ, Segments: segs}}, nil
		}

		return ast.PredArg{Kind: ast.ArgNonterminalType, Type: typ}, nil
	default:
		return ast.PredArg{}, p.errorf(p.cur().Span, "expected a predicate argument, found %s", p.cur().Kind)
	}
}
