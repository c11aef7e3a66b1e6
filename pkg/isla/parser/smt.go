package parser

import (
	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/isla/lexer"
	"github.com/MaGaroo/isla/pkg/sexp"
	"github.com/MaGaroo/isla/pkg/source"
)

// smtCollector accumulates the free variables and XPath expressions
// encountered while parsing one embedded SMT-LIB expression, in the order
// first seen (spec.md §3: "ordered set of free variable references").
//
// A parenthesised grouping in the infix/prefix notation is not supported as
// a bare "(expr)": the S-expression notation already gives unrestricted
// explicit grouping, so a leading '(' inside an SMT expression is always
// parsed as an S-expression application (operator/function head followed by
// its operands). This keeps the two notations' entry points unambiguous
// without backtracking; see DESIGN.md.
type smtCollector struct {
	vars   []string
	seen   map[string]bool
	xpaths map[string]*ast.XPath
}

func newSmtCollector() *smtCollector {
	return &smtCollector{seen: map[string]bool{}, xpaths: map[string]*ast.XPath{}}
}

func (c *smtCollector) addVar(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.vars = append(c.vars, name)
	}
}

func (c *smtCollector) addXPath(x *ast.XPath) string {
	name := xpathText(x)

	if _, ok := c.xpaths[name]; !ok {
		c.xpaths[name] = x
	}

	if x.BaseIsType {
		c.addVar(name)
	} else {
		c.addVar(x.BaseVar)
	}

	return name
}

// Binary infix operator levels, lowest to highest precedence (spec.md §6's
// operator table does not order these; this ranking is this parser's own
// convention — see DESIGN.md).

func (p *Parser) parseSmtImplies(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	return p.smtBinaryLevel(c, p.parseSmtXor, "=>", lexer.ARROW)
}

func (p *Parser) parseSmtXor(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	return p.smtBinaryLevel(c, p.parseSmtOr, "xor", lexer.XOR)
}

func (p *Parser) parseSmtOr(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	return p.smtBinaryLevel(c, p.parseSmtAnd, "or", lexer.OR)
}

func (p *Parser) parseSmtAnd(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	return p.smtBinaryLevel(c, p.parseSmtCompare, "and", lexer.AND)
}

func (p *Parser) parseSmtCompare(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	left, err := p.parseSmtAdditive(c)
	if err != nil {
		return nil, err
	}

	for {
		op := ""

		switch {
		case p.cur().Kind == lexer.EQ:
			op = "="
		case p.cur().Kind == lexer.GE:
			op = ">="
		case p.cur().Kind == lexer.LE:
			op = "<="
		case p.cur().Kind == lexer.GT:
			op = ">"
		case p.cur().Kind == lexer.LT:
			op = "<"
		case p.cur().Kind == lexer.OPNAME && p.cur().Value == "str.<=":
			op = "str.<="
		default:
			return left, nil
		}

		p.advance()

		right, err := p.parseSmtAdditive(c)
		if err != nil {
			return nil, err
		}

		left = sexp.NewList([]sexp.SExp{sexp.NewSymbol(op), left, right})
	}
}

func (p *Parser) parseSmtAdditive(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	left, err := p.parseSmtMultiplicative(c)
	if err != nil {
		return nil, err
	}

	for {
		op := ""

		switch {
		case p.cur().Kind == lexer.PLUS:
			op = "+"
		case p.cur().Kind == lexer.MINUS:
			op = "-"
		case p.cur().Kind == lexer.OPNAME && p.cur().Value == "str.++":
			op = "str.++"
		case p.cur().Kind == lexer.OPNAME && p.cur().Value == "re.++":
			op = "re.++"
		default:
			return left, nil
		}

		p.advance()

		right, err := p.parseSmtMultiplicative(c)
		if err != nil {
			return nil, err
		}

		left = sexp.NewList([]sexp.SExp{sexp.NewSymbol(op), left, right})
	}
}

func (p *Parser) parseSmtMultiplicative(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	left, err := p.parseSmtTerm(c)
	if err != nil {
		return nil, err
	}

	for {
		op := ""

		switch {
		case p.cur().Kind == lexer.STAR:
			op = "*"
		case p.cur().Kind == lexer.IDENT && p.cur().Value == "div":
			op = "div"
		case p.cur().Kind == lexer.IDENT && p.cur().Value == "mod":
			op = "mod"
		default:
			return left, nil
		}

		p.advance()

		right, err := p.parseSmtTerm(c)
		if err != nil {
			return nil, err
		}

		left = sexp.NewList([]sexp.SExp{sexp.NewSymbol(op), left, right})
	}
}

// smtBinaryLevel implements one left-associative binary-operator precedence
// level shared by several of the levels above.
func (p *Parser) smtBinaryLevel(
	c *smtCollector,
	next func(*smtCollector) (sexp.SExp, *source.SyntaxError),
	op string,
	kind lexer.Kind,
) (sexp.SExp, *source.SyntaxError) {
	left, err := next(c)
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == kind {
		p.advance()

		right, err := next(c)
		if err != nil {
			return nil, err
		}

		left = sexp.NewList([]sexp.SExp{sexp.NewSymbol(op), left, right})
	}

	return left, nil
}

// parseSmtTerm parses one atomic SMT term: a literal, an S-expression
// application, a prefix call `op(a,b,...)`, a variable reference, or an
// XPath expression.
func (p *Parser) parseSmtTerm(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	switch p.cur().Kind {
	case lexer.LPAREN:
		return p.parseSmtSexprApplication(c)
	case lexer.NUMBER:
		return sexp.NewSymbol(p.advance().Value), nil
	case lexer.STRING:
		return sexp.NewStringLiteral(p.advance().Value), nil
	case lexer.TRUE:
		p.advance()
		return sexp.NewSymbol("true"), nil
	case lexer.FALSE:
		p.advance()
		return sexp.NewSymbol("false"), nil
	case lexer.MINUS:
		p.advance()

		operand, err := p.parseSmtTerm(c)
		if err != nil {
			return nil, err
		}

		return sexp.NewList([]sexp.SExp{sexp.NewSymbol("-"), operand}), nil
	case lexer.IDENT:
		return p.parseSmtIdentTerm(c)
	case lexer.OPNAME:
		name := p.advance().Value

		if _, err := p.expect(lexer.LPAREN, "'(' after operator name "+name); err != nil {
			return nil, err
		}

		return p.parseSmtCallArgs(c, name)
	case lexer.NONTERMINAL:
		return p.parseSmtXPathTerm(c)
	default:
		return nil, p.errorf(p.cur().Span, "expected an SMT-LIB term, found %s", p.cur().Kind)
	}
}

// parseSmtIdentTerm dispatches a bare identifier as a prefix call
// `op(a,b,...)`, an XPath base, or a plain variable reference.
func (p *Parser) parseSmtIdentTerm(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	name := p.advance().Value

	if p.cur().Kind == lexer.LPAREN {
		p.advance()
		return p.parseSmtCallArgs(c, name)
	}

	if p.cur().Kind == lexer.DOT || p.cur().Kind == lexer.DOTDOT {
		segs, err := p.parseXPathSegments()
		if err != nil {
			return nil, err
		}

		x := &ast.XPath{BaseVar: name, Segments: segs}

		return sexp.NewSymbol(c.addXPath(x)), nil
	}

	c.addVar(name)

	return sexp.NewSymbol(name), nil
}

// parseSmtXPathTerm parses an XPath expression whose base is a nonterminal
// type (NONTERMINAL token), rather than a variable.
func (p *Parser) parseSmtXPathTerm(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	typ, err := p.expectNonterminalType()
	if err != nil {
		return nil, err
	}

	segs, serr := p.parseXPathSegments()
	if serr != nil {
		return nil, serr
	}

	x := &ast.XPath{BaseIsType: true, BaseType: typ, Segments: segs}

	return sexp.NewSymbol(c.addXPath(x)), nil
}

// parseSmtSexprApplication parses the S-expression notation: a parenthesised
// list whose head is an operator/function identifier, per spec.md §4.4.
func (p *Parser) parseSmtSexprApplication(c *smtCollector) (sexp.SExp, *source.SyntaxError) {
	p.advance() // '('

	headTok := p.cur()

	var head string

	switch headTok.Kind {
	case lexer.IDENT, lexer.OPNAME:
		head = headTok.Value
		p.advance()
	case lexer.EQ:
		head = "="
		p.advance()
	case lexer.GE:
		head = ">="
		p.advance()
	case lexer.LE:
		head = "<="
		p.advance()
	case lexer.GT:
		head = ">"
		p.advance()
	case lexer.LT:
		head = "<"
		p.advance()
	case lexer.PLUS:
		head = "+"
		p.advance()
	case lexer.MINUS:
		head = "-"
		p.advance()
	case lexer.STAR:
		head = "*"
		p.advance()
	case lexer.ARROW:
		head = "=>"
		p.advance()
	case lexer.AND:
		head = "and"
		p.advance()
	case lexer.OR:
		head = "or"
		p.advance()
	case lexer.XOR:
		head = "xor"
		p.advance()
	default:
		return nil, p.errorf(headTok.Span, "expected an SMT-LIB operator or function name, found %s", headTok.Kind)
	}

	elems := []sexp.SExp{sexp.NewSymbol(head)}

	for p.cur().Kind != lexer.RPAREN {
		el, err := p.parseSmtImplies(c)
		if err != nil {
			return nil, err
		}

		elems = append(elems, el)
	}

	p.advance() // ')'

	return sexp.NewList(elems), nil
}

// parseSmtCallArgs parses the comma-separated operand list of a prefix call
// `op(a,b,...)`, with the opening '(' already consumed.
func (p *Parser) parseSmtCallArgs(c *smtCollector, head string) (sexp.SExp, *source.SyntaxError) {
	elems := []sexp.SExp{sexp.NewSymbol(head)}

	if p.cur().Kind != lexer.RPAREN {
		for {
			el, err := p.parseSmtImplies(c)
			if err != nil {
				return nil, err
			}

			elems = append(elems, el)

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

	return sexp.NewList(elems), nil
}
