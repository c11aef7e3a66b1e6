package parser

import (
	"strconv"

	"github.com/MaGaroo/isla/pkg/isla/ast"
	"github.com/MaGaroo/isla/pkg/isla/lexer"
	"github.com/MaGaroo/isla/pkg/source"
)

// parseXPathSegments parses zero or more ".type", ".type[k]", or "..type"
// segments following an already-consumed base, per spec.md §3.
func (p *Parser) parseXPathSegments() ([]ast.XPathSegment, *source.SyntaxError) {
	var segs []ast.XPathSegment

	for {
		switch p.cur().Kind {
		case lexer.DOT:
			p.advance()

			typ, err := p.expectNonterminalType()
			if err != nil {
				return nil, err
			}

			if p.cur().Kind == lexer.LBRACKET {
				p.advance()

				numTok, err := p.expect(lexer.NUMBER, "an index")
				if err != nil {
					return nil, err
				}

				idx, _ := strconv.Atoi(numTok.Value)

				if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
					return nil, err
				}

				segs = append(segs, ast.XPathSegment{Kind: ast.SegChildIndexed, Type: typ, Index: idx})
			} else {
				segs = append(segs, ast.XPathSegment{Kind: ast.SegChild, Type: typ})
			}
		case lexer.DOTDOT:
			p.advance()

			typ, err := p.expectNonterminalType()
			if err != nil {
				return nil, err
			}

			segs = append(segs, ast.XPathSegment{Kind: ast.SegDescendant, Type: typ})
		default:
			return segs, nil
		}
	}
}

// xpathText renders an XPath back to its concrete surface syntax, used as
// the synthesized pseudo-variable name by which an SMT atom's environment
// binds the tree selected by this expression (see smt.go).
func xpathText(x *ast.XPath) string {
	out := x.BaseVar
	if x.BaseIsType {
		out = "<" + x.BaseType + ">"
	}

	for _, seg := range x.Segments {
		switch seg.Kind {
		case ast.SegChild:
			out += ".<" + seg.Type + ">"
		case ast.SegChildIndexed:
			out += ".<" + seg.Type + ">[" + strconv.Itoa(seg.Index) + "]"
		case ast.SegDescendant:
			out += "..<" + seg.Type + ">"
		}
	}

	return out
}
