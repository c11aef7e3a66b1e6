// Package matchexpr implements C5: the match-expression sub-language used
// inside a quantifier's optional `= "..."` pattern, e.g.
// `forall <assgn> a = "{<var> lhs} := {<var> rhs}": lhs = rhs`.
//
// The sub-lexer operates in three modes, exactly as spec.md §4.5 describes:
// default (emits TEXT up to '{' or '['), var-decl (active between '{' and
// '}', recognising `<T>` and an identifier, ignoring whitespace), and
// optional (active between '[' and ']', whose contents are parsed inline in
// default mode, so an optional fragment may contain further `{<T> v}`
// binders; see DESIGN.md for the rationale).
package matchexpr

import (
	"fmt"
	"unicode"

	"github.com/MaGaroo/isla/pkg/source"
)

// Error kinds raised while parsing a match expression.
const (
	KindSyntax        source.Kind = "match-expression-syntax-error"
	KindDuplicateBind source.Kind = "match-expression-duplicate-binder"
	KindShadowedBind  source.Kind = "match-expression-shadows-outer-binder"
)

// Kind identifies the shape of a match-expression Element.
type Kind int

// Element kinds.
const (
	Text Kind = iota
	Bind
	Optional
)

// Element is one piece of a match expression: constant terminal text, a
// nested variable binder `{<T> v}`, or an optional sub-pattern `[...]`
// (spec.md §3's Match expression M).
type Element struct {
	Kind Kind
	// Text holds the literal fragment for a Text element.
	Text string
	// Type and Name hold the nonterminal type (without brackets) and bound
	// variable name for a Bind element.
	Type string
	Name string
	// Inner holds the nested elements of an Optional element.
	Inner []Element
}

// MatchExpr is a parsed match expression: a sequence of Text, Bind, and
// Optional elements.
type MatchExpr struct {
	Elements []Element
}

// Binders returns every variable name introduced by {<T> v} anywhere in m,
// including inside nested Optional fragments, in the order encountered.
func (m *MatchExpr) Binders() []Binder {
	var out []Binder

	var walk func([]Element)

	walk = func(elems []Element) {
		for _, e := range elems {
			switch e.Kind {
			case Bind:
				out = append(out, Binder{e.Name, e.Type})
			case Optional:
				walk(e.Inner)
			}
		}
	}

	walk(m.Elements)

	return out
}

// Binder names a variable introduced inside a match expression along with
// the nonterminal type it is bound to.
type Binder struct {
	Name string
	Type string
}

// String renders m back into its surface syntax, for the isla parse
// command's re-print-from-AST output.
func (m *MatchExpr) String() string {
	var out string

	for _, e := range m.Elements {
		out += e.string()
	}

	return out
}

func (e Element) string() string {
	switch e.Kind {
	case Bind:
		return "{<" + e.Type + "> " + e.Name + "}"
	case Optional:
		var inner string
		for _, sub := range e.Inner {
			inner += sub.string()
		}

		return "[" + inner + "]"
	default:
		return e.Text
	}
}

// Parse parses the decoded contents of a match-expression string literal
// (the text already has ISLa's own string escapes removed by the ISLa
// lexer). outerNames lists binder names already in scope from enclosing
// quantifiers, which a match expression's own binders must not shadow
// (spec.md §4.5's invariant).
func Parse(text string, outerNames map[string]bool) (*MatchExpr, *source.SyntaxError) {
	file := source.NewFileFromString("<match-expression>", text)
	p := &parser{srcfile: file, text: []rune(text), seen: make(map[string]bool), outer: outerNames}

	elems, err := p.parseDefault(true)
	if err != nil {
		return nil, err
	}

	return &MatchExpr{elems}, nil
}

type parser struct {
	srcfile *source.File
	text    []rune
	index   int
	seen    map[string]bool
	outer   map[string]bool
}

// parseDefault implements default mode: accumulate TEXT up to '{' or '[' (or
// end-of-input, when top is true), recursing into var-decl/optional modes
// on those delimiters. Newlines are stripped, per spec.md §4.5.
func (p *parser) parseDefault(top bool) ([]Element, *source.SyntaxError) {
	var elems []Element

	var text []rune

	flush := func() {
		if len(text) > 0 {
			elems = append(elems, Element{Kind: Text, Text: string(text)})
			text = nil
		}
	}

	for p.index < len(p.text) {
		c := p.text[p.index]

		switch c {
		case '{':
			flush()

			e, err := p.parseBind()
			if err != nil {
				return nil, err
			}

			elems = append(elems, e)
		case '[':
			flush()

			e, err := p.parseOptional()
			if err != nil {
				return nil, err
			}

			elems = append(elems, e)
		case '}', ']':
			if top {
				return nil, p.errorAt(p.index, KindSyntax, fmt.Sprintf("unexpected '%c'", c))
			}

			flush()

			return elems, nil
		case '\n':
			p.index++
		default:
			text = append(text, c)
			p.index++
		}
	}

	if !top {
		return nil, p.errorAt(p.index, KindSyntax, "unterminated optional fragment, expected ']'")
	}

	flush()

	return elems, nil
}

// parseBind implements var-decl mode: between '{' and '}', recognise `<T>`
// then an identifier, ignoring whitespace.
func (p *parser) parseBind() (Element, *source.SyntaxError) {
	start := p.index
	p.index++ // '{'
	p.skipSpace()

	typ, err := p.parseNonterminalType()
	if err != nil {
		return Element{}, err
	}

	p.skipSpace()

	name, err := p.parseIdentifier()
	if err != nil {
		return Element{}, err
	}

	p.skipSpace()

	if p.index >= len(p.text) || p.text[p.index] != '}' {
		return Element{}, p.errorAt(start, KindSyntax, "expected '}' to close variable binder")
	}

	p.index++

	if p.seen[name] {
		return Element{}, p.errorAt(start, KindDuplicateBind,
			fmt.Sprintf("variable %q is bound more than once in this match expression", name))
	}

	if p.outer[name] {
		return Element{}, p.errorAt(start, KindShadowedBind,
			fmt.Sprintf("variable %q shadows an outer binder", name))
	}

	p.seen[name] = true

	return Element{Kind: Bind, Type: typ, Name: name}, nil
}

// parseOptional implements optional mode: after the '[' it parses the
// fragment inline in default mode, so it may itself contain further
// binders, and then requires the closing ']'.
func (p *parser) parseOptional() (Element, *source.SyntaxError) {
	start := p.index
	p.index++ // '['

	inner, err := p.parseDefault(false)
	if err != nil {
		return Element{}, err
	}

	if p.index >= len(p.text) || p.text[p.index] != ']' {
		return Element{}, p.errorAt(start, KindSyntax, "expected ']' to close optional fragment")
	}

	p.index++

	return Element{Kind: Optional, Inner: inner}, nil
}

func (p *parser) parseNonterminalType() (string, *source.SyntaxError) {
	start := p.index

	if p.index >= len(p.text) || p.text[p.index] != '<' {
		return "", p.errorAt(p.index, KindSyntax, "expected a nonterminal type, e.g. <var>")
	}

	p.index++

	nameStart := p.index

	for p.index < len(p.text) && p.text[p.index] != '<' && p.text[p.index] != '>' {
		p.index++
	}

	if p.index >= len(p.text) || p.text[p.index] != '>' {
		return "", p.errorAt(start, KindSyntax, "unterminated nonterminal type, expected '>'")
	}

	name := string(p.text[nameStart:p.index])
	p.index++

	return name, nil
}

func (p *parser) parseIdentifier() (string, *source.SyntaxError) {
	start := p.index

	for p.index < len(p.text) && (unicode.IsLetter(p.text[p.index]) || unicode.IsDigit(p.text[p.index]) || p.text[p.index] == '_') {
		p.index++
	}

	if p.index == start {
		return "", p.errorAt(start, KindSyntax, "expected a variable name")
	}

	return string(p.text[start:p.index]), nil
}

func (p *parser) skipSpace() {
	for p.index < len(p.text) && unicode.IsSpace(p.text[p.index]) {
		p.index++
	}
}

func (p *parser) errorAt(pos int, kind source.Kind, msg string) *source.SyntaxError {
	end := pos + 1
	if end > len(p.text) {
		end = len(p.text)
	}

	return p.srcfile.SyntaxError(source.NewSpan(pos, end), kind, msg)
}
