package sexp

import (
	"unicode"

	"github.com/MaGaroo/isla/pkg/source"
)

// KindUnexpectedEOF and friends classify the syntax errors this parser can
// raise.
const (
	KindUnexpectedEOF       source.Kind = "unexpected-eof"
	KindUnexpectedCloser    source.Kind = "unexpected-close-paren"
	KindUnterminatedString  source.Kind = "unterminated-string"
	KindUnexpectedRemainder source.Kind = "unexpected-remainder"
)

// Parse reads a single S-expression from a source file, or returns an error
// if the text is malformed. A source map is returned alongside it for
// reporting syntax errors against sub-terms of the result.
func Parse(s *source.File) (SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)

	term, err := p.Parse()
	if err == nil && p.index != len(p.text) {
		return nil, nil, p.error(KindUnexpectedRemainder, "unexpected remainder")
	}

	return term, p.SourceMap(), err
}

// ParseAll reads zero or more S-expressions from a source file, continuing
// past the first one (unlike Parse).
func ParseAll(s *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)

	var terms []SExp

	for {
		term, err := p.Parse()
		if err != nil {
			return terms, p.srcmap, err
		} else if term == nil {
			return terms, p.srcmap, nil
		}

		terms = append(terms, term)
	}
}

// Parser incrementally parses a source file's text into S-expressions.
type Parser struct {
	srcfile *source.File
	text    []rune
	index   int
	srcmap  *source.Map[SExp]
}

// NewParser constructs a new parser over the given source file.
func NewParser(srcfile *source.File) *Parser {
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  source.NewMap[SExp](srcfile),
	}
}

// SourceMap returns the source map accumulated so far.
func (p *Parser) SourceMap() *source.Map[SExp] { return p.srcmap }

// Index returns the parser's current position in the underlying text.
func (p *Parser) Index() int { return p.index }

// Parse reads the next S-expression, or returns (nil, nil) at end-of-file.
func (p *Parser) Parse() (SExp, *source.SyntaxError) {
	p.skipWhitespace()
	start := p.index

	if p.index == len(p.text) {
		return nil, nil
	}

	var term SExp

	switch p.text[p.index] {
	case ')':
		return nil, p.error(KindUnexpectedCloser, "unexpected end-of-list")
	case '(':
		p.index++

		elements, err := p.parseSequence()
		if err != nil {
			return nil, err
		}

		term = &List{elements}
	case '"':
		value, err := p.parseQuotedString()
		if err != nil {
			return nil, err
		}

		term = &Symbol{value, true}
	default:
		term = &Symbol{p.parseBareSymbol(), false}
	}

	p.srcmap.Put(term, source.NewSpan(start, p.index))

	return term, nil
}

func (p *Parser) parseSequence() ([]SExp, *source.SyntaxError) {
	var elements []SExp

	for {
		p.skipWhitespace()

		if p.index == len(p.text) {
			return nil, p.error(KindUnexpectedEOF, "unexpected end-of-file inside list")
		} else if p.text[p.index] == ')' {
			p.index++
			return elements, nil
		}

		element, err := p.Parse()
		if err != nil {
			return nil, err
		}

		elements = append(elements, element)
	}
}

// parseQuotedString consumes a `"`-delimited string literal, honouring the
// escapes `\b \t \n \r \" \\` of spec.md §4.3/§6. Note that, deviating from
// standard SMT-LIB, a literal quote inside the string is written `\"`, never
// as a doubled `""`. ISLa formula text, embedded SMT expressions included,
// is read by pkg/isla/lexer, whose string scanner follows the same rule.
func (p *Parser) parseQuotedString() (string, *source.SyntaxError) {
	start := p.index
	p.index++ // opening quote

	var out []rune

	for {
		if p.index >= len(p.text) {
			return "", p.srcfile.SyntaxError(source.NewSpan(start, p.index), KindUnterminatedString,
				"unterminated string literal")
		}

		c := p.text[p.index]

		if c == '"' {
			p.index++
			return string(out), nil
		} else if c == '\\' && p.index+1 < len(p.text) {
			esc := p.text[p.index+1]

			switch esc {
			case 'b':
				out = append(out, '\b')
			case 't':
				out = append(out, '\t')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				// Unknown escape: keep both characters verbatim, matching
				// the reference lexer's tolerant handling of pass-through
				// sequences inside embedded SMT text.
				out = append(out, c, esc)
			}

			p.index += 2
		} else {
			out = append(out, c)
			p.index++
		}
	}
}

func (p *Parser) parseBareSymbol() string {
	start := p.index

	for p.index < len(p.text) {
		c := p.text[p.index]
		if c == '(' || c == ')' || c == '"' || unicode.IsSpace(c) {
			break
		}

		p.index++
	}

	return string(p.text[start:p.index])
}

func (p *Parser) skipWhitespace() {
	for p.index < len(p.text) {
		c := p.text[p.index]

		if c == ';' {
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		} else if unicode.IsSpace(c) {
			p.index++
		} else {
			return
		}
	}
}

func (p *Parser) error(kind source.Kind, msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(source.NewSpan(p.index, p.index+1), kind, msg)
}
