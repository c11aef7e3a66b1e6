package grammar

import (
	"unicode"

	"github.com/MaGaroo/isla/pkg/source"
)

// Error kinds raised while parsing or validating a grammar, per spec.md §7.
const (
	KindGrammarSyntax        source.Kind = "grammar-syntax-error"
	KindUndefinedNonterminal source.Kind = "undefined-nonterminal"
	KindEmptyGrammar         source.Kind = "empty-grammar"
)

// Parse parses BNF source text (spec.md §6's grammar concrete syntax) into a
// Grammar, validating that the start symbol and every referenced nonterminal
// is defined (spec.md §3's invariants). start is the name of the start
// nonterminal, without brackets; pass "start" to use the conventional
// `<start>`.
func Parse(s *source.File, start string) (*Grammar, *source.SyntaxError) {
	p := &gparser{text: s.Contents(), srcfile: s}

	g := New(start)

	p.skipSpace()

	if p.index == len(p.text) {
		return nil, s.SyntaxError(source.NewSpan(0, 0), KindEmptyGrammar, "grammar defines no rules")
	}

	for p.index < len(p.text) {
		p.skipSpace()

		if p.index == len(p.text) {
			break
		}

		name, alts, err := p.parseRule()
		if err != nil {
			return nil, err
		}

		g.Define(name, alts)
		p.skipSpace()
	}

	if err := validate(g, s); err != nil {
		return nil, err
	}

	return g, nil
}

func validate(g *Grammar, s *source.File) *source.SyntaxError {
	if !g.IsDefined(g.start) {
		return s.SyntaxError(source.NewSpan(0, 0), KindUndefinedNonterminal,
			"start symbol <"+g.start+"> is not defined")
	}

	for _, name := range g.order {
		for _, alt := range g.rules[name] {
			for _, sym := range alt.Symbols {
				if ref, ok := sym.(NonterminalRef); ok && !g.IsDefined(ref.Name) {
					return s.SyntaxError(source.NewSpan(0, 0), KindUndefinedNonterminal,
						"nonterminal <"+ref.Name+"> referenced in <"+name+"> but never defined")
				}
			}
		}
	}

	return nil
}

type gparser struct {
	srcfile *source.File
	text    []rune
	index   int
}

func (p *gparser) parseRule() (string, []Alternative, *source.SyntaxError) {
	name, err := p.parseNonterminalName()
	if err != nil {
		return "", nil, err
	}

	p.skipSpace()

	if err := p.expect("::="); err != nil {
		return "", nil, err
	}

	var alts []Alternative

	for {
		p.skipSpace()

		alt, err := p.parseAlternative()
		if err != nil {
			return "", nil, err
		}

		alts = append(alts, alt)
		p.skipSpace()

		if p.peek() == '|' {
			p.index++
			continue
		}

		break
	}

	if err := p.expect(";"); err != nil {
		return "", nil, err
	}

	return name, alts, nil
}

func (p *gparser) parseAlternative() (Alternative, *source.SyntaxError) {
	var alt Alternative

	for {
		p.skipSpace()

		c := p.peek()
		if c == '"' {
			lit, err := p.parseStringLiteral()
			if err != nil {
				return alt, err
			}

			alt.Symbols = append(alt.Symbols, Terminal{lit})
		} else if c == '<' {
			name, err := p.parseNonterminalName()
			if err != nil {
				return alt, err
			}

			alt.Symbols = append(alt.Symbols, NonterminalRef{name})
		} else {
			break
		}
	}

	if len(alt.Symbols) == 0 {
		return alt, p.error("expected a terminal or nonterminal")
	}

	return alt, nil
}

func (p *gparser) parseNonterminalName() (string, *source.SyntaxError) {
	start := p.index

	if p.peek() != '<' {
		return "", p.error("expected '<'")
	}

	p.index++

	nameStart := p.index

	for p.index < len(p.text) && p.text[p.index] != '<' && p.text[p.index] != '>' {
		p.index++
	}

	if p.index == len(p.text) || p.text[p.index] != '>' {
		return "", p.srcfile.SyntaxError(source.NewSpan(start, p.index), KindGrammarSyntax,
			"unterminated nonterminal, expected '>'")
	}

	name := string(p.text[nameStart:p.index])
	p.index++

	return name, nil
}

func (p *gparser) parseStringLiteral() (string, *source.SyntaxError) {
	start := p.index
	p.index++ // opening quote

	var out []rune

	for {
		if p.index >= len(p.text) {
			return "", p.srcfile.SyntaxError(source.NewSpan(start, p.index), KindGrammarSyntax,
				"unterminated string literal")
		}

		c := p.text[p.index]

		if c == '"' {
			p.index++
			return string(out), nil
		} else if c == '\\' && p.index+1 < len(p.text) {
			switch p.text[p.index+1] {
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
				return "", p.srcfile.SyntaxError(source.NewSpan(p.index, p.index+2), KindGrammarSyntax,
					"unknown escape sequence")
			}

			p.index += 2
		} else {
			out = append(out, c)
			p.index++
		}
	}
}

func (p *gparser) expect(token string) *source.SyntaxError {
	p.skipSpace()

	for _, r := range token {
		if p.index >= len(p.text) || p.text[p.index] != r {
			return p.error("expected '" + token + "'")
		}

		p.index++
	}

	return nil
}

func (p *gparser) peek() rune {
	if p.index >= len(p.text) {
		return 0
	}

	return p.text[p.index]
}

func (p *gparser) skipSpace() {
	for p.index < len(p.text) {
		c := p.text[p.index]
		if c == '#' {
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

func (p *gparser) error(msg string) *source.SyntaxError {
	end := p.index + 1
	if end > len(p.text) {
		end = len(p.text)
	}

	return p.srcfile.SyntaxError(source.NewSpan(p.index, end), KindGrammarSyntax, msg)
}
