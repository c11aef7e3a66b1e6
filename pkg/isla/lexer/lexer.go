package lexer

import (
	"sort"
	"unicode"

	"github.com/MaGaroo/isla/pkg/source"
)

// Error kinds raised by the lexer, per spec.md §4.3/§7.
const (
	KindLexError           source.Kind = "lex-error"
	KindUnterminatedString source.Kind = "unterminated-string"
)

// dottedOperators lists every operator/theory-function name from the
// operator table of spec.md §6 that contains an embedded '.', longest first
// so the scanner's greedy match never stops short (e.g. "str.to.int" must
// win over "str.to"). XPath segment separators never collide with these:
// a '.' inside an XPath expression is always immediately followed by a
// nonterminal type token (starting with '<') or, for a second dot, another
// '.', never by a lower-case letter that could continue one of these names.
var dottedOperators = func() []string {
	names := []string{
		"str.++", "re.++", "str.<=",
		"re.+", "re.*", "str.len", "str.in_re", "str.to_re", "re.none", "re.all",
		"re.allchar", "str.at", "str.substr", "str.prefixof", "str.suffixof",
		"str.contains", "str.indexof", "str.replace_re_all", "str.replace_re",
		"str.replace_all", "str.replace", "re.comp", "re.diff", "re.opt",
		"re.range", "re.loop", "str.is_digit", "str.to_code", "str.from_code",
		"str.to.int", "str.from_int",
	}

	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	return names
}()

// Lexer tokenises ISLa source text.
type Lexer struct {
	srcfile *source.File
	text    []rune
	index   int
}

// New constructs a lexer over the given source file.
func New(srcfile *source.File) *Lexer {
	return &Lexer{srcfile: srcfile, text: srcfile.Contents()}
}

// Tokenize reads every token from the source, including a trailing EOF
// token, or stops at the first lexical error.
func Tokenize(srcfile *source.File) ([]Token, *source.SyntaxError) {
	l := New(srcfile)

	var tokens []Token

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next scans and returns the next token, or an EOF token at end of input.
func (l *Lexer) Next() (Token, *source.SyntaxError) {
	l.skipTrivia()

	start := l.index

	if l.index >= len(l.text) {
		return Token{EOF, "", source.NewSpan(start, start)}, nil
	}

	c := l.text[l.index]

	switch {
	case c == '(':
		return l.single(LPAREN), nil
	case c == ')':
		return l.single(RPAREN), nil
	case c == '{':
		return l.single(LBRACE), nil
	case c == '}':
		return l.single(RBRACE), nil
	case c == '[':
		return l.single(LBRACKET), nil
	case c == ']':
		return l.single(RBRACKET), nil
	case c == ',':
		return l.single(COMMA), nil
	case c == ':':
		return l.single(COLON), nil
	case c == ';':
		return l.single(SEMI), nil
	case c == '*':
		return l.single(STAR), nil
	case c == '.':
		if l.peekAt(1) == '.' {
			return l.fixed(DOTDOT, 2), nil
		}

		return l.single(DOT), nil
	case c == '=':
		if l.peekAt(1) == '>' {
			return l.fixed(ARROW, 2), nil
		}

		return l.single(EQ), nil
	case c == '>':
		if l.peekAt(1) == '=' {
			return l.fixed(GE, 2), nil
		}

		return l.single(GT), nil
	case c == '<':
		if isIdentStart(l.peekAt(1)) {
			return l.scanNonterminal()
		} else if l.peekAt(1) == '=' {
			return l.fixed(LE, 2), nil
		}

		return l.single(LT), nil
	case c == '+':
		return l.single(PLUS), nil
	case c == '-':
		return l.single(MINUS), nil
	case c == '"':
		return l.scanString()
	case unicode.IsDigit(c):
		return l.scanNumber(), nil
	case isIdentStart(c):
		return l.scanIdentOrOperator()
	default:
		return Token{}, l.srcfile.SyntaxError(source.NewSpan(l.index, l.index+1), KindLexError,
			"unexpected character '"+string(c)+"'")
	}
}

func (l *Lexer) single(k Kind) Token {
	return l.fixed(k, 1)
}

func (l *Lexer) fixed(k Kind, n int) Token {
	start := l.index
	l.index += n

	return Token{k, string(l.text[start:l.index]), source.NewSpan(start, l.index)}
}

func (l *Lexer) peekAt(offset int) rune {
	i := l.index + offset
	if i >= len(l.text) {
		return 0
	}

	return l.text[i]
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// scanNonterminal reads a whole `<name>` nonterminal-type token.
func (l *Lexer) scanNonterminal() (Token, *source.SyntaxError) {
	start := l.index
	l.index++ // '<'

	for l.index < len(l.text) && l.text[l.index] != '<' && l.text[l.index] != '>' {
		l.index++
	}

	if l.index >= len(l.text) || l.text[l.index] != '>' {
		return Token{}, l.srcfile.SyntaxError(source.NewSpan(start, l.index), KindLexError,
			"unterminated nonterminal type, expected '>'")
	}

	l.index++

	return Token{NONTERMINAL, string(l.text[start:l.index]), source.NewSpan(start, l.index)}, nil
}

// scanIdentOrOperator reads an identifier, a reserved keyword, or (by
// greedy longest match against dottedOperators) a dotted theory-function
// name such as "str.to.int".
func (l *Lexer) scanIdentOrOperator() (Token, *source.SyntaxError) {
	start := l.index

	for _, op := range dottedOperators {
		n := len(op)
		if l.index+n > len(l.text) {
			continue
		}

		if string(l.text[l.index:l.index+n]) != op {
			continue
		}

		// Require a word boundary after the match so e.g. "str.lengthy"
		// does not spuriously match the operator "str.len".
		if l.index+n < len(l.text) && isIdentCont(l.text[l.index+n]) {
			continue
		}

		l.index += n

		return Token{OPNAME, op, source.NewSpan(start, l.index)}, nil
	}

	for l.index < len(l.text) && isIdentCont(l.text[l.index]) {
		l.index++
	}

	word := string(l.text[start:l.index])
	span := source.NewSpan(start, l.index)

	if kind, ok := keywords[word]; ok {
		return Token{kind, word, span}, nil
	}

	return Token{IDENT, word, span}, nil
}

func (l *Lexer) scanNumber() Token {
	start := l.index

	for l.index < len(l.text) && unicode.IsDigit(l.text[l.index]) {
		l.index++
	}

	return Token{NUMBER, string(l.text[start:l.index]), source.NewSpan(start, l.index)}
}

// scanString reads a `"`-delimited ISLa string literal, decoding the
// escapes `\b \t \n \r \" \\` per spec.md §4.3/§6.
func (l *Lexer) scanString() (Token, *source.SyntaxError) {
	start := l.index
	l.index++ // opening quote

	var out []rune

	for {
		if l.index >= len(l.text) {
			return Token{}, l.srcfile.SyntaxError(source.NewSpan(start, l.index), KindUnterminatedString,
				"unterminated string literal")
		}

		c := l.text[l.index]

		if c == '"' {
			l.index++
			return Token{STRING, string(out), source.NewSpan(start, l.index)}, nil
		} else if c == '\\' && l.index+1 < len(l.text) {
			switch l.text[l.index+1] {
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
				out = append(out, c, l.text[l.index+1])
			}

			l.index += 2
		} else {
			out = append(out, c)
			l.index++
		}
	}
}

func (l *Lexer) skipTrivia() {
	for l.index < len(l.text) {
		c := l.text[l.index]

		if c == '#' {
			for l.index < len(l.text) && l.text[l.index] != '\n' {
				l.index++
			}
		} else if unicode.IsSpace(c) {
			l.index++
		} else {
			return
		}
	}
}
