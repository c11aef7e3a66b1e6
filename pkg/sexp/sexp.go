// Package sexp provides a small, generic S-expression model and reader. The
// SMT-LIB sub-parser (pkg/isla/parser) builds directly on the List/Symbol
// model here, and the CLI reads its explicit tree notation with the reader;
// the grammar reader (pkg/grammar) has its own string-literal scanner.
package sexp

import (
	"fmt"
	"unicode"
)

// SExp is an S-expression: either a parenthesised List, or a terminal Symbol.
type SExp interface {
	// AsList returns this S-expression as a list, or nil if it isn't one.
	AsList() *List
	// AsSymbol returns this S-expression as a symbol, or nil if it isn't one.
	AsSymbol() *Symbol
	// String renders this S-expression back to text.
	String() string
}

// List represents a parenthesised sequence of zero or more S-expressions.
type List struct {
	Elements []SExp
}

var _ SExp = (*List)(nil)

// NewList creates a new list from a given slice of S-expressions.
func NewList(elements []SExp) *List { return &List{elements} }

// AsList returns the list itself.
func (l *List) AsList() *List { return l }

// AsSymbol returns nil, since a list is never a symbol.
func (l *List) AsSymbol() *Symbol { return nil }

// Len returns the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get returns the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

func (l *List) String() string {
	s := "("

	for i, e := range l.Elements {
		if i != 0 {
			s += " "
		}

		s += e.String()
	}

	return s + ")"
}

// MatchSymbols checks whether this list starts with at least n elements, of
// which the first len(symbols) are symbols matching the given strings in
// order. Used to dispatch on a list's leading keyword (e.g. "forall").
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i, want := range symbols {
		sym := l.Elements[i].AsSymbol()
		if sym == nil || sym.Value != want {
			return false
		}
	}

	return true
}

// Symbol represents an atomic token: an identifier, operator, number, or
// (if it required quoting) a string literal.
type Symbol struct {
	Value string
	// Quoted records whether this symbol was written as a quoted string
	// literal in the source text, as opposed to a bare identifier/operator.
	// This distinguishes the SMT atom `"x"` (a string constant) from the
	// identifier `x` (a variable reference) at the sexp layer, before the
	// ISLa parser assigns any further meaning.
	Quoted bool
}

var _ SExp = (*Symbol)(nil)

// NewSymbol creates a new unquoted symbol from a given string.
func NewSymbol(value string) *Symbol { return &Symbol{value, false} }

// NewStringLiteral creates a new symbol that must print quoted.
func NewStringLiteral(value string) *Symbol { return &Symbol{value, true} }

// AsList returns nil, since a symbol is never a list.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol returns the symbol itself.
func (s *Symbol) AsSymbol() *Symbol { return s }

func (s *Symbol) String() string {
	if s.Quoted || needsQuoting(s.Value) {
		return quoteString(s.Value)
	}

	return s.Value
}

func needsQuoting(value string) bool {
	if value == "" {
		return true
	}

	for _, r := range value {
		if !isSymbolLetter(r) {
			return true
		}
	}

	return false
}

func isSymbolLetter(r rune) bool {
	return r != '(' && r != ')' && r != '"' && !unicode.IsSpace(r)
}

// quoteString renders value as an ISLa string literal, using the escapes of
// spec.md §4.3/§6 (`\b \t \n \r \" \\`); a literal quote is rendered as the
// two-character escape `\"`, not the doubled-quote SMT-LIB convention.
func quoteString(value string) string {
	out := make([]rune, 0, len(value)+2)
	out = append(out, '"')

	for _, r := range value {
		switch r {
		case '\b':
			out = append(out, '\\', 'b')
		case '\t':
			out = append(out, '\\', 't')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			out = append(out, r)
		}
	}

	out = append(out, '"')

	return string(out)
}

// Unquote renders an error-friendly description of a symbol's role, used by
// diagnostics that need to mention "symbol `%s`" without worrying whether it
// needs quoting.
func Unquote(s *Symbol) string {
	return fmt.Sprintf("%q", s.Value)
}
