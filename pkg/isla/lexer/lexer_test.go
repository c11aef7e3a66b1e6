package lexer

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/source"
)

func tokenize(t *testing.T, text string) []Token {
	t.Helper()

	f := source.NewFileFromString("test", text)

	toks, err := Tokenize(f)
	if err != nil {
		t.Fatalf("unexpected lex error for %q: %s", text, err.Error())
	}

	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}

	return out
}

func assertKinds(t *testing.T, text string, want ...Kind) {
	t.Helper()

	toks := tokenize(t, text)
	got := kinds(toks)

	if len(got) != len(want) {
		t.Fatalf("%q: expected %d tokens, got %d (%v)", text, len(want), len(got), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%q: token %d: expected %s, got %s", text, i, want[i], got[i])
		}
	}
}

func TestLexerEmpty(t *testing.T) {
	assertKinds(t, "", EOF)
}

func TestLexerKeywords(t *testing.T) {
	assertKinds(t, "const forall exists in int not and or xor implies iff true false",
		CONST, FORALL, EXISTS, IN, INTKW, NOT, AND, OR, XOR, IMPLIES, IFF, TRUE, FALSE, EOF)
}

func TestLexerNonterminal(t *testing.T) {
	toks := tokenize(t, "<assgn>")

	if toks[0].Kind != NONTERMINAL || toks[0].Value != "<assgn>" {
		t.Errorf("expected whole nonterminal token '<assgn>', got %#v", toks[0])
	}
}

func TestLexerComment(t *testing.T) {
	assertKinds(t, "forall # a comment\nexists", FORALL, EXISTS, EOF)
}

func TestLexerString(t *testing.T) {
	toks := tokenize(t, `"a\nb\"c"`)

	if toks[0].Kind != STRING || toks[0].Value != "a\nb\"c" {
		t.Errorf("expected decoded string token, got %#v", toks[0])
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	f := source.NewFileFromString("test", `"abc`)

	_, err := Tokenize(f)
	if err == nil || err.Kind() != KindUnterminatedString {
		t.Fatalf("expected unterminated-string error, got %v", err)
	}
}

func TestLexerNumber(t *testing.T) {
	toks := tokenize(t, "42")

	if toks[0].Kind != NUMBER || toks[0].Value != "42" {
		t.Errorf("expected number token '42', got %#v", toks[0])
	}
}

func TestLexerOperators(t *testing.T) {
	assertKinds(t, "= >= <= > < + - * =>", EQ, GE, LE, GT, LT, PLUS, MINUS, STAR, ARROW, EOF)
}

func TestLexerXPathDots(t *testing.T) {
	toks := tokenize(t, "a.<rhs>.<var>")

	want := []Kind{IDENT, DOT, NONTERMINAL, DOT, NONTERMINAL, EOF}
	got := kinds(toks)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexerDescendantDots(t *testing.T) {
	assertKinds(t, "a..<b>", IDENT, DOTDOT, NONTERMINAL, EOF)
}

func TestLexerDottedOperators(t *testing.T) {
	toks := tokenize(t, "str.to.int str.len re.++ str.++")

	for i, want := range []string{"str.to.int", "str.len", "re.++", "str.++"} {
		if toks[i].Kind != OPNAME || toks[i].Value != want {
			t.Errorf("token %d: expected OPNAME %q, got %#v", i, want, toks[i])
		}
	}
}

func TestLexerDottedOperatorWordBoundary(t *testing.T) {
	toks := tokenize(t, "str.lengthy")

	// "str.lengthy" must not be mis-split into the operator "str.len" plus
	// leftover "gthy"; since no operator continues past a word boundary it
	// is expected to lex as IDENT DOT IDENT instead.
	want := []Kind{IDENT, DOT, IDENT, EOF}
	got := kinds(toks)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexerUnexpectedChar(t *testing.T) {
	f := source.NewFileFromString("test", "@")

	_, err := Tokenize(f)
	if err == nil || err.Kind() != KindLexError {
		t.Fatalf("expected lex-error for '@', got %v", err)
	}
}
