package grammar

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/source"
)

const assignmentsGrammar = `
<start> ::= <stmt> ;
<stmt> ::= <assgn> | <assgn> " ; " <stmt> ;
<assgn> ::= <var> " := " <rhs> ;
<rhs> ::= <var> | <digit> ;
<var> ::= "a" | "b" | "c" ;
<digit> ::= "0" | "1" | "2" ;
`

func mustParse(t *testing.T, text, start string) *Grammar {
	t.Helper()

	f := source.NewFileFromString("test.bnf", text)

	g, err := Parse(f, start)
	if err != nil {
		t.Fatalf("unexpected grammar error: %s", err.Error())
	}

	return g
}

func TestParseAssignments(t *testing.T) {
	g := mustParse(t, assignmentsGrammar, "start")

	want := []string{"start", "stmt", "assgn", "rhs", "var", "digit"}
	got := g.Nonterminals()

	if len(got) != len(want) {
		t.Fatalf("expected %d nonterminals, got %d: %v", len(want), len(got), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("nonterminal %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDuplicateDefinitionAppends(t *testing.T) {
	text := `
<start> ::= <a> ;
<a> ::= "x" ;
<a> ::= "y" ;
`
	g := mustParse(t, text, "start")

	alts, ok := g.Rules("a")
	if !ok || len(alts) != 2 {
		t.Fatalf("expected two appended alternatives for <a>, got %v", alts)
	}
}

func TestUndefinedNonterminal(t *testing.T) {
	text := `<start> ::= <missing> ;`
	f := source.NewFileFromString("test.bnf", text)

	_, err := Parse(f, "start")
	if err == nil {
		t.Fatalf("expected error for undefined nonterminal")
	}

	if err.Kind() != KindUndefinedNonterminal {
		t.Errorf("expected KindUndefinedNonterminal, got %s", err.Kind())
	}
}

func TestUndefinedStartSymbol(t *testing.T) {
	text := `<other> ::= "x" ;`
	f := source.NewFileFromString("test.bnf", text)

	_, err := Parse(f, "start")
	if err == nil || err.Kind() != KindUndefinedNonterminal {
		t.Fatalf("expected undefined start symbol error, got %v", err)
	}
}

func TestReachable(t *testing.T) {
	g := mustParse(t, assignmentsGrammar, "start")

	r := g.Reachable("start")
	for _, nt := range []string{"start", "stmt", "assgn", "rhs", "var", "digit"} {
		if !r[nt] {
			t.Errorf("expected %s reachable from start", nt)
		}
	}
}

func TestChildAndDescendantTypes(t *testing.T) {
	g := mustParse(t, assignmentsGrammar, "start")

	if !g.IsChildType("assgn", "var") {
		t.Errorf("expected <var> to be a direct child type of <assgn>")
	}

	if g.IsChildType("start", "digit") {
		t.Errorf("did not expect <digit> to be a direct child of <start>")
	}

	if !g.IsDescendantType("start", "digit") {
		t.Errorf("expected <digit> to be a descendant of <start>")
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	text := `<start> ::= "a\nb\"c" ;`
	g := mustParse(t, text, "start")

	alts, _ := g.Rules("start")
	term := alts[0].Symbols[0].(Terminal)

	if term.Value != "a\nb\"c" {
		t.Errorf("expected decoded escape sequence, got %q", term.Value)
	}
}

func TestGrammarPrintParseRoundTrip(t *testing.T) {
	g := mustParse(t, assignmentsGrammar, "start")

	printed := g.String()

	f2 := source.NewFileFromString("round-trip.bnf", printed)

	g2, err := Parse(f2, "start")
	if err != nil {
		t.Fatalf("re-parsing printed grammar failed: %s", err.Error())
	}

	if g2.String() != printed {
		t.Errorf("print/parse/print not idempotent:\n%q\nvs\n%q", printed, g2.String())
	}
}

func TestEmptyGrammar(t *testing.T) {
	f := source.NewFileFromString("empty.bnf", "   ")

	_, err := Parse(f, "start")
	if err == nil || err.Kind() != KindEmptyGrammar {
		t.Fatalf("expected empty-grammar error, got %v", err)
	}
}
