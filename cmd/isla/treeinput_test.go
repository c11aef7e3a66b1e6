package main

import (
	"testing"

	"github.com/MaGaroo/isla/pkg/grammar"
)

func assignmentGrammar() *grammar.Grammar {
	g := grammar.New("start")
	g.Define("start", []grammar.Alternative{{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "stmt"}}}})
	g.Define("stmt", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "assgn"}}},
		{Symbols: []grammar.Symbol{
			grammar.NonterminalRef{Name: "assgn"},
			grammar.Terminal{Value: " ; "},
			grammar.NonterminalRef{Name: "stmt"},
		}},
	})
	g.Define("assgn", []grammar.Alternative{{Symbols: []grammar.Symbol{
		grammar.NonterminalRef{Name: "var"},
		grammar.Terminal{Value: " := "},
		grammar.NonterminalRef{Name: "rhs"},
	}}})
	g.Define("rhs", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "var"}}},
		{Symbols: []grammar.Symbol{grammar.NonterminalRef{Name: "digit"}}},
	})
	g.Define("var", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.Terminal{Value: "a"}}},
		{Symbols: []grammar.Symbol{grammar.Terminal{Value: "b"}}},
	})
	g.Define("digit", []grammar.Alternative{
		{Symbols: []grammar.Symbol{grammar.Terminal{Value: "0"}}},
		{Symbols: []grammar.Symbol{grammar.Terminal{Value: "1"}}},
	})

	return g
}

func TestParseTreeInputGreedyMatchesWholeGrammar(t *testing.T) {
	g := assignmentGrammar()

	top, err := parseTreeInput(g, "start", "a := 1 ; b := a")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if got, want := top.Yield(), "a := 1 ; b := a"; got != want {
		t.Errorf("Yield() = %q, want %q", got, want)
	}
}

func TestParseTreeInputGreedyRejectsUnmatchedSuffix(t *testing.T) {
	g := assignmentGrammar()

	if _, err := parseTreeInput(g, "start", "a := 1 ; b := a ; extra garbage"); err == nil {
		t.Fatalf("expected an error for unmatched trailing input")
	}
}

func TestParseTreeInputExplicitSExpression(t *testing.T) {
	g := assignmentGrammar()

	top, err := parseTreeInput(g, "assgn", `(<assgn> (<var> "a") " := " (<rhs> (<digit> "1")))`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if got, want := top.Yield(), "a := 1"; got != want {
		t.Errorf("Yield() = %q, want %q", got, want)
	}

	if top.Label() != "assgn" {
		t.Errorf("Label() = %q, want %q", top.Label(), "assgn")
	}
}
