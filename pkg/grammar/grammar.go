// Package grammar implements C1: a finite BNF reference grammar, as described
// in spec.md §3 and §4.1. A Grammar is a finite mapping from nonterminal
// symbols to an ordered, non-empty list of alternatives, each alternative
// being an ordered sequence of terminal literals and nonterminal references.
package grammar

// Symbol is either a Terminal literal or a NonterminalRef. Grammars are
// represented as a tagged variant, matching §9's "replace dynamic dispatch
// with a tagged variant" guidance: no inheritance hierarchy is needed for
// two possible shapes.
type Symbol interface {
	// IsTerminal reports whether this symbol is a terminal literal.
	IsTerminal() bool
	// String renders this symbol back into BNF concrete syntax.
	String() string
}

// Terminal is a literal string appearing verbatim in the derived language.
type Terminal struct {
	Value string
}

var _ Symbol = Terminal{}

// IsTerminal always returns true for a Terminal.
func (t Terminal) IsTerminal() bool { return true }

func (t Terminal) String() string { return quoteTerminal(t.Value) }

// NonterminalRef references another rule of the grammar by name (without the
// surrounding `<` `>` brackets).
type NonterminalRef struct {
	Name string
}

var _ Symbol = NonterminalRef{}

// IsTerminal always returns false for a NonterminalRef.
func (n NonterminalRef) IsTerminal() bool { return false }

func (n NonterminalRef) String() string { return "<" + n.Name + ">" }

// Alternative is one ordered, non-empty concatenation of symbols — one
// right-hand side of a `<N> ::= alt1 | alt2 | ... ;` rule.
type Alternative struct {
	Symbols []Symbol
}

// Grammar is a finite BNF reference grammar: a mapping from nonterminal name
// to its ordered list of alternatives, plus a distinguished start symbol.
type Grammar struct {
	// start names the start symbol (by convention "start", i.e. <start>,
	// unless a different one was supplied).
	start string
	// order records nonterminal names in the order they were first defined,
	// so Nonterminals() is deterministic and matches the source text.
	order []string
	// rules maps nonterminal name to its (possibly multiply-appended, per
	// the append policy of spec.md §4.1) list of alternatives.
	rules map[string][]Alternative
}

// New constructs an empty grammar with the given start symbol name (without
// brackets).
func New(start string) *Grammar {
	return &Grammar{start: start, rules: make(map[string][]Alternative)}
}

// StartSymbol returns the name of the grammar's start nonterminal.
func (g *Grammar) StartSymbol() string { return g.start }

// Define appends a rule's alternatives to the grammar. If the nonterminal was
// already defined, the new alternatives are appended to the existing list,
// preserving order (the "append" policy adopted for spec.md §4.1's
// DuplicateDefinition question — see DESIGN.md).
func (g *Grammar) Define(name string, alts []Alternative) {
	if _, ok := g.rules[name]; !ok {
		g.order = append(g.order, name)
	}

	g.rules[name] = append(g.rules[name], alts...)
}

// Nonterminals returns every defined nonterminal name, in order of first
// definition.
func (g *Grammar) Nonterminals() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}

// Rules returns the alternatives defined for a given nonterminal, or nil (and
// false) if it is undefined.
func (g *Grammar) Rules(name string) ([]Alternative, bool) {
	alts, ok := g.rules[name]
	return alts, ok
}

// IsDefined reports whether a nonterminal has at least one rule.
func (g *Grammar) IsDefined(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// IsTerminal reports whether sym is a terminal symbol (as opposed to a
// nonterminal reference). Matches the IsTerminal() operation named in
// spec.md §4.1, exposed at the grammar level for symbols obtained from
// elsewhere (e.g. a parsed XPath segment type).
func (g *Grammar) IsTerminal(sym Symbol) bool { return sym.IsTerminal() }

// Reachable computes the set of nonterminal names transitively reachable
// from a given nonterminal, including itself (provided it is defined).
func (g *Grammar) Reachable(name string) map[string]bool {
	visited := make(map[string]bool)
	g.reachable(name, visited)

	return visited
}

func (g *Grammar) reachable(name string, visited map[string]bool) {
	if visited[name] {
		return
	}

	visited[name] = true

	for _, alt := range g.rules[name] {
		for _, sym := range alt.Symbols {
			if ref, ok := sym.(NonterminalRef); ok {
				g.reachable(ref.Name, visited)
			}
		}
	}
}

// IsChildType reports whether T is the type of at least one direct child
// position of some alternative of P — i.e. whether a <P> node can have a
// direct <T> child. Used by XPath well-formedness (spec.md §4.6(f)) to check
// a single-dot segment.
func (g *Grammar) IsChildType(parent, child string) bool {
	for _, alt := range g.rules[parent] {
		for _, sym := range alt.Symbols {
			if ref, ok := sym.(NonterminalRef); ok && ref.Name == child {
				return true
			}
		}
	}

	return false
}

// IsDescendantType reports whether T is reachable as a (possibly indirect)
// descendant of P, excluding P itself unless P is recursively reachable from
// one of its own children. Used for double-dot XPath segments.
func (g *Grammar) IsDescendantType(parent, descendant string) bool {
	visited := make(map[string]bool)

	var walk func(string) bool

	walk = func(name string) bool {
		if visited[name] {
			return false
		}

		visited[name] = true

		for _, alt := range g.rules[name] {
			for _, sym := range alt.Symbols {
				ref, ok := sym.(NonterminalRef)
				if !ok {
					continue
				}

				if ref.Name == descendant || walk(ref.Name) {
					return true
				}
			}
		}

		return false
	}

	return walk(parent)
}

// String renders the grammar back into BNF concrete syntax, in order of
// first definition, one rule per line. This is used by the isla fmt command
// and by the parse/print round-trip test of spec.md §8.
func (g *Grammar) String() string {
	var out string

	for _, name := range g.order {
		out += "<" + name + "> ::= "

		for i, alt := range g.rules[name] {
			if i != 0 {
				out += " | "
			}

			for j, sym := range alt.Symbols {
				if j != 0 {
					out += " "
				}

				out += sym.String()
			}
		}

		out += " ;\n"
	}

	return out
}

func quoteTerminal(value string) string {
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
