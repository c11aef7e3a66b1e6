package ast

import "fmt"

// XPathSegKind identifies one step of an XPath expression (spec.md §3's
// "sequence of child/descendant segments").
type XPathSegKind int

// XPath segment kinds.
const (
	// SegChild selects a direct child of the given nonterminal type:
	// ".type".
	SegChild XPathSegKind = iota
	// SegChildIndexed selects the k-th direct child of the given type:
	// ".type[k]".
	SegChildIndexed
	// SegDescendant selects any descendant of the given type: "..type".
	SegDescendant
)

// XPathSegment is one step of an XPath expression.
type XPathSegment struct {
	Kind XPathSegKind
	Type string
	// Index is the 1-based child position for SegChildIndexed; unused
	// otherwise.
	Index int
}

// XPath is a base (a bound variable or a nonterminal type) followed by zero
// or more child/descendant segments, as used inside a predicate argument or
// an SMT atom (spec.md §3, §4.4).
type XPath struct {
	// BaseVar is the base variable name, when BaseIsType is false.
	BaseVar string
	// BaseIsType and BaseType hold a nonterminal-type base instead of a
	// variable base, per spec.md §3's "base (a variable or nonterminal
	// type)".
	BaseIsType bool
	BaseType   string
	Segments   []XPathSegment
}

// String renders x back into its surface syntax, e.g. "a.<rhs>.<var>[2]" or
// "<assgn>..<var>".
func (x *XPath) String() string {
	out := x.BaseVar
	if x.BaseIsType {
		out = "<" + x.BaseType + ">"
	}

	for _, seg := range x.Segments {
		switch seg.Kind {
		case SegChild:
			out += ".<" + seg.Type + ">"
		case SegChildIndexed:
			out += fmt.Sprintf(".<%s>[%d]", seg.Type, seg.Index)
		case SegDescendant:
			out += "..<" + seg.Type + ">"
		}
	}

	return out
}
