package source

import "fmt"

// Map maps AST nodes to the span of the original source file they were
// parsed from. This is important for error reporting: a well-formedness
// check discovered deep in the formula AST (e.g. an unresolved variable)
// still needs to point back at a precise span of the original text.
type Map[T comparable] struct {
	mapping map[T]Span
	srcfile *File
}

// NewMap constructs an initially empty source map for a given file.
func NewMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{make(map[T]Span), srcfile}
}

// Source returns the underlying source file on which this map operates.
func (p *Map[T]) Source() *File { return p.srcfile }

// Put registers a new AST item with a given span. Panics if already present,
// since that indicates a parser bug (the same node object reused for two
// spans).
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.mapping[item]; ok {
		panic(fmt.Sprintf("source map key already registered: %v", item))
	}

	p.mapping[item] = span
}

// Has checks whether a given item is contained within this source map.
func (p *Map[T]) Has(item T) bool {
	_, ok := p.mapping[item]
	return ok
}

// Get determines the span associated with a given AST item. Panics if the
// item is not registered.
func (p *Map[T]) Get(item T) Span {
	if s, ok := p.mapping[item]; ok {
		return s
	}

	panic(fmt.Sprintf("no source mapping for key: %v", item))
}

// SyntaxError constructs a syntax error for a node registered in this map. If
// the node has no registered span, the error is reported over an empty span
// at the start of the file rather than panicking, since well-formedness
// checks may run over synthesised nodes that were never directly parsed.
func (p *Map[T]) SyntaxError(item T, kind Kind, msg string) *SyntaxError {
	span := Span{0, 0}
	if s, ok := p.mapping[item]; ok {
		span = s
	}

	return NewSyntaxError(p.srcfile, span, kind, msg)
}
