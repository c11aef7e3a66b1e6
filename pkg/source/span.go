// Package source provides shared infrastructure for tracking positions within
// parsed text: byte/rune spans, source files, a mapping from constructed AST
// nodes back to the span of text they came from, and a structured syntax
// error type carrying a position and a machine-checkable error kind.
package source

// Span represents a contiguous slice of the original string. Rather than
// representing this as a string slice, the physical indices are retained so
// the enclosing line can later be recovered for diagnostics.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span whilst checking the internal invariants are
// maintained.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p Span) Start() int { return p.start }

// End returns one past the last index of this span in the original string.
func (p Span) End() int { return p.end }

// Length returns the number of characters covered by this span.
func (p Span) Length() int { return p.end - p.start }

// Merge combines two spans into the smallest span enclosing both.
func (p Span) Merge(q Span) Span {
	start, end := p.start, p.end
	if q.start < start {
		start = q.start
	}

	if q.end > end {
		end = q.end
	}

	return Span{start, end}
}
