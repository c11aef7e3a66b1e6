package source

import "fmt"

// File represents a given source file (typically stored on disk, but it may
// equally be an in-memory string such as a formula supplied on the command
// line).
type File struct {
	// Name for this source file, used only in diagnostics.
	filename string
	// Contents of this file.
	contents []rune
}

// NewFile constructs a new source file from a given byte array.
func NewFile(filename string, bytes []byte) *File {
	// Convert bytes into runes for easier parsing (ISLa source may contain
	// non-ASCII literals inside strings).
	contents := []rune(string(bytes))
	return &File{filename, contents}
}

// NewFileFromString is a convenience constructor for sources which never
// touched disk (e.g. a formula string passed directly to parse_formula).
func NewFileFromString(filename, contents string) *File {
	return &File{filename, []rune(contents)}
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string { return s.filename }

// Contents returns the contents of this source file.
func (s *File) Contents() []rune { return s.contents }

// Line provides information about a given line within the original string.
type Line struct {
	text   []rune
	span   Span
	number int
}

// String returns the text of this line.
func (l Line) String() string { return string(l.text[l.span.start:l.span.end]) }

// Number returns the line number of this line, counting from 1.
func (l Line) Number() int { return l.number }

// FindFirstEnclosingLine determines the first line in this source file which
// encloses the start of a span. If the position is beyond the bounds of the
// file, the last physical line is returned.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	index := span.start
	num := 1
	start := 0

	for i := 0; i < len(s.contents); i++ {
		if i == index {
			end := findEndOfLine(index, s.contents)
			return Line{s.contents, Span{start, end}, num}
		} else if s.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{s.contents, Span{start, len(s.contents)}, num}
}

func findEndOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, kind Kind, msg string) *SyntaxError {
	return NewSyntaxError(s, span, kind, msg)
}

// Kind classifies a SyntaxError so callers can dispatch on it without string
// matching. Each component of the language core contributes its own kinds;
// see the per-package Kind constants (e.g. isla/lexer, isla/parser).
type Kind string

// SyntaxError is a structured error which retains the span into the original
// string where an error occurred, a machine-checkable Kind, and a
// human-readable message.
type SyntaxError struct {
	srcfile *File
	span    Span
	kind    Kind
	msg     string
}

// NewSyntaxError constructs a syntax error over a given span of a file.
func NewSyntaxError(srcfile *File, span Span, kind Kind, msg string) *SyntaxError {
	return &SyntaxError{srcfile, span, kind, msg}
}

// SourceFile returns the underlying source file that this error covers.
func (p *SyntaxError) SourceFile() *File { return p.srcfile }

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span { return p.span }

// Kind returns the structured error kind.
func (p *SyntaxError) Kind() Kind { return p.kind }

// Message returns the human-readable message to be reported.
func (p *SyntaxError) Message() string { return p.msg }

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	line := p.srcfile.FindFirstEnclosingLine(p.span)
	col := p.span.start - line.span.start + 1

	return fmt.Sprintf("%s:%d:%d: %s: %s", p.srcfile.Filename(), line.number, col, p.kind, p.msg)
}
