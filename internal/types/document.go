package types

import (
	"sort"
	"strings"

	"github.com/classkit/classkit/internal/textscan"
)

// Document is an immutable snapshot of one source file's text. Version
// increments whenever the host's copy changes; caches key on URI+Version.
type Document struct {
	URI     string
	Version int
	Text    string

	eol         string
	lineOffsets []int
}

// NewDocument builds a snapshot and precomputes line offsets for fast
// position/offset conversion.
func NewDocument(uri string, version int, text string) *Document {
	d := &Document{URI: uri, Version: version, Text: text}
	d.eol = textscan.DetectEOL(text)
	d.lineOffsets = computeLineOffsets(text)
	return d
}

func computeLineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// EOL returns the document's line ending convention, "\r\n" or "\n". All
// synthesized text must use this consistently.
func (d *Document) EOL() string {
	return d.eol
}

// LineCount returns the number of lines, counting a trailing newline as
// starting one more (possibly empty) line.
func (d *Document) LineCount() int {
	return len(d.lineOffsets)
}

// LineText returns the text of line i without its line terminator.
func (d *Document) LineText(i int) string {
	if i < 0 || i >= len(d.lineOffsets) {
		return ""
	}
	start := d.lineOffsets[i]
	end := len(d.Text)
	if i+1 < len(d.lineOffsets) {
		end = d.lineOffsets[i+1]
	}
	return strings.TrimRight(d.Text[start:end], "\r\n")
}

// OffsetAt converts a position to an absolute byte offset, clamping to the
// document bounds.
func (d *Document) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lineOffsets) {
		return len(d.Text)
	}
	off := d.lineOffsets[pos.Line] + pos.Character
	lineEnd := len(d.Text)
	if pos.Line+1 < len(d.lineOffsets) {
		lineEnd = d.lineOffsets[pos.Line+1]
	}
	if off > lineEnd {
		off = lineEnd
	}
	return off
}

// PositionAt converts an absolute byte offset to a position.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Text) {
		offset = len(d.Text)
	}
	// First line whose start is past the offset; the offset's line precedes it.
	line := sort.Search(len(d.lineOffsets), func(i int) bool {
		return d.lineOffsets[i] > offset
	}) - 1
	return Position{Line: line, Character: offset - d.lineOffsets[line]}
}

// RangeOf converts a byte-offset span to a Range.
func (d *Document) RangeOf(start, end int) Range {
	return Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// Slice returns the text covered by r.
func (d *Document) Slice(r Range) string {
	start := d.OffsetAt(r.Start)
	end := d.OffsetAt(r.End)
	if start > end {
		start, end = end, start
	}
	return d.Text[start:end]
}
