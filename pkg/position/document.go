package position

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Document is an immutable snapshot of an editor buffer. Offsets are byte
// offsets into Text; Places use editor coordinates.
type Document struct {
	URI        string
	LanguageID string
	Version    int32

	text       string
	lineStarts []int
}

func NewDocument(uri, languageID string, version int32, text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		text:       text,
		lineStarts: starts,
	}
}

func (d *Document) GetText() string {
	return d.text
}

func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// OffsetAt converts a place into a byte offset. Lines past the end clamp to
// the end of the document; characters past the end of a line clamp to the
// end of that line.
func (d *Document) OffsetAt(p Place) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	offset := d.lineStarts[p.Line]
	end := d.lineEnd(p.Line)
	for units := 0; offset < end && units < p.Character; {
		r, size := utf8.DecodeRuneInString(d.text[offset:end])
		units += utf16Len(r)
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset into a place, clamping to the document.
func (d *Document) PositionAt(offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	char := 0
	for _, r := range d.text[d.lineStarts[line]:offset] {
		char += utf16Len(r)
	}
	return Place{Line: line, Character: char}
}

func (d *Document) RangeAt(start, end int) Range {
	return Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// lineEnd is the offset of the line terminator of line, or the end of the text.
func (d *Document) lineEnd(line int) int {
	if line+1 < len(d.lineStarts) {
		end := d.lineStarts[line+1] - 1
		if end > d.lineStarts[line] && d.text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(d.text)
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
