package position

import (
	"fmt"
)

// Place is a zero-based line and character. Character counts UTF-16 code
// units, as editors do.
type Place struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Place `json:"start"`
	End   Place `json:"end"`
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// Length returns the length of the text at this position
func (p *RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	startOffset := start.Offset
	endOffset := startOffset + start.Length()

	posOffset := p.Offset
	posEndOffset := posOffset + p.Length()

	// a zero-length position overlaps if it falls within the other range, ends included
	if p.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetRange converts the position into an editor range within doc.
func (p RawPosition) GetRange(doc *Document) Range {
	return doc.RangeAt(p.Offset, p.GetEndPosition().Offset)
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}
