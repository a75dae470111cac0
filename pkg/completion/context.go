package completion

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/parser"
	"github.com/walteh/auhtml/pkg/scanner"
)

// ErrOffsetOutOfRange is returned for a cursor outside of the document.
var ErrOffsetOutOfRange = errors.New("offset out of range")

// valuePlaceholder is appended to attribute names that are not yet followed by '='.
const valuePlaceholder = `="{{}}"`

// Classification is the kind of construct the cursor is in.
type Classification int

const (
	None Classification = iota
	TagName
	AttributeName
	AttributeValue
)

func (c Classification) String() string {
	switch c {
	case TagName:
		return "tag-name"
	case AttributeName:
		return "attribute-name"
	case AttributeValue:
		return "attribute-value"
	default:
		return "none"
	}
}

// Range is a half open byte range [Start, End) of the document.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Context describes the cursor position of one completion request.
type Context struct {
	Classification   Classification
	CurrentTag       string
	CurrentAttribute string
	// Range is the text an accepted suggestion replaces.
	Range Range
	// Quote is true when values must be inserted with surrounding quotes.
	Quote bool
	// AppendValue is true when attribute names should get a value placeholder.
	AppendValue bool
}

type resolver struct {
	text   string
	offset int
	s      *scanner.Scanner
	ctx    *Context
}

// Resolve classifies offset in text. It re-scans the element found before the
// cursor in doc and never modifies doc. Malformed markup resolves to None; the
// only error is an offset outside of text.
func Resolve(ctx context.Context, text string, offset int, doc *parser.Document) (*Context, error) {
	if offset < 0 || offset > len(text) {
		return nil, errors.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, offset, len(text))
	}
	if doc == nil {
		doc = parser.Parse(text)
	}

	node := doc.FindNodeBefore(offset)
	r := &resolver{
		text:   text,
		offset: offset,
		s:      scanner.New(text, node.Start, scanner.WithinContent),
		ctx:    &Context{},
	}
	r.resolve()

	zerolog.Ctx(ctx).Debug().
		Int("offset", offset).
		Int("node_start", node.Start).
		Str("classification", r.ctx.Classification.String()).
		Str("tag", r.ctx.CurrentTag).
		Str("attribute", r.ctx.CurrentAttribute).
		Ints("range", []int{r.ctx.Range.Start, r.ctx.Range.End}).
		Msg("resolved completion context")

	return r.ctx, nil
}

func (r *resolver) resolve() {
	s := r.s
	for kind := s.Scan(); kind != scanner.EndOfStream && s.TokenOffset() <= r.offset; kind = s.Scan() {
		tok := s.Token()
		switch kind {
		case scanner.StartTagOpen:
			if tok.End == r.offset {
				r.tagName(r.offset, r.scanNextForEndPos(scanner.StartTagName))
				return
			}
		case scanner.StartTagName, scanner.EndTagName:
			if tok.Contains(r.offset) {
				r.tagName(tok.Offset, tok.End)
				return
			}
			r.ctx.CurrentTag = tok.Text
		case scanner.AttributeName:
			if tok.Contains(r.offset) {
				r.attributeName(tok.Offset, tok.End)
				return
			}
			r.ctx.CurrentAttribute = tok.Text
		case scanner.DelimiterAssign:
			if tok.End == r.offset {
				r.attributeValue(tok.End, r.scanNextForEndPos(scanner.AttributeValue))
				return
			}
		case scanner.AttributeValue:
			if tok.Contains(r.offset) {
				r.attributeValue(tok.Offset, tok.End)
				return
			}
		case scanner.Whitespace:
			if r.offset > tok.End {
				break
			}
			switch s.State() {
			case scanner.AfterOpeningStartTag:
				r.tagName(tok.End, r.scanNextForEndPos(scanner.StartTagName))
				return
			case scanner.WithinTag, scanner.AfterAttributeName:
				r.attributeName(tok.End, r.scanNextForEndPos(scanner.AttributeName))
				return
			case scanner.BeforeAttributeValue:
				r.attributeValue(tok.End, r.offset)
				return
			}
		}
	}
}

// replaceRange clips start so that it never lies after the cursor.
func (r *resolver) replaceRange(start, end int) Range {
	if start > r.offset {
		start = r.offset
	}
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

// scanNextForEndPos extends an empty range at the cursor over a token of the
// given kind that starts exactly at the cursor.
func (r *resolver) scanNextForEndPos(next scanner.TokenKind) int {
	if r.offset == r.s.TokenEnd() {
		if r.s.Scan() == next && r.s.TokenOffset() == r.offset {
			return r.s.TokenEnd()
		}
	}
	return r.offset
}

func (r *resolver) tagName(start, end int) {
	r.ctx.Classification = TagName
	r.ctx.Range = r.replaceRange(start, end)
}

func (r *resolver) attributeName(start, end int) {
	r.ctx.Classification = AttributeName
	r.ctx.Range = r.replaceRange(start, end)
	r.ctx.AppendValue = !isFollowedBy(r.text, end, scanner.AfterAttributeName, scanner.DelimiterAssign)
}

func (r *resolver) attributeValue(start, end int) {
	r.ctx.Classification = AttributeValue

	if start < len(r.text) && (r.text[start] == '"' || r.text[start] == '\'') {
		quote := r.text[start]
		inner := end
		if end-start >= 2 && r.text[end-1] == quote {
			inner = end - 1
		}
		if r.offset > start && r.offset <= inner {
			r.ctx.Range = r.replaceRange(
				wordStart(r.text, r.offset, start+1),
				wordEnd(r.text, r.offset, inner),
			)
			r.ctx.Quote = false
			return
		}
	}

	r.ctx.Range = r.replaceRange(start, end)
	r.ctx.Quote = true
}

// isFollowedBy reports whether the first token after offset, skipping
// whitespace, is expected when scanning from state.
func isFollowedBy(text string, offset int, state scanner.State, expected scanner.TokenKind) bool {
	s := scanner.New(text, offset, state)
	kind := s.Scan()
	for kind == scanner.Whitespace {
		kind = s.Scan()
	}
	return kind == expected
}

func isWordBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '"', '\'':
		return true
	}
	return false
}

func wordStart(text string, offset, limit int) int {
	for offset > limit && !isWordBoundary(text[offset-1]) {
		offset--
	}
	return offset
}

func wordEnd(text string, offset, limit int) int {
	for offset < limit && !isWordBoundary(text[offset]) {
		offset++
	}
	return offset
}
