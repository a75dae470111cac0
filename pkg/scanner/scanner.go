package scanner

import (
	"iter"
	"strings"
)

// Scanner produces tokens one at a time. It never fails: input that does not
// fit the grammar comes back as Unknown or Content tokens.
type Scanner struct {
	text  string
	pos   int
	state State
	tok   Token
}

// step consumes input in the scanner's current state. It either emits a
// token (ok == true) or moves to another state without consuming anything,
// in which case the scanner dispatches again on the new state.
type step func(s *Scanner) (kind TokenKind, ok bool)

// transitions holds one step per State. Every state handles every input.
var transitions [numStates]step

func init() {
	transitions = [numStates]step{
		WithinContent:        (*Scanner).scanContent,
		AfterOpeningStartTag: (*Scanner).scanAfterOpeningStartTag,
		AfterOpeningEndTag:   (*Scanner).scanAfterOpeningEndTag,
		WithinTag:            (*Scanner).scanWithinTag,
		WithinEndTag:         (*Scanner).scanWithinEndTag,
		AfterAttributeName:   (*Scanner).scanAfterAttributeName,
		BeforeAttributeValue: (*Scanner).scanBeforeAttributeValue,
		AfterAttributeValue:  (*Scanner).scanAfterAttributeValue,
		WithinComment:        (*Scanner).scanComment,
	}
}

// New returns a scanner positioned at offset in the given state. The offset
// is clamped to the bounds of text.
func New(text string, offset int, state State) *Scanner {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	if state < 0 || state >= numStates {
		state = WithinContent
	}
	return &Scanner{text: text, pos: offset, state: state}
}

// Tokens returns the lazy token stream of text starting at offset in state.
// The last token yielded is always EndOfStream.
func Tokens(text string, offset int, state State) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		s := New(text, offset, state)
		for {
			kind := s.Scan()
			if !yield(s.Token()) || kind == EndOfStream {
				return
			}
		}
	}
}

// Scan advances to the next token and returns its kind. Once the input is
// exhausted every call returns EndOfStream.
func (s *Scanner) Scan() TokenKind {
	start := s.pos
	for {
		if s.pos >= len(s.text) {
			return s.emit(EndOfStream, start)
		}
		if kind, ok := transitions[s.state](s); ok {
			return s.emit(kind, start)
		}
	}
}

func (s *Scanner) emit(kind TokenKind, start int) TokenKind {
	s.tok = Token{Kind: kind, Offset: start, End: s.pos, Text: s.text[start:s.pos]}
	return kind
}

// Token returns the most recently scanned token.
func (s *Scanner) Token() Token { return s.tok }

func (s *Scanner) TokenOffset() int { return s.tok.Offset }

func (s *Scanner) TokenEnd() int { return s.tok.End }

func (s *Scanner) TokenText() string { return s.tok.Text }

// State is the state the scanner will continue from on the next Scan.
func (s *Scanner) State() State { return s.state }

func (s *Scanner) peek(n int) byte {
	if s.pos+n < len(s.text) {
		return s.text[s.pos+n]
	}
	return 0
}

func (s *Scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.text[s.pos:], p)
}

func (s *Scanner) advanceWhile(pred func(byte) bool) int {
	start := s.pos
	for s.pos < len(s.text) && pred(s.text[s.pos]) {
		s.pos++
	}
	return s.pos - start
}

func (s *Scanner) goTo(state State) (TokenKind, bool) {
	s.state = state
	return 0, false
}

func (s *Scanner) scanContent() (TokenKind, bool) {
	if s.opensMarkup(s.pos) {
		switch {
		case s.hasPrefix("<!--"):
			return s.goTo(WithinComment)
		case s.hasPrefix("<!"):
			// doctype and other declarations are not modelled; keep them in one piece
			if end := strings.IndexByte(s.text[s.pos:], '>'); end >= 0 {
				s.pos += end + 1
			} else {
				s.pos = len(s.text)
			}
			return Unknown, true
		case s.hasPrefix("</"):
			s.pos += 2
			s.state = AfterOpeningEndTag
			return EndTagOpen, true
		default:
			s.pos++
			s.state = AfterOpeningStartTag
			return StartTagOpen, true
		}
	}

	s.pos++
	for s.pos < len(s.text) && !s.opensMarkup(s.pos) {
		s.pos++
	}
	return Content, true
}

// opensMarkup reports whether the '<' at i starts a tag, an end tag or a
// declaration. A '<' directly followed by whitespace or the end of input
// still opens a tag so that a freshly typed '<' can be completed.
func (s *Scanner) opensMarkup(i int) bool {
	if s.text[i] != '<' {
		return false
	}
	if i+1 >= len(s.text) {
		return true
	}
	next := s.text[i+1]
	return next == '/' || next == '!' || isNameStart(next) || isWhitespace(next)
}

func (s *Scanner) scanAfterOpeningStartTag() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	if isNameStart(s.peek(0)) {
		s.advanceWhile(isNameChar)
		s.state = WithinTag
		return StartTagName, true
	}
	return s.goTo(WithinTag)
}

func (s *Scanner) scanAfterOpeningEndTag() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	if isNameStart(s.peek(0)) {
		s.advanceWhile(isNameChar)
		s.state = WithinEndTag
		return EndTagName, true
	}
	return s.goTo(WithinEndTag)
}

func (s *Scanner) scanWithinTag() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	switch c := s.peek(0); {
	case c == '>':
		s.pos++
		s.state = WithinContent
		return StartTagClose, true
	case s.hasPrefix("/>"):
		s.pos += 2
		s.state = WithinContent
		return StartTagSelfClose, true
	case c == '<':
		// missing '>': let the next tag start over
		return s.goTo(WithinContent)
	case isAttributeNameChar(c):
		s.advanceWhile(isAttributeNameChar)
		s.state = AfterAttributeName
		return AttributeName, true
	}
	s.pos++
	return Unknown, true
}

func (s *Scanner) scanWithinEndTag() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	switch s.peek(0) {
	case '>':
		s.pos++
		s.state = WithinContent
		return EndTagClose, true
	case '<':
		return s.goTo(WithinContent)
	}
	s.pos++
	return Unknown, true
}

func (s *Scanner) scanAfterAttributeName() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	if s.peek(0) == '=' {
		s.pos++
		s.state = BeforeAttributeValue
		return DelimiterAssign, true
	}
	return s.goTo(WithinTag)
}

func (s *Scanner) scanBeforeAttributeValue() (TokenKind, bool) {
	if s.advanceWhile(isWhitespace) > 0 {
		return Whitespace, true
	}
	switch q := s.peek(0); q {
	case '"', '\'':
		if end := strings.IndexByte(s.text[s.pos+1:], q); end >= 0 {
			s.pos += end + 2
		} else {
			s.pos = len(s.text)
		}
	case '>', '<':
		return s.goTo(WithinTag)
	default:
		s.advanceWhile(func(c byte) bool { return !isWhitespace(c) && c != '>' })
	}
	s.state = AfterAttributeValue
	return AttributeValue, true
}

func (s *Scanner) scanAfterAttributeValue() (TokenKind, bool) {
	return s.goTo(WithinTag)
}

func (s *Scanner) scanComment() (TokenKind, bool) {
	from := s.pos
	if s.hasPrefix("<!--") {
		from += len("<!--")
	}
	if end := strings.Index(s.text[from:], "-->"); end >= 0 {
		s.pos = from + end + len("-->")
	} else {
		s.pos = len(s.text)
	}
	s.state = WithinContent
	return Comment, true
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c >= 0x80
}

func isNameStart(c byte) bool {
	return isLetter(c) || c == '_' || c == ':'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || '0' <= c && c <= '9' || c == '-' || c == '.'
}

func isAttributeNameChar(c byte) bool {
	switch c {
	case 0, '"', '\'', '<', '>', '/', '=':
		return false
	}
	return !isWhitespace(c)
}
