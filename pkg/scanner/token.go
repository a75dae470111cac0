// Package scanner tokenizes HTML-like template markup with an explicit state machine.
//
// A scan can start at any offset with any State, which lets callers re-scan a
// fragment of a document (for example the element around the cursor) without
// starting over from the beginning.
package scanner

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/position"
)

// TokenKind classifies a Token.
type TokenKind int

const (
	StartTagOpen TokenKind = iota
	StartTagName
	StartTagClose
	StartTagSelfClose
	EndTagOpen
	EndTagName
	EndTagClose
	AttributeName
	DelimiterAssign
	AttributeValue
	Content
	Comment
	Whitespace
	Unknown
	EndOfStream
)

func (k TokenKind) String() string {
	switch k {
	case StartTagOpen:
		return "StartTagOpen"
	case StartTagName:
		return "StartTagName"
	case StartTagClose:
		return "StartTagClose"
	case StartTagSelfClose:
		return "StartTagSelfClose"
	case EndTagOpen:
		return "EndTagOpen"
	case EndTagName:
		return "EndTagName"
	case EndTagClose:
		return "EndTagClose"
	case AttributeName:
		return "AttributeName"
	case DelimiterAssign:
		return "DelimiterAssign"
	case AttributeValue:
		return "AttributeValue"
	case Content:
		return "Content"
	case Comment:
		return "Comment"
	case Whitespace:
		return "Whitespace"
	case Unknown:
		return "Unknown"
	case EndOfStream:
		return "EndOfStream"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// State is the lexical state the scanner is in between two tokens.
type State int

const (
	WithinContent State = iota
	AfterOpeningStartTag
	AfterOpeningEndTag
	WithinTag
	WithinEndTag
	AfterAttributeName
	BeforeAttributeValue
	AfterAttributeValue
	WithinComment

	numStates
)

func (s State) String() string {
	switch s {
	case WithinContent:
		return "WithinContent"
	case AfterOpeningStartTag:
		return "AfterOpeningStartTag"
	case AfterOpeningEndTag:
		return "AfterOpeningEndTag"
	case WithinTag:
		return "WithinTag"
	case WithinEndTag:
		return "WithinEndTag"
	case AfterAttributeName:
		return "AfterAttributeName"
	case BeforeAttributeValue:
		return "BeforeAttributeValue"
	case AfterAttributeValue:
		return "AfterAttributeValue"
	case WithinComment:
		return "WithinComment"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState returns the State with the given name, as printed by String.
func ParseState(name string) (State, error) {
	for s := WithinContent; s < numStates; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown scanner state %q", name)
}

// Token is a classified span of the scanned text. Text is a slice of the
// input, so holding on to a Token keeps the whole input alive.
type Token struct {
	Kind   TokenKind
	Offset int
	End    int
	Text   string
}

// Position returns the span of the token as a RawPosition.
func (t Token) Position() position.RawPosition {
	return position.NewBasicPosition(t.Text, t.Offset)
}

// Contains reports whether offset lies within the token, both ends inclusive.
func (t Token) Contains(offset int) bool {
	return t.Position().HasRangeOverlapWith(position.NewBasicPosition("", offset))
}

func (t Token) String() string {
	return fmt.Sprintf("%s[%d:%d]%q", t.Kind, t.Offset, t.End, t.Text)
}
