// Package parser builds an element tree out of the scanner's token stream.
package parser

import (
	"strings"

	"github.com/walteh/auhtml/pkg/scanner"
)

// voidElements close at the end of their start tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// nodeStack holds the ids of the currently open nodes, root first.
type nodeStack []NodeID

func (s *nodeStack) push(id NodeID) {
	*s = append(*s, id)
}

func (s nodeStack) top() NodeID {
	return s[len(s)-1]
}

// popTo truncates the stack so that i becomes its length and returns the ids removed.
func (s *nodeStack) popTo(i int) []NodeID {
	popped := (*s)[i:]
	*s = (*s)[:i]
	return popped
}

// Parse scans text once from the start and builds its node tree. It never
// fails; unbalanced markup is recovered as described on the Node fields.
func Parse(text string) *Document {
	p := &treeBuilder{
		doc: &Document{
			Text: text,
			nodes: []Node{{
				ID:          0,
				Start:       0,
				End:         len(text),
				StartTagEnd: 0,
				EndTagStart: -1,
				Parent:      NoNode,
				Closed:      true,
			}},
		},
		stack:       nodeStack{0},
		inStartTag:  false,
		endTagStart: -1,
		closing:     NoNode,
	}

	s := scanner.New(text, 0, scanner.WithinContent)
	for kind := s.Scan(); kind != scanner.EndOfStream; kind = s.Scan() {
		p.handle(s.Token())
	}

	for _, id := range p.stack.popTo(1) {
		n := p.doc.Node(id)
		n.End = len(text)
		n.Closed = false
	}

	return p.doc
}

type treeBuilder struct {
	doc   *Document
	stack nodeStack

	// inStartTag is set between "<" and the end of the start tag of the top node.
	inStartTag    bool
	attributeName string

	endTagStart int
	// closing is the node matched by the end tag being scanned.
	closing NodeID
}

func (p *treeBuilder) top() *Node {
	return p.doc.Node(p.stack.top())
}

func (p *treeBuilder) handle(tok scanner.Token) {
	switch tok.Kind {
	case scanner.StartTagOpen:
		parent := p.stack.top()
		id := NodeID(len(p.doc.nodes))
		p.doc.nodes = append(p.doc.nodes, Node{
			ID:          id,
			Start:       tok.Offset,
			End:         len(p.doc.Text),
			StartTagEnd: -1,
			EndTagStart: -1,
			Attributes:  map[string]string{},
			Parent:      parent,
		})
		p.doc.nodes[parent].Children = append(p.doc.nodes[parent].Children, id)
		p.stack.push(id)
		p.inStartTag = true
		p.attributeName = ""
		p.closing = NoNode

	case scanner.StartTagName:
		if p.inStartTag {
			p.top().TagName = tok.Text
		}

	case scanner.AttributeName:
		if p.inStartTag {
			p.attributeName = tok.Text
			p.top().Attributes[tok.Text] = ""
		}

	case scanner.AttributeValue:
		if p.inStartTag && p.attributeName != "" {
			p.top().Attributes[p.attributeName] = tok.Text
			p.attributeName = ""
		}

	case scanner.StartTagClose, scanner.StartTagSelfClose:
		if !p.inStartTag {
			return
		}
		p.inStartTag = false
		n := p.top()
		n.StartTagEnd = tok.End
		n.End = tok.End
		if tok.Kind == scanner.StartTagSelfClose || IsVoidElement(n.TagName) {
			n.Closed = true
			p.stack.popTo(len(p.stack) - 1)
		}

	case scanner.EndTagOpen:
		p.inStartTag = false
		p.endTagStart = tok.Offset
		p.closing = NoNode

	case scanner.EndTagName:
		p.closeMatching(tok)

	case scanner.EndTagClose:
		if n := p.doc.Node(p.closing); n != nil {
			n.End = tok.End
		}
		p.closing = NoNode
	}
}

// closeMatching closes the innermost open node named like the end tag along
// with every node opened after it. End tags that match nothing are ignored.
func (p *treeBuilder) closeMatching(tok scanner.Token) {
	for i := len(p.stack) - 1; i > 0; i-- {
		n := p.doc.Node(p.stack[i])
		if !n.isSameTag(tok.Text) {
			continue
		}
		for _, id := range p.stack.popTo(i)[1:] {
			unclosed := p.doc.Node(id)
			unclosed.End = p.endTagStart
			unclosed.Closed = false
		}
		n.EndTagStart = p.endTagStart
		n.End = tok.End
		n.Closed = true
		p.closing = n.ID
		return
	}
}
