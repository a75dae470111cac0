package parser

import (
	"sort"
	"strings"
)

// NodeID indexes a Node in its Document.
type NodeID int

// NoNode is the parent of the root and the EndTagStart of nodes without an end tag.
const NoNode NodeID = -1

// Node is an element of the parsed document. Offsets are byte offsets into
// the document text.
type Node struct {
	ID      NodeID
	TagName string

	Start int
	End   int
	// StartTagEnd is the offset just past the start tag's '>' or -1 while
	// the start tag is unterminated.
	StartTagEnd int
	// EndTagStart is the offset of the matching "</" or -1 if none was seen.
	EndTagStart int

	// Attributes maps attribute names to their raw value text, quotes
	// included. Bare attributes map to "".
	Attributes map[string]string

	Parent   NodeID
	Children []NodeID

	// Closed is false when the end tag never showed up.
	Closed bool
}

func (n *Node) HasEndTag() bool {
	return n.EndTagStart >= 0
}

// AttributeNames returns the attribute names of the node in sorted order.
func (n *Node) AttributeNames() []string {
	names := make([]string, 0, len(n.Attributes))
	for name := range n.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *Node) isSameTag(tag string) bool {
	return n.TagName != "" && strings.EqualFold(n.TagName, tag)
}

// Document is the node tree of one snapshot of a document. Nodes live in an
// arena; index 0 is a synthetic root spanning the whole text.
type Document struct {
	Text  string
	nodes []Node
}

func (d *Document) Root() *Node {
	return &d.nodes[0]
}

// Node returns the node with the given id, or nil.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return &d.nodes[id]
}

func (d *Document) Parent(n *Node) *Node {
	return d.Node(n.Parent)
}

func (d *Document) Children(n *Node) []*Node {
	children := make([]*Node, len(n.Children))
	for i, id := range n.Children {
		children[i] = &d.nodes[id]
	}
	return children
}

// Roots returns the top level elements of the document.
func (d *Document) Roots() []*Node {
	return d.Children(d.Root())
}

// Len is the number of elements, not counting the root.
func (d *Document) Len() int {
	return len(d.nodes) - 1
}

// Walk visits every element in document order. Returning false from fn skips
// the children of that node.
func (d *Document) Walk(fn func(n *Node, depth int) bool) {
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := &d.nodes[id]
		if !fn(n, depth) {
			return
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, id := range d.Root().Children {
		walk(id, 0)
	}
}

// FindNodeBefore returns the deepest node that starts at or before offset.
// It descends into a node when offset is inside it, or when its last child
// runs to its end (an unclosed trailing child). It returns the root when no
// element starts at or before offset.
func (d *Document) FindNodeBefore(offset int) *Node {
	node := d.Root()
	for {
		var child *Node
		for _, id := range node.Children {
			c := &d.nodes[id]
			if c.Start > offset {
				break
			}
			child = c
		}
		if child == nil {
			return node
		}
		if offset < child.End {
			node = child
			continue
		}
		if n := len(child.Children); n > 0 && d.nodes[child.Children[n-1]].End == child.End {
			node = child
			continue
		}
		return child
	}
}

// FindNodeAt returns the deepest node whose span contains offset, excluding
// its start offset. It returns the root if no element does.
func (d *Document) FindNodeAt(offset int) *Node {
	node := d.Root()
	for {
		var next *Node
		for _, id := range node.Children {
			c := &d.nodes[id]
			if c.Start >= offset {
				break
			}
			if offset <= c.End {
				next = c
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
}
