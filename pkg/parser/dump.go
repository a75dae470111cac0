package parser

import (
	"fmt"
	"strings"
)

// Dump renders the tree as an indented outline, one element per line:
//
//	div [0:17] attrs=[class]
//	  span [5:11] unclosed
func (d *Document) Dump() string {
	var sb strings.Builder
	d.Walk(func(n *Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		name := n.TagName
		if name == "" {
			name = "?"
		}
		fmt.Fprintf(&sb, "%s [%d:%d]", name, n.Start, n.End)
		if len(n.Attributes) > 0 {
			fmt.Fprintf(&sb, " attrs=[%s]", strings.Join(n.AttributeNames(), " "))
		}
		if !n.Closed {
			sb.WriteString(" unclosed")
		}
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}
