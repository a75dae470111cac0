package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/auhtml/pkg/diff"
	"github.com/walteh/auhtml/pkg/parser"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "empty",
			template: "",
			want:     "",
		},
		{
			name:     "nested elements",
			template: `<div class="a"><span>hi</span><p></p></div>`,
			want: `div [0:43] attrs=[class]
  span [15:30]
  p [30:37]
`,
		},
		{
			name:     "mismatched end tag force closes the inner node",
			template: "<div><span></div>",
			want: `div [0:17]
  span [5:11] unclosed
`,
		},
		{
			name:     "stray end tag is ignored",
			template: "<div></span></div>",
			want: `div [0:18]
`,
		},
		{
			name:     "self closing and void elements have no children",
			template: "<input/><br><img src=x>text<p></p>",
			want: `input [0:8]
br [8:12]
img [12:23] attrs=[src]
p [27:34]
`,
		},
		{
			name:     "unclosed nodes run to the end of the document",
			template: "<template><div>",
			want: `template [0:15] unclosed
  div [10:15] unclosed
`,
		},
		{
			name:     "end tags match case insensitively",
			template: "<DIV></div>",
			want: `DIV [0:11]
`,
		},
		{
			name:     "unterminated start tag",
			template: "<di",
			want: `di [0:3] unclosed
`,
		},
		{
			name:     "comments are not elements",
			template: "<!-- <a> --><b></b>",
			want: `b [12:19]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parser.Parse(tt.template)
			if d := diff.Lines(tt.want, doc.Dump()); d != "" {
				t.Errorf("unexpected tree: %s", d)
			}
		})
	}
}

func TestParseNodeFields(t *testing.T) {
	doc := parser.Parse(`<div id="x" id='y' hidden><span></div>`)
	require.Equal(t, 2, doc.Len())

	div := doc.Roots()[0]
	assert.Equal(t, "div", div.TagName)
	assert.Equal(t, 0, div.Start)
	assert.Equal(t, 26, div.StartTagEnd)
	assert.Equal(t, 32, div.EndTagStart)
	assert.True(t, div.HasEndTag())
	assert.True(t, div.Closed)
	assert.Equal(t, map[string]string{"id": "'y'", "hidden": ""}, div.Attributes, "last write wins")
	assert.Equal(t, []string{"hidden", "id"}, div.AttributeNames())
	assert.Same(t, doc.Root(), doc.Parent(div))

	span := doc.Children(div)[0]
	assert.Equal(t, 32, span.End)
	assert.False(t, span.Closed)
	assert.False(t, span.HasEndTag())
	assert.Same(t, div, doc.Parent(span))
	assert.Nil(t, doc.Node(parser.NodeID(99)))
}

func TestParseIdempotent(t *testing.T) {
	text := "<template>\n  <require from=\"./x\"></require>\n  <ul><li repeat.for=\"i of items\">${i}</li><li></ul>\n</template>"

	a := parser.Parse(text)
	b := parser.Parse(text)

	assert.Empty(t, diff.DiffExportedOnly(a.Roots(), b.Roots()))
	assert.Equal(t, a.Dump(), b.Dump())
}

func TestSelfClosingNeverAncestor(t *testing.T) {
	doc := parser.Parse("<div><input/><span><br>x</span><img/><p></p></div>")

	doc.Walk(func(n *parser.Node, depth int) bool {
		for p := doc.Parent(n); p != nil; p = doc.Parent(p) {
			assert.NotContains(t, []string{"input", "br", "img"}, p.TagName, "%s has void ancestor", n.TagName)
		}
		return true
	})
}

func TestChildrenAreNestedAndOrdered(t *testing.T) {
	doc := parser.Parse("<a><b></b><c><d></c><e></a><f>")

	doc.Walk(func(n *parser.Node, depth int) bool {
		assert.LessOrEqual(t, n.Start, n.End)
		prevEnd := n.Start
		for _, c := range doc.Children(n) {
			assert.GreaterOrEqual(t, c.Start, prevEnd, "children are disjoint and ordered")
			assert.LessOrEqual(t, c.End, n.End, "children are nested in %s", n.TagName)
			prevEnd = c.End
		}
		return true
	})
}

func TestFindNodeBefore(t *testing.T) {
	text := "<div><span></span>text</div><p><b>"
	doc := parser.Parse(text)

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{name: "before anything", offset: 0, want: "div"},
		{name: "inside div start tag", offset: 3, want: "div"},
		{name: "inside span", offset: 8, want: "span"},
		{name: "after span in div content", offset: 20, want: "span"},
		{name: "between div and p", offset: 28, want: "p"},
		{name: "end of document descends into unclosed children", offset: len(text), want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.FindNodeBefore(tt.offset).TagName)
		})
	}

	t.Run("root when nothing starts before", func(t *testing.T) {
		doc := parser.Parse("hello <a></a>")
		assert.Same(t, doc.Root(), doc.FindNodeBefore(2))
	})
}

func TestFindNodeBeforeEndOfDocument(t *testing.T) {
	for _, text := range []string{
		"<a></a>",
		"<a></a><b></b>",
		"<a><b></b></a>",
		"<a></a>\n<b x=y>text</b>",
	} {
		t.Run(text, func(t *testing.T) {
			doc := parser.Parse(text)
			roots := doc.Roots()
			assert.Same(t, roots[len(roots)-1], doc.FindNodeBefore(len(text)))
		})
	}
}

func TestFindNodeAt(t *testing.T) {
	doc := parser.Parse("<div><span></span></div>")

	assert.Same(t, doc.Root(), doc.FindNodeAt(0))
	assert.Equal(t, "div", doc.FindNodeAt(3).TagName)
	assert.Equal(t, "span", doc.FindNodeAt(7).TagName)
	assert.Equal(t, "div", doc.FindNodeAt(20).TagName)
}
