// Package hover looks up the catalog documentation of the element, attribute
// or value under the cursor.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/completion"
	"github.com/walteh/auhtml/pkg/completion/providers"
	"github.com/walteh/auhtml/pkg/parser"
	"github.com/walteh/auhtml/pkg/position"
	"github.com/walteh/auhtml/pkg/scanner"
)

// HoverInfo is the information shown in a hover tooltip.
type HoverInfo struct {
	// Content holds markdown sections, in display order.
	Content []string
	// Position is the hovered token.
	Position position.RawPosition
}

type target struct {
	tag, attribute, value string
	kind                  scanner.TokenKind
}

// BuildHoverResponseFromParse documents the token of doc that overlaps
// hoverPosition. It returns nil when the token is not a tag name, attribute
// name or attribute value, or when no catalog knows it. Catalogs are searched
// in order.
func BuildHoverResponseFromParse(ctx context.Context, doc *parser.Document, hoverPosition position.RawPosition, catalogs ...*providers.Catalog) (*HoverInfo, error) {
	if hoverPosition.Offset < 0 || hoverPosition.Offset > len(doc.Text) {
		return nil, errors.Errorf("%w: %d not in [0, %d]", completion.ErrOffsetOutOfRange, hoverPosition.Offset, len(doc.Text))
	}

	node := doc.FindNodeBefore(hoverPosition.Offset)

	var t target
	var hovered *scanner.Token
	for tok := range scanner.Tokens(doc.Text, node.Start, scanner.WithinContent) {
		if tok.Kind == scanner.EndOfStream || tok.Offset > hoverPosition.Offset {
			break
		}
		overlaps := hoverPosition.HasRangeOverlapWith(tok.Position())
		switch tok.Kind {
		case scanner.StartTagName, scanner.EndTagName:
			t = target{tag: tok.Text, kind: tok.Kind}
		case scanner.AttributeName:
			t.attribute = tok.Text
			t.kind = tok.Kind
		case scanner.AttributeValue:
			t.value = strings.Trim(tok.Text, `"'`)
			t.kind = tok.Kind
		default:
			continue
		}
		if overlaps {
			hovered = &tok
			break
		}
	}

	if hovered == nil {
		return nil, nil
	}

	zerolog.Ctx(ctx).Debug().
		Str("token", hovered.String()).
		Str("tag", t.tag).
		Str("attribute", t.attribute).
		Msg("hovering")

	var content []string
	for _, cat := range catalogs {
		if content = describe(cat, t); content != nil {
			break
		}
	}
	if content == nil {
		return nil, nil
	}

	return &HoverInfo{
		Content:  content,
		Position: hovered.Position(),
	}, nil
}

func describe(cat *providers.Catalog, t target) []string {
	switch t.kind {
	case scanner.StartTagName, scanner.EndTagName:
		el := cat.Element(t.tag)
		if el == nil {
			return nil
		}
		content := []string{fmt.Sprintf("```html\n<%s>\n```", el.Name)}
		if el.Documentation != "" {
			content = append(content, el.Documentation)
		}
		if el.URL != "" {
			content = append(content, fmt.Sprintf("[MDN Reference](%s)", el.URL))
		}
		return content

	case scanner.AttributeName:
		name, command := splitCommand(t.attribute)
		attr := lookupAttribute(cat, t.tag, t.attribute)
		if attr == nil && command != "" {
			attr = lookupAttribute(cat, t.tag, name)
		} else {
			command = ""
		}
		if attr == nil {
			return describeEvent(cat, t.attribute)
		}
		content := []string{fmt.Sprintf("**%s** attribute of `<%s>`", attr.Name, t.tag)}
		if attr.Documentation != "" {
			content = append(content, attr.Documentation)
		}
		if command != "" {
			content = append(content, fmt.Sprintf("Bound with the `%s` binding command.", command))
		}
		return content

	case scanner.AttributeValue:
		attr := lookupAttribute(cat, t.tag, t.attribute)
		if attr == nil {
			return nil
		}
		for _, v := range attr.Values {
			if v.Name == t.value {
				content := []string{fmt.Sprintf("`%s` for **%s**", v.Name, attr.Name)}
				if v.Documentation != "" {
					content = append(content, v.Documentation)
				}
				return content
			}
		}
	}
	return nil
}

func describeEvent(cat *providers.Catalog, attribute string) []string {
	name, command := splitCommand(attribute)
	if command == "" {
		name = strings.TrimPrefix(attribute, "on")
		if name == attribute {
			return nil
		}
	}
	for _, ev := range cat.Events {
		if ev.Name == name {
			content := []string{fmt.Sprintf("**%s** event", ev.Name)}
			if ev.Documentation != "" {
				content = append(content, ev.Documentation)
			}
			return content
		}
	}
	return nil
}

func lookupAttribute(cat *providers.Catalog, tag, name string) *providers.Attribute {
	for _, attr := range cat.Attributes(tag) {
		if attr.Name == name {
			return &attr
		}
	}
	return nil
}

// splitCommand splits an Aurelia attribute like "value.bind" at its last dot.
func splitCommand(attribute string) (name, command string) {
	i := strings.LastIndexByte(attribute, '.')
	if i <= 0 {
		return attribute, ""
	}
	return attribute[:i], attribute[i+1:]
}
