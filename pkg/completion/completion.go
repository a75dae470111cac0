// Package completion resolves what the cursor is on in an HTML-like template
// and turns the candidates of a Provider into editor suggestions.
package completion

import (
	"context"
	"encoding/json"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/parser"
	"github.com/walteh/auhtml/pkg/position"
)

// Kind controls how a suggestion is styled by the editor.
type Kind int

const (
	KindTag Kind = iota
	KindAttribute
	KindAttributeValue
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindAttribute:
		return "attribute"
	case KindAttributeValue:
		return "value"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Errorf("decoding suggestion kind: %w", err)
	}
	for candidate := KindTag; candidate <= KindFunction; candidate++ {
		if candidate.String() == name {
			*k = candidate
			return nil
		}
	}
	return errors.Errorf("unknown suggestion kind %q", name)
}

// Suggestion is one completion candidate, ready to be applied.
type Suggestion struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
	Kind          Kind   `json:"kind"`
	InsertText    string `json:"insertText"`
	FilterText    string `json:"filterText,omitempty"`
	Range         Range  `json:"range"`
}

// TextEdit is a suggestion's replacement in editor coordinates.
type TextEdit struct {
	Range   position.Range `json:"range"`
	NewText string         `json:"newText"`
}

func (s Suggestion) TextEdit(doc *position.Document) TextEdit {
	return TextEdit{
		Range:   doc.RangeAt(s.Range.Start, s.Range.End),
		NewText: s.InsertText,
	}
}

// List is the result of one completion request. The items are exhaustive,
// so IsIncomplete is always false; filtering is left to the editor.
type List struct {
	IsIncomplete bool         `json:"isIncomplete"`
	Items        []Suggestion `json:"items"`
}

// Complete resolves offset and collects the matching candidates from
// provider. A nil provider or an unclassified cursor yields an empty list.
func Complete(ctx context.Context, text string, offset int, doc *parser.Document, provider Provider) (*List, error) {
	cctx, err := Resolve(ctx, text, offset, doc)
	if err != nil {
		return nil, errors.Errorf("resolving completion context: %w", err)
	}

	list := &List{IsIncomplete: false, Items: []Suggestion{}}
	if provider == nil {
		return list, nil
	}

	switch cctx.Classification {
	case TagName:
		provider.CollectTags(func(tag, label string) {
			list.Items = append(list.Items, Suggestion{
				Label:         tag,
				Documentation: label,
				Kind:          KindTag,
				InsertText:    tag,
				Range:         cctx.Range,
			})
		})
	case AttributeName:
		provider.CollectAttributes(cctx.CurrentTag, func(name string, kind AttributeKind) {
			item := Suggestion{
				Label:      name,
				Kind:       KindAttribute,
				InsertText: name,
				Range:      cctx.Range,
			}
			if kind == AttributeHandler {
				item.Kind = KindFunction
			}
			if kind != AttributeValueless && cctx.AppendValue {
				item.InsertText += valuePlaceholder
			}
			list.Items = append(list.Items, item)
		})
	case AttributeValue:
		provider.CollectValues(cctx.CurrentTag, cctx.CurrentAttribute, func(value string) {
			insert := value
			if cctx.Quote {
				insert = `"` + value + `"`
			}
			list.Items = append(list.Items, Suggestion{
				Label:      value,
				Kind:       KindAttributeValue,
				InsertText: insert,
				FilterText: insert,
				Range:      cctx.Range,
			})
		})
	}

	return list, nil
}

// Service bundles a provider with the parse and complete steps, working in
// editor coordinates.
type Service struct {
	provider *Composite
}

func NewService(providers ...Provider) *Service {
	return &Service{provider: NewComposite(providers...)}
}

func (s *Service) ParseDocument(doc *position.Document) *parser.Document {
	return parser.Parse(doc.GetText())
}

// DoComplete completes at pos in doc. parsed may be nil, in which case the
// document is parsed first. Only providers applicable to the document's
// language take part.
func (s *Service) DoComplete(ctx context.Context, doc *position.Document, pos position.Place, parsed *parser.Document) (*List, error) {
	if parsed == nil {
		parsed = s.ParseDocument(doc)
	}
	return Complete(ctx, doc.GetText(), doc.OffsetAt(pos), parsed, s.provider.For(doc.LanguageID))
}
