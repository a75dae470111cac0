// Package providers holds the completion providers for standard HTML and for
// Aurelia templates, both backed by a Catalog.
package providers

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/auhtml/pkg/completion"
)

const (
	HTMLProviderID    = "html"
	AureliaProviderID = "aurelia"
)

// Option configures a provider.
type Option func(*languages)

// WithLanguages replaces the glob patterns of language ids a provider
// applies to.
func WithLanguages(patterns ...string) Option {
	return func(l *languages) {
		l.patterns = patterns
	}
}

type languages struct {
	patterns []string
}

func newLanguages(defaults []string, opts []Option) languages {
	l := languages{patterns: defaults}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l languages) match(languageID string) bool {
	for _, pattern := range l.patterns {
		if ok, err := doublestar.Match(pattern, languageID); err == nil && ok {
			return true
		}
	}
	return false
}

// HTMLProvider completes standard HTML elements, attributes, enumerated values
// and "on" event handlers from a catalog.
type HTMLProvider struct {
	catalog   *Catalog
	languages languages
}

var _ completion.Provider = (*HTMLProvider)(nil)

func NewHTMLProvider(catalog *Catalog, opts ...Option) *HTMLProvider {
	return &HTMLProvider{
		catalog:   catalog,
		languages: newLanguages([]string{"html", "aurelia*"}, opts),
	}
}

func (p *HTMLProvider) ID() string {
	return HTMLProviderID
}

func (p *HTMLProvider) IsApplicable(languageID string) bool {
	return p.languages.match(languageID)
}

func (p *HTMLProvider) CollectTags(visit func(tag, label string)) {
	for i := range p.catalog.Elements {
		el := &p.catalog.Elements[i]
		visit(el.Name, el.Label())
	}
}

func (p *HTMLProvider) CollectAttributes(tag string, visit func(name string, kind completion.AttributeKind)) {
	for _, attr := range p.catalog.Attributes(tag) {
		visit(attr.Name, attributeKind(attr))
	}
	for _, ev := range p.catalog.Events {
		visit("on"+ev.Name, completion.AttributeHandler)
	}
}

func (p *HTMLProvider) CollectValues(tag, attribute string, visit func(value string)) {
	attr := findAttribute(p.catalog.Attributes(tag), attribute)
	if attr == nil {
		return
	}
	for _, v := range attr.Values {
		visit(v.Name)
	}
}

func attributeKind(attr Attribute) completion.AttributeKind {
	if attr.Valueless {
		return completion.AttributeValueless
	}
	return completion.AttributePlain
}
