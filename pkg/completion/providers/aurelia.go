package providers

import (
	"slices"
	"strings"

	"github.com/walteh/auhtml/pkg/completion"
)

var (
	bindingCommands = []string{"bind", "one-way", "two-way", "one-time"}
	eventCommands   = []string{"trigger", "delegate"}
)

// AureliaProvider completes Aurelia custom elements, template controllers and
// binding commands. Binding commands are offered for every attribute the HTML
// catalog knows for the tag, and event commands for every event.
type AureliaProvider struct {
	html      *Catalog
	aurelia   *Catalog
	languages languages
}

var _ completion.Provider = (*AureliaProvider)(nil)

func NewAureliaProvider(html, aurelia *Catalog, opts ...Option) *AureliaProvider {
	return &AureliaProvider{
		html:      html,
		aurelia:   aurelia,
		languages: newLanguages([]string{"html", "aurelia*"}, opts),
	}
}

func (p *AureliaProvider) ID() string {
	return AureliaProviderID
}

func (p *AureliaProvider) IsApplicable(languageID string) bool {
	return p.languages.match(languageID)
}

func (p *AureliaProvider) CollectTags(visit func(tag, label string)) {
	for i := range p.aurelia.Elements {
		el := &p.aurelia.Elements[i]
		visit(el.Name, el.Label())
	}
}

func (p *AureliaProvider) CollectAttributes(tag string, visit func(name string, kind completion.AttributeKind)) {
	own := p.aurelia.Attributes(tag)
	for _, attr := range own {
		visit(attr.Name, attributeKind(attr))
	}

	bindable := p.html.Attributes(tag)
	if el := p.aurelia.Element(tag); el != nil {
		bindable = mergeAttributes(el.Attributes, bindable)
	}
	for _, attr := range bindable {
		for _, cmd := range bindingCommands {
			visit(attr.Name+"."+cmd, completion.AttributePlain)
		}
	}

	for _, ev := range p.html.Events {
		for _, cmd := range eventCommands {
			visit(ev.Name+"."+cmd, completion.AttributeHandler)
		}
	}
}

// CollectValues offers the values of the Aurelia catalog, and for a binding
// command on an enumerated HTML attribute, its values as string literals.
func (p *AureliaProvider) CollectValues(tag, attribute string, visit func(value string)) {
	if attr := findAttribute(p.aurelia.Attributes(tag), attribute); attr != nil {
		for _, v := range attr.Values {
			visit(v.Name)
		}
		return
	}

	name, cmd, ok := strings.Cut(attribute, ".")
	if !ok || !slices.Contains(bindingCommands, cmd) {
		return
	}
	if attr := findAttribute(p.html.Attributes(tag), name); attr != nil {
		for _, v := range attr.Values {
			visit("'" + v.Name + "'")
		}
	}
}
