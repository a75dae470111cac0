package completion

// AttributeKind tells how an attribute candidate should be presented.
type AttributeKind string

const (
	// AttributePlain is an ordinary attribute that takes a value.
	AttributePlain AttributeKind = ""
	// AttributeHandler binds an event; it is suggested with function styling.
	AttributeHandler AttributeKind = "handler"
	// AttributeValueless is a boolean attribute; no value placeholder is inserted.
	AttributeValueless AttributeKind = "v"
)

// Provider supplies the candidates of one markup dialect. Visitors are called
// once per candidate, in the order the provider wants them shown.
type Provider interface {
	ID() string
	IsApplicable(languageID string) bool
	CollectTags(visit func(tag, label string))
	CollectAttributes(tag string, visit func(name string, kind AttributeKind))
	CollectValues(tag, attribute string, visit func(value string))
}

// Composite merges several providers into one. The first provider to
// mention a candidate wins; later duplicates are dropped.
type Composite struct {
	providers []Provider
}

var _ Provider = (*Composite)(nil)

func NewComposite(providers ...Provider) *Composite {
	var kept []Provider
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Composite{providers: kept}
}

// For returns the composite of the providers applicable to languageID.
func (c *Composite) For(languageID string) *Composite {
	var applicable []Provider
	for _, p := range c.providers {
		if p.IsApplicable(languageID) {
			applicable = append(applicable, p)
		}
	}
	return &Composite{providers: applicable}
}

func (c *Composite) Providers() []Provider {
	return c.providers
}

func (c *Composite) ID() string {
	id := "composite"
	for _, p := range c.providers {
		id += "+" + p.ID()
	}
	return id
}

func (c *Composite) IsApplicable(languageID string) bool {
	for _, p := range c.providers {
		if p.IsApplicable(languageID) {
			return true
		}
	}
	return false
}

func (c *Composite) CollectTags(visit func(tag, label string)) {
	seen := map[string]bool{}
	for _, p := range c.providers {
		p.CollectTags(func(tag, label string) {
			if !seen[tag] {
				seen[tag] = true
				visit(tag, label)
			}
		})
	}
}

func (c *Composite) CollectAttributes(tag string, visit func(name string, kind AttributeKind)) {
	seen := map[string]bool{}
	for _, p := range c.providers {
		p.CollectAttributes(tag, func(name string, kind AttributeKind) {
			if !seen[name] {
				seen[name] = true
				visit(name, kind)
			}
		})
	}
}

func (c *Composite) CollectValues(tag, attribute string, visit func(value string)) {
	seen := map[string]bool{}
	for _, p := range c.providers {
		p.CollectValues(tag, attribute, func(value string) {
			if !seen[value] {
				seen[value] = true
				visit(value)
			}
		})
	}
}
