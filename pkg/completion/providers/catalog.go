package providers

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

type Value struct {
	Name          string `yaml:"name"`
	Documentation string `yaml:"documentation,omitempty"`
}

type Attribute struct {
	Name          string `yaml:"name"`
	Documentation string `yaml:"documentation,omitempty"`
	// Valueless attributes are boolean; they are inserted without "=".
	Valueless bool    `yaml:"valueless,omitempty"`
	Values    []Value `yaml:"values,omitempty"`
}

type Event struct {
	Name          string `yaml:"name"`
	Documentation string `yaml:"documentation,omitempty"`
}

type Element struct {
	Name          string      `yaml:"name"`
	Documentation string      `yaml:"documentation,omitempty"`
	URL           string      `yaml:"url,omitempty"`
	Licence       string      `yaml:"licence,omitempty"`
	Attributes    []Attribute `yaml:"attributes,omitempty"`
}

// Label is the text shown next to the element in a completion list.
func (e *Element) Label() string {
	if e.Licence == "" {
		return e.Documentation
	}
	return e.Documentation + "\n\n" + strings.ReplaceAll(e.Licence, "{url}", e.URL)
}

func (e *Element) Attribute(name string) *Attribute {
	return findAttribute(e.Attributes, name)
}

// Catalog is the data behind a provider: the known elements, the attributes
// every element accepts, and the DOM events.
type Catalog struct {
	Elements         []Element   `yaml:"elements"`
	GlobalAttributes []Attribute `yaml:"global_attributes,omitempty"`
	Events           []Event     `yaml:"events,omitempty"`
}

// HTMLCatalog returns the built in catalog of standard HTML elements.
func HTMLCatalog() (*Catalog, error) {
	return embeddedCatalog("catalog/html.yaml")
}

// AureliaCatalog returns the built in catalog of Aurelia custom elements and
// template controllers.
func AureliaCatalog() (*Catalog, error) {
	return embeddedCatalog("catalog/aurelia.yaml")
}

func embeddedCatalog(name string) (*Catalog, error) {
	data, err := catalogFS.ReadFile(name)
	if err != nil {
		return nil, errors.Errorf("reading embedded catalog %s: %w", name, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Errorf("embedded catalog %s: %w", name, err)
	}
	return cat, nil
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(fs afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading catalog file: %w", err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes a YAML catalog. Unknown keys are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	var result *multierror.Error

	elements := map[string]bool{}
	for i, el := range c.Elements {
		where := fmt.Sprintf("element %d", i)
		if el.Name == "" {
			result = multierror.Append(result, errors.Errorf("%s: missing name", where))
		} else {
			where = fmt.Sprintf("element %q", el.Name)
			key := strings.ToLower(el.Name)
			if elements[key] {
				result = multierror.Append(result, errors.Errorf("%s: defined more than once", where))
			}
			elements[key] = true
		}
		result = validateAttributes(result, where, el.Attributes)
	}

	result = validateAttributes(result, "global attributes", c.GlobalAttributes)

	events := map[string]bool{}
	for i, ev := range c.Events {
		switch {
		case ev.Name == "":
			result = multierror.Append(result, errors.Errorf("event %d: missing name", i))
		case events[ev.Name]:
			result = multierror.Append(result, errors.Errorf("event %q: defined more than once", ev.Name))
		}
		events[ev.Name] = true
	}

	return result.ErrorOrNil()
}

func validateAttributes(result *multierror.Error, where string, attrs []Attribute) *multierror.Error {
	seen := map[string]bool{}
	for i, attr := range attrs {
		if attr.Name == "" {
			result = multierror.Append(result, errors.Errorf("%s: attribute %d: missing name", where, i))
			continue
		}
		if seen[attr.Name] {
			result = multierror.Append(result, errors.Errorf("%s: attribute %q: defined more than once", where, attr.Name))
		}
		seen[attr.Name] = true

		if attr.Valueless && len(attr.Values) > 0 {
			result = multierror.Append(result, errors.Errorf("%s: attribute %q: valueless attribute has values", where, attr.Name))
		}
		values := map[string]bool{}
		for j, v := range attr.Values {
			switch {
			case v.Name == "":
				result = multierror.Append(result, errors.Errorf("%s: attribute %q: value %d: missing name", where, attr.Name, j))
			case values[v.Name]:
				result = multierror.Append(result, errors.Errorf("%s: attribute %q: value %q: defined more than once", where, attr.Name, v.Name))
			}
			values[v.Name] = true
		}
	}
	return result
}

// Element looks up an element by name, ignoring case.
func (c *Catalog) Element(name string) *Element {
	for i := range c.Elements {
		if strings.EqualFold(c.Elements[i].Name, name) {
			return &c.Elements[i]
		}
	}
	return nil
}

// Attributes returns the attributes valid on tag: its own first, then the
// global ones it does not override. Unknown tags get the global attributes.
func (c *Catalog) Attributes(tag string) []Attribute {
	var out []Attribute
	if el := c.Element(tag); el != nil {
		out = append(out, el.Attributes...)
	}
	for _, attr := range c.GlobalAttributes {
		if findAttribute(out, attr.Name) == nil {
			out = append(out, attr)
		}
	}
	return out
}

// Merge returns a catalog holding the entries of c overlaid with other.
// Entries of other replace entries of c with the same name; an element
// present in both keeps the attributes of c that other does not redefine.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{
		Elements:         make([]Element, 0, len(c.Elements)),
		GlobalAttributes: mergeAttributes(c.GlobalAttributes, other.GlobalAttributes),
		Events:           append([]Event(nil), c.Events...),
	}

	for _, el := range c.Elements {
		el.Attributes = append([]Attribute(nil), el.Attributes...)
		out.Elements = append(out.Elements, el)
	}
	for _, el := range other.Elements {
		existing := out.Element(el.Name)
		if existing == nil {
			out.Elements = append(out.Elements, el)
			continue
		}
		attrs := mergeAttributes(existing.Attributes, el.Attributes)
		if el.Documentation == "" {
			el.Documentation = existing.Documentation
		}
		if el.URL == "" {
			el.URL = existing.URL
		}
		if el.Licence == "" {
			el.Licence = existing.Licence
		}
		*existing = el
		existing.Attributes = attrs
	}

	for _, ev := range other.Events {
		replaced := false
		for i := range out.Events {
			if out.Events[i].Name == ev.Name {
				out.Events[i] = ev
				replaced = true
			}
		}
		if !replaced {
			out.Events = append(out.Events, ev)
		}
	}

	return out
}

func mergeAttributes(base, overlay []Attribute) []Attribute {
	out := append([]Attribute(nil), base...)
	for _, attr := range overlay {
		if existing := findAttribute(out, attr.Name); existing != nil {
			*existing = attr
			continue
		}
		out = append(out, attr)
	}
	return out
}

func findAttribute(attrs []Attribute, name string) *Attribute {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}
