// Package taxonomy holds the closed set of memo context categories and maps
// free-form model output back into it.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var embedded string

// Alias maps a localized label to a canonical category.
type Alias struct {
	Label    string
	Category string
}

// Registry is the immutable category taxonomy. It is safe for concurrent use.
type Registry struct {
	categories []string
	canonical  map[string]struct{}
	aliases    map[string][]Alias
	localized  map[string]map[string]string // locale -> canonical -> first label
	lookup     map[string]string            // folded key -> canonical
	def        string
}

// New builds a registry. The default category must be one of categories, and
// every alias must point at a canonical category.
func New(def string, categories []string, aliases map[string][]Alias) (*Registry, error) {
	if len(categories) == 0 {
		return nil, errors.New("taxonomy: no categories")
	}
	r := &Registry{
		canonical: make(map[string]struct{}, len(categories)),
		aliases:   make(map[string][]Alias, len(aliases)),
		localized: make(map[string]map[string]string, len(aliases)),
		lookup:    make(map[string]string),
		def:       strings.TrimSpace(def),
	}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, errors.New("taxonomy: empty category name")
		}
		if _, dup := r.canonical[c]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate category %q", c)
		}
		r.canonical[c] = struct{}{}
		r.categories = append(r.categories, c)
		if err := r.index(c, c); err != nil {
			return nil, err
		}
	}
	if !r.Contains(r.def) {
		return nil, fmt.Errorf("taxonomy: default category %q is not a category", def)
	}
	for locale, list := range aliases {
		locale = strings.ToLower(strings.TrimSpace(locale))
		labels := make(map[string]string, len(list))
		for _, a := range list {
			label := strings.TrimSpace(a.Label)
			if label == "" {
				return nil, fmt.Errorf("taxonomy: empty alias label in %s", locale)
			}
			if !r.Contains(a.Category) {
				return nil, fmt.Errorf("taxonomy: alias %s/%q points at unknown category %q", locale, label, a.Category)
			}
			if err := r.index(label, a.Category); err != nil {
				return nil, err
			}
			if _, ok := labels[a.Category]; !ok {
				labels[a.Category] = label
			}
			r.aliases[locale] = append(r.aliases[locale], Alias{Label: label, Category: a.Category})
		}
		r.localized[locale] = labels
	}
	return r, nil
}

func (r *Registry) index(label, category string) error {
	key := foldKey(label)
	if prev, ok := r.lookup[key]; ok && prev != category {
		return fmt.Errorf("taxonomy: label %q maps to both %q and %q", label, prev, category)
	}
	r.lookup[key] = category
	return nil
}

type file struct {
	Default    string                   `yaml:"default"`
	Categories []string                 `yaml:"categories"`
	Aliases    map[string]orderedLabels `yaml:"aliases"`
}

// orderedLabels keeps aliases in file order so Localize is deterministic.
type orderedLabels []Alias

func (o *orderedLabels) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: aliases must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var label, category string
		if err := value.Content[i].Decode(&label); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&category); err != nil {
			return err
		}
		*o = append(*o, Alias{Label: label, Category: category})
	}
	return nil
}

// Load parses a YAML taxonomy document.
func Load(r io.Reader) (*Registry, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}
	aliases := make(map[string][]Alias, len(f.Aliases))
	for locale, list := range f.Aliases {
		aliases[locale] = list
	}
	return New(f.Default, f.Categories, aliases)
}

// LoadFile parses the taxonomy file at path.
func LoadFile(path string) (*Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := Load(strings.NewReader(embedded))
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the built-in taxonomy.
func Default() *Registry {
	return defaultRegistry()
}

// Contains reports whether category is canonical.
func (r *Registry) Contains(category string) bool {
	_, ok := r.canonical[category]
	return ok
}

// Categories returns the canonical categories in declaration order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out
}

// DefaultCategory is the category used when nothing else matches.
func (r *Registry) DefaultCategory() string {
	return r.def
}

// Locales lists locales that have aliases.
func (r *Registry) Locales() []string {
	out := make([]string, 0, len(r.aliases))
	for l := range r.aliases {
		out = append(out, l)
	}
	return out
}

// Aliases returns the localized labels for locale in file order.
func (r *Registry) Aliases(locale string) []Alias {
	list := r.aliases[strings.ToLower(locale)]
	out := make([]Alias, len(list))
	copy(out, list)
	return out
}

// Localize returns the display label of a canonical category in locale,
// or the canonical name when the locale has no label for it.
func (r *Registry) Localize(category, locale string) string {
	if labels, ok := r.localized[strings.ToLower(locale)]; ok {
		if l, ok := labels[category]; ok {
			return l
		}
	}
	return category
}

// foldKey makes lookups tolerant of case, Unicode composition and spacing.
func foldKey(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), "")
}
