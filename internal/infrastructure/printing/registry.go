package printing

import "strings"

// TemplateOption is one entry of the style selector
type TemplateOption struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

// CatalogEntry describes a style in the template gallery
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Registry is the closed set of invoice styles known at build time.
type Registry struct {
	ordered []Theme
	byKey   map[string]Theme
}

// NewRegistry builds the registry from the built-in theme table
func NewRegistry() *Registry {
	r := &Registry{
		ordered: make([]Theme, len(themes)),
		byKey:   make(map[string]Theme, len(themes)),
	}
	copy(r.ordered, themes)
	for _, t := range r.ordered {
		r.byKey[t.Key] = t
	}
	return r
}

// NormalizeKey trims and lower-cases a style key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Resolve returns the theme for key. Unknown and empty keys resolve to classic.
func (r *Registry) Resolve(key string) Theme {
	if t, ok := r.byKey[NormalizeKey(key)]; ok {
		return t
	}
	return r.byKey[DefaultThemeKey]
}

// Has reports whether key names a registered style
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[NormalizeKey(key)]
	return ok
}

// Keys returns the registered keys in selector order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.ordered))
	for i, t := range r.ordered {
		keys[i] = t.Key
	}
	return keys
}

// List returns the selector options in display order
func (r *Registry) List() []TemplateOption {
	opts := make([]TemplateOption, len(r.ordered))
	for i, t := range r.ordered {
		opts[i] = TemplateOption{Key: t.Key, DisplayName: t.Name}
	}
	return opts
}

// Catalog returns the template gallery
func (r *Registry) Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, len(r.ordered))
	for i, t := range r.ordered {
		entries[i] = CatalogEntry{
			ID:          t.Key,
			Name:        t.Name,
			Description: t.Description,
			Thumbnail:   "/templates/" + t.Key + ".svg",
		}
	}
	return entries
}
