package dictionary

import (
	"maps"
	"sort"

	"golang.org/x/text/language"
)

// ResourceBundle is a read-only, per-language view over one or more dictionaries.
type ResourceBundle struct {
	locale language.Tag
	values map[string]string
}

func newResourceBundle(locale language.Tag, values map[string]string) *ResourceBundle {
	return &ResourceBundle{
		locale: locale,
		values: values,
	}
}

func (b *ResourceBundle) Locale() language.Tag {
	return b.locale
}

// String returns the localized value of key.
func (b *ResourceBundle) String(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Keys returns all keys of the bundle in sorted order.
func (b *ResourceBundle) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Properties returns a copy of the key/value pairs.
func (b *ResourceBundle) Properties() map[string]string {
	return maps.Clone(b.values)
}
