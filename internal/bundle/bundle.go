// Package bundle loads language-scoped resource bundles: ordered key/value
// pairs resolved by a base name and a language, e.g. "web_en.properties".
package bundle

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=bundle.go -destination=../mocks/bundle/mock_loader.go -package=mock_bundle

// ErrNotFound is reported when no resource exists for a (base name, language) pair.
var ErrNotFound = errors.New("resource bundle not found")

// Loader resolves the bundle of one base name for one language.
type Loader interface {
	Load(ctx context.Context, baseName, lang string) (*Bundle, error)
}

// ResourceLoadError describes a bundle that could not be read or decoded.
type ResourceLoadError struct {
	BaseName string
	Lang     string
	Err      error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("load resource bundle %s: %v", ResourceName(e.BaseName, e.Lang), e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// ResourceName returns the file name of a bundle, e.g. "web_en.properties".
func ResourceName(baseName, lang string) string {
	return baseName + "_" + lang + ".properties"
}

// Bundle is an ordered mapping of keys to strings for one language.
type Bundle struct {
	keys   []string
	values map[string]string
}

// New returns an empty bundle.
func New() *Bundle {
	return &Bundle{values: make(map[string]string)}
}

// Set adds or replaces a value. A new key is appended to the key order.
func (b *Bundle) Set(key, value string) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

func (b *Bundle) Get(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Keys returns the keys in the order they were defined.
func (b *Bundle) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}
