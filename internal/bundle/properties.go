package bundle

import (
	"fmt"
	"io"
	"sort"

	"github.com/magiconair/properties"
)

// Parse decodes UTF-8 ".properties" content, keeping the key order of the source.
// Values are returned verbatim; "${...}" placeholders are not expanded because
// message templates use them.
func Parse(data []byte) (*Bundle, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("properties.LoadBytes > %w", err)
	}

	b := New()
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		b.Set(key, value)
	}
	return b, nil
}

// WriteProperties writes values as UTF-8 ".properties" content with keys sorted.
func WriteProperties(w io.Writer, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := properties.NewProperties()
	props.DisableExpansion = true
	for _, k := range keys {
		if _, _, err := props.Set(k, values[k]); err != nil {
			return fmt.Errorf("props.Set(%s) > %w", k, err)
		}
	}
	if _, err := props.Write(w, properties.UTF8); err != nil {
		return fmt.Errorf("props.Write > %w", err)
	}
	return nil
}
