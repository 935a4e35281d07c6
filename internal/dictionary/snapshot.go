package dictionary

import (
	"sort"
)

// Snapshot is an immutable, fully materialized copy of one dictionary.
// It is safe for concurrent readers.
type Snapshot struct {
	name    string
	entries map[string]map[string]string
}

// NewSnapshot copies d. Later changes to d are not visible through the snapshot.
func NewSnapshot(d *Dictionary) *Snapshot {
	entries := make(map[string]map[string]string, len(d.Entries))
	for key, entry := range d.Entries {
		descs := make(map[string]string, len(entry.Descs))
		for _, desc := range entry.Descs {
			descs[desc.Lang] = desc.Value
		}
		entries[key] = descs
	}
	return &Snapshot{
		name:    d.Name,
		entries: entries,
	}
}

func (s *Snapshot) Name() string {
	return s.name
}

func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Keys returns the entry keys in sorted order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Snapshot) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Value returns the description of key for lang.
func (s *Snapshot) Value(lang, key string) (string, bool) {
	descs, ok := s.entries[key]
	if !ok {
		return "", false
	}
	v, ok := descs[lang]
	return v, ok
}

// Entry returns a copy of the entry for key with its descriptions sorted by language.
func (s *Snapshot) Entry(key string) (Entry, bool) {
	descs, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry := Entry{Key: key, Descs: make([]Desc, 0, len(descs))}
	for lang, value := range descs {
		entry.Descs = append(entry.Descs, Desc{Lang: lang, Value: value})
	}
	sort.Slice(entry.Descs, func(i, j int) bool {
		return entry.Descs[i].Lang < entry.Descs[j].Lang
	})
	return entry, true
}

// Properties returns the flat key/value view of the snapshot for lang.
// Keys without a description for lang are left out.
func (s *Snapshot) Properties(lang string) map[string]string {
	props := make(map[string]string, len(s.entries))
	for key, descs := range s.entries {
		if v, ok := descs[lang]; ok {
			props[key] = v
		}
	}
	return props
}
