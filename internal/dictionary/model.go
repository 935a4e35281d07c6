// Package dictionary stores, caches and reconciles localized key/value dictionaries.
package dictionary

import (
	"fmt"
	"sort"
	"strings"
)

// Dictionary is a named catalog of translation entries keyed by entry key.
type Dictionary struct {
	ID      int64             `db:"id" yaml:"-"`
	Name    string            `db:"name" yaml:"name"`
	Entries map[string]*Entry `db:"-" yaml:"-"`
}

// NewDictionary returns an empty, not yet persisted dictionary.
func NewDictionary(name string) *Dictionary {
	return &Dictionary{
		Name:    name,
		Entries: make(map[string]*Entry),
	}
}

// ValidateName reports whether name can be used as a dictionary name. Names
// become file names in some stores, so path elements are rejected.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("dictionary name %q: %w", name, ErrValidation)
	}
	return nil
}

func (d *Dictionary) setID(id int64) {
	d.ID = id
	for _, e := range d.Entries {
		e.DictionaryID = id
	}
}

// CreateEntry adds an empty entry for key and returns it.
func (d *Dictionary) CreateEntry(key string) *Entry {
	if d.Entries == nil {
		d.Entries = make(map[string]*Entry)
	}
	entry := &Entry{
		DictionaryID: d.ID,
		Key:          key,
	}
	d.Entries[key] = entry
	return entry
}

// Keys returns the entry keys in sorted order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for k := range d.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry is a single translatable key with at most one description per language.
type Entry struct {
	ID           int64  `db:"id" yaml:"-" json:"-"`
	DictionaryID int64  `db:"dictionary_id" yaml:"-" json:"-"`
	Key          string `db:"entry_key" yaml:"key" json:"key"`
	Descs        []Desc `db:"-" yaml:"descs" json:"descs"`
}

// Desc is the localized value of an entry for one language.
type Desc struct {
	EntryID int64  `db:"entry_id" yaml:"-" json:"-"`
	Lang    string `db:"lang" yaml:"lang" json:"lang"`
	Value   string `db:"value" yaml:"value" json:"value"`
}

// Defined reports whether the description carries a non-blank value.
func (d Desc) Defined() bool {
	return strings.TrimSpace(d.Value) != ""
}

// Desc returns the description for lang, or nil.
func (e *Entry) Desc(lang string) *Desc {
	for i := range e.Descs {
		if e.Descs[i].Lang == lang {
			return &e.Descs[i]
		}
	}
	return nil
}

// CheckCreateDesc returns the description for lang, adding an empty one when absent.
func (e *Entry) CheckCreateDesc(lang string) *Desc {
	if desc := e.Desc(lang); desc != nil {
		return desc
	}
	e.Descs = append(e.Descs, Desc{EntryID: e.ID, Lang: lang})
	return &e.Descs[len(e.Descs)-1]
}

// RemoveBlankDescs drops descriptions without a value.
func (e *Entry) RemoveBlankDescs() {
	descs := e.Descs[:0]
	for _, d := range e.Descs {
		if d.Defined() {
			descs = append(descs, d)
		}
	}
	e.Descs = descs
}

// CopyDescsAndRemoveBlanks copies the defined descriptions of descs over the entry's own.
// Blank descriptions in descs are ignored.
func (e *Entry) CopyDescsAndRemoveBlanks(descs []Desc) {
	for _, d := range descs {
		if !d.Defined() {
			continue
		}
		e.CheckCreateDesc(d.Lang).Value = d.Value
	}
	e.RemoveBlankDescs()
}

// HasDefinedDesc reports whether at least one description is non-blank.
func (e *Entry) HasDefinedDesc() bool {
	for _, d := range e.Descs {
		if d.Defined() {
			return true
		}
	}
	return false
}

// Validate checks the invariants every committed entry must satisfy.
func (e *Entry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("%w: entry key is empty", ErrValidation)
	}
	seen := make(map[string]bool, len(e.Descs))
	for _, d := range e.Descs {
		if d.Lang == "" {
			return fmt.Errorf("%w: entry %q has a description without language", ErrValidation, e.Key)
		}
		if seen[d.Lang] {
			return fmt.Errorf("%w: entry %q has several descriptions for %q", ErrValidation, e.Key, d.Lang)
		}
		seen[d.Lang] = true
	}
	if !e.HasDefinedDesc() {
		return fmt.Errorf("%w: no localized values defined for entry %q", ErrValidation, e.Key)
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Descs = make([]Desc, len(e.Descs))
	copy(c.Descs, e.Descs)
	return &c
}

// setIDs propagates the persisted entry ID to the descriptions.
func (e *Entry) setIDs(dictionaryID, entryID int64) {
	e.DictionaryID = dictionaryID
	e.ID = entryID
	for i := range e.Descs {
		e.Descs[i].EntryID = entryID
	}
}
