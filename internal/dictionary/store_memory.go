package dictionary

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps dictionaries in process memory. Callers get copies, so
// changes become visible only through the Store methods.
type MemoryStore struct {
	mu           sync.Mutex
	dictionaries map[string]*Dictionary
	nextID       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dictionaries: make(map[string]*Dictionary)}
}

func (s *MemoryStore) FindNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.dictionaries))
	for name := range s.dictionaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) FindByName(ctx context.Context, name string) (*Dictionary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.dictionaries[name]
	if !ok {
		return nil, nil
	}
	d := &Dictionary{ID: stored.ID, Name: stored.Name, Entries: make(map[string]*Entry, len(stored.Entries))}
	for k, e := range stored.Entries {
		d.Entries[k] = e.Clone()
	}
	return d, nil
}

func (s *MemoryStore) Persist(ctx context.Context, d *Dictionary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dictionaries[d.Name]; ok {
		return fmt.Errorf("dictionary %q: %w", d.Name, ErrConflict)
	}
	s.nextID++
	d.ID = s.nextID
	s.dictionaries[d.Name] = &Dictionary{ID: d.ID, Name: d.Name, Entries: make(map[string]*Entry)}
	return nil
}

func (s *MemoryStore) PersistWithEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dictionaries[d.Name]; ok {
		return fmt.Errorf("dictionary %q: %w", d.Name, ErrConflict)
	}
	s.nextID++
	d.setID(s.nextID)
	stored := &Dictionary{ID: d.ID, Name: d.Name, Entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		s.nextID++
		e.setIDs(stored.ID, s.nextID)
		stored.Entries[e.Key] = e.Clone()
	}
	s.dictionaries[d.Name] = stored
	return nil
}

func (s *MemoryStore) SaveEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.dictionaries[d.Name]
	if !ok {
		return fmt.Errorf("dictionary %q is not persisted", d.Name)
	}
	for _, e := range entries {
		if e.ID == 0 {
			s.nextID++
			e.setIDs(stored.ID, s.nextID)
		}
		stored.Entries[e.Key] = e.Clone()
	}
	return nil
}

func (s *MemoryStore) RemoveEntry(ctx context.Context, d *Dictionary, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.dictionaries[d.Name]; ok {
		delete(stored.Entries, entry.Key)
	}
	return nil
}

var (
	_ Store             = (*MemoryStore)(nil)
	_ DictionaryCreator = (*MemoryStore)(nil)
)
