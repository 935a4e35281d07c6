package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const yamlExtension = ".yml"

// yamlDictionary is the file layout of one dictionary.
type yamlDictionary struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// YAMLStore implements Store with one YAML file per dictionary in a directory.
// Files are replaced atomically through a rename.
type YAMLStore struct {
	mu  sync.Mutex
	dir string
}

// NewYAMLStore creates the directory when needed.
func NewYAMLStore(dir string) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	return &YAMLStore{dir: dir}, nil
}

func (s *YAMLStore) path(name string) string {
	return filepath.Join(s.dir, name+yamlExtension)
}

func (s *YAMLStore) FindNames(ctx context.Context) ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir > %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), yamlExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(f.Name(), yamlExtension))
	}
	sort.Strings(names)
	return names, nil
}

func (s *YAMLStore) FindByName(ctx context.Context, name string) (*Dictionary, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(name)
}

func (s *YAMLStore) Persist(ctx context.Context, d *Dictionary) error {
	return s.PersistWithEntries(ctx, d)
}

// PersistWithEntries writes the file of a new dictionary with its entries.
func (s *YAMLStore) PersistWithEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(d.Name)); err == nil {
		return fmt.Errorf("dictionary %q: %w", d.Name, ErrConflict)
	}
	stored := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		stored[e.Key] = e
	}
	return s.write(d.Name, stored)
}

func (s *YAMLStore) SaveEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read(d.Name)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("dictionary %q is not persisted", d.Name)
	}
	for _, e := range entries {
		stored.Entries[e.Key] = e.Clone()
	}
	return s.write(d.Name, stored.Entries)
}

func (s *YAMLStore) RemoveEntry(ctx context.Context, d *Dictionary, entry *Entry) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read(d.Name)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}
	delete(stored.Entries, entry.Key)
	return s.write(d.Name, stored.Entries)
}

func (s *YAMLStore) read(name string) (*Dictionary, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.path(name), err)
	}

	var file yamlDictionary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", s.path(name), err)
	}

	d := NewDictionary(name)
	for i := range file.Entries {
		entry := file.Entries[i]
		d.Entries[entry.Key] = &entry
	}
	return d, nil
}

func (s *YAMLStore) write(name string, entries map[string]*Entry) error {
	file := yamlDictionary{
		Name:    name,
		Entries: make([]Entry, 0, len(entries)),
	}
	for _, e := range entries {
		entry := e.Clone()
		sort.Slice(entry.Descs, func(i, j int) bool { return entry.Descs[i].Lang < entry.Descs[j].Lang })
		file.Entries = append(file.Entries, *entry)
	}
	sort.Slice(file.Entries, func(i, j int) bool { return file.Entries[i].Key < file.Entries[j].Key })

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp > %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	encoder := yaml.NewEncoder(tmp)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yaml.Encode(%s) > %w", name, err)
	}
	if err := encoder.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yaml.Encoder.Close > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("os.Rename > %w", err)
	}
	return nil
}

var (
	_ Store             = (*YAMLStore)(nil)
	_ DictionaryCreator = (*YAMLStore)(nil)
)
