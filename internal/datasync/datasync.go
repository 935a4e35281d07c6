// Package datasync copies dictionaries between stores, e.g. from YAML files
// into a database and back.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/langdict/internal/dictionary"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	DictionariesNew int
	EntriesNew      int
	EntriesSkipped  int
	EntriesUpdated  int
	EntriesInvalid  int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer reads dictionaries from one store and writes them to another.
type Importer struct {
	source dictionary.Store
	target dictionary.Store
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(source, target dictionary.Store, writer io.Writer) *Importer {
	return &Importer{
		source: source,
		target: target,
		writer: writer,
	}
}

// Import copies every dictionary of the source store. Entries missing in the
// target are created. Entries that differ are updated only with
// UpdateExisting; their other languages are kept.
func (imp *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	names, err := imp.source.FindNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.FindNames() > %w", err)
	}
	for _, name := range names {
		if err := imp.importDictionary(ctx, name, opts, &result); err != nil {
			return nil, fmt.Errorf("importDictionary(%s) > %w", name, err)
		}
	}
	return &result, nil
}

func (imp *Importer) importDictionary(ctx context.Context, name string, opts ImportOptions, result *ImportResult) error {
	src, err := imp.source.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("source.FindByName() > %w", err)
	}
	if src == nil {
		return nil
	}

	dst, err := imp.target.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("target.FindByName() > %w", err)
	}
	if dst == nil {
		dst = dictionary.NewDictionary(name)
		if !opts.DryRun {
			if err := imp.target.Persist(ctx, dst); err != nil {
				return fmt.Errorf("target.Persist() > %w", err)
			}
		}
		fmt.Fprintf(imp.writer, "[NEW]  dictionary %s\n", name)
		result.DictionariesNew++
	}

	var changed []*dictionary.Entry
	for _, key := range src.Keys() {
		entry := src.Entries[key]
		if err := entry.Validate(); err != nil {
			fmt.Fprintf(imp.writer, "  [WARN]  %s: %v\n", key, err)
			result.EntriesInvalid++
			continue
		}

		existing, ok := dst.Entries[key]
		if !ok {
			created := dst.CreateEntry(key)
			created.CopyDescsAndRemoveBlanks(entry.Descs)
			changed = append(changed, created)
			fmt.Fprintf(imp.writer, "  [NEW]  %s\n", key)
			result.EntriesNew++
			continue
		}

		updated := existing.Clone()
		updated.CopyDescsAndRemoveBlanks(entry.Descs)
		if sameDescs(existing, updated) {
			result.EntriesSkipped++
			continue
		}
		if !opts.UpdateExisting {
			fmt.Fprintf(imp.writer, "  [SKIP]  %s\n", key)
			result.EntriesSkipped++
			continue
		}
		changed = append(changed, updated)
		fmt.Fprintf(imp.writer, "  [UPDATE]  %s\n", key)
		result.EntriesUpdated++
	}

	if opts.DryRun || len(changed) == 0 {
		return nil
	}
	if err := imp.target.SaveEntries(ctx, dst, changed...); err != nil {
		return fmt.Errorf("target.SaveEntries() > %w", err)
	}
	return nil
}

func sameDescs(a, b *dictionary.Entry) bool {
	if len(a.Descs) != len(b.Descs) {
		return false
	}
	for _, desc := range a.Descs {
		other := b.Desc(desc.Lang)
		if other == nil || other.Value != desc.Value {
			return false
		}
	}
	return true
}
