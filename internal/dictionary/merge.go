package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/langdict/internal/bundle"
)

// Mode selects how a bundle is reconciled with the stored dictionary.
type Mode int

const (
	// ModeMerge only adds descriptions that are missing for the bundle language.
	ModeMerge Mode = iota
	// ModeOverride replaces the descriptions of every bundle key.
	ModeOverride
)

func (m Mode) String() string {
	switch m {
	case ModeMerge:
		return "merge"
	case ModeOverride:
		return "override"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeOf returns ModeOverride when override is set, ModeMerge otherwise.
func ModeOf(override bool) Mode {
	if override {
		return ModeOverride
	}
	return ModeMerge
}

// Merger reconciles resource bundles with the stored dictionaries.
type Merger struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
}

func NewMerger(store Store, cache *Cache, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Reconcile applies the bundle of lang to the dictionary name and returns the
// number of entries written. The caller must hold the catalog lock.
//
// In merge mode a key is skipped when its entry already has a description for
// lang, so edited values are kept. In override mode every key is written. The
// dictionary and its entries are created as needed. Keys whose entry would end
// up without any non-blank description are skipped. The cache entry of name is
// invalidated once when anything was written.
func (m *Merger) Reconcile(ctx context.Context, name, lang string, b *bundle.Bundle, mode Mode) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if b.Len() == 0 {
		return 0, nil
	}
	t0 := time.Now()

	d, err := m.store.FindByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("store.FindByName(%s) > %w", name, err)
	}
	isNew := d == nil
	if isNew {
		d = NewDictionary(name)
	}

	var changed []*Entry
	for _, key := range b.Keys() {
		value, _ := b.Get(key)

		original, exists := d.Entries[key]
		if exists && mode == ModeMerge && original.Desc(lang) != nil {
			continue
		}

		var entry *Entry
		if exists {
			entry = original.Clone()
		} else {
			entry = d.CreateEntry(key)
		}
		entry.CheckCreateDesc(lang).Value = value

		if err := entry.Validate(); err != nil {
			m.logger.Debug("skipping resource bundle value",
				slog.String("dictionary", name),
				slog.String("lang", lang),
				slog.String("key", key),
				slog.Any("error", err),
			)
			if !exists {
				delete(d.Entries, key)
			}
			continue
		}
		d.Entries[key] = entry
		changed = append(changed, entry)
	}

	if len(changed) == 0 {
		return 0, nil
	}

	if isNew {
		if err := PersistWithEntries(ctx, m.store, d, changed...); err != nil {
			return 0, err
		}
	} else if err := m.store.SaveEntries(ctx, d, changed...); err != nil {
		return 0, fmt.Errorf("store.SaveEntries(%s) > %w", name, err)
	}

	m.cache.Invalidate(name)

	m.logger.Info(fmt.Sprintf("Persisted %d '%s' dictionary entries", len(changed), name),
		slog.String("lang", lang),
		slog.String("mode", mode.String()),
		slog.Duration("elapsed", time.Since(t0)),
	)
	return len(changed), nil
}
