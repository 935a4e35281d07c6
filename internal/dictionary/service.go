package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"time"

	"golang.org/x/text/language"

	"github.com/at-ishikawa/langdict/internal/bundle"
)

var (
	// DefaultLanguages are the languages bundles are loaded for unless configured otherwise.
	DefaultLanguages = []string{"en", "da"}
	// DefaultBundles are the base names of the bundles loaded at start-up.
	DefaultBundles = []string{"web", "message", "pdf", "mail", "template"}
)

// LoadResult summarizes a bundle load over several (base name, language) pairs.
type LoadResult struct {
	// Persisted is the number of entries written.
	Persisted int
	// Reconciled is the number of pairs that were loaded and reconciled.
	Reconciled int
	// Missing lists the resource names that do not exist.
	Missing []string
	// Failures holds the errors of pairs that could not be loaded or stored.
	Failures []error
}

func (r *LoadResult) add(other *LoadResult) {
	r.Persisted += other.Persisted
	r.Reconciled += other.Reconciled
	r.Missing = append(r.Missing, other.Missing...)
	r.Failures = append(r.Failures, other.Failures...)
}

// Service is the entry point to the dictionaries: cached reads, guarded
// mutations and bundle loading.
type Service struct {
	store       Store
	loader      bundle.Loader
	cache       *Cache
	guard       *Guard
	merger      *Merger
	logger      *slog.Logger
	languages   []string
	bundleNames []string
	prewarm     bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLanguages sets the languages bundles are loaded for.
func WithLanguages(languages ...string) Option {
	return func(s *Service) {
		s.languages = languages
	}
}

// WithDefaultBundles sets the base names loaded by LoadDefaultBundles.
func WithDefaultBundles(names ...string) Option {
	return func(s *Service) {
		s.bundleNames = names
	}
}

// WithPrewarm makes Start cache every dictionary before loading bundles.
func WithPrewarm(enabled bool) Option {
	return func(s *Service) {
		s.prewarm = enabled
	}
}

func NewService(store Store, loader bundle.Loader, opts ...Option) *Service {
	s := &Service{
		store:       store,
		loader:      loader,
		cache:       NewCache(),
		guard:       NewGuard(),
		logger:      slog.Default(),
		languages:   DefaultLanguages,
		bundleNames: DefaultBundles,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.merger = NewMerger(store, s.cache, s.logger)
	return s
}

// Names returns the names of all stored dictionaries in sorted order.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	names, err := s.store.FindNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.FindNames > %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// FindByName reads a dictionary from the store, bypassing the cache.
// It returns nil when the dictionary does not exist.
func (s *Service) FindByName(ctx context.Context, name string) (*Dictionary, error) {
	d, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("store.FindByName(%s) > %w", name, err)
	}
	return d, nil
}

// CachedDictionary returns the cached snapshot of name, rebuilding it from the
// store on a miss. It returns nil when the dictionary does not exist.
func (s *Service) CachedDictionary(ctx context.Context, name string) (*Snapshot, error) {
	return s.cache.GetOrBuild(ctx, name, s.buildSnapshot)
}

func (s *Service) buildSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	d, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("store.FindByName(%s) > %w", name, err)
	}
	if d == nil {
		return nil, nil
	}
	return NewSnapshot(d), nil
}

// Value returns the description of key in lang. A dictionary that cannot be
// read is reported as absent.
func (s *Service) Value(ctx context.Context, name, lang, key string) (string, bool) {
	snapshot, err := s.CachedDictionary(ctx, name)
	if err != nil {
		s.logger.Warn("failed to read dictionary",
			slog.String("dictionary", name),
			slog.Any("error", err),
		)
		return "", false
	}
	if snapshot == nil {
		return "", false
	}
	return snapshot.Value(lang, key)
}

// Properties merges the descriptions in lang of the given dictionaries into one
// map. Later names win on key collisions; unknown names are ignored.
func (s *Service) Properties(ctx context.Context, names []string, lang string) (map[string]string, error) {
	props := make(map[string]string)
	for _, name := range names {
		snapshot, err := s.CachedDictionary(ctx, name)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			continue
		}
		maps.Copy(props, snapshot.Properties(lang))
	}
	return props, nil
}

// ResourceBundle returns a lookup object for lang over the given dictionaries.
func (s *Service) ResourceBundle(ctx context.Context, names []string, lang string) (*ResourceBundle, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("language.Parse(%s) > %w", lang, err)
	}
	props, err := s.Properties(ctx, names, lang)
	if err != nil {
		return nil, err
	}
	return newResourceBundle(tag, props), nil
}

// CreateEntry adds a new entry to an existing dictionary. Blank descriptions
// are dropped and at least one description must remain.
func (s *Service) CreateEntry(ctx context.Context, name string, entry *Entry) (*Entry, error) {
	var created *Entry
	err := s.guard.Exclusive(ctx, func(ctx context.Context) error {
		d, err := s.store.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("store.FindByName(%s) > %w", name, err)
		}
		if d == nil {
			return fmt.Errorf("dictionary %q: %w", name, ErrNotFound)
		}
		if _, ok := d.Entries[entry.Key]; ok {
			return fmt.Errorf("entry %q of dictionary %q: %w", entry.Key, name, ErrConflict)
		}

		candidate := d.CreateEntry(entry.Key)
		candidate.CopyDescsAndRemoveBlanks(entry.Descs)
		if err := candidate.Validate(); err != nil {
			return err
		}
		if err := s.store.SaveEntries(ctx, d, candidate); err != nil {
			return fmt.Errorf("store.SaveEntries(%s) > %w", name, err)
		}

		s.cache.Invalidate(name)
		created = candidate.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateEntry copies the non-blank descriptions of entry onto the stored entry
// with the same key. Languages not mentioned keep their value.
func (s *Service) UpdateEntry(ctx context.Context, name string, entry *Entry) (*Entry, error) {
	var updated *Entry
	err := s.guard.Exclusive(ctx, func(ctx context.Context) error {
		d, err := s.store.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("store.FindByName(%s) > %w", name, err)
		}
		if d == nil {
			return fmt.Errorf("dictionary %q: %w", name, ErrNotFound)
		}
		original, ok := d.Entries[entry.Key]
		if !ok {
			return fmt.Errorf("entry %q of dictionary %q: %w", entry.Key, name, ErrNotFound)
		}

		candidate := original.Clone()
		candidate.CopyDescsAndRemoveBlanks(entry.Descs)
		if err := candidate.Validate(); err != nil {
			return err
		}
		if err := s.store.SaveEntries(ctx, d, candidate); err != nil {
			return fmt.Errorf("store.SaveEntries(%s) > %w", name, err)
		}

		s.cache.Invalidate(name)
		updated = candidate.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes the entry key and reports whether it existed.
func (s *Service) DeleteEntry(ctx context.Context, name, key string) (bool, error) {
	var removed bool
	err := s.guard.Exclusive(ctx, func(ctx context.Context) error {
		d, err := s.store.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("store.FindByName(%s) > %w", name, err)
		}
		if d == nil {
			return fmt.Errorf("dictionary %q: %w", name, ErrNotFound)
		}
		entry, ok := d.Entries[key]
		if !ok {
			return nil
		}
		if err := s.store.RemoveEntry(ctx, d, entry); err != nil {
			return fmt.Errorf("store.RemoveEntry(%s, %s) > %w", name, key, err)
		}

		s.cache.Invalidate(name)
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Reconcile applies one bundle to the dictionary name under the catalog lock.
func (s *Service) Reconcile(ctx context.Context, name, lang string, b *bundle.Bundle, mode Mode) (int, error) {
	var persisted int
	err := s.guard.Exclusive(ctx, func(ctx context.Context) error {
		var err error
		persisted, err = s.merger.Reconcile(ctx, name, lang, b, mode)
		return err
	})
	return persisted, err
}

// LoadDefaultBundles loads every configured base name for every configured
// language. Failing pairs are logged and recorded in the result; only a done
// ctx stops the load early.
func (s *Service) LoadDefaultBundles(ctx context.Context, override bool) (*LoadResult, error) {
	t0 := time.Now()
	result := &LoadResult{}
	for _, baseName := range s.bundleNames {
		r, err := s.LoadBundle(ctx, baseName, override)
		if r != nil {
			result.add(r)
		}
		if err != nil {
			return result, err
		}
	}
	s.logger.Info(fmt.Sprintf("Loaded %d resource bundles", result.Reconciled),
		slog.Int("persisted", result.Persisted),
		slog.Int("missing", len(result.Missing)),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("elapsed", time.Since(t0)),
	)
	return result, nil
}

// LoadBundle loads baseName for every configured language into the dictionary
// of the same name.
func (s *Service) LoadBundle(ctx context.Context, baseName string, override bool) (*LoadResult, error) {
	mode := ModeOf(override)
	result := &LoadResult{}
	for _, lang := range s.languages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger := s.logger.With(
			slog.String("bundle", baseName),
			slog.String("lang", lang),
		)

		b, err := s.loader.Load(ctx, baseName, lang)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			if errors.Is(err, bundle.ErrNotFound) {
				logger.Warn("resource bundle is missing")
				result.Missing = append(result.Missing, bundle.ResourceName(baseName, lang))
				continue
			}
			logger.Error("failed to load resource bundle", slog.Any("error", err))
			result.Failures = append(result.Failures, err)
			continue
		}

		persisted, err := s.Reconcile(ctx, baseName, lang, b, mode)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Error("failed to reconcile resource bundle", slog.Any("error", err))
			result.Failures = append(result.Failures, &bundle.ResourceLoadError{
				BaseName: baseName,
				Lang:     lang,
				Err:      err,
			})
			continue
		}
		result.Persisted += persisted
		result.Reconciled++
	}
	return result, nil
}

// Prewarm rebuilds the cache from the store: snapshots of dictionaries that
// no longer exist are dropped and every stored dictionary is cached. It
// returns how many were cached.
func (s *Service) Prewarm(ctx context.Context) (int, error) {
	t0 := time.Now()
	names, err := s.Names(ctx)
	if err != nil {
		return 0, err
	}
	s.cache.Clear()
	var cached int
	for _, name := range names {
		snapshot, err := s.CachedDictionary(ctx, name)
		if err != nil {
			return cached, err
		}
		if snapshot != nil {
			cached++
		}
	}
	s.logger.Info(fmt.Sprintf("Cached %d dictionaries", cached),
		slog.Duration("elapsed", time.Since(t0)),
	)
	return cached, nil
}

// Start prepares the service: it prewarms the cache when enabled and merges the
// default bundles without overriding edited values.
func (s *Service) Start(ctx context.Context) (*LoadResult, error) {
	if s.prewarm {
		if _, err := s.Prewarm(ctx); err != nil {
			return nil, err
		}
	}
	return s.LoadDefaultBundles(ctx, false)
}
