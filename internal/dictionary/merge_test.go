package dictionary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/langdict/internal/bundle"
)

func newBundle(pairs ...string) *bundle.Bundle {
	b := bundle.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], pairs[i+1])
	}
	return b
}

func seedStore(t *testing.T, store Store, name string, entries ...*Entry) {
	t.Helper()
	ctx := context.Background()
	d := NewDictionary(name)
	require.NoError(t, store.Persist(ctx, d))
	if len(entries) > 0 {
		require.NoError(t, store.SaveEntries(ctx, d, entries...))
	}
}

func withoutIDs(descs []Desc) []Desc {
	out := make([]Desc, len(descs))
	for i, d := range descs {
		out[i] = Desc{Lang: d.Lang, Value: d.Value}
	}
	return out
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "merge", ModeMerge.String())
	assert.Equal(t, "override", ModeOverride.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
	assert.Equal(t, ModeOverride, ModeOf(true))
	assert.Equal(t, ModeMerge, ModeOf(false))
}

func TestMerger_Reconcile(t *testing.T) {
	tests := []struct {
		name          string
		seed          []*Entry
		noDictionary  bool
		bundle        *bundle.Bundle
		mode          Mode
		wantPersisted int
		want          map[string][]Desc
	}{
		{
			name:          "creates the dictionary",
			noDictionary:  true,
			bundle:        newBundle("a", "A", "b", "B"),
			mode:          ModeMerge,
			wantPersisted: 2,
			want: map[string][]Desc{
				"a": {{Lang: "en", Value: "A"}},
				"b": {{Lang: "en", Value: "B"}},
			},
		},
		{
			name:          "merge keeps edited values",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "en", Value: "Edited"}}}},
			bundle:        newBundle("a", "A"),
			mode:          ModeMerge,
			wantPersisted: 0,
			want: map[string][]Desc{
				"a": {{Lang: "en", Value: "Edited"}},
			},
		},
		{
			name:          "merge adds missing language to existing entry",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "da", Value: "Dansk"}}}},
			bundle:        newBundle("a", "A"),
			mode:          ModeMerge,
			wantPersisted: 1,
			want: map[string][]Desc{
				"a": {{Lang: "da", Value: "Dansk"}, {Lang: "en", Value: "A"}},
			},
		},
		{
			name:          "merge treats a stored blank description as present",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "da", Value: "Dansk"}, {Lang: "en", Value: ""}}}},
			bundle:        newBundle("a", "A"),
			mode:          ModeMerge,
			wantPersisted: 0,
			want: map[string][]Desc{
				"a": {{Lang: "da", Value: "Dansk"}, {Lang: "en", Value: ""}},
			},
		},
		{
			name:          "override replaces edited values",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "en", Value: "Edited"}, {Lang: "da", Value: "Dansk"}}}},
			bundle:        newBundle("a", "A", "b", "B"),
			mode:          ModeOverride,
			wantPersisted: 2,
			want: map[string][]Desc{
				"a": {{Lang: "en", Value: "A"}, {Lang: "da", Value: "Dansk"}},
				"b": {{Lang: "en", Value: "B"}},
			},
		},
		{
			name:          "blank value for a new key is skipped",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "en", Value: "A"}}}},
			bundle:        newBundle("blank", " ", "b", "B"),
			mode:          ModeMerge,
			wantPersisted: 1,
			want: map[string][]Desc{
				"a": {{Lang: "en", Value: "A"}},
				"b": {{Lang: "en", Value: "B"}},
			},
		},
		{
			name:          "override with a blank value keeps other languages",
			seed:          []*Entry{{Key: "a", Descs: []Desc{{Lang: "en", Value: "A"}, {Lang: "da", Value: "Dansk"}}}},
			bundle:        newBundle("a", ""),
			mode:          ModeOverride,
			wantPersisted: 1,
			want: map[string][]Desc{
				"a": {{Lang: "en", Value: ""}, {Lang: "da", Value: "Dansk"}},
			},
		},
		{
			name:          "empty bundle is a no-op",
			noDictionary:  true,
			bundle:        bundle.New(),
			mode:          ModeOverride,
			wantPersisted: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			if !tt.noDictionary {
				seedStore(t, store, "web", tt.seed...)
			}
			merger := NewMerger(store, NewCache(), nil)

			got, err := merger.Reconcile(ctx, "web", "en", tt.bundle, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPersisted, got)

			d, err := store.FindByName(ctx, "web")
			require.NoError(t, err)
			if tt.want == nil {
				if tt.noDictionary {
					assert.Nil(t, d)
				}
				return
			}
			require.NotNil(t, d)
			require.Len(t, d.Entries, len(tt.want))
			for key, descs := range tt.want {
				require.Contains(t, d.Entries, key)
				assert.Equal(t, descs, withoutIDs(d.Entries[key].Descs), key)
			}
		})
	}
}

func TestMerger_Reconcile_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedStore(t, store, "web", &Entry{Key: "a", Descs: []Desc{{Lang: "en", Value: "A"}}})

	cache := NewCache()
	build := func(ctx context.Context, name string) (*Snapshot, error) {
		d, err := store.FindByName(ctx, name)
		if err != nil || d == nil {
			return nil, err
		}
		return NewSnapshot(d), nil
	}
	_, err := cache.GetOrBuild(ctx, "web", build)
	require.NoError(t, err)

	merger := NewMerger(store, cache, nil)

	// nothing to merge leaves the cached snapshot alone
	n, err := merger.Reconcile(ctx, "web", "en", newBundle("a", "Other"), ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, ok := cache.Get("web")
	assert.True(t, ok)

	n, err = merger.Reconcile(ctx, "web", "en", newBundle("a", "Other"), ModeOverride)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok = cache.Get("web")
	assert.False(t, ok)

	s, err := cache.GetOrBuild(ctx, "web", build)
	require.NoError(t, err)
	v, _ := s.Value("en", "a")
	assert.Equal(t, "Other", v)
}

func TestMerger_Reconcile_RejectsInvalidName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	merger := NewMerger(store, NewCache(), nil)

	_, err := merger.Reconcile(ctx, "../web", "en", newBundle("title", "Title"), ModeMerge)
	assert.ErrorIs(t, err, ErrValidation)

	names, err := store.FindNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
