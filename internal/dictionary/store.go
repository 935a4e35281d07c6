package dictionary

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=store.go -destination=../mocks/dictionary/mock_store.go -package=mock_dictionary

// Store is the durable storage of dictionaries.
//
// FindByName returns nil without error for an unknown name. Persist inserts
// an empty dictionary. SaveEntries
// inserts or replaces the given entries of d, including all their
// descriptions, as one unit: either every entry is written or none is.
type Store interface {
	FindNames(ctx context.Context) ([]string, error)
	FindByName(ctx context.Context, name string) (*Dictionary, error)
	Persist(ctx context.Context, d *Dictionary) error
	SaveEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error
	RemoveEntry(ctx context.Context, d *Dictionary, entry *Entry) error
}

// DictionaryCreator is implemented by stores that insert a new dictionary
// together with its first entries as one unit.
type DictionaryCreator interface {
	PersistWithEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error
}

// PersistWithEntries inserts the new dictionary d with entries. Stores that
// implement DictionaryCreator write both at once; on other stores a failed
// SaveEntries leaves the empty dictionary behind.
func PersistWithEntries(ctx context.Context, store Store, d *Dictionary, entries ...*Entry) error {
	if creator, ok := store.(DictionaryCreator); ok {
		if err := creator.PersistWithEntries(ctx, d, entries...); err != nil {
			return fmt.Errorf("store.PersistWithEntries(%s) > %w", d.Name, err)
		}
		return nil
	}
	if err := store.Persist(ctx, d); err != nil {
		return fmt.Errorf("store.Persist(%s) > %w", d.Name, err)
	}
	if err := store.SaveEntries(ctx, d, entries...); err != nil {
		return fmt.Errorf("store.SaveEntries(%s) > %w", d.Name, err)
	}
	return nil
}
