package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/langdict/internal/database"
)

// DBStore implements Store on MySQL or SQLite through sqlx.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// FindNames returns all dictionary names.
func (s *DBStore) FindNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT name FROM dictionaries ORDER BY name"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(dictionary names) > %w", err)
	}
	return names, nil
}

// FindByName returns the dictionary with its entries and descriptions, or nil if not found.
// All rows are read in one read-only transaction, so a concurrent SaveEntries is
// seen either completely or not at all.
func (s *DBStore) FindByName(ctx context.Context, name string) (*Dictionary, error) {
	var found *Dictionary
	err := database.RunInReadTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		found, err = findByName(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func findByName(ctx context.Context, tx *sqlx.Tx, name string) (*Dictionary, error) {
	var d Dictionary
	err := tx.GetContext(ctx, &d, "SELECT id, name FROM dictionaries WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tx.GetContext(dictionary) > %w", err)
	}
	d.Entries = make(map[string]*Entry)

	var entries []*Entry
	if err := tx.SelectContext(ctx, &entries,
		"SELECT id, dictionary_id, entry_key FROM dictionary_entries WHERE dictionary_id = ? ORDER BY id", d.ID); err != nil {
		return nil, fmt.Errorf("tx.SelectContext(dictionary_entries) > %w", err)
	}
	if len(entries) == 0 {
		return &d, nil
	}

	entryIDs := make([]int64, len(entries))
	entryMap := make(map[int64]*Entry, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.ID
		entryMap[e.ID] = e
		d.Entries[e.Key] = e
	}

	query, args, err := sqlx.In("SELECT entry_id, lang, value FROM dictionary_entry_descs WHERE entry_id IN (?) ORDER BY entry_id, lang", entryIDs)
	if err != nil {
		return nil, fmt.Errorf("build dictionary_entry_descs query: %w", err)
	}
	var descs []Desc
	if err := tx.SelectContext(ctx, &descs, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("tx.SelectContext(dictionary_entry_descs) > %w", err)
	}
	for _, desc := range descs {
		if e, ok := entryMap[desc.EntryID]; ok {
			e.Descs = append(e.Descs, desc)
		}
	}
	return &d, nil
}

// Persist inserts the dictionary row and sets d.ID.
func (s *DBStore) Persist(ctx context.Context, d *Dictionary) error {
	result, err := s.db.ExecContext(ctx, "INSERT INTO dictionaries (name) VALUES (?)", d.Name)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert dictionary) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get dictionary insert ID: %w", err)
	}
	d.setID(id)
	return nil
}

// PersistWithEntries inserts the dictionary row and the given entries in one
// transaction. Nothing is written when any insert fails.
func (s *DBStore) PersistWithEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	var dictionaryID int64
	var ids []int64
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "INSERT INTO dictionaries (name) VALUES (?)", d.Name)
		if err != nil {
			return fmt.Errorf("insert dictionary %q: %w", d.Name, err)
		}
		if dictionaryID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("get dictionary insert ID: %w", err)
		}
		ids, err = saveEntries(ctx, tx, dictionaryID, entries)
		return err
	})
	if err != nil {
		return err
	}

	d.setID(dictionaryID)
	for i, e := range entries {
		e.setIDs(dictionaryID, ids[i])
	}
	return nil
}

// SaveEntries inserts new entries, then replaces the descriptions of every given entry,
// all in a single transaction.
func (s *DBStore) SaveEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if d.ID == 0 {
		return fmt.Errorf("dictionary %q is not persisted", d.Name)
	}

	// Entry IDs are assigned inside the transaction and only published on commit.
	var ids []int64
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		ids, err = saveEntries(ctx, tx, d.ID, entries)
		return err
	})
	if err != nil {
		return err
	}

	for i, e := range entries {
		e.setIDs(d.ID, ids[i])
	}
	return nil
}

// saveEntries writes entries of the dictionary and returns their IDs in order.
func saveEntries(ctx context.Context, tx *sqlx.Tx, dictionaryID int64, entries []*Entry) ([]int64, error) {
	ids := make([]int64, len(entries))
	if len(entries) == 0 {
		return ids, nil
	}
	for i, e := range entries {
		ids[i] = e.ID
		if ids[i] != 0 {
			continue
		}
		result, err := tx.ExecContext(ctx,
			"INSERT INTO dictionary_entries (dictionary_id, entry_key) VALUES (?, ?)", dictionaryID, e.Key)
		if err != nil {
			return nil, fmt.Errorf("insert dictionary entry %q: %w", e.Key, err)
		}
		if ids[i], err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("get dictionary entry insert ID: %w", err)
		}
	}

	query, args, err := sqlx.In("DELETE FROM dictionary_entry_descs WHERE entry_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build delete descs query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("delete dictionary entry descs: %w", err)
	}

	var descArgs []interface{}
	var descCount int
	for i, e := range entries {
		descs := append([]Desc(nil), e.Descs...)
		sort.Slice(descs, func(a, b int) bool { return descs[a].Lang < descs[b].Lang })
		for _, desc := range descs {
			descArgs = append(descArgs, ids[i], desc.Lang, desc.Value)
			descCount++
		}
	}
	if descCount > 0 {
		q := buildMultiRowInsert("dictionary_entry_descs", []string{"entry_id", "lang", "value"}, descCount)
		if _, err := tx.ExecContext(ctx, q, descArgs...); err != nil {
			return nil, fmt.Errorf("insert dictionary entry descs: %w", err)
		}
	}
	return ids, nil
}

// RemoveEntry deletes the entry and its descriptions.
func (s *DBStore) RemoveEntry(ctx context.Context, d *Dictionary, entry *Entry) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM dictionary_entry_descs WHERE entry_id = ?", entry.ID); err != nil {
			return fmt.Errorf("delete dictionary entry descs: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM dictionary_entries WHERE id = ? AND dictionary_id = ?", entry.ID, d.ID); err != nil {
			return fmt.Errorf("delete dictionary entry %q: %w", entry.Key, err)
		}
		return nil
	})
}

// buildMultiRowInsert builds a multi-row INSERT query.
func buildMultiRowInsert(table string, columns []string, rowCount int) string {
	placeholder := "(" + strings.Repeat("?, ", len(columns)-1) + "?)"
	values := strings.Repeat(placeholder+", ", rowCount-1) + placeholder
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), values)
}

var (
	_ Store             = (*DBStore)(nil)
	_ DictionaryCreator = (*DBStore)(nil)
)
