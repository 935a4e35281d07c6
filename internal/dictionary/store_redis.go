package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Dictionary names are kept in a set and
// each dictionary is a hash from entry key to the JSON object of its descriptions.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a RedisStore from an existing Redis client.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "langdict:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) namesKey() string {
	return s.keyPrefix + "dictionaries"
}

func (s *RedisStore) dictionaryKey(name string) string {
	return s.keyPrefix + "dictionary:" + name
}

func (s *RedisStore) FindNames(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.namesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("client.SMembers > %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) FindByName(ctx context.Context, name string) (*Dictionary, error) {
	exists, err := s.client.SIsMember(ctx, s.namesKey(), name).Result()
	if err != nil {
		return nil, fmt.Errorf("client.SIsMember > %w", err)
	}
	if !exists {
		return nil, nil
	}

	fields, err := s.client.HGetAll(ctx, s.dictionaryKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("client.HGetAll > %w", err)
	}

	d := NewDictionary(name)
	for key, raw := range fields {
		var values map[string]string
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("dictionary %s, entry %s: json.Unmarshal > %w", name, key, err)
		}
		entry := d.CreateEntry(key)
		langs := make([]string, 0, len(values))
		for lang := range values {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			entry.Descs = append(entry.Descs, Desc{Lang: lang, Value: values[lang]})
		}
	}
	return d, nil
}

func (s *RedisStore) Persist(ctx context.Context, d *Dictionary) error {
	if err := s.client.SAdd(ctx, s.namesKey(), d.Name).Err(); err != nil {
		return fmt.Errorf("client.SAdd > %w", err)
	}
	return nil
}

// PersistWithEntries registers the dictionary name and writes its entries in
// one MULTI/EXEC transaction.
func (s *RedisStore) PersistWithEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	encoded, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	key := s.dictionaryKey(d.Name)
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.namesKey(), d.Name)
		for i, e := range entries {
			pipe.HSet(ctx, key, e.Key, encoded[i])
		}
		return nil
	}); err != nil {
		return fmt.Errorf("client.TxPipelined(persist dictionary) > %w", err)
	}
	return nil
}

// SaveEntries writes all entries in one MULTI/EXEC transaction.
func (s *RedisStore) SaveEntries(ctx context.Context, d *Dictionary, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	encoded, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	key := s.dictionaryKey(d.Name)
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, e := range entries {
			pipe.HSet(ctx, key, e.Key, encoded[i])
		}
		return nil
	}); err != nil {
		return fmt.Errorf("client.TxPipelined(save entries) > %w", err)
	}
	return nil
}

// encodeEntries encodes the descriptions of each entry as a JSON object keyed by language.
func encodeEntries(entries []*Entry) ([]string, error) {
	encoded := make([]string, len(entries))
	for i, e := range entries {
		values := make(map[string]string, len(e.Descs))
		for _, desc := range e.Descs {
			values[desc.Lang] = desc.Value
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("entry %s: json.Marshal > %w", e.Key, err)
		}
		encoded[i] = string(raw)
	}
	return encoded, nil
}

func (s *RedisStore) RemoveEntry(ctx context.Context, d *Dictionary, entry *Entry) error {
	if err := s.client.HDel(ctx, s.dictionaryKey(d.Name), entry.Key).Err(); err != nil {
		return fmt.Errorf("client.HDel > %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var (
	_ Store             = (*RedisStore)(nil)
	_ DictionaryCreator = (*RedisStore)(nil)
)
