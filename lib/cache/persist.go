package cache

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// PersistedEntry is the on-disk layout for a snapshotted cache entry.
type PersistedEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt int64           `json:"createdAt"`
	ExpiresAt int64           `json:"expiresAt"`
}

// Snapshot writes every live entry to the badger store so a restart
// can resume with a warm cache. Expired entries are skipped.
func Snapshot[T any](c *Cache[T], db *badger.DB) error {
	c.mu.Lock()
	now := c.now()
	snapshot := make([]PersistedEntry, 0, len(c.entries))
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			continue
		}
		value, err := json.Marshal(e.value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		snapshot = append(snapshot, PersistedEntry{
			Key:       key,
			Value:     value,
			CreatedAt: e.createdAt.UnixMilli(),
			ExpiresAt: e.expiresAt.UnixMilli(),
		})
	}
	c.mu.Unlock()

	return db.Update(func(tx *badger.Txn) error {
		for _, persisted := range snapshot {
			serialized, err := json.Marshal(persisted)
			if err != nil {
				return err
			}
			err = tx.Set([]byte(persisted.Key), serialized)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore loads snapshotted entries back into the cache, dropping
// anything that expired while the process was down.
func Restore[T any](c *Cache[T], db *badger.DB) error {
	return db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		now := c.now()
		for it.Rewind(); it.Valid(); it.Next() {
			serialized, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var persisted PersistedEntry
			err = json.Unmarshal(serialized, &persisted)
			if err != nil {
				return err
			}
			expiresAt := time.UnixMilli(persisted.ExpiresAt)
			if now.After(expiresAt) {
				continue
			}

			var value T
			err = json.Unmarshal(persisted.Value, &value)
			if err != nil {
				return err
			}

			c.mu.Lock()
			c.entries[persisted.Key] = entry[T]{
				value:     value,
				createdAt: time.UnixMilli(persisted.CreatedAt),
				expiresAt: expiresAt,
			}
			c.mu.Unlock()
		}
		return nil
	})
}
