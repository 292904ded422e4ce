// Package topic stores per-topic metadata records in Pebble. Topics are
// created lazily on first publish or subscribe; EnsureTopic is idempotent.
package topic

import (
	"encoding/json"
	"time"

	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
)

// Meta holds topic metadata and optional retention overrides.
type Meta struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"createdAtMs"`
	// MaxAgeMs trims entries older than this age when >0.
	MaxAgeMs int64 `json:"maxAgeMs,omitempty"`
	// MaxBytes approximates a total-bytes cap for the topic log when >0.
	MaxBytes int64 `json:"maxBytes,omitempty"`
}

var topicMetaPrefix = []byte("topicmeta/")

func metaKey(name string) []byte {
	k := make([]byte, 0, len(topicMetaPrefix)+len(name))
	k = append(k, topicMetaPrefix...)
	k = append(k, name...)
	return k
}

// EnsureTopic creates a topic meta record if absent, returning the effective
// meta. Idempotent: returns the existing record when already present.
func EnsureTopic(db *pebblestore.DB, name string) (Meta, error) {
	key := metaKey(name)
	if b, err := db.Get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return m, nil
		}
		// corrupted record: rewrite below
	}
	m := Meta{Name: name, CreatedAtMs: time.Now().UnixMilli()}
	bytes, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.Set(key, bytes); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// Update persists new metadata for an existing topic.
func Update(db *pebblestore.DB, m Meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return db.Set(metaKey(m.Name), b)
}

// List returns all known topic records in lexical name order.
func List(db *pebblestore.DB) ([]Meta, error) {
	iter, err := db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var metas []Meta
	for ok := iter.SeekGE(topicMetaPrefix); ok && iter.Valid(); ok = iter.Next() {
		key := iter.Key()
		if len(key) < len(topicMetaPrefix) || string(key[:len(topicMetaPrefix)]) != string(topicMetaPrefix) {
			break
		}
		var m Meta
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			// fall back to the key for unreadable records
			m = Meta{Name: string(key[len(topicMetaPrefix):])}
		}
		metas = append(metas, m)
	}
	return metas, nil
}
