package reader

import (
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/twmb/murmur3"
	bolt "go.etcd.io/bbolt"
)

// Outcome is a diagnostic summary of one Decode call, the unit the
// Reader cache records. It never gates or replaces a decode: AST for a
// loaded app is rebuilt wholesale on every load_app (§3) regardless of
// what this cache holds.
type Outcome struct {
	AppName    string    `json:"app_name"`
	ContentKey uint64    `json:"content_key"`
	Entries    int       `json:"entries"`
	Errors     []string  `json:"errors"`
	DecodedAt  time.Time `json:"decoded_at"`
}

var cacheBucket = []byte("apica_reader_outcomes")

// Cache pairs an in-memory LRU of recent decode outcomes (keyed by a
// murmur3 hash of the raw .apb bytes, so reloading identical content
// is recognisable across apps) with a bbolt-backed last-outcome table
// keyed by app name, so the debug CLI's `apps` command can show "last
// loaded OK" state that survives a runtime restart.
type Cache struct {
	recent *lru.Cache
	db     *bolt.DB
}

// OpenCache opens (creating if absent) the bbolt file at dbPath and
// builds an in-memory LRU holding up to recentSize outcomes.
func OpenCache(dbPath string, recentSize int) (*Cache, error) {
	recent, err := lru.New(recentSize)
	if err != nil {
		return nil, fmt.Errorf("reader cache: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("reader cache: open %s: %w", dbPath, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("reader cache: init bucket: %w", err)
	}

	return &Cache{recent: recent, db: db}, nil
}

// Close releases the bbolt handle.
func (c *Cache) Close() error { return c.db.Close() }

// ContentKey hashes raw .apb bytes with murmur3/128, folding it to a
// single uint64 — the cache only needs a cheap content fingerprint,
// not collision resistance at cryptographic strength.
func ContentKey(data []byte) uint64 {
	hi, lo := murmur3.Sum128(data)
	return hi ^ lo
}

// Record stores the outcome of decoding appName's raw bytes, both in
// the in-memory LRU (by content key) and in bbolt (by app name, the
// form the debug CLI queries).
func (c *Cache) Record(appName string, data []byte, entries int, errs []error) Outcome {
	outcome := Outcome{
		AppName:    appName,
		ContentKey: ContentKey(data),
		Entries:    entries,
		DecodedAt:  time.Now(),
	}
	for _, e := range errs {
		outcome.Errors = append(outcome.Errors, e.Error())
	}

	c.recent.Add(outcome.ContentKey, outcome)

	if payload, err := json.Marshal(outcome); err == nil {
		_ = c.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(cacheBucket).Put([]byte(appName), payload)
		})
	}

	return outcome
}

// RecentByContent returns the last recorded outcome for a given raw
// content key, if it is still in the in-memory LRU.
func (c *Cache) RecentByContent(key uint64) (Outcome, bool) {
	v, ok := c.recent.Get(key)
	if !ok {
		return Outcome{}, false
	}
	return v.(Outcome), true
}

// LastOutcome returns the most recent persisted outcome for appName,
// surviving a runtime restart.
func (c *Cache) LastOutcome(appName string) (Outcome, bool) {
	var outcome Outcome
	var found bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(cacheBucket).Get([]byte(appName))
		if payload == nil {
			return nil
		}
		if err := json.Unmarshal(payload, &outcome); err != nil {
			return err
		}
		found = true
		return nil
	})
	return outcome, found
}
