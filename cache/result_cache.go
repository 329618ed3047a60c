// Package cache memoizes the parse+segment output per input file so that
// repeated analysis of unchanged files is free.
//
// Entries are keyed by the composite file identity "name:size:mtimeMillis"
// rather than a content hash, so a file rewritten with all three unchanged
// is served stale. Entries are never evicted and carry no TTL; both are
// deliberate, matching the system this cache is compatible with. The clear
// operation is the manual escape hatch.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"

	"github.com/mkwok/turnstat/logging"
	"github.com/mkwok/turnstat/models"
)

const (
	entryPrefix    = "file:"
	filenamePrefix = "filename:"
)

// Entry is the stored unit: the file's processed data plus write metadata.
// Entries are immutable once written; Set with an existing key overwrites.
type Entry struct {
	FileKey     string             `json:"file_key"`
	Filename    string             `json:"filename"`
	ProcessedAt time.Time          `json:"processed_at"`
	Data        models.SessionData `json:"data"`
}

// Stats reports cache statistics.
type Stats struct {
	EntryCount int64 `json:"entry_count"`
}

// ResultCache is a persistent key-value store over BadgerDB. All failures
// degrade: a failed Get is a miss, a failed Set is logged by the caller and
// the fresh result is still used.
type ResultCache struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// DefaultDir returns the default cache directory.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".turnstat", "cache")
	}
	return filepath.Join(homeDir, ".cache", "turnstat", "badger")
}

// Open opens (or creates) the result cache at dir. Opening is idempotent at
// the process level: one cache serves a whole pipeline run and lives until
// the process exits or Close is called.
func Open(dir string) (*ResultCache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts = opts.WithCompression(options.Snappy)
	opts = opts.WithLogger(&badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &ResultCache{db: db}, nil
}

// Get retrieves the processed data for a file key. Any failure, including a
// corrupt stored value, is reported as a miss.
func (rc *ResultCache) Get(fileKey string) (models.SessionData, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.closed {
		return models.SessionData{}, false
	}

	var entry Entry
	err := rc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(entryPrefix + fileKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return sonic.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			logging.LogWarnf("cache get failed for %s, treating as miss: %v", fileKey, err)
		}
		return models.SessionData{}, false
	}

	return entry.Data, true
}

// Set upserts the processed data for a file key and maintains the filename
// secondary index.
func (rc *ResultCache) Set(fileKey, filename string, data models.SessionData) error {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.closed {
		return fmt.Errorf("cache is closed")
	}

	entry := Entry{
		FileKey:     fileKey,
		Filename:    filename,
		ProcessedAt: time.Now(),
		Data:        data,
	}
	value, err := sonic.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return rc.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(entryPrefix+fileKey), value); err != nil {
			return err
		}
		// Auxiliary filename index; not required for get/set correctness.
		return txn.Set([]byte(filenamePrefix+filename), []byte(fileKey))
	})
}

// Clear removes all cached entries.
func (rc *ResultCache) Clear() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return fmt.Errorf("cache is closed")
	}

	return rc.db.DropAll()
}

// Stats counts stored entries, excluding index keys.
func (rc *ResultCache) Stats() (Stats, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.closed {
		return Stats{}, fmt.Errorf("cache is closed")
	}

	var count int64
	err := rc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(entryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count cache entries: %w", err)
	}

	return Stats{EntryCount: count}, nil
}

// Close closes the underlying database. Safe to call more than once.
func (rc *ResultCache) Close() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return nil
	}
	rc.closed = true
	return rc.db.Close()
}

// badgerLogger routes badger's own logging through the leveled logger,
// dropping its info/debug chatter.
type badgerLogger struct{}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	logging.LogErrorf("badger: "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	logging.LogWarnf("badger: "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{})  {}
func (l *badgerLogger) Debugf(format string, args ...interface{}) {}
