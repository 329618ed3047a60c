package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileKey builds the cache identity string for a file. Name, size, and
// modification time stand in for a content fingerprint: a file rewritten
// with all three unchanged collides with its previous contents. This is a
// documented trade-off, not a content hash.
func FileKey(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s:%d:%d", name, size, modTime.UnixMilli())
}

// FileKeyFor stats path and derives its cache key from the base name.
func FileKeyFor(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return FileKey(filepath.Base(path), info.Size(), info.ModTime()), nil
}
