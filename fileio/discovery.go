package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LogExtension is the only file extension admitted to parsing.
const LogExtension = ".jsonl"

// IsCandidateFile reports whether a filename passes the admission filter:
// the log extension plus a UUID file stem. This is the sole filter applied
// before parsing is attempted.
func IsCandidateFile(name string) bool {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), LogExtension) {
		return false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parsed, err := uuid.Parse(stem)
	if err != nil {
		return false
	}
	// uuid.Parse also accepts urn: and braced forms; the naming convention
	// is the plain hyphenated form only.
	return len(stem) == 36 && parsed.String() == strings.ToLower(stem)
}

// FilterCandidates splits paths into admitted candidates and a count of
// rejected files. Rejections are not errors; they are reported separately
// from parse failures.
func FilterCandidates(paths []string) (admitted []string, rejected int) {
	for _, path := range paths {
		if IsCandidateFile(path) {
			admitted = append(admitted, path)
		} else {
			rejected++
		}
	}
	return admitted, rejected
}

// DiscoverFiles collects log files under path. Directories are walked
// recursively; a single file path is returned as-is when it carries the log
// extension. Admission filtering happens later, in the pipeline.
func DiscoverFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}

	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(path), LogExtension) {
			return []string{path}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !fi.IsDir() && strings.EqualFold(filepath.Ext(walkPath), LogExtension) {
			files = append(files, walkPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}
