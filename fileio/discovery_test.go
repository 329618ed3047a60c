package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCandidateFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"valid uuid stem", "3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.jsonl", true},
		{"uppercase uuid accepted", "3F8A2B1C-4D5E-6F70-8A9B-0C1D2E3F4A5B.jsonl", true},
		{"full path", "/some/dir/3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.jsonl", true},
		{"wrong extension", "3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.json", false},
		{"no extension", "3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b", false},
		{"non-uuid stem", "notes.jsonl", false},
		{"short uuid", "3f8a2b1c.jsonl", false},
		{"braced uuid rejected", "{3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b}.jsonl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidateFile(tt.filename))
		})
	}
}

func TestFilterCandidates(t *testing.T) {
	paths := []string{
		"3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.jsonl",
		"readme.md",
		"notes.jsonl",
	}

	admitted, rejected := FilterCandidates(paths)

	assert.Len(t, admitted, 1)
	assert.Equal(t, 2, rejected)
}

func TestDiscoverFiles_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))

	wantFiles := []string{
		filepath.Join(dir, "3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.jsonl"),
		filepath.Join(sub, "9c0d1e2f-3a4b-5c6d-7e8f-9a0b1c2d3e4f.jsonl"),
	}
	for _, f := range wantFiles {
		require.NoError(t, os.WriteFile(f, []byte("{}\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0644))

	files, err := DiscoverFiles(dir)

	require.NoError(t, err)
	assert.ElementsMatch(t, wantFiles, files)
}

func TestDiscoverFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "3f8a2b1c-4d5e-6f70-8a9b-0c1d2e3f4a5b.jsonl")
	require.NoError(t, os.WriteFile(file, []byte("{}\n"), 0644))

	files, err := DiscoverFiles(file)

	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestDiscoverFiles_MissingPath(t *testing.T) {
	_, err := DiscoverFiles(filepath.Join(t.TempDir(), "absent"))

	assert.Error(t, err)
}
