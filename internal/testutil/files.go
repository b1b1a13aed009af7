package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MusicFolder creates a temporary directory containing the given relative
// paths as empty files and returns its path. Parent directories are created
// as needed. Paths ending in "/" create empty directories.
func MusicFolder(t *testing.T, paths ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		WriteFile(t, full, "")
	}
	return root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
