package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parents) holding content and returns path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	return writeMode(t, path, content, 0o644)
}

// WriteExecutable is WriteFile for scripts that must be runnable.
func WriteExecutable(t testing.TB, path, content string) string {
	t.Helper()
	return writeMode(t, path, content, 0o755)
}

func writeMode(t testing.TB, path, content string, mode os.FileMode) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
