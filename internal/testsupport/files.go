package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes contents to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTriggerRules writes a trigger rule file into the config's trigger
// directory and returns its path.
func WriteTriggerRules(t testing.TB, dir, name, rules string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteFile(t, path, rules)
	return path
}
