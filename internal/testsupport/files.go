package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mapwatch/internal/roster"
)

// WriteFile fills the target path with the given content, creating
// parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MustRoster builds an in-memory roster for tests.
func MustRoster(t testing.TB, units ...roster.Unit) *roster.Roster {
	t.Helper()

	if len(units) == 0 {
		units = []roster.Unit{
			{Name: "MAHROUS", Leader: "Ahmed", Aliases: []string{"mahros", "team 3"}},
			{Name: "ALTAIRAT", Aliases: []string{"altayrat"}},
		}
	}
	r, err := roster.New(units)
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}
	return r
}
