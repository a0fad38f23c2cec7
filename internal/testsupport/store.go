package testsupport

import (
	"testing"

	"mapwatch/internal/config"
	"mapwatch/internal/store"
)

// MustOpenStore opens a ledger store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg.Paths.DatabaseDir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
