package testsupport

import (
	"context"
	"testing"

	"vidcheck/internal/config"
	"vidcheck/internal/verdictstore"
)

// MustOpenStore opens the SQLite verdict store under cfg's cache directory,
// inserts any seed verdicts and closes the store when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config, seed ...verdictstore.Verdict) *verdictstore.SQLiteStore {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store, err := verdictstore.OpenSQLite(context.Background(), cfg.CacheDBPath())
	if err != nil {
		t.Fatalf("verdictstore.OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for _, v := range seed {
		if err := store.Put(context.Background(), v); err != nil {
			t.Fatalf("seed verdict %s: %v", v.Key, err)
		}
	}
	return store
}
