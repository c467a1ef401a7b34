package testsupport

import (
	"testing"

	"blueprints/internal/config"
	"blueprints/internal/ledger"
)

// MustOpenLedger opens the configured ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	path := cfg.LedgerPath()
	if path == "" {
		t.Fatal("ledger is disabled in test config")
	}
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
