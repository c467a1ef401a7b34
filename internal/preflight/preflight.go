package preflight

import (
	"context"
	"path/filepath"

	"blueprints/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Repository root", cfg.Paths.RepositoryRoot))
	results = append(results, CheckDirectoryAccess("Blueprints tree", cfg.BlueprintsPath()))
	results = append(results, CheckDirectoryAccess("Lock file directory", filepath.Dir(cfg.LockPath())))
	results = append(results, CheckRawBaseURL(cfg.Catalog.RawBaseURL))

	if path := cfg.LedgerPath(); path != "" {
		results = append(results, CheckLedger(ctx, path))
	}

	if cfg.Notifications.DiscordWebhook != "" {
		results = append(results, CheckWebhook(ctx, cfg.Notifications.DiscordWebhook))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
