package preflight

import (
	"context"

	"vidcheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Directories are created first so a fresh install passes.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if err := cfg.EnsureDirectories(); err != nil {
		results = append(results, Result{Name: "Directories", Detail: err.Error()})
	}

	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckVerdictStore(ctx, cfg))

	if cfg.Oracle.APIKey != "" {
		results = append(results, CheckOracle(ctx, cfg.GetOracle()))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
