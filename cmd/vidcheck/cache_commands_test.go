package main

import (
	"encoding/json"
	"testing"
	"time"

	"vidcheck/internal/testsupport"
	"vidcheck/internal/verdictstore"
)

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries:  0")

	if _, _, err := runCLI(t, []string{"check", "text", "--message", "a viral forward"}, env.configPath); err != nil {
		t.Fatalf("check text: %v", err)
	}

	out, _, err = runCLI(t, []string{"--json", "cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats --json: %v", err)
	}
	var stats verdictstore.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Entries != 1 || stats.Driver != verdictstore.DriverSQLite {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached verdicts")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("second cache clear: %v", err)
	}
	requireContains(t, out, "already empty")
}

func TestCacheDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCacheDisabled())
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Verdict cache is disabled")
}

func TestCacheClearRemovesSeededVerdicts(t *testing.T) {
	env := setupCLITestEnv(t)
	now := time.Now()
	testsupport.MustOpenStore(t, env.cfg,
		verdictstore.Verdict{Key: "k1", Text: "False.", Model: "m", CreatedAt: now},
		verdictstore.Verdict{Key: "k2", Text: "Misleading.", Model: "m", CreatedAt: now},
	)

	out, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 2 cached verdicts")
}
