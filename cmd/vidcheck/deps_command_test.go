package main

import (
	"encoding/json"
	"testing"

	"vidcheck/internal/testsupport"
)

func TestDepsReportsStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	var report depsReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode deps: %v", err)
	}
	if len(report.Binaries) != 5 {
		t.Fatalf("expected 5 binaries, got %d", len(report.Binaries))
	}
	for _, status := range report.Binaries {
		if !status.Available {
			t.Fatalf("expected %s to be available: %+v", status.Name, status)
		}
	}
	if len(report.Preflight) == 0 {
		t.Fatal("expected preflight results")
	}
	if env.oracleCalls.Load() == 0 {
		t.Fatal("expected preflight to reach the oracle")
	}
}

func TestDepsFailsOnMissingRequiredTool(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.OCR.Binary = "tesseract-definitely-missing"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"deps", "--skip-preflight"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing tool error")
	}
	requireContains(t, err.Error(), "Tesseract")
	requireContains(t, out, "missing")
}

func TestDepsOptionalToolMissing(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCacheDisabled())
	env.cfg.Download.Binary = "yt-dlp-definitely-missing"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"deps", "--skip-preflight"}, env.configPath)
	if err != nil {
		t.Fatalf("optional tool should not fail deps: %v", err)
	}
	requireContains(t, out, "missing (optional)")
}
