package deps

import (
	"os"
	"path/filepath"
	"testing"

	"vidcheck/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Path != present {
		t.Fatalf("expected resolved path %q, got %q", present, results[0].Path)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OCR.Binary = "/opt/tesseract/bin/tesseract"
	reqs := Requirements(&cfg)

	names := map[string]Requirement{}
	for _, req := range reqs {
		names[req.Name] = req
	}
	for _, name := range []string{"FFmpeg", "FFprobe", "Tesseract", "yt-dlp", "uvx"} {
		if _, ok := names[name]; !ok {
			t.Fatalf("missing requirement %s", name)
		}
	}
	if names["Tesseract"].Command != "/opt/tesseract/bin/tesseract" {
		t.Fatalf("expected configured tesseract binary, got %q", names["Tesseract"].Command)
	}
	if !names["uvx"].Optional || names["FFmpeg"].Optional {
		t.Fatal("unexpected optional flags")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "Tesseract"},
		{Name: "uvx", Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "Tesseract" {
		t.Fatalf("unexpected missing list %v", missing)
	}
}
