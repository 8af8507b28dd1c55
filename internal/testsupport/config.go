package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vidcheck/internal/config"
)

// defaultTools are the external programs a check may invoke.
var defaultTools = []string{"ffmpeg", "ffprobe", "tesseract", "yt-dlp", "uvx"}

// ConfigOption adjusts the config built by NewConfig. root is the per-test
// temporary directory holding every path the config points at.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns a validated default config whose directories live under
// a fresh temp dir, with a placeholder oracle key and an ephemeral API port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		WorkDir:  filepath.Join(root, "work"),
		LogDir:   filepath.Join(root, "logs"),
		CacheDir: filepath.Join(root, "cache"),
	}
	cfg.Triggers.Path = filepath.Join(root, "trigger_words.json")
	cfg.Oracle.APIKey = "test"
	cfg.API.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

// WithOracle points the oracle at baseURL with the given key.
func WithOracle(baseURL, key string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Oracle.BaseURL = baseURL
		cfg.Oracle.APIKey = key
	}
}

// WithCacheDisabled turns off verdict caching.
func WithCacheDisabled() ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Cache.Enabled = false
	}
}

// WithTriggerWords writes words as the trigger list the config points at.
func WithTriggerWords(words map[string][]string) ConfigOption {
	return func(t testing.TB, _ string, cfg *config.Config) {
		t.Helper()
		data, err := json.Marshal(words)
		if err != nil {
			t.Fatalf("encode trigger words: %v", err)
		}
		WriteFile(t, cfg.Triggers.Path, string(data))
	}
}

// WithStubbedBinaries puts no-op executables for names (all external tools
// when empty) first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, root string, _ *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = defaultTools
		}
		binDir := filepath.Join(root, "bin")
		for _, name := range names {
			WriteExecutable(t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
