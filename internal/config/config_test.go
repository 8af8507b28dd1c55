package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidcheck/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("VIDCHECK_ORACLE_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("VIDCHECK_CACHE_DSN", "")
	t.Setenv("VIDCHECK_API_TOKEN", "")
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")
	return home
}

func TestLoadDefaultConfigExpandsPathsAndAppliesDefaults(t *testing.T) {
	home := isolateEnv(t)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(home, ".local", "share", "vidcheck", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.CacheDir != filepath.Join(home, ".cache", "vidcheck") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Sampling.DuplicateStride != 5 || cfg.Sampling.TextStride != 30 {
		t.Fatalf("unexpected strides: %+v", cfg.Sampling)
	}
	if cfg.Duplicates.Strategy != "ssim" || cfg.Duplicates.Threshold != 0.97 || cfg.Duplicates.ScaleWidth != 320 {
		t.Fatalf("unexpected duplicate defaults: %+v", cfg.Duplicates)
	}
	if cfg.OCR.Languages != "eng+tel+hin" {
		t.Fatalf("unexpected ocr languages: %q", cfg.OCR.Languages)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected transcription model: %q", cfg.Transcription.Model)
	}
	if cfg.Download.MaxHeight != 360 {
		t.Fatalf("unexpected max height: %d", cfg.Download.MaxHeight)
	}
	if len(cfg.Download.SubtitleLanguages) != 1 || cfg.Download.SubtitleLanguages[0] != "en" {
		t.Fatalf("unexpected subtitle languages: %v", cfg.Download.SubtitleLanguages)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Driver != "sqlite" {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Oracle.APIKey != "" {
		t.Fatalf("expected empty oracle key, got %q", cfg.Oracle.APIKey)
	}
	if cfg.API.Bind != "127.0.0.1:7590" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Triggers.Path != filepath.Join(home, ".config", "vidcheck", "trigger_words.json") {
		t.Fatalf("unexpected triggers path: %q", cfg.Triggers.Path)
	}
}

func TestRequireOracleFailsWithoutCredential(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	err = cfg.RequireOracle()
	if err == nil {
		t.Fatal("expected missing credential error")
	}
	if !strings.Contains(err.Error(), "oracle.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOracleKeyEnvPrecedence(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[oracle]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "openrouter-key")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Oracle.APIKey != "file-key" {
		t.Fatalf("expected file key to beat OPENROUTER_API_KEY, got %q", cfg.Oracle.APIKey)
	}

	t.Setenv("VIDCHECK_ORACLE_API_KEY", "env-key")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Oracle.APIKey != "env-key" {
		t.Fatalf("expected VIDCHECK_ORACLE_API_KEY to override file, got %q", cfg.Oracle.APIKey)
	}
	if err := cfg.RequireOracle(); err != nil {
		t.Fatalf("RequireOracle returned error: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom.toml")
	workDir := filepath.Join(tempDir, "work")

	payload := struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
		Sampling struct {
			DuplicateStride int `toml:"duplicate_stride"`
		} `toml:"sampling"`
		Duplicates struct {
			Strategy string `toml:"strategy"`
		} `toml:"duplicates"`
		Download struct {
			SubtitleLanguages []string `toml:"subtitle_languages"`
		} `toml:"download"`
	}{}
	payload.Paths.WorkDir = workDir
	payload.Sampling.DuplicateStride = 3
	payload.Duplicates.Strategy = " HASH "
	payload.Download.SubtitleLanguages = []string{"EN", "te", "en", " "}

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected custom config to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.WorkDir != workDir {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Sampling.DuplicateStride != 3 {
		t.Fatalf("unexpected duplicate stride: %d", cfg.Sampling.DuplicateStride)
	}
	if cfg.Sampling.TextStride != 30 {
		t.Fatalf("expected default text stride to survive, got %d", cfg.Sampling.TextStride)
	}
	if cfg.Duplicates.Strategy != "hash" {
		t.Fatalf("expected normalized strategy, got %q", cfg.Duplicates.Strategy)
	}
	if got := strings.Join(cfg.Download.SubtitleLanguages, ","); got != "en,te" {
		t.Fatalf("unexpected subtitle languages: %q", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	if _, err := os.Stat(workDir); err != nil {
		t.Fatalf("expected work dir to exist: %v", err)
	}
}

func TestLoadFallsBackToProjectFile(t *testing.T) {
	isolateEnv(t)
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile(filepath.Join(project, "vidcheck.toml"), []byte("[api]\nbind = \"0.0.0.0:9000\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "vidcheck.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %q", cfg.API.Bind)
	}
}

func TestAPITokenFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("VIDCHECK_API_TOKEN", "  s3cret ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Token != "s3cret" {
		t.Fatalf("expected trimmed token from env, got %q", cfg.API.Token)
	}
}

func TestCreateSample(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, section := range []string{"[paths]", "[sampling]", "[duplicates]", "[ocr]", "[oracle]", "[cache]", "[logging]"} {
		if !strings.Contains(content, section) {
			t.Fatalf("sample config missing %s", section)
		}
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero duplicate stride", func(c *config.Config) { c.Sampling.DuplicateStride = 0 }, "sampling.duplicate_stride"},
		{"negative max frames", func(c *config.Config) { c.Sampling.MaxFrames = -1 }, "sampling.max_frames"},
		{"zero max frames", func(c *config.Config) { c.Sampling.MaxFrames = 0 }, "sampling.max_frames"},
		{"unknown strategy", func(c *config.Config) { c.Duplicates.Strategy = "phash" }, "duplicates.strategy"},
		{"threshold out of range", func(c *config.Config) { c.Duplicates.Threshold = 1.5 }, "duplicates.threshold"},
		{"even window", func(c *config.Config) { c.Duplicates.Window = 8 }, "duplicates.window"},
		{"empty ocr language", func(c *config.Config) { c.OCR.Languages = "eng++hin" }, "ocr.languages"},
		{"pyannote without token", func(c *config.Config) { c.Transcription.VADMethod = "pyannote" }, "transcription.hf_token"},
		{"relative oracle url", func(c *config.Config) { c.Oracle.BaseURL = "/v1/chat" }, "oracle.base_url"},
		{"postgres without dsn", func(c *config.Config) { c.Cache.Driver = "postgres" }, "cache.dsn"},
		{"unknown cache driver", func(c *config.Config) { c.Cache.Driver = "redis" }, "cache.driver"},
		{"bind without port", func(c *config.Config) { c.API.Bind = "localhost" }, "api.bind"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestWriteSampleRefusesExistingFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	written, err := config.WriteSample(path, false)
	if err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected path: got %q want %q", written, path)
	}
	if _, err := config.WriteSample(path, false); !errors.Is(err, config.ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
	if _, err := config.WriteSample(path, true); err != nil {
		t.Fatalf("overwrite returned error: %v", err)
	}
}

func TestWriteSampleDefaultsToUserConfig(t *testing.T) {
	home := isolateEnv(t)
	written, err := config.WriteSample("  ", false)
	if err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if want := filepath.Join(home, ".config", "vidcheck", "config.toml"); written != want {
		t.Fatalf("unexpected default path: got %q want %q", written, want)
	}
}
