package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directory configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Sampling controls how frames are pulled from a decoded video.
type Sampling struct {
	// DuplicateStride keeps every Nth decoded frame for the duplicate scan.
	DuplicateStride int `toml:"duplicate_stride"`
	// TextStride keeps every Nth decoded frame for on-screen text recognition.
	TextStride int `toml:"text_stride"`
	// MaxFrames caps the number of frames retained by a single sampling pass.
	// It must be at least 1.
	MaxFrames int `toml:"max_frames"`
	// ScaleWidth downscales frames before scoring. Zero keeps the native width.
	ScaleWidth int `toml:"scale_width"`
}

// Duplicates configures the duplicate frame detector.
type Duplicates struct {
	Strategy  string  `toml:"strategy"`
	Threshold float64 `toml:"threshold"`
	Window    int     `toml:"window"`

	// ScaleWidth bounds the decode width of the duplicate scan, which holds
	// every sampled frame until scoring. Zero keeps sampling.scale_width.
	ScaleWidth int `toml:"scale_width"`
}

// OCR configures the on-frame text recognizer.
type OCR struct {
	Binary         string `toml:"binary"`
	Languages      string `toml:"languages"`
	Workers        int    `toml:"workers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription configures the speech-to-text engine.
type Transcription struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	Language    string `toml:"language"`
}

// Download configures remote video acquisition.
type Download struct {
	Binary            string   `toml:"binary"`
	MaxHeight         int      `toml:"max_height"`
	SubtitleLanguages []string `toml:"subtitle_languages"`
	AudioQuality      string   `toml:"audio_quality"`
}

// Oracle contains the fact-checking model connection settings.
type Oracle struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache configures verdict caching.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	LRUSize int    `toml:"lru_size"`
	Driver  string `toml:"driver"`
	DSN     string `toml:"dsn"`
}

// Triggers points at the per-language trigger word list.
type Triggers struct {
	Path string `toml:"path"`
}

// API configures the HTTP server.
type API struct {
	Bind           string `toml:"bind"`
	Token          string `toml:"token"`
	MaxUploadMiB   int    `toml:"max_upload_mib"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidcheck.
//
// Configuration sections by subsystem:
//   - Paths: work, log, and cache directories
//   - Sampling: frame strides and caps for the two scan branches
//   - Duplicates: duplicate frame strategy and threshold
//   - OCR: tesseract binary, language set, and worker count
//   - Transcription: WhisperX model selection
//   - Download: yt-dlp binary and format limits
//   - Oracle: fact-checking model connection
//   - Cache: verdict LRU and persistent store
//   - Triggers: trigger word list location
//   - API: HTTP server bind address
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sampling      Sampling      `toml:"sampling"`
	Duplicates    Duplicates    `toml:"duplicates"`
	OCR           OCR           `toml:"ocr"`
	Transcription Transcription `toml:"transcription"`
	Download      Download      `toml:"download"`
	Oracle        Oracle        `toml:"oracle"`
	Cache         Cache         `toml:"cache"`
	Triggers      Triggers      `toml:"triggers"`
	API           API           `toml:"api"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidcheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, log, and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VideoDir returns the directory downloaded videos are written to.
func (c *Config) VideoDir() string {
	return filepath.Join(c.Paths.WorkDir, "videos")
}

// AudioDir returns the directory downloaded audio tracks are written to.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.WorkDir, "audio")
}

// UploadDir returns the directory uploaded videos are staged in.
func (c *Config) UploadDir() string {
	return filepath.Join(c.Paths.WorkDir, "uploads")
}

// CacheDBPath returns the SQLite verdict store location.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Paths.CacheDir, "verdicts.db")
}

// FFmpegBinary returns the ffmpeg executable name used for frame and audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for stream inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// UVXBinary returns the uvx executable name used to launch WhisperX.
func (c *Config) UVXBinary() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "vidcheck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/vidcheck"
	}
	return filepath.Join(home, ".cache", "vidcheck")
}

// ErrConfigExists reports that WriteSample refused to replace a file.
var ErrConfigExists = errors.New("config file already exists")

// WriteSample writes the sample configuration to target, or to the default
// location when target is blank, and returns the resolved path. An existing
// file is only replaced when overwrite is set.
func WriteSample(target string, overwrite bool) (string, error) {
	var (
		path string
		err  error
	)
	if strings.TrimSpace(target) == "" {
		path, err = DefaultConfigPath()
	} else {
		path, err = expandPath(target)
	}
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return path, fmt.Errorf("%w at %s", ErrConfigExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("open config file: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		file.Close()
		return "", fmt.Errorf("write sample config: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return path, nil
}

// CreateSample writes the sample configuration to path, replacing any existing file.
func CreateSample(path string) error {
	_, err := WriteSample(path, true)
	return err
}

// OracleConfig contains the trimmed oracle connection settings.
type OracleConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetOracle returns the oracle connection settings.
func (c *Config) GetOracle() OracleConfig {
	return OracleConfig{
		APIKey:         strings.TrimSpace(c.Oracle.APIKey),
		BaseURL:        strings.TrimSpace(c.Oracle.BaseURL),
		Model:          strings.TrimSpace(c.Oracle.Model),
		Referer:        strings.TrimSpace(c.Oracle.Referer),
		Title:          strings.TrimSpace(c.Oracle.Title),
		TimeoutSeconds: c.Oracle.TimeoutSeconds,
	}
}
