package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSampling()
	c.normalizeDuplicates()
	c.normalizeOCR()
	c.normalizeTranscription()
	c.normalizeDownload()
	c.normalizeOracle()
	c.normalizeCache()
	if err := c.normalizeTriggers(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSampling() {
	if c.Sampling.DuplicateStride == 0 {
		c.Sampling.DuplicateStride = defaultDuplicateStride
	}
	if c.Sampling.TextStride == 0 {
		c.Sampling.TextStride = defaultTextStride
	}
	if c.Sampling.ScaleWidth < 0 {
		c.Sampling.ScaleWidth = 0
	}
}

func (c *Config) normalizeDuplicates() {
	c.Duplicates.Strategy = strings.ToLower(strings.TrimSpace(c.Duplicates.Strategy))
	if c.Duplicates.Strategy == "" {
		c.Duplicates.Strategy = defaultDuplicateStrategy
	}
	if c.Duplicates.Window <= 0 {
		c.Duplicates.Window = defaultSSIMWindow
	}
	if c.Duplicates.ScaleWidth < 0 {
		c.Duplicates.ScaleWidth = 0
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	if c.OCR.Binary == "" {
		c.OCR.Binary = defaultOCRBinary
	}
	c.OCR.Languages = strings.TrimSpace(c.OCR.Languages)
	if c.OCR.Languages == "" {
		c.OCR.Languages = defaultOCRLanguages
	}
	if c.OCR.Workers <= 0 {
		c.OCR.Workers = defaultOCRWorkers
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeoutSeconds
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	if c.Download.MaxHeight <= 0 {
		c.Download.MaxHeight = defaultDownloadMaxHeight
	}
	c.Download.AudioQuality = strings.TrimSpace(c.Download.AudioQuality)
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
	langs := make([]string, 0, len(c.Download.SubtitleLanguages))
	seen := make(map[string]struct{}, len(c.Download.SubtitleLanguages))
	for _, lang := range c.Download.SubtitleLanguages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	c.Download.SubtitleLanguages = langs
}

func (c *Config) normalizeOracle() {
	c.Oracle.BaseURL = strings.TrimSpace(c.Oracle.BaseURL)
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = defaultOracleBaseURL
	}
	c.Oracle.Model = strings.TrimSpace(c.Oracle.Model)
	if c.Oracle.Model == "" {
		c.Oracle.Model = defaultOracleModel
	}
	c.Oracle.Referer = strings.TrimSpace(c.Oracle.Referer)
	c.Oracle.Title = strings.TrimSpace(c.Oracle.Title)
	if c.Oracle.TimeoutSeconds <= 0 {
		c.Oracle.TimeoutSeconds = defaultOracleTimeoutSeconds
	}
	c.Oracle.APIKey = strings.TrimSpace(c.Oracle.APIKey)
	if value, ok := os.LookupEnv("VIDCHECK_ORACLE_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Oracle.APIKey = strings.TrimSpace(value)
	} else if c.Oracle.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Oracle.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeCache() {
	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))
	if c.Cache.Driver == "" {
		c.Cache.Driver = defaultCacheDriver
	}
	if c.Cache.LRUSize <= 0 {
		c.Cache.LRUSize = defaultCacheLRUSize
	}
	c.Cache.DSN = strings.TrimSpace(c.Cache.DSN)
	if c.Cache.DSN == "" {
		if value, ok := os.LookupEnv("VIDCHECK_CACHE_DSN"); ok {
			c.Cache.DSN = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeTriggers() error {
	var err error
	if strings.TrimSpace(c.Triggers.Path) == "" {
		c.Triggers.Path = defaultTriggersPath
	}
	if c.Triggers.Path, err = expandPath(c.Triggers.Path); err != nil {
		return fmt.Errorf("triggers.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if c.API.MaxUploadMiB <= 0 {
		c.API.MaxUploadMiB = defaultAPIMaxUploadMiB
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = defaultAPIRequestTimeoutSecs
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if value, ok := os.LookupEnv("VIDCHECK_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.API.Token = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
