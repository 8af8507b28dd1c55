package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateDuplicates(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateOracle(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireOracle reports a configuration error when the oracle credential is missing.
// Commands that verify content call it before doing any work.
func (c *Config) RequireOracle() error {
	if strings.TrimSpace(c.Oracle.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/vidcheck/config.toml"
	}
	return fmt.Errorf("oracle.api_key is required. Set VIDCHECK_ORACLE_API_KEY or OPENROUTER_API_KEY, or edit %s (create with 'vidcheck config init')", defaultPath)
}

func (c *Config) validateSampling() error {
	if c.Sampling.DuplicateStride < 1 {
		return errors.New("sampling.duplicate_stride must be at least 1")
	}
	if c.Sampling.TextStride < 1 {
		return errors.New("sampling.text_stride must be at least 1")
	}
	if c.Sampling.MaxFrames < 1 {
		return errors.New("sampling.max_frames must be at least 1")
	}
	return nil
}

func (c *Config) validateDuplicates() error {
	switch c.Duplicates.Strategy {
	case "ssim", "hash":
	default:
		return fmt.Errorf("duplicates.strategy must be one of ssim, hash (got %q)", c.Duplicates.Strategy)
	}
	if c.Duplicates.Threshold <= 0 || c.Duplicates.Threshold > 1 {
		return errors.New("duplicates.threshold must be greater than 0 and at most 1")
	}
	if c.Duplicates.Window%2 == 0 {
		return errors.New("duplicates.window must be odd")
	}
	return nil
}

func (c *Config) validateOCR() error {
	for _, lang := range strings.Split(c.OCR.Languages, "+") {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("ocr.languages contains an empty entry: %q", c.OCR.Languages)
		}
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote (got %q)", c.Transcription.VADMethod)
	}
	if c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.hf_token must be set when transcription.vad_method is pyannote")
	}
	return nil
}

func (c *Config) validateOracle() error {
	parsed, err := url.Parse(c.Oracle.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("oracle.base_url must be an absolute URL (got %q)", c.Oracle.BaseURL)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Driver {
	case "sqlite":
	case "postgres":
		if c.Cache.Enabled && c.Cache.DSN == "" {
			return errors.New("cache.dsn must be set when cache.driver is postgres (or set VIDCHECK_CACHE_DSN)")
		}
	default:
		return fmt.Errorf("cache.driver must be sqlite or postgres (got %q)", c.Cache.Driver)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if !strings.Contains(c.API.Bind, ":") {
		return fmt.Errorf("api.bind must be host:port (got %q)", c.API.Bind)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
