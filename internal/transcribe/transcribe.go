// Package transcribe turns an audio or video file into transcript text.
//
// A Model is an explicit handle created by Load and owned by the caller; there
// is no process-wide model. Load checks that the speech engine can be started
// so a broken install fails before any download or frame work begins.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"vidcheck/internal/config"
	"vidcheck/internal/logging"
	"vidcheck/internal/services"
	"vidcheck/internal/services/whisperx"
)

const stageTranscribe = "TRANSCRIBE"

// Engine is the speech recognition backend behind a Model.
type Engine interface {
	Model() string
	Binaries() []string
	ExtractAudio(ctx context.Context, source, dest string) error
	TranscribeFile(ctx context.Context, source, outputDir string) (whisperx.TranscribeResult, error)
}

// Config selects the engine settings and scratch location.
type Config struct {
	Engine     whisperx.Config
	ScratchDir string
}

// ConfigFromApp maps the transcription section onto a transcribe Config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Engine: whisperx.Config{
			Model:       cfg.Transcription.Model,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			VADMethod:   cfg.Transcription.VADMethod,
			HFToken:     cfg.Transcription.HFToken,
			Language:    cfg.Transcription.Language,
			FFmpeg:      cfg.FFmpegBinary(),
			UVX:         cfg.UVXBinary(),
		},
		ScratchDir: cfg.Paths.WorkDir,
	}
}

// Model is a loaded transcription engine.
type Model struct {
	engine     Engine
	scratchDir string
	logger     *slog.Logger
	lookPath   func(string) (string, error)
}

// LoadOption customizes Load.
type LoadOption func(*Model)

// WithEngine replaces the WhisperX engine (for testing).
func WithEngine(engine Engine) LoadOption {
	return func(m *Model) {
		if engine != nil {
			m.engine = engine
		}
	}
}

// WithLookPath replaces binary resolution (for testing).
func WithLookPath(lookPath func(string) (string, error)) LoadOption {
	return func(m *Model) {
		if lookPath != nil {
			m.lookPath = lookPath
		}
	}
}

// WithLogger sets the model logger.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(m *Model) {
		m.logger = logging.NewComponentLogger(logger, "transcribe")
	}
}

// Load prepares a Model and verifies its binaries are on PATH.
func Load(ctx context.Context, cfg Config, opts ...LoadOption) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := &Model{
		engine:     whisperx.New(cfg.Engine),
		scratchDir: cfg.ScratchDir,
		logger:     logging.NewComponentLogger(nil, "transcribe"),
		lookPath:   exec.LookPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, bin := range m.engine.Binaries() {
		if _, err := m.lookPath(bin); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, stageTranscribe, "load", fmt.Sprintf("binary %q not found", bin), err)
		}
	}
	m.logger.Debug("transcription model ready", logging.String("model", m.engine.Model()))
	return m, nil
}

// Name returns the engine model name.
func (m *Model) Name() string {
	return m.engine.Model()
}

// Transcribe extracts the audio of path and returns its transcript. Scratch
// files are removed before returning.
func (m *Model) Transcribe(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, stageTranscribe, "stat", path, err)
	}
	if m.scratchDir != "" {
		if err := os.MkdirAll(m.scratchDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, stageTranscribe, "scratch", m.scratchDir, err)
		}
	}
	scratch, err := os.MkdirTemp(m.scratchDir, "transcribe-*")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageTranscribe, "scratch", m.scratchDir, err)
	}
	defer os.RemoveAll(scratch)

	logger := logging.WithContext(ctx, m.logger)
	start := time.Now()
	wav := filepath.Join(scratch, "audio.wav")
	if err := m.engine.ExtractAudio(ctx, path, wav); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageTranscribe, "extract audio", path, err)
	}
	result, err := m.engine.TranscribeFile(ctx, wav, scratch)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageTranscribe, "whisperx", path, err)
	}
	logger.Info("transcription complete",
		logging.String("model", m.engine.Model()),
		logging.String("language", result.Language),
		logging.Int("chars", len(result.Text)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result.Text, nil
}
