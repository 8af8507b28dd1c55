package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	langpkg "vidcheck/internal/language"
)

// Service runs ffmpeg and WhisperX for one configuration.
type Service struct {
	cfg Config
	run Runner
}

// Option customizes a Service.
type Option func(*Service)

// WithRunner replaces command execution (for testing).
func WithRunner(run Runner) Option {
	return func(s *Service) {
		if run != nil {
			s.run = run
		}
	}
}

// New returns a Service for cfg.
func New(cfg Config, opts ...Option) *Service {
	s := &Service{cfg: cfg.normalized(), run: execRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the WhisperX model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Binaries returns the executables the service shells out to.
func (s *Service) Binaries() []string {
	return []string{s.cfg.FFmpeg, s.cfg.UVX}
}

// ExtractAudio writes the first audio stream of source to dest as mono
// 16 kHz PCM WAV. source may be a video container or a downloaded MP3.
func (s *Service) ExtractAudio(ctx context.Context, source, dest string) error {
	if err := s.exec(ctx, s.cfg.FFmpeg, extractArgs(source, dest)...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// TranscribeResult is the text WhisperX produced for one file.
type TranscribeResult struct {
	Text string
	// Language is the ISO 639-1 code WhisperX reported, if any.
	Language string
	JSONPath string
}

// TranscribeFile runs WhisperX on a WAV file and reads back its JSON output.
// outputDir defaults to the directory of source.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir string) (TranscribeResult, error) {
	var result TranscribeResult
	if strings.TrimSpace(source) == "" {
		return result, errors.New("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}
	if err := s.exec(ctx, s.cfg.UVX, s.transcribeArgs(source, outputDir)...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result.JSONPath = filepath.Join(outputDir, base+".json")
	out, err := readOutput(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisperx output: %w", err)
	}
	result.Text = out.text()
	result.Language = langpkg.ToISO2(out.Language)
	return result, nil
}

func extractArgs(source, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", source,
		"-map", "0:a:0", "-vn", "-sn", "-dn",
		"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		dest,
	}
}

func (s *Service) transcribeArgs(source, outputDir string) []string {
	args := []string{"--index-url", pypiIndexURL}
	if s.cfg.CUDAEnabled {
		args = []string{"--index-url", cudaIndexURL, "--extra-index-url", pypiIndexURL}
	}
	args = append(args,
		"whisperx", source,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--segment_resolution", "sentence",
		"--batch_size", "4",
		"--chunk_size", "15",
		"--beam_size", "5",
		"--temperature", "0.0",
		"--vad_method", s.cfg.VADMethod,
	)
	if s.cfg.VADMethod == VADPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		return append(args, "--device", "cuda")
	}
	return append(args, "--device", "cpu", "--compute_type", "float32")
}

type output struct {
	Language string `json:"language"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

func (o output) text() string {
	parts := make([]string, 0, len(o.Segments))
	for _, seg := range o.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func readOutput(path string) (output, error) {
	var out output
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse whisperx json: %w", err)
	}
	return out, nil
}
