package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidcheck/internal/services"
)

// Engine recognises text in one grayscale image.
type Engine interface {
	Recognize(ctx context.Context, img *image.Gray) (string, error)
}

const (
	DefaultBinary    = "tesseract"
	DefaultLanguages = "eng+tel+hin"
	// DefaultPSM is tesseract's "fully automatic page segmentation" mode.
	DefaultPSM = 3
)

// CommandRunner executes a command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// TesseractEngine runs the tesseract CLI once per image.
type TesseractEngine struct {
	Binary    string
	Languages string
	PSM       int
	// Timeout bounds a single recognition; zero disables it.
	Timeout time.Duration
	// TempDir holds the intermediate PNG files; empty uses os.TempDir.
	TempDir string

	runner CommandRunner
}

// NewTesseractEngine applies defaults for empty fields.
func NewTesseractEngine(binary, languages string, timeout time.Duration) *TesseractEngine {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	if strings.TrimSpace(languages) == "" {
		languages = DefaultLanguages
	}
	return &TesseractEngine{Binary: binary, Languages: languages, PSM: DefaultPSM, Timeout: timeout}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *TesseractEngine) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// Recognize writes img to a temporary PNG and returns tesseract's stdout.
func (e *TesseractEngine) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	if img == nil {
		return "", services.Wrap(services.ErrValidation, "TEXT_EXTRACTION", "recognize", "nil image", nil)
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	tmp, err := os.CreateTemp(e.TempDir, "vidcheck-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("ocr encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}

	out, err := e.run(ctx, e.Binary, e.buildArgs(path)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "TEXT_EXTRACTION", "tesseract", filepath.Base(path), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "TEXT_EXTRACTION", "tesseract", "", err)
	}
	return string(out), nil
}

func (e *TesseractEngine) buildArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.Languages}
	if e.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.PSM))
	}
	return args
}

func (e *TesseractEngine) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
