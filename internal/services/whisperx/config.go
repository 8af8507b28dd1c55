package whisperx

import "strings"

// Config selects the WhisperX model and the executables used to run it.
type Config struct {
	// Model is the WhisperX model name, e.g. "base" or "large-v3".
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" or "pyannote"; pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Language pins the spoken language; empty lets WhisperX detect it.
	Language string
	// FFmpeg and UVX default to the binaries on PATH.
	FFmpeg string
	UVX    string
}

const (
	defaultModel  = "base"
	defaultFFmpeg = "ffmpeg"
	defaultUVX    = "uvx"

	VADSilero   = "silero"
	VADPyannote = "pyannote"

	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"
)

// normalized fills defaults without mutating the caller's value.
func (c Config) normalized() Config {
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = defaultModel
	}
	c.VADMethod = strings.ToLower(strings.TrimSpace(c.VADMethod))
	if c.VADMethod != VADPyannote {
		c.VADMethod = VADSilero
	}
	if strings.TrimSpace(c.FFmpeg) == "" {
		c.FFmpeg = defaultFFmpeg
	}
	if strings.TrimSpace(c.UVX) == "" {
		c.UVX = defaultUVX
	}
	return c
}
