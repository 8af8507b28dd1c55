package frames

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vidcheck/internal/logging"
	"vidcheck/internal/services"
)

const stageSampling = "SAMPLING"

// Sampler produces SampledSequences from media files.
type Sampler struct {
	opener Opener
	gray   bool
	width  int
	logger *slog.Logger
}

// SamplerOption customizes a Sampler.
type SamplerOption func(*Sampler)

// WithGray requests grayscale frames from the decoder.
func WithGray(gray bool) SamplerOption {
	return func(s *Sampler) { s.gray = gray }
}

// WithScaleWidth requests decoder-side downscaling.
func WithScaleWidth(width int) SamplerOption {
	return func(s *Sampler) {
		if width > 0 {
			s.width = width
		}
	}
}

// NewSampler constructs a Sampler over the given opener.
func NewSampler(opener Opener, logger *slog.Logger, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		opener: opener,
		gray:   true,
		logger: logging.NewComponentLogger(logger, "frames"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample decodes path and keeps every stride-th frame up to max frames.
//
// A source that cannot be opened, or that fails before yielding any frame,
// returns an error marked services.ErrSourceUnavailable. A stream that ends
// early sets Exhausted and is not an error. A decode failure after at least
// one kept frame degrades to the partial sequence with a warning.
func (s *Sampler) Sample(ctx context.Context, path string, stride, max int) (SampledSequence, error) {
	seq := SampledSequence{Stride: stride, Max: max}
	if stride < 1 {
		return seq, services.Wrap(services.ErrValidation, stageSampling, "sample", fmt.Sprintf("stride must be at least 1 (got %d)", stride), nil)
	}
	if max < 0 {
		return seq, services.Wrap(services.ErrValidation, stageSampling, "sample", fmt.Sprintf("max must not be negative (got %d)", max), nil)
	}

	logger := logging.WithContext(ctx, s.logger)
	dec, err := s.opener.Open(ctx, path, Hint{Stride: stride, Max: max, Gray: s.gray, Width: s.width})
	if err != nil {
		return seq, services.Wrap(services.ErrSourceUnavailable, stageSampling, "open", path, err)
	}
	defer dec.Close()

	if max == 0 {
		return seq, nil
	}

	last := -1
	decoded := 0
	for len(seq.Frames) < max {
		if err := ctx.Err(); err != nil {
			return seq, err
		}
		frame, err := dec.Next()
		if errors.Is(err, io.EOF) {
			seq.Exhausted = true
			break
		}
		if err != nil {
			if len(seq.Frames) == 0 {
				return seq, services.Wrap(services.ErrSourceUnavailable, stageSampling, "decode", path, err)
			}
			logging.WarnWithContext(logger, "decode failed mid-stream; keeping partial sequence", "decode_partial",
				logging.String("path", path),
				logging.Int("frames_kept", len(seq.Frames)),
				logging.Int("last_position", last),
				logging.Error(err),
				logging.String(logging.FieldImpact, "frames after the failure are not scanned"),
			)
			seq.Exhausted = true
			break
		}
		decoded++
		if frame.Position%stride != 0 || frame.Position <= last {
			continue
		}
		last = frame.Position
		seq.Frames = append(seq.Frames, frame)
	}

	logger.Debug("sampling complete",
		logging.String("path", path),
		logging.Int("stride", stride),
		logging.Int("frames_decoded", decoded),
		logging.Int("frames_kept", len(seq.Frames)),
		logging.Bool("exhausted", seq.Exhausted),
	)
	return seq, nil
}
