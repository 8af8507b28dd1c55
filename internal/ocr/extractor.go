package ocr

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"vidcheck/internal/frames"
	"vidcheck/internal/logging"
)

// DefaultWorkers bounds concurrent recognitions when none is configured.
const DefaultWorkers = 4

// Result is the ordered text recognised across a sampled sequence.
type Result struct {
	Text           string `json:"text"`
	FramesScanned  int    `json:"frames_scanned"`
	FramesWithText int    `json:"frames_with_text"`
	FramesFailed   int    `json:"frames_failed"`
}

// Extractor runs an Engine over every frame of a sequence.
type Extractor struct {
	engine  Engine
	workers int
	logger  *slog.Logger
}

// NewExtractor constructs an Extractor with at most workers concurrent recognitions.
func NewExtractor(engine Engine, workers int, logger *slog.Logger) *Extractor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Extractor{
		engine:  engine,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "ocr"),
	}
}

// Extract recognises every frame and joins the non-empty results with "\n" in
// frame order. A frame that fails is logged and skipped; only cancellation of
// ctx aborts the batch.
func (e *Extractor) Extract(ctx context.Context, seq frames.SampledSequence) (Result, error) {
	result := Result{FramesScanned: len(seq.Frames)}
	if len(seq.Frames) == 0 {
		return result, nil
	}
	logger := logging.WithContext(ctx, e.logger)

	texts := make([]string, len(seq.Frames))
	failed := make([]bool, len(seq.Frames))
	progress := logging.NewProgressSampler(25)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range seq.Frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := e.engine.Recognize(gctx, frames.Grayscale(f.Image))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed[i] = true
				logging.WarnWithContext(logger, "frame text recognition failed", "ocr_frame_failed",
					logging.Int("position", f.Position),
					logging.Error(err),
					logging.String(logging.FieldImpact, "text on this frame is omitted"),
					logging.String(logging.FieldErrorHint, "check the tesseract install and language packs"),
				)
			} else {
				texts[i] = strings.TrimSpace(text)
			}
			n := int(done.Add(1))
			if progress.ShouldLog(n, len(seq.Frames)) {
				logger.Debug("frame text progress",
					logging.Int("done", n),
					logging.Int("total", len(seq.Frames)),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	parts := make([]string, 0, len(texts))
	for i, text := range texts {
		if failed[i] {
			result.FramesFailed++
			continue
		}
		if text == "" {
			continue
		}
		result.FramesWithText++
		parts = append(parts, text)
	}
	result.Text = strings.Join(parts, "\n")
	return result, nil
}
