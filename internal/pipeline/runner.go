package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vidcheck/internal/download"
	"vidcheck/internal/duplicates"
	"vidcheck/internal/evidence"
	"vidcheck/internal/logging"
	"vidcheck/internal/ocr"
	"vidcheck/internal/services"
	"vidcheck/internal/subtitles"
	"vidcheck/internal/triggers"
)

// InputKind selects how a run acquires its evidence.
type InputKind string

const (
	KindText  InputKind = "text"
	KindURL   InputKind = "url"
	KindVideo InputKind = "video"
)

// Input describes one check request.
type Input struct {
	Kind      InputKind `json:"kind" validate:"required,oneof=text url video"`
	Text      string    `json:"text,omitempty" validate:"required_if=Kind text"`
	URL       string    `json:"url,omitempty" validate:"required_if=Kind url"`
	VideoPath string    `json:"video_path,omitempty" validate:"required_if=Kind video"`
}

func (in Input) source() string {
	switch in.Kind {
	case KindURL:
		return in.URL
	case KindVideo:
		return in.VideoPath
	default:
		return "text"
	}
}

// Runner executes runs against a set of capabilities.
type Runner struct {
	caps     Capabilities
	triggers *triggers.List
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner returns a Runner. A nil trigger list uses the embedded default.
func NewRunner(caps Capabilities, list *triggers.List, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if list == nil {
		list = triggers.Default()
	}
	r := &Runner{
		caps:     caps,
		triggers: list,
		validate: validator.New(),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateInput reports whether in is a well-formed request.
func (r *Runner) ValidateInput(in Input) error {
	in.Text = strings.TrimSpace(in.Text)
	in.URL = strings.TrimSpace(in.URL)
	in.VideoPath = strings.TrimSpace(in.VideoPath)
	if err := r.validate.Struct(in); err != nil {
		return services.Wrap(services.ErrValidation, string(StateIdle), "validate input", describeValidation(err), nil)
	}
	if in.Kind == KindURL {
		if err := r.validate.Var(in.URL, "url"); err != nil {
			return services.Wrap(services.ErrValidation, string(StateIdle), "validate input", fmt.Sprintf("invalid url %q", in.URL), nil)
		}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		part := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			part = fmt.Sprintf("%s (%s)", part, fe.Param())
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// Run executes one check. The returned report is non-nil whenever the input
// validated; on FAILED it is returned together with the error.
func (r *Runner) Run(ctx context.Context, in Input) (*Report, error) {
	if err := r.ValidateInput(in); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	in.URL = strings.TrimSpace(in.URL)
	in.VideoPath = strings.TrimSpace(in.VideoPath)

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	start := r.now()
	tr := newTracker(r.now)
	report := &Report{
		RunID:     runID,
		Kind:      in.Kind,
		Source:    in.source(),
		StartedAt: start.UTC(),
		Triggers:  []triggers.Hit{},
		Duplicates: duplicates.Report{
			Pairs: []duplicates.Pair{},
		},
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("check started", logging.String("kind", string(in.Kind)), logging.String("source", report.Source))

	var transcript, subtitleText, frameText string
	if in.Kind == KindText {
		transcript = in.Text
	} else {
		ev, err := r.collect(ctx, tr, in, report)
		if err != nil {
			return r.fail(ctx, tr, report, start, StateSampling, err)
		}
		transcript, subtitleText, frameText = ev.transcript, ev.subtitles, ev.frameText
	}

	tr.enter(StateNormalizing)
	var doc evidence.Document
	tr.time(string(StateNormalizing), func() {
		doc = evidence.NewDocument(transcript, subtitleText, frameText)
		report.Transcript = doc.Transcript
		report.SubtitleText = doc.SubtitleText
		scanned := doc.Transcript
		if scanned == "" {
			scanned = doc.CombinedText
		}
		report.Language = r.triggers.DetectLanguage(scanned)
		report.Triggers = r.triggers.Scan(scanned, report.Language)
	})

	tr.enter(StateAggregating)
	tr.time(string(StateAggregating), func() {
		report.Evidence = doc.CombinedText
		report.Prompt = doc.Prompt()
	})

	tr.enter(StateAwaitingVerification)
	if doc.Empty() {
		report.NothingToVerify = true
		logging.WarnWithContext(logger, "no evidence extracted; skipping verification", "nothing_to_verify",
			logging.String(logging.FieldImpact, "report carries an empty verdict"),
		)
	} else {
		var verr error
		tr.time(string(StateAwaitingVerification), func() {
			ctx := services.WithStage(ctx, string(StateAwaitingVerification))
			report.Verification, verr = r.caps.Verify(ctx, report.Prompt)
		})
		if verr != nil {
			return r.fail(ctx, tr, report, start, StateAwaitingVerification, verr)
		}
	}

	tr.enter(StateDone)
	r.finish(tr, report, start)
	logger.Info("check complete",
		logging.String("state", string(report.State)),
		logging.Int("duplicate_pairs", len(report.Duplicates.Pairs)),
		logging.Int("trigger_hits", len(report.Triggers)),
		logging.Bool("verdict_cached", report.Verification.Cached),
		logging.Bool("verdict_failed", report.Verification.Failed),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

type collected struct {
	transcript string
	subtitles  string
	frameText  string
}

// collect acquires the source and runs the frame branches alongside
// transcription. Only a source failure is returned.
func (r *Runner) collect(ctx context.Context, tr *tracker, in Input, report *Report) (collected, error) {
	var out collected
	logger := logging.WithContext(ctx, r.logger)

	tr.enter(StateSampling)
	videoPath := in.VideoPath
	audioPath := in.VideoPath
	if in.Kind == KindURL {
		var assets download.VideoAssets
		var err error
		tr.time(StageDownload, func() {
			assets, err = r.caps.DownloadVideo(services.WithStage(ctx, string(StateSampling)), in.URL)
		})
		if err != nil {
			return out, services.Wrap(services.ErrSourceUnavailable, string(StateSampling), "download video", in.URL, err)
		}
		videoPath = assets.VideoPath
		audioPath = videoPath
		report.Thumbnail = assets.ThumbnailPath
		if assets.SubtitlePath != "" {
			text, err := subtitles.ReadFile(assets.SubtitlePath)
			if err != nil {
				logging.WarnWithContext(logger, "subtitle file unreadable", "subtitle_read_failed",
					logging.String("path", assets.SubtitlePath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "subtitles omitted from evidence"),
				)
			} else {
				out.subtitles = text
			}
		}
		if audio, err := r.caps.DownloadAudio(ctx, in.URL); err != nil {
			logging.WarnWithContext(logger, "audio download failed; transcribing the video file", "audio_download_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "transcription reads the merged video instead"),
			)
		} else if audio != "" {
			audioPath = audio
		}
	}
	if report.Thumbnail == "" && in.Kind == KindURL {
		report.Thumbnail = download.ThumbnailFallbackURL(in.URL)
	}
	report.VideoPath = videoPath

	if _, err := os.Stat(videoPath); err != nil {
		return out, services.Wrap(services.ErrSourceUnavailable, string(StateSampling), "open video", videoPath, err)
	}

	// Each branch keeps its own error; a failed branch must not cancel the
	// others, so the group carries no derived context.
	var (
		g               errgroup.Group
		dupErr, textErr error
		dupReport       duplicates.Report
		textResult      ocr.Result
		transcript      string
	)
	g.Go(func() error {
		tr.enter(StateDuplicateScan)
		tr.time(string(StateDuplicateScan), func() {
			dupReport, dupErr = r.caps.DetectDuplicates(services.WithStage(ctx, string(StateDuplicateScan)), videoPath)
		})
		return nil
	})
	g.Go(func() error {
		tr.enter(StateTextExtraction)
		tr.time(string(StateTextExtraction), func() {
			textResult, textErr = r.caps.ExtractFrameText(services.WithStage(ctx, string(StateTextExtraction)), videoPath)
		})
		return nil
	})
	g.Go(func() error {
		tr.time(StageTranscription, func() {
			text, err := r.caps.Transcribe(services.WithStage(ctx, StageTranscription), audioPath)
			if err != nil {
				logging.WarnWithContext(logger, "transcription failed; continuing without a transcript", "transcription_failed",
					logging.String("path", audioPath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "transcript omitted from evidence"),
				)
				return
			}
			transcript = text
		})
		return nil
	})
	_ = g.Wait()

	if err := sourceError(dupErr, textErr); err != nil {
		return out, err
	}
	if dupErr != nil {
		logging.WarnWithContext(logger, "duplicate scan failed", "duplicate_scan_failed",
			logging.Error(dupErr),
			logging.String(logging.FieldImpact, "no duplicate pairs reported"),
		)
	} else {
		report.Duplicates = dupReport
		if report.Duplicates.Pairs == nil {
			report.Duplicates.Pairs = []duplicates.Pair{}
		}
	}
	if textErr != nil {
		logging.WarnWithContext(logger, "frame text extraction failed", "frame_text_failed",
			logging.Error(textErr),
			logging.String(logging.FieldImpact, "on-screen text omitted from evidence"),
		)
	} else {
		report.FrameText = textResult
		out.frameText = textResult.Text
	}
	out.transcript = transcript
	return out, nil
}

// sourceError returns the first branch error that means the video could not
// be read at all.
func sourceError(errs ...error) error {
	for _, err := range errs {
		if err != nil && (errors.Is(err, services.ErrSourceUnavailable) || errors.Is(err, context.Canceled)) {
			return err
		}
	}
	return nil
}

// fail ends the run. from names the state that failed; source errors raised
// while a branch decodes still belong to SAMPLING.
func (r *Runner) fail(ctx context.Context, tr *tracker, report *Report, start time.Time, from State, err error) (*Report, error) {
	tr.enter(StateFailed)
	report.Failure = services.FailureState(err)
	report.FailedIn = from
	report.Error = err.Error()
	r.finish(tr, report, start)
	logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "check failed", "check_failed",
		logging.String("from_state", string(from)),
		logging.String("failure", string(report.Failure)),
		logging.Error(err),
	)
	return report, err
}

func (r *Runner) finish(tr *tracker, report *Report, start time.Time) {
	report.History, report.Timings = tr.snapshot()
	report.State = tr.state()
	report.Elapsed = r.now().Sub(start)
}
