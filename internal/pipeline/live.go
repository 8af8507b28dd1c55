package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidcheck/internal/config"
	"vidcheck/internal/download"
	"vidcheck/internal/duplicates"
	"vidcheck/internal/frames"
	"vidcheck/internal/logging"
	"vidcheck/internal/ocr"
	"vidcheck/internal/services"
	"vidcheck/internal/services/oracle"
	"vidcheck/internal/transcribe"
	"vidcheck/internal/verdictstore"
	"vidcheck/internal/verify"
)

// Live implements Capabilities with the real collaborators.
type Live struct {
	Downloader *download.Downloader
	Model      *transcribe.Model
	Opener     frames.Opener
	OCR        *ocr.Extractor
	Detector   duplicates.Detector
	Verifier   *verify.Client
	Sampling   config.Sampling

	// DuplicateWidth is the decode width of the duplicate scan, which keeps
	// every sampled frame in memory until scoring.
	DuplicateWidth int

	store  verdictstore.Store
	logger *slog.Logger
}

// LiveOption customizes NewLive.
type LiveOption func(*liveOptions)

type liveOptions struct {
	opener frames.Opener
	oracle verify.Oracle
	engine ocr.Engine
	loads  []transcribe.LoadOption
}

// WithOpener replaces the ffmpeg frame opener.
func WithOpener(opener frames.Opener) LiveOption {
	return func(o *liveOptions) { o.opener = opener }
}

// WithOracle replaces the HTTP oracle client.
func WithOracle(oracle verify.Oracle) LiveOption {
	return func(o *liveOptions) { o.oracle = oracle }
}

// WithOCREngine replaces the tesseract engine.
func WithOCREngine(engine ocr.Engine) LiveOption {
	return func(o *liveOptions) { o.engine = engine }
}

// WithTranscribeOptions forwards options to transcribe.Load.
func WithTranscribeOptions(opts ...transcribe.LoadOption) LiveOption {
	return func(o *liveOptions) { o.loads = append(o.loads, opts...) }
}

// NewLive builds the production capabilities from cfg. A transcription model
// that fails to load is logged and left nil; runs then continue without a
// transcript. The caller must Close the returned value.
func NewLive(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...LiveOption) (*Live, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is nil")
	}
	var o liveOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.NewComponentLogger(logger, "pipeline")

	detector, err := duplicates.New(cfg.Duplicates.Strategy, cfg.Duplicates.Threshold, cfg.Duplicates.Window)
	if err != nil {
		return nil, err
	}

	if o.opener == nil {
		o.opener = frames.NewFFmpegOpener(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if o.engine == nil {
		o.engine = ocr.NewTesseractEngine(cfg.OCR.Binary, cfg.OCR.Languages, time.Duration(cfg.OCR.TimeoutSeconds)*time.Second)
	}
	if o.oracle == nil {
		oc := cfg.GetOracle()
		o.oracle = oracle.NewClient(oracle.Config{
			APIKey:         oc.APIKey,
			BaseURL:        oc.BaseURL,
			Model:          oc.Model,
			Referer:        oc.Referer,
			Title:          oc.Title,
			TimeoutSeconds: oc.TimeoutSeconds,
		})
	}

	live := &Live{
		Downloader:     download.NewFromConfig(cfg, logger),
		Opener:         o.opener,
		OCR:            ocr.NewExtractor(o.engine, cfg.OCR.Workers, logger),
		Detector:       detector,
		Sampling:       cfg.Sampling,
		DuplicateWidth: duplicateWidth(cfg),
		logger:         logger,
	}

	verifyOpts := []verify.Option{verify.WithLogger(logger), verify.WithModel(cfg.Oracle.Model)}
	if cfg.Cache.Enabled {
		store, err := verdictstore.Open(ctx, cfg)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "", "open verdict store", cfg.Cache.Driver, err)
		}
		live.store = store
		verifyOpts = append(verifyOpts, verify.WithStore(store))
	}
	live.Verifier, err = verify.NewClient(o.oracle, cfg.Cache.LRUSize, verifyOpts...)
	if err != nil {
		live.Close()
		return nil, err
	}

	loads := append([]transcribe.LoadOption{transcribe.WithLogger(logger)}, o.loads...)
	model, err := transcribe.Load(ctx, transcribe.ConfigFromApp(cfg), loads...)
	if err != nil {
		logging.WarnWithContext(logger, "transcription unavailable", "transcriber_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install uv and ffmpeg to enable WhisperX"),
			logging.String(logging.FieldImpact, "checks run without a transcript"),
		)
	} else {
		live.Model = model
	}
	return live, nil
}

// Close releases the verdict store.
func (l *Live) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// DownloadVideo fetches the video, subtitles and thumbnail behind url.
func (l *Live) DownloadVideo(ctx context.Context, url string) (download.VideoAssets, error) {
	return l.Downloader.DownloadVideo(ctx, url)
}

// DownloadAudio fetches the audio track behind url.
func (l *Live) DownloadAudio(ctx context.Context, url string) (string, error) {
	return l.Downloader.DownloadAudio(ctx, url)
}

// Transcribe returns the transcript of path.
func (l *Live) Transcribe(ctx context.Context, path string) (string, error) {
	if l.Model == nil {
		return "", services.Wrap(services.ErrConfiguration, StageTranscription, "transcribe", "no transcription model loaded", nil)
	}
	return l.Model.Transcribe(ctx, path)
}

// ExtractFrameText samples at the text stride and recognizes on-screen text.
func (l *Live) ExtractFrameText(ctx context.Context, videoPath string) (ocr.Result, error) {
	seq, err := l.sample(ctx, videoPath, l.Sampling.TextStride, l.Sampling.ScaleWidth)
	if err != nil {
		return ocr.Result{}, err
	}
	return l.OCR.Extract(ctx, seq)
}

// DetectDuplicates samples at the duplicate stride and scores adjacent frames.
func (l *Live) DetectDuplicates(ctx context.Context, videoPath string) (duplicates.Report, error) {
	seq, err := l.sample(ctx, videoPath, l.Sampling.DuplicateStride, l.DuplicateWidth)
	if err != nil {
		return duplicates.Report{}, err
	}
	return l.Detector.Detect(ctx, seq)
}

// Verify asks the oracle, through the verdict cache, about prompt.
func (l *Live) Verify(ctx context.Context, prompt string) (verify.Result, error) {
	if l.Verifier == nil {
		return verify.Result{}, services.Wrap(services.ErrConfiguration, string(StateAwaitingVerification), "verify", "no verifier configured", nil)
	}
	result := l.Verifier.Verify(ctx, prompt)
	if err := ctx.Err(); err != nil {
		return result, services.Wrap(services.ErrOracle, string(StateAwaitingVerification), "verify", "run cancelled", err)
	}
	return result, nil
}

func (l *Live) sample(ctx context.Context, path string, stride, width int) (frames.SampledSequence, error) {
	sampler := frames.NewSampler(l.Opener, l.logger, frames.WithScaleWidth(width))
	seq, err := sampler.Sample(ctx, path, stride, l.Sampling.MaxFrames)
	if err != nil {
		return seq, fmt.Errorf("sample %s: %w", path, err)
	}
	return seq, nil
}

// duplicateWidth picks the narrower of the duplicate and sampling widths,
// treating zero as the native width.
func duplicateWidth(cfg *config.Config) int {
	dup, shared := cfg.Duplicates.ScaleWidth, cfg.Sampling.ScaleWidth
	if dup <= 0 || (shared > 0 && shared < dup) {
		return shared
	}
	return dup
}
