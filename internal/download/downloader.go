package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/lrstanley/go-ytdlp"

	"vidcheck/internal/config"
	"vidcheck/internal/fileutil"
	"vidcheck/internal/logging"
	"vidcheck/internal/services"
)

const (
	stageDownload = "DOWNLOAD"

	defaultMaxHeight    = 360
	defaultAudioQuality = "192K"
	lockRetryDelay      = 250 * time.Millisecond
)

var (
	videoExtensions     = []string{".mp4", ".mkv", ".webm"}
	thumbnailExtensions = []string{".jpg", ".webp", ".png"}
	subtitleExtensions  = []string{".vtt", ".srt"}
)

// VideoAssets are the files fetched for one video. SubtitlePath and
// ThumbnailPath are empty when the site offered none.
type VideoAssets struct {
	VideoPath     string `json:"video_path"`
	SubtitlePath  string `json:"subtitle_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// Runner executes a prepared yt-dlp command against url.
type Runner func(ctx context.Context, cmd *ytdlp.Command, url string) error

// Options configures a Downloader.
type Options struct {
	Binary            string
	VideoDir          string
	AudioDir          string
	MaxHeight         int
	SubtitleLanguages []string
	AudioQuality      string
}

// Downloader fetches media with yt-dlp.
type Downloader struct {
	opts   Options
	logger *slog.Logger
	run    Runner
}

// New constructs a Downloader.
func New(opts Options, logger *slog.Logger) *Downloader {
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = defaultMaxHeight
	}
	if strings.TrimSpace(opts.AudioQuality) == "" {
		opts.AudioQuality = defaultAudioQuality
	}
	if len(opts.SubtitleLanguages) == 0 {
		opts.SubtitleLanguages = []string{"en"}
	}
	return &Downloader{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "download"),
		run:    runYTDLP,
	}
}

// NewFromConfig builds a Downloader from the download section and work paths.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Downloader {
	return New(Options{
		Binary:            cfg.Download.Binary,
		VideoDir:          cfg.VideoDir(),
		AudioDir:          cfg.AudioDir(),
		MaxHeight:         cfg.Download.MaxHeight,
		SubtitleLanguages: cfg.Download.SubtitleLanguages,
		AudioQuality:      cfg.Download.AudioQuality,
	}, logger)
}

// WithRunner replaces the yt-dlp execution (for testing).
func (d *Downloader) WithRunner(run Runner) {
	if run != nil {
		d.run = run
	}
}

// DownloadVideo fetches the video capped at the configured height, together
// with captions in the configured languages and the thumbnail.
func (d *Downloader) DownloadVideo(ctx context.Context, url string) (VideoAssets, error) {
	var assets VideoAssets
	if strings.TrimSpace(url) == "" {
		return assets, services.Wrap(services.ErrValidation, stageDownload, "video", "url is required", nil)
	}
	key := fileKey(url)
	base := filepath.Join(d.opts.VideoDir, key)

	unlock, err := d.lock(ctx, d.opts.VideoDir, key)
	if err != nil {
		return assets, err
	}
	defer unlock()

	h := d.opts.MaxHeight
	cmd := d.command().
		Format(fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best[height<=%d]", h, h, h)).
		MergeOutputFormat("mp4").
		Output(base + ".%(ext)s").
		WriteSubs().
		WriteAutoSubs().
		SubLangs(strings.Join(d.opts.SubtitleLanguages, ",")).
		WriteThumbnail()

	logger := logging.WithContext(ctx, d.logger)
	start := time.Now()
	logger.Info("downloading video", logging.String("url", url), logging.String("key", key))
	if err := d.run(ctx, cmd, url); err != nil {
		return assets, services.Wrap(services.ErrSourceUnavailable, stageDownload, "video", url, err)
	}

	video, ok := fileutil.FindFirst(base, videoExtensions...)
	if !ok {
		return assets, services.Wrap(services.ErrSourceUnavailable, stageDownload, "video", "yt-dlp produced no video file for "+url, nil)
	}
	assets.VideoPath = video
	assets.SubtitlePath = d.findSubtitle(base)
	assets.ThumbnailPath, _ = fileutil.FindFirst(base, thumbnailExtensions...)

	logger.Info("video downloaded",
		logging.String("video", assets.VideoPath),
		logging.Bool("subtitles", assets.SubtitlePath != ""),
		logging.Bool("thumbnail", assets.ThumbnailPath != ""),
		logging.Duration("elapsed", time.Since(start)),
	)
	return assets, nil
}

// DownloadAudio fetches the best audio stream and converts it to MP3.
func (d *Downloader) DownloadAudio(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", services.Wrap(services.ErrValidation, stageDownload, "audio", "url is required", nil)
	}
	key := fileKey(url)
	base := filepath.Join(d.opts.AudioDir, key)

	unlock, err := d.lock(ctx, d.opts.AudioDir, key)
	if err != nil {
		return "", err
	}
	defer unlock()

	cmd := d.command().
		Format("bestaudio/best").
		Output(base + ".%(ext)s").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality(d.opts.AudioQuality)

	logging.WithContext(ctx, d.logger).Info("downloading audio", logging.String("url", url), logging.String("key", key))
	if err := d.run(ctx, cmd, url); err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, stageDownload, "audio", url, err)
	}
	path, ok := fileutil.FindFirst(base, ".mp3")
	if !ok {
		return "", services.Wrap(services.ErrSourceUnavailable, stageDownload, "audio", "yt-dlp produced no mp3 for "+url, nil)
	}
	return path, nil
}

func (d *Downloader) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoPlaylist().
		NoProgress().
		NoWarnings()
	if bin := strings.TrimSpace(d.opts.Binary); bin != "" {
		cmd = cmd.SetExecutable(bin)
	}
	return cmd
}

// findSubtitle honours the configured language order, preferring VTT over SRT
// for each language.
func (d *Downloader) findSubtitle(base string) string {
	for _, lang := range d.opts.SubtitleLanguages {
		if path, ok := fileutil.FindFirst(base+"."+lang, subtitleExtensions...); ok {
			return path
		}
	}
	return ""
}

// lock serializes downloads of the same key across processes.
func (d *Downloader) lock(ctx context.Context, dir, key string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageDownload, "prepare", dir, err)
	}
	fl := flock.New(filepath.Join(dir, key+".lock"))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageDownload, "lock", key, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, stageDownload, "lock", "could not lock "+key, nil)
	}
	return func() { _ = fl.Unlock() }, nil
}

func runYTDLP(ctx context.Context, cmd *ytdlp.Command, url string) error {
	_, err := cmd.Run(ctx, url)
	return err
}
