package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"vidcheck/internal/services"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10"

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTestDownloader(t *testing.T, langs ...string) (*Downloader, string, string) {
	t.Helper()
	base := t.TempDir()
	videoDir := filepath.Join(base, "videos")
	audioDir := filepath.Join(base, "audio")
	d := New(Options{VideoDir: videoDir, AudioDir: audioDir, SubtitleLanguages: langs}, nil)
	return d, videoDir, audioDir
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abcdefghijk", "abcdefghijk", true},
		{"https://example.com/x", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := VideoID(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("VideoID(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestThumbnailFallbackURL(t *testing.T) {
	if got := ThumbnailFallbackURL(testURL); got != "https://img.youtube.com/vi/dQw4w9WgXcQ/0.jpg" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := ThumbnailFallbackURL("https://example.com/x"); got != "" {
		t.Fatalf("expected no fallback, got %q", got)
	}
}

func TestFileKeyWithoutVideoID(t *testing.T) {
	a := fileKey("https://example.com/a")
	b := fileKey("https://example.com/b")
	if a == b || len(a) != len("url-")+16 {
		t.Fatalf("unexpected keys %q %q", a, b)
	}
}

func TestDownloadVideoFindsAssets(t *testing.T) {
	d, videoDir, _ := newTestDownloader(t, "hi", "en")
	var gotURL string
	d.WithRunner(func(_ context.Context, cmd *ytdlp.Command, url string) error {
		if cmd == nil {
			t.Fatal("expected command")
		}
		gotURL = url
		base := filepath.Join(videoDir, "dQw4w9WgXcQ")
		touch(t, base+".mp4")
		touch(t, base+".en.srt")
		touch(t, base+".en.vtt")
		touch(t, base+".webp")
		return nil
	})

	assets, err := d.DownloadVideo(context.Background(), testURL)
	if err != nil {
		t.Fatalf("DownloadVideo returned error: %v", err)
	}
	if gotURL != testURL {
		t.Fatalf("runner got url %q", gotURL)
	}
	base := filepath.Join(videoDir, "dQw4w9WgXcQ")
	if assets.VideoPath != base+".mp4" {
		t.Fatalf("unexpected video path %q", assets.VideoPath)
	}
	if assets.SubtitlePath != base+".en.vtt" {
		t.Fatalf("expected vtt preferred, got %q", assets.SubtitlePath)
	}
	if assets.ThumbnailPath != base+".webp" {
		t.Fatalf("unexpected thumbnail %q", assets.ThumbnailPath)
	}
}

func TestDownloadVideoWithoutOptionalAssets(t *testing.T) {
	d, videoDir, _ := newTestDownloader(t)
	d.WithRunner(func(context.Context, *ytdlp.Command, string) error {
		touch(t, filepath.Join(videoDir, "dQw4w9WgXcQ.webm"))
		return nil
	})
	assets, err := d.DownloadVideo(context.Background(), testURL)
	if err != nil {
		t.Fatalf("DownloadVideo returned error: %v", err)
	}
	if assets.SubtitlePath != "" || assets.ThumbnailPath != "" {
		t.Fatalf("expected no optional assets, got %+v", assets)
	}
}

func TestDownloadVideoFailures(t *testing.T) {
	d, _, _ := newTestDownloader(t)
	d.WithRunner(func(context.Context, *ytdlp.Command, string) error {
		return errors.New("HTTP Error 404")
	})
	if _, err := d.DownloadVideo(context.Background(), testURL); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}

	d.WithRunner(func(context.Context, *ytdlp.Command, string) error { return nil })
	if _, err := d.DownloadVideo(context.Background(), testURL); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable for missing file, got %v", err)
	}

	if _, err := d.DownloadVideo(context.Background(), " "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDownloadAudio(t *testing.T) {
	d, _, audioDir := newTestDownloader(t)
	d.WithRunner(func(context.Context, *ytdlp.Command, string) error {
		touch(t, filepath.Join(audioDir, "dQw4w9WgXcQ.mp3"))
		return nil
	})
	path, err := d.DownloadAudio(context.Background(), testURL)
	if err != nil {
		t.Fatalf("DownloadAudio returned error: %v", err)
	}
	if path != filepath.Join(audioDir, "dQw4w9WgXcQ.mp3") {
		t.Fatalf("unexpected audio path %q", path)
	}

	d2, _, _ := newTestDownloader(t)
	d2.WithRunner(func(context.Context, *ytdlp.Command, string) error { return nil })
	if _, err := d2.DownloadAudio(context.Background(), testURL); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestDownloadSerializesSameVideo(t *testing.T) {
	d, videoDir, _ := newTestDownloader(t)
	var inflight, peak atomic.Int32
	d.WithRunner(func(context.Context, *ytdlp.Command, string) error {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(20 * time.Millisecond)
		touch(t, filepath.Join(videoDir, "dQw4w9WgXcQ.mp4"))
		return nil
	})

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.DownloadVideo(context.Background(), testURL); err != nil {
				t.Errorf("DownloadVideo returned error: %v", err)
			}
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Fatalf("expected downloads of one video to serialize, peak %d", peak.Load())
	}
}
