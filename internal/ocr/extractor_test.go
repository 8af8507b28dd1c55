package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vidcheck/internal/frames"
)

// markerEngine reads the frame's first pixel to decide what to return.
type markerEngine struct {
	delay    func(v uint8) time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
}

func (m *markerEngine) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	cur := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if cur <= p || m.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	v := img.Pix[0]
	if m.delay != nil {
		select {
		case <-time.After(m.delay(v)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	switch {
	case v == 0:
		return "   \n", nil
	case v == 255:
		return "", errors.New("unreadable")
	default:
		return fmt.Sprintf("  text-%d \n", v), nil
	}
}

func seqOf(values ...uint8) frames.SampledSequence {
	seq := frames.SampledSequence{Stride: 30, Max: len(values)}
	for i, v := range values {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		for j := range img.Pix {
			img.Pix[j] = v
		}
		seq.Frames = append(seq.Frames, frames.Frame{Position: i * 30, Image: img})
	}
	return seq
}

func TestExtractKeepsFrameOrderAndSkipsFailures(t *testing.T) {
	engine := &markerEngine{delay: func(v uint8) time.Duration {
		// Earlier frames finish last.
		return time.Duration(10-int(v)%10) * time.Millisecond
	}}
	ext := NewExtractor(engine, 3, nil)

	result, err := ext.Extract(context.Background(), seqOf(1, 2, 0, 255, 3, 4))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if want := "text-1\ntext-2\ntext-3\ntext-4"; result.Text != want {
		t.Fatalf("text = %q, want %q", result.Text, want)
	}
	if result.FramesScanned != 6 || result.FramesWithText != 4 || result.FramesFailed != 1 {
		t.Fatalf("unexpected counters %+v", result)
	}
	if peak := engine.peak.Load(); peak > 3 {
		t.Fatalf("expected at most 3 concurrent recognitions, saw %d", peak)
	}
}

func TestExtractEmptySequence(t *testing.T) {
	result, err := NewExtractor(&markerEngine{}, 0, nil).Extract(context.Background(), frames.SampledSequence{})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if result.Text != "" || result.FramesScanned != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExtractAllFramesFailing(t *testing.T) {
	result, err := NewExtractor(&markerEngine{}, 2, nil).Extract(context.Background(), seqOf(255, 255))
	if err != nil {
		t.Fatalf("per-frame failures must not abort the batch: %v", err)
	}
	if result.Text != "" || result.FramesFailed != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExtractHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExtractor(&markerEngine{}, 1, nil).Extract(ctx, seqOf(1, 2, 3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTesseractEngineBuildsCommand(t *testing.T) {
	var (
		mu    sync.Mutex
		calls [][]string
	)
	engine := NewTesseractEngine("", "", 0)
	engine.TempDir = t.TempDir()
	engine.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, append([]string{name}, args...))
		return []byte("BREAKING NEWS\n"), nil
	})

	text, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if text != "BREAKING NEWS\n" {
		t.Fatalf("unexpected text %q", text)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one command, got %d", len(calls))
	}
	call := calls[0]
	if call[0] != "tesseract" || call[2] != "stdout" || call[3] != "-l" || call[4] != "eng+tel+hin" {
		t.Fatalf("unexpected command %v", call)
	}
	if call[5] != "--psm" || call[6] != "3" {
		t.Fatalf("expected psm flag, got %v", call)
	}
}

func TestTesseractEngineMarksToolFailure(t *testing.T) {
	engine := NewTesseractEngine("tesseract", "eng", 0)
	engine.TempDir = t.TempDir()
	engine.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})
	_, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	if err == nil {
		t.Fatal("expected error")
	}
}
