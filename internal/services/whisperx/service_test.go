package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	fn    func(name string, args []string) ([]byte, error)
}

func (r *recorder) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.fn != nil {
		return r.fn(name, args)
	}
	return nil, nil
}

func TestTranscribeArgsCPU(t *testing.T) {
	svc := New(Config{Language: "Telugu"})
	args := svc.transcribeArgs("/tmp/a.wav", "/tmp/out")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"--index-url " + pypiIndexURL,
		"whisperx /tmp/a.wav",
		"--model base",
		"--output_format json",
		"--vad_method silero",
		"--language te",
		"--device cpu --compute_type float32",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
	if slices.Contains(args, "--hf_token") {
		t.Fatal("silero must not pass an hf token")
	}
}

func TestTranscribeArgsCUDAPyannote(t *testing.T) {
	svc := New(Config{Model: "large-v3", CUDAEnabled: true, VADMethod: "PyAnnote", HFToken: "hf_x"})
	joined := strings.Join(svc.transcribeArgs("a.wav", "out"), " ")
	for _, want := range []string{"--extra-index-url " + pypiIndexURL, "--model large-v3", "--vad_method pyannote", "--hf_token hf_x", "--device cuda"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %q", want, joined)
		}
	}
	if strings.Contains(joined, "--language") {
		t.Fatal("language must be omitted when not configured")
	}
}

func TestBinariesDefaults(t *testing.T) {
	if got := New(Config{}).Binaries(); !slices.Equal(got, []string{"ffmpeg", "uvx"}) {
		t.Fatalf("unexpected binaries %v", got)
	}
	if got := New(Config{FFmpeg: "/opt/ffmpeg", UVX: "/opt/uvx"}).Binaries(); !slices.Equal(got, []string{"/opt/ffmpeg", "/opt/uvx"}) {
		t.Fatalf("unexpected binaries %v", got)
	}
}

func TestExtractAudioWrapsToolOutput(t *testing.T) {
	rec := &recorder{fn: func(string, []string) ([]byte, error) {
		return []byte("frame=1\nStream map '0:a:0' matches no streams.\n"), errors.New("exit status 1")
	}}
	svc := New(Config{FFmpeg: "ffmpeg-test"}, WithRunner(rec.run))
	err := svc.ExtractAudio(context.Background(), "in.mp4", "out.wav")
	if err == nil || !strings.Contains(err.Error(), "matches no streams") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
	call := rec.calls[0]
	if call[0] != "ffmpeg-test" || !slices.Contains(call, "16000") || call[len(call)-1] != "out.wav" {
		t.Fatalf("unexpected ffmpeg call %v", call)
	}
}

func TestTranscribeFileReadsJSON(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")
	rec := &recorder{fn: func(string, []string) ([]byte, error) {
		payload := `{"language":"en","segments":[{"text":" The bridge "},{"text":""},{"text":"collapsed."}]}`
		return nil, os.WriteFile(filepath.Join(dir, "out", "clip.json"), []byte(payload), 0o644)
	}}
	svc := New(Config{UVX: "uvx-test"}, WithRunner(rec.run))

	result, err := svc.TranscribeFile(context.Background(), source, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	if result.Text != "The bridge collapsed." || result.Language != "en" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(rec.calls) != 1 || rec.calls[0][0] != "uvx-test" {
		t.Fatalf("unexpected calls %v", rec.calls)
	}
}

func TestTranscribeFileMissingOutput(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	svc := New(Config{}, WithRunner(rec.run))
	if _, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "a.wav"), dir); err == nil {
		t.Fatal("expected error when WhisperX writes no JSON")
	}
}

func TestOutputTailKeepsLastLines(t *testing.T) {
	var b strings.Builder
	for i := range 30 {
		b.WriteString("line ")
		b.WriteByte(byte('a' + i%26))
		b.WriteString("\n\n")
	}
	tail := outputTail([]byte(b.String()))
	if parts := strings.Split(tail, " | "); len(parts) != maxErrorLines {
		t.Fatalf("expected %d lines, got %d", maxErrorLines, len(parts))
	}
	if !strings.HasSuffix(tail, "line d") {
		t.Fatalf("expected last line kept, got %q", tail)
	}
}
