package pipeline

import (
	"context"

	"vidcheck/internal/download"
	"vidcheck/internal/duplicates"
	"vidcheck/internal/ocr"
	"vidcheck/internal/verify"
)

// Capabilities is everything a run needs from the outside world.
//
// Frame branches receive the video path and open their own decoder, so the
// two branches never share decode state.
type Capabilities interface {
	DownloadVideo(ctx context.Context, url string) (download.VideoAssets, error)
	DownloadAudio(ctx context.Context, url string) (string, error)
	Transcribe(ctx context.Context, path string) (string, error)
	ExtractFrameText(ctx context.Context, videoPath string) (ocr.Result, error)
	DetectDuplicates(ctx context.Context, videoPath string) (duplicates.Report, error)
	// Verify returns an error only when verification could not be attempted;
	// oracle failures come back as a Failed result.
	Verify(ctx context.Context, prompt string) (verify.Result, error)
}
