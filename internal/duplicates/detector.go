package duplicates

import (
	"context"
	"fmt"
	"strings"

	"vidcheck/internal/frames"
	"vidcheck/internal/services"
)

const (
	StrategySSIM = "ssim"
	StrategyHash = "hash"

	// DefaultThreshold is the SSIM score a pair must exceed to be reported.
	DefaultThreshold = 0.97
	// DefaultWindow is the side of the square SSIM window.
	DefaultWindow = 7
)

// Pair identifies two frames judged to be duplicates, by decoded-stream position.
type Pair struct {
	PositionA int     `json:"position_a"`
	PositionB int     `json:"position_b"`
	Score     float64 `json:"score"`
}

// Report summarizes a duplicate scan.
type Report struct {
	TotalFrames int     `json:"total_frames"`
	Pairs       []Pair  `json:"pairs"`
	Strategy    string  `json:"strategy"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// Detector scans a sampled sequence for duplicate frames.
type Detector interface {
	Detect(ctx context.Context, seq frames.SampledSequence) (Report, error)
}

// New selects a detector by strategy name.
func New(strategy string, threshold float64, window int) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategySSIM, "":
		return NewSSIMDetector(threshold, window), nil
	case StrategyHash:
		return HashBucketDetector{}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "DUPLICATE_SCAN", "select detector", fmt.Sprintf("unknown strategy %q", strategy), nil)
	}
}
