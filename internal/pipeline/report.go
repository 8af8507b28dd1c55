package pipeline

import (
	"time"

	"vidcheck/internal/duplicates"
	"vidcheck/internal/ocr"
	"vidcheck/internal/services"
	"vidcheck/internal/triggers"
	"vidcheck/internal/verify"
)

// Report is the outcome of one run. Every field is populated even when a
// stage degraded, so callers can render a partial result.
type Report struct {
	RunID     string           `json:"run_id"`
	Kind      InputKind        `json:"kind"`
	Source    string           `json:"source"`
	State     State            `json:"state"`
	History   []State          `json:"history"`
	Failure   services.Failure `json:"failure,omitempty"`
	FailedIn  State            `json:"failed_in,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timings   []StageTiming    `json:"timings"`
	StartedAt time.Time        `json:"started_at"`
	Elapsed   time.Duration    `json:"elapsed_ns"`

	VideoPath  string            `json:"video_path,omitempty"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
	Duplicates duplicates.Report `json:"duplicates"`
	FrameText  ocr.Result        `json:"frame_text"`

	Transcript   string `json:"transcript"`
	SubtitleText string `json:"subtitle_text"`
	Language     string `json:"language"`

	Triggers     []triggers.Hit `json:"triggers"`
	Evidence     string         `json:"evidence"`
	Prompt       string         `json:"prompt"`
	Verification verify.Result  `json:"verification"`
	// NothingToVerify is set when every evidence source was empty and the
	// oracle was not called.
	NothingToVerify bool `json:"nothing_to_verify,omitempty"`
}

// Timing returns the recorded duration for stage.
func (r *Report) Timing(stage string) (time.Duration, bool) {
	for _, t := range r.Timings {
		if t.Stage == stage {
			return t.Duration, true
		}
	}
	return 0, false
}
