package api

import (
	"time"

	"vidcheck/internal/pipeline"
)

// FromReport converts a pipeline report to its API representation.
func FromReport(report *pipeline.Report) CheckResponse {
	if report == nil {
		return CheckResponse{}
	}
	dto := CheckResponse{
		RunID:        report.RunID,
		Kind:         string(report.Kind),
		Source:       report.Source,
		State:        string(report.State),
		History:      make([]string, 0, len(report.History)),
		Failure:      string(report.Failure),
		FailedIn:     string(report.FailedIn),
		Error:        report.Error,
		ElapsedMs:    millis(report.Elapsed),
		Timings:      make([]StageTiming, 0, len(report.Timings)),
		Thumbnail:    report.Thumbnail,
		Duplicates:   make([]DuplicatePair, 0, len(report.Duplicates.Pairs)),
		Transcript:   report.Transcript,
		SubtitleText: report.SubtitleText,
		FrameText:    report.FrameText.Text,
		FrameTextStats: FrameTextStats{
			FramesScanned:  report.FrameText.FramesScanned,
			FramesWithText: report.FrameText.FramesWithText,
			FramesFailed:   report.FrameText.FramesFailed,
		},
		Language: report.Language,
		Triggers: make([]TriggerHit, 0, len(report.Triggers)),
		Prompt:   report.Prompt,
		Verification: Verification{
			Verdict:    report.Verification.Verdict,
			Confidence: report.Verification.Confidence,
			Cached:     report.Verification.Cached,
			Failed:     report.Verification.Failed,
		},
		NothingToVerify: report.NothingToVerify,
	}
	if !report.StartedAt.IsZero() {
		dto.StartedAt = report.StartedAt.UTC().Format(dateTimeFormat)
	}
	for _, state := range report.History {
		dto.History = append(dto.History, string(state))
	}
	for _, t := range report.Timings {
		dto.Timings = append(dto.Timings, StageTiming{Stage: t.Stage, DurationMs: millis(t.Duration)})
	}
	seen := make(map[int]struct{})
	for _, p := range report.Duplicates.Pairs {
		dto.Duplicates = append(dto.Duplicates, DuplicatePair{PositionA: p.PositionA, PositionB: p.PositionB, Score: p.Score})
		seen[p.PositionA] = struct{}{}
		seen[p.PositionB] = struct{}{}
	}
	dto.DuplicateFrames = len(seen)
	for _, h := range report.Triggers {
		dto.Triggers = append(dto.Triggers, TriggerHit{Language: h.Language, Word: h.Word, Snippet: h.Snippet})
	}
	return dto
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
