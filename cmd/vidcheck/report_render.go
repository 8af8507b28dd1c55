package main

import (
	"fmt"
	"strings"
	"time"

	"vidcheck/internal/pipeline"
)

const previewRunes = 160

func printReport(p *printer, report *pipeline.Report) {
	if report == nil {
		return
	}
	p.section("Check " + report.RunID)
	p.field("Source", report.Source)
	printState(p, report)
	p.field("Elapsed", report.Elapsed.Round(time.Millisecond).String())
	if report.Language != "" {
		p.field("Language", report.Language)
	}
	if report.Kind != pipeline.KindText {
		dup := report.Duplicates
		p.field("Duplicate pairs", fmt.Sprintf("%d (%s, threshold %.2f)", len(dup.Pairs), dup.Strategy, dup.Threshold))
		ft := report.FrameText
		p.field("Frame text", fmt.Sprintf("%d scanned, %d with text, %d failed", ft.FramesScanned, ft.FramesWithText, ft.FramesFailed))
		p.field("Transcript", preview(report.Transcript))
		p.field("Subtitles", preview(report.SubtitleText))
	}
	if report.Thumbnail != "" {
		p.field("Thumbnail", report.Thumbnail)
	}

	if len(report.Triggers) > 0 {
		p.section("Trigger words")
		rows := make([][]string, 0, len(report.Triggers))
		for _, hit := range report.Triggers {
			rows = append(rows, []string{hit.Language, hit.Word, hit.Snippet})
		}
		p.table([]string{"Lang", "Word", "Context"}, rows)
	}

	if len(report.Timings) > 0 {
		p.section("Stage timings")
		rows := make([][]string, 0, len(report.Timings))
		for _, t := range report.Timings {
			rows = append(rows, []string{t.Stage, t.Duration.Round(time.Millisecond).String()})
		}
		p.table([]string{"Stage", "Duration"}, rows, 1)
	}

	if report.State != pipeline.StateDone {
		return
	}
	p.section("Verdict")
	v := report.Verification
	switch {
	case report.NothingToVerify:
		p.status("Verdict", toneWarn, "no evidence was extracted; nothing to verify")
	case v.Failed:
		p.status("Verdict", toneWarn, "verification failed")
		p.line(v.Verdict)
	default:
		p.status("Cached", toneAccent, yesNo(v.Cached))
		p.line(v.Verdict)
	}
}

func printState(p *printer, report *pipeline.Report) {
	if report.State != pipeline.StateFailed {
		p.status("State", toneGood, string(report.State))
		return
	}
	msg := fmt.Sprintf("%s in %s (%s)", report.State, report.FailedIn, report.Failure)
	if report.Error != "" {
		msg += ": " + report.Error
	}
	p.status("State", toneBad, msg)
}

// preview collapses whitespace and truncates long evidence for display.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "(none)"
	}
	if runes := []rune(s); len(runes) > previewRunes {
		return string(runes[:previewRunes]) + "..."
	}
	return s
}
