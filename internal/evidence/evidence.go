// Package evidence merges the normalized text streams of a run into one
// document and renders the verification prompt from it.
package evidence

import (
	"strings"

	"vidcheck/internal/textutil"
)

const promptPreamble = "Please analyze the following news content and answer:\n" +
	"- Is this news genuine (true) or false?\n" +
	"- Provide reasons supporting your conclusion.\n\n" +
	"News content:\n"

// Document holds the normalized evidence of one run. Build it with NewDocument;
// fields are not meant to change afterwards.
type Document struct {
	Transcript   string `json:"transcript"`
	SubtitleText string `json:"subtitle_text"`
	FrameText    string `json:"frame_text"`
	CombinedText string `json:"combined_text"`
}

// NewDocument normalizes each source for display. CombinedText joins the
// non-empty raw sources with "\n" and normalizes them in one pass, so markup
// that spans a source boundary is stripped as a whole.
func NewDocument(transcript, subtitles, frameText string) Document {
	raw := make([]string, 0, 3)
	for _, field := range []string{transcript, subtitles, frameText} {
		if field != "" {
			raw = append(raw, field)
		}
	}
	return Document{
		Transcript:   textutil.Normalize(transcript),
		SubtitleText: textutil.Normalize(subtitles),
		FrameText:    textutil.Normalize(frameText),
		CombinedText: textutil.Normalize(strings.Join(raw, "\n")),
	}
}

// Empty reports whether there is nothing to verify.
func (d Document) Empty() bool {
	return d.CombinedText == ""
}

// Prompt renders the verification request for d. Identical documents always
// render identical prompts.
func (d Document) Prompt() string {
	return Prompt(d.CombinedText)
}

// Prompt wraps text in the verification template.
func Prompt(text string) string {
	return promptPreamble + text
}
