package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)
	// H:MM, HH:MM, H:MM:SS and H:MM:SS.fff tokens.
	timestampPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2}(\.\d{1,3})?)?\b`)
)

// Normalize drops invalid UTF-8, strips markup tags and timestamp tokens,
// collapses whitespace runs to single spaces and trims the result.
//
// Tags go before timestamps so markup splitting a timestamp cannot leave a new
// one behind. The text is NFC-composed on the way in and again on the way out
// because removing a tag can bring a combining mark next to a new base rune.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(strings.ToValidUTF8(text, ""))
	text = tagPattern.ReplaceAllString(text, "")
	text = timestampPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return norm.NFC.String(text)
}
