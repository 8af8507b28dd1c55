package subtitles

import (
	"fmt"
	"os"
	"strings"
)

const webVTTHeader = "WEBVTT"

// Normalize keeps caption text lines in order and joins them with a single space.
// Cue-index lines, timing lines and blank lines are discarded.
func Normalize(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isTiming(line) || isNumeric(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

// ReadFile loads an SRT or WebVTT file and returns its normalized text.
// Invalid UTF-8 bytes are dropped.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitles: %w", err)
	}
	return Normalize(SplitLines(string(data))), nil
}

// SplitLines splits caption content into lines, dropping a byte-order mark and
// the WebVTT header block.
func SplitLines(content string) []string {
	content = strings.ToValidUTF8(content, "")
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	return stripVTTHeader(lines)
}

// stripVTTHeader removes the WEBVTT line and the metadata lines that follow it
// up to the first blank line.
func stripVTTHeader(lines []string) []string {
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), webVTTHeader) {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			return lines[i+1:]
		}
		if isTiming(lines[i]) {
			return lines[i:]
		}
	}
	return nil
}

func isTiming(line string) bool {
	return strings.Contains(line, "-->")
}

func isNumeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
