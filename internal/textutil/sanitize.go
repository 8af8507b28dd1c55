package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameRunes = 120

// SanitizeFileName reduces an untrusted file name (typically a multipart
// upload name) to a safe base name. Directory components are discarded,
// colons and asterisks become dashes, quoting and redirection characters and
// control characters are dropped. Leading and trailing dots are trimmed so the
// result can never be "." or "..". Names longer than 120 runes are shortened
// with the extension kept. An empty result means nothing usable was left.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r):
		case r == ':' || r == '*':
			b.WriteByte('-')
		case strings.ContainsRune(`?"<>|`, r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(strings.TrimSpace(b.String()), ".")
	if out == "" {
		return ""
	}

	runes := []rune(out)
	if len(runes) <= maxFileNameRunes {
		return out
	}
	ext := filepath.Ext(out)
	if len([]rune(ext)) >= maxFileNameRunes/2 {
		ext = ""
	}
	base := []rune(strings.TrimSuffix(out, ext))
	return string(base[:maxFileNameRunes-len([]rune(ext))]) + ext
}
