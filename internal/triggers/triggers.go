// Package triggers flags sensational phrases commonly used by misleading
// content. Word lists are keyed by ISO 639-1 language code and read from a JSON
// file; an embedded list is used when that file does not exist.
package triggers

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	langpkg "vidcheck/internal/language"
)

// FallbackLanguage is used when detection fails or a language has no list.
const FallbackLanguage = "en"

const snippetRunes = 40

//go:embed trigger_words.json
var defaultWords []byte

// Hit is a trigger word found in scanned text.
type Hit struct {
	Language string `json:"language"`
	Word     string `json:"word"`
	Snippet  string `json:"snippet"`
}

// List holds trigger words per language.
type List struct {
	words  map[string][]string
	source string
}

// Default returns the embedded trigger list.
func Default() *List {
	list, err := parse(defaultWords, "embedded")
	if err != nil {
		panic(fmt.Sprintf("embedded trigger list: %v", err))
	}
	return list
}

// Load reads the trigger list at path. A missing file yields the embedded list.
func Load(path string) (*List, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read trigger words: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*List, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse trigger words %s: %w", source, err)
	}
	words := make(map[string][]string, len(raw))
	for lang, entries := range raw {
		code := langpkg.ToISO2(lang)
		if code == "" {
			code = strings.ToLower(strings.TrimSpace(lang))
		}
		if code == "" {
			continue
		}
		for _, entry := range entries {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				words[code] = append(words[code], entry)
			}
		}
	}
	return &List{words: words, source: source}, nil
}

// Source reports where the list was loaded from.
func (l *List) Source() string {
	return l.source
}

// Languages returns the codes that have a word list, sorted.
func (l *List) Languages() []string {
	codes := make([]string, 0, len(l.words))
	for code := range l.words {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Words returns the list for lang, the English list when lang has none, or nil.
func (l *List) Words(lang string) []string {
	if words, ok := l.words[langpkg.ToISO2(lang)]; ok {
		return words
	}
	return l.words[FallbackLanguage]
}

// DetectLanguage returns the ISO 639-1 code of text when it is detected
// reliably and has a trigger list, and FallbackLanguage otherwise.
func (l *List) DetectLanguage(text string) string {
	code, ok := langpkg.Detect(text)
	if !ok {
		return FallbackLanguage
	}
	if _, has := l.words[code]; !has {
		return FallbackLanguage
	}
	return code
}

// Scan reports every trigger word for lang that occurs in text. Matching is
// case-insensitive and each word is reported once, with a snippet around its
// first occurrence.
func (l *List) Scan(text, lang string) []Hit {
	hits := []Hit{}
	if strings.TrimSpace(text) == "" {
		return hits
	}
	code := langpkg.ToISO2(lang)
	if _, ok := l.words[code]; !ok {
		code = FallbackLanguage
	}
	folded, runeAt := fold(text)
	original := []rune(text)
	seen := make(map[string]struct{})
	for _, word := range l.words[code] {
		needle, _ := fold(word)
		if _, dup := seen[needle]; dup {
			continue
		}
		idx := strings.Index(folded, needle)
		if idx < 0 {
			continue
		}
		seen[needle] = struct{}{}
		first, last := runeAt[idx], runeAt[idx+len(needle)]
		hits = append(hits, Hit{Language: code, Word: word, Snippet: snippet(original, first, last-first)})
	}
	return hits
}

// fold lowercases text rune by rune. runeAt maps each byte offset of the
// folded string to the index of the source rune it came from, with one extra
// entry for the end, since lowercasing can change a rune's encoded width.
func fold(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	runeAt := make([]int, 0, len(text)+1)
	n := 0
	for _, r := range text {
		lower := unicode.ToLower(r)
		for range utf8.RuneLen(lower) {
			runeAt = append(runeAt, n)
		}
		b.WriteRune(lower)
		n++
	}
	return b.String(), append(runeAt, n)
}

// snippet centres up to snippetRunes runes around runes[first:first+width].
func snippet(runes []rune, first, width int) string {
	pad := max((snippetRunes-width)/2, 0)
	from := max(first-pad, 0)
	to := min(from+snippetRunes, len(runes))
	if to-from < snippetRunes {
		from = max(to-snippetRunes, 0)
	}
	return strings.TrimSpace(string(runes[from:to]))
}
