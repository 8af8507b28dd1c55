package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code2   string
	code3   string
	display string
	word    string
}

var languages = []entry{
	{"en", "eng", "English", "english"},
	{"hi", "hin", "Hindi", "hindi"},
	{"te", "tel", "Telugu", "telugu"},
	{"ta", "tam", "Tamil", "tamil"},
	{"bn", "ben", "Bengali", "bengali"},
	{"mr", "mar", "Marathi", "marathi"},
	{"ur", "urd", "Urdu", "urdu"},
	{"es", "spa", "Spanish", "spanish"},
	{"fr", "fra", "French", "french"},
	{"de", "deu", "German", "german"},
	{"pt", "por", "Portuguese", "portuguese"},
	{"ru", "rus", "Russian", "russian"},
	{"ar", "ara", "Arabic", "arabic"},
	{"zh", "zho", "Chinese", "chinese"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		m[e.code2] = e
		m[e.code3] = e
		m[e.word] = e
	}
	return m
}()

func lookup(code string) *entry {
	return index[strings.ToLower(strings.TrimSpace(code))]
}

// Canonicalize reduces a BCP 47 tag such as "te-IN" or "en_US" to its base
// language subtag. Unparseable input yields "".
func Canonicalize(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return ""
	}
	parsed, err := xlanguage.Parse(tag)
	if err != nil {
		return ""
	}
	base, confidence := parsed.Base()
	if confidence == xlanguage.No {
		return ""
	}
	return base.String()
}

// ToISO2 converts a recognized code, language name, or BCP 47 tag to ISO 639-1.
// Returns "" for unrecognized input; unknown 2-letter codes pass through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	if base := Canonicalize(code); len(base) == 2 {
		return base
	}
	return ""
}

// ToISO3 converts a recognized code to the ISO 639-2 form tesseract uses for
// its traineddata files. Returns "" when unknown.
func ToISO3(code string) string {
	if e := lookup(code); e != nil {
		return e.code3
	}
	if e := lookup(ToISO2(code)); e != nil {
		return e.code3
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(ToISO2(code)); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Detect identifies the dominant language of text and returns its ISO 639-1
// code. ok is false when the text is empty or the detector is not confident.
func Detect(text string) (code string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	info := whatlanggo.Detect(text)
	code = info.Lang.Iso6391()
	if code == "" || !info.IsReliable() {
		return code, false
	}
	return code, true
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		mapped := ToISO2(code)
		if mapped == "" {
			continue
		}
		if _, ok := seen[mapped]; ok {
			continue
		}
		seen[mapped] = struct{}{}
		normalized = append(normalized, mapped)
	}
	return normalized
}
