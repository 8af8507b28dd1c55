package triggers

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

func TestLoadMissingFileUsesEmbeddedList(t *testing.T) {
	list, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if list.Source() != "embedded" {
		t.Fatalf("expected embedded source, got %q", list.Source())
	}
	for _, code := range []string{"en", "hi", "te"} {
		if len(list.Words(code)) == 0 {
			t.Fatalf("expected embedded words for %s", code)
		}
	}
}

func TestLoadCustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`{"english": ["Fake", " "], "Telugu": ["నకిలీ"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := list.Languages(); len(got) != 2 || got[0] != "en" || got[1] != "te" {
		t.Fatalf("unexpected languages %v", got)
	}
	if words := list.Words("en"); len(words) != 1 || words[0] != "Fake" {
		t.Fatalf("unexpected english words %v", words)
	}
	if words := list.Words("fr"); len(words) != 1 || words[0] != "Fake" {
		t.Fatalf("expected english fallback for fr, got %v", words)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`["not", "a", "map"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWordsWithoutEnglishFallback(t *testing.T) {
	list, err := parse([]byte(`{"hi": ["वायरल"]}`), "test")
	if err != nil {
		t.Fatal(err)
	}
	if words := list.Words("de"); len(words) != 0 {
		t.Fatalf("expected no words, got %v", words)
	}
}

func TestDetectLanguage(t *testing.T) {
	list := Default()
	if got := list.DetectLanguage(""); got != "en" {
		t.Fatalf("blank text should fall back to en, got %q", got)
	}
	telugu := "ప్రభుత్వం ఈ రోజు కొత్త వంతెనను ప్రజలకు తెరిచినట్లు ప్రకటించింది మరియు అది వచ్చే నెల నుండి అందుబాటులో ఉంటుంది"
	if got := list.DetectLanguage(telugu); got != "te" {
		t.Fatalf("expected te, got %q", got)
	}

	englishOnly, err := parse([]byte(`{"en": ["viral"]}`), "test")
	if err != nil {
		t.Fatal(err)
	}
	if got := englishOnly.DetectLanguage(telugu); got != "en" {
		t.Fatalf("language without a list should fall back to en, got %q", got)
	}
}

func TestScan(t *testing.T) {
	list, err := parse([]byte(`{"en": ["shocking", "viral", "hoax", "Viral"]}`), "test")
	if err != nil {
		t.Fatal(err)
	}
	text := "This SHOCKING clip went viral overnight. Shocking, really, and viral again."
	hits := list.Scan(text, "en")
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %+v", hits)
	}
	if hits[0].Word != "shocking" || hits[1].Word != "viral" {
		t.Fatalf("unexpected hit order %+v", hits)
	}
	for _, hit := range hits {
		if hit.Language != "en" {
			t.Fatalf("unexpected language %q", hit.Language)
		}
		if n := utf8.RuneCountInString(hit.Snippet); n == 0 || n > 40 {
			t.Fatalf("snippet length %d out of range: %q", n, hit.Snippet)
		}
	}
	if len(list.Scan("", "en")) != 0 {
		t.Fatal("empty text should have no hits")
	}
	if hits := list.Scan("a hoax", "xx"); len(hits) != 1 || hits[0].Language != "en" {
		t.Fatalf("unknown language should scan the english list, got %+v", hits)
	}
}

func TestSnippetBounds(t *testing.T) {
	text := []rune("short viral text")
	if got := snippet(text, 6, 5); got != string(text) {
		t.Fatalf("expected whole text, got %q", got)
	}
	long := []rune("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa viral")
	got := snippet(long, len(long)-5, 5)
	if utf8.RuneCountInString(got) != 40 || got[len(got)-5:] != "viral" {
		t.Fatalf("expected 40 runes ending in the word, got %q", got)
	}
}

func TestScanSnippetKeepsOriginalCase(t *testing.T) {
	list, err := parse([]byte(`{"en": ["shocking video", "hoax"], "hi": ["वायरल"]}`), "test")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		text string
		lang string
		want string
	}{
		{"mixed case", "Experts say this Shocking VIDEO is fake", "en", "Experts say this Shocking VIDEO is fake"},
		{"width changing fold", "İSTANBUL officials call it a HOAX", "en", "İSTANBUL officials call it a HOAX"},
		{"devanagari", "यह वीडियो वायरल हो गया", "hi", "यह वीडियो वायरल हो गया"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := list.Scan(tt.text, tt.lang)
			if len(hits) != 1 {
				t.Fatalf("expected one hit, got %+v", hits)
			}
			if hits[0].Snippet != tt.want {
				t.Fatalf("snippet = %q, want %q", hits[0].Snippet, tt.want)
			}
		})
	}
}
