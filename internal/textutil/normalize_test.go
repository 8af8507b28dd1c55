package textutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"timestamp prefix", "00:01:23.456 breaking news", "breaking news"},
		{"short timestamp", "at 9:30 the minister spoke", "at the minister spoke"},
		{"tags", "<c>hello</c> <00:00:01.000><c>world</c>", "hello world"},
		{"timestamp split by markup", "at 1:2<b>3:45</b> sharp", "at sharp"},
		{"whitespace", "  line one\n\n\tline two   ", "line one line two"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"mark freed by tag removal", "e<i>\u0301", "\u00e9"},
		{"no timestamp inside numbers", "call 123:45 now", "call 123:45 now"},
		{"telugu kept", "వార్తలు 10:00", "వార్తలు"},
		{"invalid utf-8 dropped", "fake\xffnews \xc3", "fakenews"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"00:01:23.456 breaking news",
		"<<b>b> 1:1:00:00 tail",
		"1:00:00:00 and 0:00:00.1234",
		"<>x<y>z  \u0301 e<b>\u0301",
		"  mixed\r\nline\tbreaks  ",
		"12:34:56.789<br/>12:34",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
