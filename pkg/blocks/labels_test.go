package blocks

import "testing"

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"title":        "Title",
		"page_title":   "Page title",
		"hero-image":   "Hero image",
		"callToAction": "Call to action",
		"h2":           "H 2",
		"caféBar":      "Café bar",
		"élanVital":    "Élan vital",
		"größe2":       "Größe 2",
		"straßeÜber":   "Straße über",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatLabel(t *testing.T) {
	lookup := func(name string) string {
		switch name {
		case "first":
			return "Ada"
		case "boom":
			panic("lookup failed")
		default:
			return ""
		}
	}
	if got := FormatLabel("{first} / {boom} / {other}", lookup); got != "Ada /  / " {
		t.Fatalf("FormatLabel = %q", got)
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("  short  ", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncateLabel("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("got %q", got)
	}
}
