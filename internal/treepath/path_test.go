package treepath

import (
	"testing"
	"unicode/utf8"
)

func TestJoin(t *testing.T) {
	if got := Join("", "a"); got != "a" {
		t.Errorf("Join(\"\", \"a\") = %q, want %q", got, "a")
	}
	if got := Join("a", "b"); got != "a/b" {
		t.Errorf("Join(\"a\", \"b\") = %q, want %q", got, "a/b")
	}
	if got := Join("a/b", "c"); got != "a/b/c" {
		t.Errorf("Join(\"a/b\", \"c\") = %q, want %q", got, "a/b/c")
	}
}

func TestJoinPanicsOnEmptyLeaf(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty leaf name")
		}
	}()
	Join("a", "")
}

func TestDir(t *testing.T) {
	cases := map[string]string{
		"a":     "",
		"a/b":   "a",
		"a/b/c": "a/b",
	}
	for input, want := range cases {
		if got := Dir(input); got != want {
			t.Errorf("Dir(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"a":     "a",
		"a/b":   "b",
		"a/b/c": "c",
	}
	for input, want := range cases {
		if got := Base(input); got != want {
			t.Errorf("Base(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLess(t *testing.T) {
	ordered := []string{"", "a", "a/b", "a/c", "b"}
	for i := 0; i < len(ordered)-1; i++ {
		if !Less(ordered[i], ordered[i+1]) {
			t.Errorf("expected Less(%q, %q) to be true", ordered[i], ordered[i+1])
		}
		if Less(ordered[i+1], ordered[i]) {
			t.Errorf("expected Less(%q, %q) to be false", ordered[i+1], ordered[i])
		}
	}
	if Less("a", "a") {
		t.Error("expected Less(a, a) to be false")
	}
}

func TestShortenComponentNoTruncationNeeded(t *testing.T) {
	if got := ShortenComponent("a.txt", ".bak"); got != "a.txt.bak" {
		t.Errorf("ShortenComponent = %q, want %q", got, "a.txt.bak")
	}
}

// TestShortenComponentLongName mirrors spec scenario S6: a 255-byte name made
// of 85 three-byte glyphs, clamped with the ".bak" suffix.
func TestShortenComponentLongName(t *testing.T) {
	glyph := "中" // a 3-byte UTF-8 rune.
	name := ""
	for i := 0; i < 85; i++ {
		name += glyph
	}
	if len(name) != 255 {
		t.Fatalf("test fixture name is %d bytes, want 255", len(name))
	}

	got := ShortenComponent(name, ".bak")

	if len(got) > 255 {
		t.Errorf("shortened name is %d bytes, want <= 255", len(got))
	}
	if !hasSuffix(got, "(omit).bak") {
		t.Errorf("shortened name %q does not end with the omit marker and suffix", got)
	}

	// 245 head bytes budget / 3 bytes per glyph = 81 glyphs retained exactly.
	wantHeadGlyphs := 81
	wantHead := ""
	for i := 0; i < wantHeadGlyphs; i++ {
		wantHead += glyph
	}
	want := wantHead + "(omit).bak"
	if got != want {
		t.Errorf("ShortenComponent = %q, want %q", got, want)
	}
}

func TestShortenComponentNeverSplitsRune(t *testing.T) {
	glyph := "中"
	name := ""
	for i := 0; i < 100; i++ {
		name += glyph
	}
	got := ShortenComponent(name, ".bak2")
	for _, r := range got {
		if r == utf8.RuneError {
			t.Fatalf("shortened name contains a replacement character, indicating a split rune: %q", got)
		}
	}
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
