package texts

import (
	"strings"
	"testing"
	"time"
)

func TestValidTitle(t *testing.T) {
	valid := []string{
		"Road Trip",
		"Landslide (acoustic)",
		"Песня о друге",
		"No. 5, in D-minor — live!",
		"bass_guitar",
	}
	for _, s := range valid {
		if !ValidTitle(s) {
			t.Errorf("ValidTitle(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"Road Trip<script>",
		"&lt;b&gt;bold&lt;/b&gt;", // encoded markup unescapes to <b>
		"line\nbreak",
		"semi;colon",
		strings.Repeat("a", 201),
	}
	for _, s := range invalid {
		if ValidTitle(s) {
			t.Errorf("ValidTitle(%q) = true, want false", s)
		}
	}

	if !ValidTitle(strings.Repeat("a", 200)) {
		t.Error("200 runes should still be accepted")
	}
}

func TestParseURL(t *testing.T) {
	cases := map[string]string{
		"https://youtu.be/abc123":       "https://youtu.be/abc123",
		"  http://example.com/x  ":      "http://example.com/x",
		"ftp://example.com":             "",
		"https://has space.com/x is no": "",
		"just words":                    "",
		"":                              "",
	}
	for in, want := range cases {
		if got := ParseURL(in); got != want {
			t.Errorf("ParseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-09-01 19:00")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, ok = ParseDate(" 1.9.2026 ")
	if !ok {
		t.Fatal("expected dotted date to parse")
	}
	if got.Day() != 1 || got.Month() != time.September || got.Year() != 2026 {
		t.Fatalf("got %v", got)
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-01", "31.02.2026"} {
		if _, ok := ParseDate(bad); ok {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestRoleLines(t *testing.T) {
	if got := RoleLines(nil); got != "" {
		t.Fatalf("empty roles: %q", got)
	}
	got := RoleLines([]string{"vocals", "drums"})
	want := "    - vocals\n    - drums"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
