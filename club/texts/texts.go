// Package texts holds the shared input validation policy and small string
// helpers used by the dialog flows.
package texts

import (
	"html"
	"regexp"
	"strings"
)

// safePattern restricts titles and role names to word characters,
// whitespace, and limited punctuation. \p{L}\p{N} instead of \w because
// Go's \w is ASCII-only and titles are frequently non-Latin.
var safePattern = regexp.MustCompile(`^[\p{L}\p{N}_\s\-\.—–,!()]+$`)

const maxFieldLen = 200

// ValidTitle reports whether a candidate text field is acceptable: no line
// breaks, at most 200 characters, no angle brackets, and only characters
// from the safe class. HTML entities are unescaped first so encoded markup
// cannot slip through.
func ValidTitle(title string) bool {
	raw := html.UnescapeString(title)
	if strings.ContainsAny(raw, "\n\r") {
		return false
	}
	if len([]rune(raw)) > maxFieldLen {
		return false
	}
	if strings.ContainsAny(raw, "<>") {
		return false
	}
	return safePattern.MatchString(raw)
}

var urlPattern = regexp.MustCompile(`^https?://\S+$`)

// ParseURL returns the trimmed URL when the input looks like a plain
// http(s) link, or "" otherwise.
func ParseURL(input string) string {
	s := strings.TrimSpace(input)
	if len(s) > maxFieldLen {
		return ""
	}
	if !urlPattern.MatchString(s) {
		return ""
	}
	return s
}

// RoleLines renders a role list as indented bullet lines.
func RoleLines(roles []string) string {
	var b strings.Builder
	for i, role := range roles {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("    - ")
		b.WriteString(role)
	}
	return b.String()
}
