package util

import (
	"regexp"
	"strings"
)

// ClampRunes trims s and cuts it to at most n runes.
func ClampRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n >= 0 && len(r) > n {
		return string(r[:n])
	}
	return s
}

var unsafePart = regexp.MustCompile(`[^a-z0-9_\-]`)

// SanitizePart makes s safe for object names and file names.
func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafePart.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}
