// Package textx provides text-cleaning and JSON-extraction helpers for
// post-processing model output before it enters the pipeline.
package textx

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

// ErrNoJSON is returned when no valid JSON value could be located.
var ErrNoJSON = errors.New("textx: no JSON value found")

// ExtractJSONObject returns the first balanced, valid JSON object or
// array embedded in s. Markdown code fences are stripped first, so the
// typical "```json ... ```" model reply works directly.
func ExtractJSONObject(s string) (string, error) {
	s = StripCodeFences(s)

	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		if end := matchBalanced(s, start); end > start {
			cand := s[start : end+1]
			if json.Valid([]byte(cand)) {
				return cand, nil
			}
		}
	}
	return "", ErrNoJSON
}

// matchBalanced scans from the opening bracket at start and returns the
// index of its matching close, or -1. String literals are skipped so
// brackets inside them do not count.
func matchBalanced(s string, start int) int {
	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// StripCodeFences removes a surrounding markdown code fence, including
// a language tag on the opening fence. Input without a fence is
// returned unchanged.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:]
	}
	if j := strings.LastIndex(t, "```"); j >= 0 {
		t = t[:j]
	}
	return strings.TrimSpace(t)
}

// CleanText collapses whitespace runs into single spaces and drops
// control characters.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
