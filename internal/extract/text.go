package extract

import (
	"strings"
	"unicode/utf8"
)

// splitLines splits on every line boundary Unicode text can carry, not just \n,
// since OCR output and PDF text layers mix them freely.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '\r':
			lines = append(lines, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				size = 2
			}
			start = i + size
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, s[start:i])
			start = i + size
		}
		i += size
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// nonBlankLines returns the lines with content, trimmed when trim is set.
func nonBlankLines(s string, trim bool) []string {
	var out []string
	for _, ln := range splitLines(s) {
		t := strings.TrimSpace(ln)
		if t == "" {
			continue
		}
		if trim {
			out = append(out, t)
		} else {
			out = append(out, ln)
		}
	}
	return out
}

func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	i := 0
	for j := range s {
		if i == skip {
			return s[j:]
		}
		i++
	}
	return ""
}

// Lines returns up to the first n lines of s.
func Lines(s string, n int) []string {
	lines := splitLines(s)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
