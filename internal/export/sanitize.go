package export

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxNameRunes caps each sanitized file name component.
const maxNameRunes = 100

// fallbackName replaces a component that sanitizes to nothing.
const fallbackName = "deck"

const reservedChars = `<>:"/\|?*`

// Sanitize turns s into a file name component that is valid on Windows,
// macOS and Linux. Reserved characters, whitespace and control characters
// become '_', runs of '_' collapse, and the result is NFC-normalized and
// capped at 100 runes.
func Sanitize(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range s {
		if r == utf8.RuneError || unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(reservedChars, r) {
			r = '_'
		}
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), "_. ")
	if utf8.RuneCountInString(out) > maxNameRunes {
		out = strings.TrimRight(string([]rune(out)[:maxNameRunes]), "_. ")
	}
	if out == "" {
		return fallbackName
	}
	return out
}
