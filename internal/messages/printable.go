package messages

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Printable prepares remote text for a terminal. It drops control
// characters other than newline and tab (so a sender cannot inject escape
// sequences) and the emoji joiners, skin tones and variation selectors that
// terminal cell-width tables get wrong. Carriage returns become newlines.
func Printable(s string) string {
	clean := true
	for _, r := range s {
		if dropRune(r) || r == '\r' {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	prevCR := false
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
			prevCR = true
			continue
		case r == '\n' && prevCR:
		case dropRune(r):
		default:
			b.WriteRune(r)
		}
		prevCR = false
	}
	return b.String()
}

func dropRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r == utf8.RuneError:
		return true
	case unicode.IsControl(r):
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF: // variation selectors
		return true
	}
	return false
}
