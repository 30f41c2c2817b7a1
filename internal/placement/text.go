package placement

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"weekgrid/internal/textmetric"
)

// MaxTitleLines caps the wrapped title. Text beyond the last line is dropped
// without an ellipsis.
const MaxTitleLines = 3

// CleanTitle normalizes an event title for drawing: NFC, symbols such as
// emoji and lock glyphs removed, control characters removed, whitespace
// collapsed, and the " Appointment" suffix that SimplePractice appends
// stripped.
func CleanTitle(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		case unicode.Is(unicode.Cf, r) || r == '\ufe0e' || r == '\ufe0f':
			// zero-width joiners and emoji variation selectors
			return -1
		case unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r):
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if trimmed, ok := strings.CutSuffix(s, " Appointment"); ok && trimmed != "" {
		s = trimmed
	}
	return s
}

// Wrap greedily breaks text into lines no wider than limit at size. A word
// wider than limit on its own is emitted unsplit on its own line. At most
// maxLines lines are returned; maxLines <= 0 means no cap.
func Wrap(text string, limit, size float64, m textmetric.Measurer, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if m.Width(candidate, size) <= limit {
			current = candidate
			continue
		}
		lines = append(lines, current)
		if maxLines > 0 && len(lines) == maxLines {
			return lines
		}
		current = w
	}
	lines = append(lines, current)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
