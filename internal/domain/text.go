package domain

import "unicode/utf8"

// Display limits for names and titles quoted in notification texts and
// event frames. The stored values are not limited.
const (
	MaxDisplayNameRunes = 60
	MaxWorkTitleRunes   = 120
)

const ellipsis = "…"

// TruncateRunes shortens s to at most maxRunes runes, ending with an
// ellipsis when anything was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes-1]) + ellipsis
}
