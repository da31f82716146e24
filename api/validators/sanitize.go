package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims input, drops invalid UTF-8 and caps it at maxLen characters.
// The cut always lands on a rune boundary, matching how the validator counts max=N.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.ToValidUTF8(input, ""))
	if maxLen <= 0 || utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	cut, runes := 0, 0
	for runes < maxLen {
		_, size := utf8.DecodeRuneInString(cleaned[cut:])
		cut += size
		runes++
	}
	return strings.TrimRightFunc(cleaned[:cut], unicode.IsSpace)
}
