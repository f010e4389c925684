package extract

import (
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the minimum trimmed character count below which
// extracted text is considered insufficient. Scanned or image-only PDFs
// typically extract to empty or near-empty text, while even sparse real
// documents exceed a few hundred characters.
const DefaultThreshold = 200

// Sufficient reports whether text clears the quality threshold: at least
// threshold characters remain after trimming surrounding whitespace.
// The boundary is inclusive.
func Sufficient(text string, threshold int) bool {
	return TrimmedLen(text) >= threshold
}

// TrimmedLen counts the characters of text after trimming leading and
// trailing whitespace.
func TrimmedLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
