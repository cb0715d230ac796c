package domain

import (
	"strings"
)

// NormalizeKana prepares a headword reading for storage and lookup:
//   - trims leading/trailing whitespace
//   - drops the composition delimiters used inside headwords
//     ("-" between word parts, "・" between stem and ending, "∘" for
//     inseparable conjugations)
//   - drops interior spaces
//
// Long-vowel marks and the repetition dash are preserved.
func NormalizeKana(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '-', '・', '∘', ' ', '　':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
