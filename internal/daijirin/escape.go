package daijirin

import (
	"strings"
	"unicode/utf8"
)

// escapeMarker is put between the opening bracket and the letter of a
// subdefinition marker that sits inside a protected span, so that the
// subdefinition split does not fire on it. It is a private-use code point
// and never occurs in dump text.
const escapeMarker = "\uE000"

const (
	subdefOpen  = "（"
	subdefClose = "）"
)

// protectedSpan is a lexically bracket-like span whose content is prose,
// not structure. An empty close means the span runs to the end of the line.
type protectedSpan struct {
	open  string
	close string
}

// protectedSpans in priority order.
var protectedSpans = [...]protectedSpan{
	{open: "「", close: "」"}, // quoted example
	{open: "<LINK>"},        // inline cross-reference
	{open: "〔", close: "〕"}, // terminology gloss
	{open: "<FIG>"},         // figure reference
}

// Escape protects subdefinition markers inside quoted examples, links,
// terminology glosses and figure references. Text outside those spans is
// copied unchanged.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if span, inner, end, ok := matchProtectedSpan(text, i); ok {
			b.WriteString(span.open)
			b.WriteString(escapeSubdefinitions(inner))
			b.WriteString(text[i+len(span.open)+len(inner) : end])
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// Unescape removes the private marker and restores the original glyphs.
// It is applied to leaf text only.
func Unescape(text string) string {
	if !strings.Contains(text, escapeMarker) {
		return text
	}
	return strings.ReplaceAll(text, escapeMarker, "")
}

// matchProtectedSpan tries every span rule at offset i. It returns the rule,
// the span content, and the offset just past the span.
func matchProtectedSpan(text string, i int) (protectedSpan, string, int, bool) {
	rest := text[i:]
	for _, span := range protectedSpans {
		if !strings.HasPrefix(rest, span.open) {
			continue
		}
		start := i + len(span.open)
		if span.close == "" {
			end := len(text)
			if j := strings.IndexByte(text[start:], '\n'); j >= 0 {
				end = start + j
			}
			return span, text[start:end], end, true
		}
		j := strings.Index(text[start:], span.close)
		if j < 0 {
			continue
		}
		return span, text[start : start+j], start + j + len(span.close), true
	}
	return protectedSpan{}, "", 0, false
}

// escapeSubdefinitions rewrites every （X） with X a kana ordinal glyph
// to （<marker>X）.
func escapeSubdefinitions(s string) string {
	if !strings.Contains(s, subdefOpen) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(escapeMarker))
	for i := 0; i < len(s); {
		if _, n, ok := subdefinitionMarkerAt(s, i); ok {
			b.WriteString(subdefOpen)
			b.WriteString(escapeMarker)
			b.WriteString(s[i+len(subdefOpen) : i+n])
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// subdefinitionMarkerAt reports whether an unescaped marker （X） starts at
// offset i, returning its letter and byte length.
func subdefinitionMarkerAt(s string, i int) (rune, int, bool) {
	if !strings.HasPrefix(s[i:], subdefOpen) {
		return 0, 0, false
	}
	j := i + len(subdefOpen)
	r, size := utf8.DecodeRuneInString(s[j:])
	if size == 0 || !isKanaOrdinalGlyph(r) {
		return 0, 0, false
	}
	if !strings.HasPrefix(s[j+size:], subdefClose) {
		return 0, 0, false
	}
	return r, len(subdefOpen) + size + len(subdefClose), true
}
