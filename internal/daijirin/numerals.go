package daijirin

import (
	"unicode/utf8"
)

// Numbering glyph classes. Kanji numerals and kana ordinals are matched
// syntactically by a wider glyph set than they map, so the gap surfaces as a
// NumeralMappingError instead of silently turning into body text.
const (
	// kanjiNumeralClass may appear between subentry markers (■一■, □二□).
	kanjiNumeralClass = "一二三四五六七八九十〇"
	// kanjiNumeralGlyphs maps by position: 一=1 … 九=9, 〇=0.
	kanjiNumeralGlyphs = "〇一二三四五六七八九"

	// circledNumeralGlyphs are the billiard-ball markers of a meaning group,
	// mapped 1..20 by position.
	circledNumeralGlyphs = "❶❷❸❹❺❻❼❽❾❿⓫⓬⓭⓮⓯⓰⓱⓲⓳⓴"

	// fullWidthDigits form the parenthesized definition numbers （１）…（１２）.
	fullWidthDigits = "０１２３４５６７８９"

	// kanaOrdinalFirst and kanaOrdinalLast bound the katakana accepted inside
	// a subdefinition marker （ア）.
	kanaOrdinalFirst = 'ア'
	kanaOrdinalLast  = 'シ'
	// kanaOrdinalGlyphs maps the lettered sub-senses 1..12 by position.
	kanaOrdinalGlyphs = "アイウエオカキクケコサシ"
)

// Numeral class names used in NumeralMappingError.
const (
	ClassKanji   = "kanji numeral"
	ClassCircled = "circled numeral"
	ClassWide    = "full-width number"
	ClassKana    = "kana ordinal"
)

// numeralTable is a fixed glyph-to-integer lookup built once per Grammar.
type numeralTable struct {
	class  string
	values map[rune]int
}

func newNumeralTable(class, glyphs string, first int) numeralTable {
	t := numeralTable{class: class, values: make(map[rune]int, utf8.RuneCountInString(glyphs))}
	n := first
	for _, r := range glyphs {
		t.values[r] = n
		n++
	}
	return t
}

func (t numeralTable) lookup(glyph rune) (int, error) {
	n, ok := t.values[glyph]
	if !ok {
		return 0, &NumeralMappingError{Class: t.class, Glyph: string(glyph)}
	}
	return n, nil
}

// lookupWord maps a run of glyphs that must consist of exactly one glyph.
func (t numeralTable) lookupWord(word string) (int, error) {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 || size != len(word) {
		return 0, &NumeralMappingError{Class: t.class, Glyph: word}
	}
	return t.lookup(r)
}

// contains reports whether glyph has a mapping.
func (t numeralTable) contains(glyph rune) bool {
	_, ok := t.values[glyph]
	return ok
}

// numerals holds every numbering table of the dump format.
type numerals struct {
	kanji   numeralTable
	circled numeralTable
	digits  numeralTable
	kana    numeralTable
}

func newNumerals() numerals {
	return numerals{
		kanji:   newNumeralTable(ClassKanji, kanjiNumeralGlyphs, 0),
		circled: newNumeralTable(ClassCircled, circledNumeralGlyphs, 1),
		digits:  newNumeralTable(ClassWide, fullWidthDigits, 0),
		kana:    newNumeralTable(ClassKana, kanaOrdinalGlyphs, 1),
	}
}

// wideNumber maps a run of full-width digits to its decimal value.
func (n numerals) wideNumber(word string) (int, error) {
	if word == "" {
		return 0, &NumeralMappingError{Class: ClassWide, Glyph: word}
	}
	value := 0
	for _, r := range word {
		d, err := n.digits.lookup(r)
		if err != nil {
			return 0, &NumeralMappingError{Class: ClassWide, Glyph: word}
		}
		value = value*10 + d
	}
	return value, nil
}

func isKanjiNumeralGlyph(r rune) bool {
	for _, c := range kanjiNumeralClass {
		if c == r {
			return true
		}
	}
	return false
}

func isWideDigit(r rune) bool {
	return r >= '０' && r <= '９'
}

func isKanaOrdinalGlyph(r rune) bool {
	return r >= kanaOrdinalFirst && r <= kanaOrdinalLast
}
