package entrystore

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// Filter selects stored entries. Set fields are combined with AND; at least
// one of Kana or Kanji must be set.
type Filter struct {
	// Kana matches the headword reading after domain.NormalizeKana, so
	// "あい-こ" and "あいこ" find the same entry.
	Kana *string

	// Kanji matches one surface spelling exactly.
	Kanji *string

	// DictionaryID restricts the search to one converted dump.
	DictionaryID *uuid.UUID

	// Limit is the maximum number of entries to return. Default: 20, max: 200.
	Limit int
}

const (
	defaultLimit = 20
	maxLimit     = 200
)

// normalize applies defaults, clamps values and drops blank criteria.
func (f *Filter) normalize() {
	if f.Kana != nil {
		k := domain.NormalizeKana(*f.Kana)
		f.Kana = &k
		if k == "" {
			f.Kana = nil
		}
	}
	if f.Kanji != nil {
		k := strings.TrimSpace(*f.Kanji)
		f.Kanji = &k
		if k == "" {
			f.Kanji = nil
		}
	}

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
}

func (f *Filter) empty() bool {
	return f.Kana == nil && f.Kanji == nil
}

// where renders the filter as a predicate over "entries e".
func (f *Filter) where() squirrel.And {
	var and squirrel.And
	if f.Kana != nil {
		and = append(and, squirrel.Eq{"e.kana_normalized": *f.Kana})
	}
	if f.Kanji != nil {
		and = append(and, squirrel.Expr(
			"EXISTS (SELECT 1 FROM entry_kanji k WHERE k.entry_id = e.id AND k.kanji = ?)", *f.Kanji))
	}
	if f.DictionaryID != nil {
		and = append(and, squirrel.Expr("e.dictionary_id = ?", *f.DictionaryID))
	}
	return and
}
