package entrystore

import (
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestFilter_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Filter
		wantKana  *string
		wantKanji *string
		wantLimit int
		wantEmpty bool
	}{
		{name: "defaults", in: Filter{}, wantLimit: defaultLimit, wantEmpty: true},
		{name: "kana normalized", in: Filter{Kana: strPtr(" あい-こ ")}, wantKana: strPtr("あいこ"), wantLimit: defaultLimit},
		{name: "blank kana dropped", in: Filter{Kana: strPtr("・ -")}, wantLimit: defaultLimit, wantEmpty: true},
		{name: "kanji trimmed", in: Filter{Kanji: strPtr(" 愛 "), Limit: 5}, wantKanji: strPtr("愛"), wantLimit: 5},
		{name: "limit clamped", in: Filter{Kanji: strPtr("愛"), Limit: 10000}, wantKanji: strPtr("愛"), wantLimit: maxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := tt.in
			f.normalize()

			if !equalPtr(f.Kana, tt.wantKana) {
				t.Errorf("Kana = %v, want %v", deref(f.Kana), deref(tt.wantKana))
			}
			if !equalPtr(f.Kanji, tt.wantKanji) {
				t.Errorf("Kanji = %v, want %v", deref(f.Kanji), deref(tt.wantKanji))
			}
			if f.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", f.Limit, tt.wantLimit)
			}
			if f.empty() != tt.wantEmpty {
				t.Errorf("empty() = %v, want %v", f.empty(), tt.wantEmpty)
			}
		})
	}
}

func TestFilter_Where(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	f := Filter{Kana: strPtr("あい"), Kanji: strPtr("愛"), DictionaryID: &id}
	f.normalize()

	sql, args, err := psql.Select("e.id").From("entries e").Where(f.where()).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	want := "SELECT e.id FROM entries e WHERE (e.kana_normalized = $1 AND " +
		"EXISTS (SELECT 1 FROM entry_kanji k WHERE k.entry_id = e.id AND k.kanji = $2) AND " +
		"e.dictionary_id = $3)"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 3 || args[0] != "あい" || args[1] != "愛" || args[2] != id {
		t.Errorf("args = %v", args)
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
