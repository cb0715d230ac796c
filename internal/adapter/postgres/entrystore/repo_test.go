package entrystore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres/entrystore"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/daijirin-converter/internal/daijirin"
	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

const entryAi = "<INDENT=1><PAGE><HEAD>あい</HEAD> [1] 【愛】\n" +
	"<INDENT=4>（１）対象をかけがえのないものと認め，それに引き付けられる心の動き。（ア）相手をいつくしむ心。「子への―」「―を注ぐ」（イ）異性に対して抱く思慕の情。恋。「―が芽生える」\n" +
	"（２）キリスト教で，神が人類を限りなく深くいつくしむこと。\n"

const entryAiko = "<INDENT=1><PAGE><HEAD>あい-こ</HEAD> アヒ― [0][3]\n<INDENT=4>互いに勝ち負けのないこと。\n"

func setup(t *testing.T) (*entrystore.Repo, *entrystore.Writer) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	repo := entrystore.New(pool, postgres.NewTxManager(pool))
	w := entrystore.NewWriter(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
	return repo, w
}

func convert(t *testing.T, block string) domain.NormalizedEntry {
	t.Helper()
	entry, err := daijirin.New().Convert(block)
	require.NoError(t, err)
	return entry
}

func TestRepo_RoundTrip(t *testing.T) {
	repo, w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.WriteMetadata(ctx, domain.DictionaryMetadata{Title: "スーパー大辞林", DumpVersion: "3.0", ConverterVersion: "1.0.0"}))
	ai := convert(t, entryAi)
	aiko := convert(t, entryAiko)
	require.NoError(t, w.WriteEntry(ctx, ai))
	require.NoError(t, w.WriteEntry(ctx, aiko))
	assert.Equal(t, 2, w.Written())

	n, err := repo.CountEntries(ctx, w.DictionaryID())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	id := w.DictionaryID()
	got, err := repo.Find(ctx, entrystore.Filter{Kana: ptr("あい"), DictionaryID: &id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(ai, got[0], cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stored entry mismatch (-want +got):\n%s", diff)
	}

	// Composition delimiters in the headword do not matter for lookup.
	got, err = repo.Find(ctx, entrystore.Filter{Kana: ptr("あいこ"), DictionaryID: &id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(aiko, got[0], cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stored entry mismatch (-want +got):\n%s", diff)
	}
}

func TestRepo_FindByKanji(t *testing.T) {
	repo, w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.WriteMetadata(ctx, domain.DictionaryMetadata{Title: "kanji-" + uuid.NewString(), ConverterVersion: "1.0.0"}))
	require.NoError(t, w.WriteEntry(ctx, convert(t, entryAi)))

	id := w.DictionaryID()
	got, err := repo.Find(ctx, entrystore.Filter{Kanji: ptr("愛"), DictionaryID: &id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "あい", got[0].Kana)
	assert.Equal(t, []string{"愛"}, got[0].Kanji)

	all, err := repo.FindByKanji(ctx, "愛", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func TestRepo_FindOrderAndLimit(t *testing.T) {
	repo, w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.WriteMetadata(ctx, domain.DictionaryMetadata{Title: "order", ConverterVersion: "1.0.0"}))
	for _, text := range []string{"一", "二", "三"} {
		require.NoError(t, w.WriteEntry(ctx, domain.NormalizedEntry{
			Format:     domain.EntryFormatJJ1,
			Kana:       "おなじ",
			Definition: domain.Definition{Text: text},
		}))
	}

	id := w.DictionaryID()
	got, err := repo.Find(ctx, entrystore.Filter{Kana: ptr("おなじ"), DictionaryID: &id})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []string{"一", "二", "三"} {
		assert.Equal(t, want, got[i].Definition.Text)
	}

	got, err = repo.Find(ctx, entrystore.Filter{Kana: ptr("おなじ"), DictionaryID: &id, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRepo_FindNoMatch(t *testing.T) {
	repo, _ := setup(t)

	got, err := repo.FindByKana(context.Background(), "存在しない読み"+uuid.NewString(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.Find(context.Background(), entrystore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriter_EntryBeforeMetadata(t *testing.T) {
	_, w := setup(t)
	err := w.WriteEntry(context.Background(), domain.NormalizedEntry{Kana: "あ"})
	assert.Error(t, err)
}

func ptr(s string) *string { return &s }
