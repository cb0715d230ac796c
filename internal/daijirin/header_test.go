package daijirin

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

func ptr(s string) *string { return &s }

func TestParseHeader(t *testing.T) {
	t.Parallel()

	g := New()

	tests := []struct {
		name string
		line string
		want Header
	}{
		{
			name: "accent and part of speech",
			line: "<INDENT=1><PAGE><HEAD>あ</HEAD> [1] （感）",
			want: Header{
				Kana:         "あ",
				Form:         &Form1{Accent: Accent{{Pattern: "1"}}},
				PartOfSpeech: ptr("感"),
			},
		},
		{
			name: "headword only",
			line: "<INDENT=1><PAGE><HEAD>――言えばこう言う</HEAD>",
			want: Header{Kana: "――言えばこう言う", Form: &Form1{}},
		},
		{
			name: "first entry without page marker",
			line: "<INDENT=1><HEAD>あ</HEAD> 【足】",
			want: Header{
				Kana: "あ",
				Form: &Form1{Surface: &SurfaceForm{Kanji: []string{"足"}}},
			},
		},
		{
			// Form1: Form2 needs at least two historical/surface pairs.
			name: "historical kana and two accent groups",
			line: "<INDENT=1><PAGE><HEAD>あい-こ</HEAD> アヒ― [0][3]",
			want: Header{
				Kana: "あい-こ",
				Form: &Form1{
					HistoricalKana: "アヒ―",
					Accent:         Accent{{Pattern: "0"}, {Pattern: "3"}},
				},
			},
		},
		{
			name: "historical kana only",
			line: "<INDENT=1><PAGE><HEAD>あい-しらい</HEAD> アヒシラヒ",
			want: Header{Kana: "あい-しらい", Form: &Form1{HistoricalKana: "アヒシラヒ"}},
		},
		{
			name: "romaji surface form",
			line: "<INDENT=1><PAGE><HEAD>アーケイック</HEAD> [4][3] 〖archaic〗 （形動）",
			want: Header{
				Kana: "アーケイック",
				Form: &Form1{
					Accent:  Accent{{Pattern: "4"}, {Pattern: "3"}},
					Surface: &SurfaceForm{Romaji: "archaic"},
				},
				PartOfSpeech: ptr("形動"),
			},
		},
		{
			name: "literary form runs to end of line",
			line: "<INDENT=1><PAGE><HEAD>ひ-い・でる</HEAD> [3] 【秀でる】 （動ダ下一）[文]ダ下二 ひい・づ",
			want: Header{
				Kana: "ひ-い・でる",
				Form: &Form1{
					Accent:  Accent{{Pattern: "3"}},
					Surface: &SurfaceForm{Kanji: []string{"秀でる"}},
				},
				PartOfSpeech: ptr("動ダ下一"),
				LiteraryForm: ptr("ダ下二 ひい・づ"),
			},
		},
		{
			name: "suru with trailing space before literary form",
			line: "<INDENT=1><PAGE><HEAD>こう-えい</HEAD> クワウ― [0] 【光栄】 （名・形動）スル [文]ナリ",
			want: Header{
				Kana: "こう-えい",
				Form: &Form1{
					HistoricalKana: "クワウ―",
					Accent:         Accent{{Pattern: "0"}},
					Surface:        &SurfaceForm{Kanji: []string{"光栄"}},
				},
				PartOfSpeech: ptr("名・形動"),
				Suru:         true,
				LiteraryForm: ptr("ナリ"),
			},
		},
		{
			name: "conjugation without part of speech",
			line: "<INDENT=1><PAGE><HEAD>ちょう-じょう</HEAD> ―デフ [0] 【重畳】 (ト|タル)スル[文]形動タリ",
			want: Header{
				Kana: "ちょう-じょう",
				Form: &Form1{
					HistoricalKana: "―デフ",
					Accent:         Accent{{Pattern: "0"}},
					Surface:        &SurfaceForm{Kanji: []string{"重畳"}},
				},
				Conjugation:  ptr("ト|タル"),
				Suru:         true,
				LiteraryForm: ptr("形動タリ"),
			},
		},
		{
			name: "conjugation table with nested full-width parentheses",
			line: "<INDENT=1><PAGE><HEAD>いす</HEAD> （助動）(いせ（いしよ・いし）・いし・いす・いす・いすれ・いし)",
			want: Header{
				Kana:         "いす",
				Form:         &Form1{},
				PartOfSpeech: ptr("助動"),
				Conjugation:  ptr("いせ（いしよ・いし）・いし・いす・いす・いすれ・いし"),
			},
		},
		{
			name: "alternative kanji spellings",
			line: "<INDENT=1><PAGE><HEAD>あらわ・れる</HEAD> アラハレル [4] 【表れる（表われる）・現れる（現われる）・顕れる】 （動ラ下一）[文]ラ下二 あらは・る",
			want: Header{
				Kana: "あらわ・れる",
				Form: &Form1{
					HistoricalKana: "アラハレル",
					Accent:         Accent{{Pattern: "4"}},
					Surface:        &SurfaceForm{Kanji: []string{"表れる（表われる）", "現れる（現われる）", "顕れる"}},
				},
				PartOfSpeech: ptr("動ラ下一"),
				LiteraryForm: ptr("ラ下二 あらは・る"),
			},
		},
		{
			name: "single historical and surface pair is form1",
			line: "<INDENT=1><PAGE><HEAD>カラクン-ちょう</HEAD> ―テウ 【―鳥・唐国鳥】",
			want: Header{
				Kana: "カラクン-ちょう",
				Form: &Form1{
					HistoricalKana: "―テウ",
					Surface:        &SurfaceForm{Kanji: []string{"―鳥", "唐国鳥"}},
				},
			},
		},
		{
			name: "two pairs",
			line: "<INDENT=1><PAGE><HEAD>びりょう-ようそ</HEAD> [4] ―リヤウヤウ― 【微量養素】 ・ ―リヤウエウ― 【微量要素】",
			want: Header{
				Kana: "びりょう-ようそ",
				Form: &Form2{
					Accent: Accent{{Pattern: "4"}},
					Pairs: []HistoricalSurface{
						{HistoricalKana: "―リヤウヤウ―", Surface: SurfaceForm{Kanji: []string{"微量養素"}}},
						{HistoricalKana: "―リヤウエウ―", Surface: SurfaceForm{Kanji: []string{"微量要素"}}},
					},
				},
			},
		},
		{
			name: "three pairs with conjugation and literary form",
			line: "<INDENT=1><PAGE><HEAD>とう-とう</HEAD> [0] トウトウ 【鼕鼕】 ・ タウタウ 【鏜鏜】 ・ タウタフ 【鞺鞳】 (ト|タル)[文]形動タリ",
			want: Header{
				Kana: "とう-とう",
				Form: &Form2{
					Accent: Accent{{Pattern: "0"}},
					Pairs: []HistoricalSurface{
						{HistoricalKana: "トウトウ", Surface: SurfaceForm{Kanji: []string{"鼕鼕"}}},
						{HistoricalKana: "タウタウ", Surface: SurfaceForm{Kanji: []string{"鏜鏜"}}},
						{HistoricalKana: "タウタフ", Surface: SurfaceForm{Kanji: []string{"鞺鞳"}}},
					},
				},
				Conjugation:  ptr("ト|タル"),
				LiteraryForm: ptr("形動タリ"),
			},
		},
		{
			name: "trailing carriage return is ignored",
			line: "<INDENT=1><PAGE><HEAD>おぼこ</HEAD> [0] （名・形動）[文]ナリ\r",
			want: Header{
				Kana:         "おぼこ",
				Form:         &Form1{Accent: Accent{{Pattern: "0"}}},
				PartOfSpeech: ptr("名・形動"),
				LiteraryForm: ptr("ナリ"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := g.ParseHeader(tt.line)
			if err != nil {
				t.Fatalf("ParseHeader(%q) error: %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseHeader mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHeader_Errors(t *testing.T) {
	t.Parallel()

	g := New()

	tests := []struct {
		name string
		line string
	}{
		{name: "missing prefix", line: "<HEAD>あ</HEAD> [1]"},
		{name: "unterminated headword", line: "<INDENT=1><PAGE><HEAD>あ [1]"},
		{name: "empty headword", line: "<INDENT=1><PAGE><HEAD></HEAD> [1]"},
		{name: "non-numeric accent", line: "<INDENT=1><PAGE><HEAD>あ</HEAD> [x]"},
		{name: "trailing text", line: "<INDENT=1><PAGE><HEAD>あ</HEAD> [1] （感） junk"},
		{name: "double space", line: "<INDENT=1><PAGE><HEAD>あ</HEAD>  [1]"},
		{name: "unbalanced part of speech", line: "<INDENT=1><PAGE><HEAD>あ</HEAD> [1] （感"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := g.ParseHeader(tt.line)
			if err == nil {
				t.Fatalf("ParseHeader(%q) succeeded, want error", tt.line)
			}
			if !errors.Is(err, domain.ErrHeaderParse) {
				t.Errorf("errors.Is(err, ErrHeaderParse) = false for %v", err)
			}
			var hpe *HeaderParseError
			if !errors.As(err, &hpe) {
				t.Fatalf("error type = %T, want *HeaderParseError", err)
			}
			if hpe.Ambiguous {
				t.Error("Ambiguous = true, want false")
			}
			if hpe.Form1 == nil || hpe.Form2 == nil {
				t.Errorf("both alternatives should report a failure: form1=%v form2=%v", hpe.Form1, hpe.Form2)
			}
		})
	}
}

func TestParseExclusive(t *testing.T) {
	t.Parallel()

	const line = "<INDENT=1><PAGE><HEAD>あ</HEAD> [1] （感）"
	reject := func(c *cursor) (HeaderForm, bool) { return nil, false }

	tests := []struct {
		name          string
		form1, form2  headerForm
		wantErr       bool
		wantAmbiguous bool
		wantKind      domain.FailureKind
	}{
		{name: "first form only", form1: parseForm1, form2: reject},
		{name: "second form only", form1: reject, form2: parseForm1},
		{name: "both forms match", form1: parseForm1, form2: parseForm1, wantErr: true, wantAmbiguous: true, wantKind: domain.FailureGrammarDefect},
		{name: "neither form matches", form1: reject, form2: reject, wantErr: true, wantKind: domain.FailureMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, err := parseExclusive(line, tt.form1, tt.form2)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("parseExclusive() error = %v", err)
				}
				if h.Kana != "あ" {
					t.Errorf("Kana = %q, want あ", h.Kana)
				}
				return
			}

			var hpe *HeaderParseError
			if !errors.As(err, &hpe) {
				t.Fatalf("error type = %T, want *HeaderParseError", err)
			}
			if hpe.Ambiguous != tt.wantAmbiguous {
				t.Errorf("Ambiguous = %v, want %v", hpe.Ambiguous, tt.wantAmbiguous)
			}
			if !errors.Is(err, domain.ErrHeaderParse) {
				t.Errorf("errors.Is(err, ErrHeaderParse) = false for %v", err)
			}
			if got := errors.Is(err, domain.ErrGrammarAmbiguous); got != tt.wantAmbiguous {
				t.Errorf("errors.Is(err, ErrGrammarAmbiguous) = %v, want %v", got, tt.wantAmbiguous)
			}
			if got := domain.ClassifyFailure(err); got != tt.wantKind {
				t.Errorf("ClassifyFailure() = %q, want %q", got, tt.wantKind)
			}
			if tt.wantAmbiguous {
				want := `header: both header forms match "` + line + `"`
				if err.Error() != want {
					t.Errorf("Error() = %q, want %q", err.Error(), want)
				}
			}
		})
	}
}

// Every header accepted by one form must be rejected by the other.
func TestHeaderForms_MutuallyExclusive(t *testing.T) {
	t.Parallel()

	lines := []string{
		"<INDENT=1><PAGE><HEAD>――言えばこう言う</HEAD>",
		"<INDENT=1><PAGE><HEAD>あ</HEAD> [1] （感）",
		"<INDENT=1><PAGE><HEAD>アーカイブ</HEAD> [3] 〖archive〗",
		"<INDENT=1><PAGE><HEAD>ああ-しやごしや</HEAD> （連語）",
		"<INDENT=1><PAGE><HEAD>あい-こ</HEAD> アヒ― [0][3]",
		"<INDENT=1><PAGE><HEAD>する</HEAD> [0] 【為る】 （動サ変）[文]サ変 す",
		"<INDENT=1><PAGE><HEAD>スルホン-か</HEAD> ―クワ [0] 【―化】",
		"<INDENT=1><PAGE><HEAD>ずる-やすみ</HEAD> [3] 【ずる休み】 （名）スル",
		"<INDENT=1><PAGE><HEAD>ず-ろう</HEAD> ヅ― [0] 【杜漏】 （名・形動）[文]ナリ",
		"<INDENT=1><PAGE><HEAD>す-ろうにん</HEAD> ―ラウニン [2] 【素浪人】",
		"<INDENT=1><PAGE><HEAD>せい-えん</HEAD> [0] 【清艶・清婉】 （名・形動）[文]ナリ",
		"<INDENT=1><PAGE><HEAD>けしうはあら∘ず</HEAD>",
		"<INDENT=1><PAGE><HEAD>ごとく-なり</HEAD> 【如くなり】 （助動）(ごとくなら・ごとくなり（ごとくに）・ごとくなり・ごとくなる・ごとくなれ・ごとくなれ)",
		"<INDENT=1><PAGE><HEAD>いおう-に-むにん</HEAD> ―ワウ― [1]-[0][0]-[0] 【易往而無人】",
		"<INDENT=1><PAGE><HEAD>きゅうり-がく</HEAD> キユウ―・キウ― [3] 【窮理学・究理学】",
		"<INDENT=1><PAGE><HEAD>シナ-よもぎ</HEAD> [3] 【―蓬・―艾】",
		"<INDENT=1><PAGE><HEAD>あら-おこし</HEAD> [3] 【荒起(こ)し・粗起(こ)し】 （名）スル",
		"<INDENT=1><PAGE><HEAD>びりょう-ようそ</HEAD> [4] ―リヤウヤウ― 【微量養素】 ・ ―リヤウエウ― 【微量要素】",
		"<INDENT=1><PAGE><HEAD>とう-とう</HEAD> [0] トウトウ 【鼕鼕】 ・ タウタウ 【鏜鏜】 ・ タウタフ 【鞺鞳】 (ト|タル)[文]形動タリ",
	}

	for _, line := range lines {
		_, err1 := parseHeaderAs(line, parseForm1)
		_, err2 := parseHeaderAs(line, parseForm2)
		if (err1 == nil) == (err2 == nil) {
			t.Errorf("%s: form1 err=%v, form2 err=%v; want exactly one success", line, err1, err2)
		}
	}
}

func TestAccentString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		accent Accent
		want   string
	}{
		{name: "empty", accent: nil, want: ""},
		{name: "single", accent: Accent{{Pattern: "1"}}, want: "[1]"},
		{name: "alternatives", accent: Accent{{Pattern: "0"}, {Pattern: "3"}}, want: "[0][3]"},
		{
			name: "linked groups",
			accent: Accent{
				{Pattern: "1"}, {Pattern: "0", Linked: true},
				{Pattern: "0"}, {Pattern: "0", Linked: true},
			},
			want: "[1]-[0][0]-[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.accent.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseHeader_LinkedAccent(t *testing.T) {
	t.Parallel()

	h, err := New().ParseHeader("<INDENT=1><PAGE><HEAD>いおう-に-むにん</HEAD> ―ワウ― [1]-[0][0]-[0] 【易往而無人】")
	if err != nil {
		t.Fatalf("ParseHeader error: %v", err)
	}
	if got := h.Form.AccentPattern().String(); got != "[1]-[0][0]-[0]" {
		t.Errorf("accent = %q, want %q", got, "[1]-[0][0]-[0]")
	}
}
