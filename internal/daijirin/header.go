package daijirin

import (
	"strings"
	"unicode/utf8"
)

// Header line markup.
const (
	headerPrefix    = "<INDENT=1>"
	headerPage      = "<PAGE>"
	headwordOpen    = "<HEAD>"
	headwordClose   = "</HEAD>"
	kanjiFormOpen   = "【"
	kanjiFormClose  = "】"
	romajiFormOpen  = "〖"
	romajiFormClose = "〗"
	kanjiDelimiter  = "・"
	pairSeparator   = " ・ "
	suruMarker      = "スル"
	literaryMarker  = "[文]"
)

// Header is the parsed headword line of one entry.
type Header struct {
	// Kana is the headword reading as printed, composition delimiters included.
	Kana string
	// Form is *Form1 or *Form2.
	Form HeaderForm
	// PartOfSpeech is the content of the full-width parenthesis, e.g. "名・形動".
	PartOfSpeech *string
	// Conjugation is the content of the half-width parenthesis, e.g. "ト|タル".
	Conjugation *string
	// Suru marks a noun usable as a nominal verb.
	Suru bool
	// LiteraryForm is the text following the [文] marker.
	LiteraryForm *string
}

// HeaderForm is one of the two alternative shapes of the header between the
// headword and the grammatical annotations.
type HeaderForm interface {
	// AccentPattern returns the pitch-accent groups; empty if absent.
	AccentPattern() Accent
	// Spellings returns every surface spelling in header order.
	Spellings() []string

	isHeaderForm()
}

// Form1 carries at most one historical kana usage and one surface form group.
type Form1 struct {
	// HistoricalKana is empty when the modern and historical spellings agree.
	HistoricalKana string
	Accent         Accent
	Surface        *SurfaceForm
}

func (f *Form1) AccentPattern() Accent { return f.Accent }

func (f *Form1) Spellings() []string {
	if f.Surface == nil {
		return nil
	}
	return f.Surface.Spellings()
}

func (*Form1) isHeaderForm() {}

// Form2 carries several historical kana / surface form pairs.
type Form2 struct {
	Accent Accent
	Pairs  []HistoricalSurface
}

func (f *Form2) AccentPattern() Accent { return f.Accent }

func (f *Form2) Spellings() []string {
	var out []string
	for _, p := range f.Pairs {
		out = append(out, p.Surface.Spellings()...)
	}
	return out
}

func (*Form2) isHeaderForm() {}

// HistoricalSurface pairs a historical kana usage with the surface forms it
// belongs to.
type HistoricalSurface struct {
	HistoricalKana string
	Surface        SurfaceForm
}

// SurfaceForm is either a set of alternative kanji spellings or a single
// romanized spelling.
type SurfaceForm struct {
	Kanji  []string
	Romaji string
}

// IsRomaji reports whether the form is a romanized spelling.
func (s SurfaceForm) IsRomaji() bool { return s.Kanji == nil }

// Spellings returns the kanji alternatives, or the romaji spelling alone.
func (s SurfaceForm) Spellings() []string {
	if s.IsRomaji() {
		return []string{s.Romaji}
	}
	return s.Kanji
}

// AccentGroup is one bracketed accent numeral. Linked is set when the group
// is joined to the previous one by a hyphen, as in [1]-[0].
type AccentGroup struct {
	Pattern string
	Linked  bool
}

// Accent is the ordered sequence of accent groups of a headword.
type Accent []AccentGroup

// String renders the accent in dump notation, e.g. "[0][3]" or "[1]-[0]".
func (a Accent) String() string {
	var b strings.Builder
	for _, g := range a {
		if g.Linked {
			b.WriteByte('-')
		}
		b.WriteByte('[')
		b.WriteString(g.Pattern)
		b.WriteByte(']')
	}
	return b.String()
}

// ParseHeader parses one header line. Both header forms are attempted on the
// whole line and exactly one must match; whitespace is significant.
func (g *Grammar) ParseHeader(line string) (Header, error) {
	return parseExclusive(strings.TrimRight(line, " \t\r\n"), parseForm1, parseForm2)
}

// headerForm parses one header form alternative at the cursor.
type headerForm func(c *cursor) (HeaderForm, bool)

// parseExclusive runs the header production once per alternative. Exactly
// one must match; a double match is reported as Ambiguous.
func parseExclusive(line string, form1, form2 headerForm) (Header, error) {
	h1, err1 := parseHeaderAs(line, form1)
	h2, err2 := parseHeaderAs(line, form2)

	switch {
	case err1 == nil && err2 == nil:
		return Header{}, &HeaderParseError{Line: line, Ambiguous: true}
	case err1 == nil:
		return h1, nil
	case err2 == nil:
		return h2, nil
	default:
		return Header{}, &HeaderParseError{Line: line, Form1: err1, Form2: err2}
	}
}

// parseHeaderAs runs the full header production with one form alternative.
func parseHeaderAs(line string, form headerForm) (Header, error) {
	c := &cursor{src: line}

	if !c.literal(headerPrefix) {
		return Header{}, c.fail(headerPrefix)
	}
	c.literal(headerPage)

	kana, ok := c.headword()
	if !ok {
		return Header{}, c.lastError(headwordOpen)
	}

	hf, ok := form(c)
	if !ok {
		return Header{}, c.lastError("header form")
	}

	h := Header{Kana: kana, Form: hf}
	c.annotations(&h)

	if !c.atEnd() {
		return Header{}, c.fail("end of header")
	}
	return h, nil
}

// parseForm1: [" " historical] [" " accent] [" " surface]
func parseForm1(c *cursor) (HeaderForm, bool) {
	f := &Form1{}
	c.optional(func() bool {
		hist, ok := c.spaced(c.katakanaWord)
		f.HistoricalKana = hist
		return ok
	})
	c.optional(func() bool {
		acc, ok := c.spacedAccent()
		f.Accent = acc
		return ok
	})
	c.optional(func() bool {
		if !c.literal(" ") {
			return false
		}
		sf, ok := c.surfaceForm()
		if ok {
			f.Surface = &sf
		}
		return ok
	})
	return f, true
}

// parseForm2: [" " accent] " " pair (" ・ " pair)+
func parseForm2(c *cursor) (HeaderForm, bool) {
	f := &Form2{}
	c.optional(func() bool {
		acc, ok := c.spacedAccent()
		f.Accent = acc
		return ok
	})
	if !c.literal(" ") {
		c.fail("space before historical kana")
		return nil, false
	}
	first, ok := c.historicalSurface()
	if !ok {
		c.fail("historical kana / surface pair")
		return nil, false
	}
	f.Pairs = append(f.Pairs, first)
	for {
		more := c.optional(func() bool {
			if !c.literal(pairSeparator) {
				return false
			}
			p, ok := c.historicalSurface()
			if ok {
				f.Pairs = append(f.Pairs, p)
			}
			return ok
		})
		if !more {
			break
		}
	}
	if len(f.Pairs) < 2 {
		c.fail("second historical kana / surface pair")
		return nil, false
	}
	return f, true
}

// cursor is a backtracking position over one header line. err keeps the
// failure that got farthest into the input.
type cursor struct {
	src string
	pos int
	err *SyntaxError
}

func (c *cursor) rest() string { return c.src[c.pos:] }

func (c *cursor) atEnd() bool { return c.pos >= len(c.src) }

func (c *cursor) literal(s string) bool {
	if strings.HasPrefix(c.rest(), s) {
		c.pos += len(s)
		return true
	}
	return false
}

func (c *cursor) fail(expected string) *SyntaxError {
	if c.err == nil || c.pos >= c.err.Offset {
		c.err = syntaxErrorAt(c.src, c.pos, expected)
	}
	return c.err
}

// lastError returns the farthest failure recorded so far.
func (c *cursor) lastError(expected string) error {
	if c.err == nil {
		return c.fail(expected)
	}
	return c.err
}

// optional runs fn and rewinds the cursor when fn does not match.
func (c *cursor) optional(fn func() bool) bool {
	saved := c.pos
	if fn() {
		return true
	}
	c.pos = saved
	return false
}

// spaced matches a single space followed by fn.
func (c *cursor) spaced(fn func() (string, bool)) (string, bool) {
	if !c.literal(" ") {
		return "", false
	}
	return fn()
}

func (c *cursor) headword() (string, bool) {
	if !c.literal(headwordOpen) {
		c.fail(headwordOpen)
		return "", false
	}
	end := strings.Index(c.rest(), headwordClose)
	if end < 0 {
		c.fail(headwordClose)
		return "", false
	}
	if end == 0 {
		c.fail("headword reading")
		return "", false
	}
	kana := c.rest()[:end]
	c.pos += end + len(headwordClose)
	return kana, true
}

// katakanaWord matches [ァ-ン―・]+.
func (c *cursor) katakanaWord() (string, bool) {
	start := c.pos
	for !c.atEnd() {
		r, size := utf8.DecodeRuneInString(c.rest())
		if !isKatakanaWordRune(r) {
			break
		}
		c.pos += size
	}
	if c.pos == start {
		c.fail("historical kana")
		return "", false
	}
	return c.src[start:c.pos], true
}

func isKatakanaWordRune(r rune) bool {
	return (r >= 'ァ' && r <= 'ン') || r == '―' || r == '・'
}

func (c *cursor) spacedAccent() (Accent, bool) {
	if !c.literal(" ") {
		return nil, false
	}
	return c.accent()
}

// accent matches box ("-"? box)*.
func (c *cursor) accent() (Accent, bool) {
	first, ok := c.accentBox()
	if !ok {
		return nil, false
	}
	acc := Accent{{Pattern: first}}
	for {
		saved := c.pos
		linked := c.literal("-")
		p, ok := c.accentBox()
		if !ok {
			c.pos = saved
			break
		}
		acc = append(acc, AccentGroup{Pattern: p, Linked: linked})
	}
	return acc, true
}

// accentBox matches "[" digits "]".
func (c *cursor) accentBox() (string, bool) {
	saved := c.pos
	if !c.literal("[") {
		c.fail("accent")
		return "", false
	}
	start := c.pos
	for !c.atEnd() && c.src[c.pos] >= '0' && c.src[c.pos] <= '9' {
		c.pos++
	}
	digits := c.src[start:c.pos]
	if digits == "" || !c.literal("]") {
		c.fail("accent numeral")
		c.pos = saved
		return "", false
	}
	return digits, true
}

func (c *cursor) surfaceForm() (SurfaceForm, bool) {
	if text, ok := c.enclosed(kanjiFormOpen, kanjiFormClose); ok {
		return SurfaceForm{Kanji: strings.Split(text, kanjiDelimiter)}, true
	}
	if text, ok := c.enclosed(romajiFormOpen, romajiFormClose); ok {
		return SurfaceForm{Romaji: text}, true
	}
	c.fail("surface form")
	return SurfaceForm{}, false
}

func (c *cursor) historicalSurface() (HistoricalSurface, bool) {
	saved := c.pos
	hist, ok := c.katakanaWord()
	if !ok || !c.literal(" ") {
		c.pos = saved
		return HistoricalSurface{}, false
	}
	sf, ok := c.surfaceForm()
	if !ok {
		c.pos = saved
		return HistoricalSurface{}, false
	}
	return HistoricalSurface{HistoricalKana: hist, Surface: sf}, true
}

// enclosed matches open, any text up to the first close, and close.
func (c *cursor) enclosed(open, close string) (string, bool) {
	if !strings.HasPrefix(c.rest(), open) {
		return "", false
	}
	start := c.pos + len(open)
	end := strings.Index(c.src[start:], close)
	if end < 0 {
		return "", false
	}
	c.pos = start + end + len(close)
	return c.src[start : start+end], true
}

// nested matches a balanced open/close pair and returns its raw content.
func (c *cursor) nested(open, close string) (string, bool) {
	if !strings.HasPrefix(c.rest(), open) {
		return "", false
	}
	start := c.pos + len(open)
	depth := 1
	for i := start; i < len(c.src); {
		switch {
		case strings.HasPrefix(c.src[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(c.src[i:], close):
			depth--
			if depth == 0 {
				c.pos = i + len(close)
				return c.src[start:i], true
			}
			i += len(close)
		default:
			_, size := utf8.DecodeRuneInString(c.src[i:])
			i += size
		}
	}
	return "", false
}

// annotations matches [" " pos-and-conjugation] ["スル" [" "]] ["[文]" rest].
func (c *cursor) annotations(h *Header) {
	c.optional(func() bool {
		if !c.literal(" ") {
			return false
		}
		if pos, ok := c.nested("（", "）"); ok {
			h.PartOfSpeech = &pos
			if conj, ok := c.nested("(", ")"); ok {
				h.Conjugation = &conj
			}
			return true
		}
		if conj, ok := c.nested("(", ")"); ok {
			h.Conjugation = &conj
			return true
		}
		return false
	})
	if c.literal(suruMarker) {
		h.Suru = true
		c.literal(" ")
	}
	if c.literal(literaryMarker) {
		lit := c.rest()
		h.LiteraryForm = &lit
		c.pos = len(c.src)
	}
}
