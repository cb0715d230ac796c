package daijirin

import (
	"strings"
	"unicode/utf8"
)

// Body markup.
const (
	bodyPrefix       = "<INDENT=4>"
	figureOpen       = "<FIG>"
	figureClose      = "</FIG>"
	audioOpen        = "<WAV>"
	audioClose       = "</WAV>"
	termOpen         = "〔"
	termClose        = "〕"
	grammarMarkBlack = "■"
	grammarMarkWhite = "□"
)

// Body is the parsed part of an entry below the header line.
type Body struct {
	// Root is *GrammarGroup, *MeaningGroup, *MultiDefinition or *SingleDefinition.
	Root Node
	// Figures and Audio hold the captions of the trailing <FIG> and <WAV> lines.
	Figures []string
	Audio   []string
}

// Node is one level of the definition tree.
type Node interface {
	isNode()
}

// GrammarGroup splits an entry by grammatical role, ■一■ / □一□ headed.
type GrammarGroup struct {
	Preamble   string
	Subentries []GrammarSubentry
}

// GrammarSubentry is one ■n■ block. Content is *MeaningGroup,
// *MultiDefinition or *SingleDefinition.
type GrammarSubentry struct {
	Number  int
	Text    string
	Terms   []string
	Content Node
}

// MeaningGroup splits an entry into senses introduced by circled numerals.
type MeaningGroup struct {
	Preamble string
	Items    []MeaningItem
}

// MeaningItem is one ❶ sense. Content is nil, *MultiDefinition or
// *SingleDefinition.
type MeaningItem struct {
	Number  int
	Head    Passage
	Content Node
}

// MultiDefinition is a run of （１）-numbered definitions.
type MultiDefinition struct {
	Preamble string
	Items    []NumberedDefinition
}

type NumberedDefinition struct {
	Number int
	Block  DefinitionBlock
}

// SingleDefinition is an unnumbered definition.
type SingleDefinition struct {
	Block DefinitionBlock
}

func (*GrammarGroup) isNode()     {}
func (*MeaningGroup) isNode()     {}
func (*MultiDefinition) isNode()  {}
func (*SingleDefinition) isNode() {}

// ParseBody parses the lines following the header.
//
// Alternatives are ordered: a grammar group is tried first, then a meaning
// group, then a plain definition. Once an alternative matches it is not
// revisited. Structural markers count only at the start of a line.
func (g *Grammar) ParseBody(text string) (Body, error) {
	p := &bodyParser{num: &g.num, src: text}

	p.skipSpace()
	if !p.literal(bodyPrefix) {
		return Body{}, &BodyParseError{Cause: p.fail(bodyPrefix)}
	}

	root, err := p.root()
	if err != nil {
		return Body{}, err
	}
	body := Body{Root: root}

	for {
		caption, ok := p.trailer(figureOpen, figureClose, true)
		if !ok {
			break
		}
		body.Figures = append(body.Figures, caption)
	}
	for {
		caption, ok := p.trailer(audioOpen, audioClose, false)
		if !ok {
			break
		}
		body.Audio = append(body.Audio, caption)
	}

	p.skipSpace()
	if !p.atEnd() {
		return Body{}, &BodyParseError{Cause: p.fail("end of entry")}
	}
	return body, nil
}

// bodyParser is a position over one entry body. Soft failures rewind the
// position; numeral mapping errors abort the parse.
type bodyParser struct {
	num *numerals
	src string
	pos int
	err *SyntaxError
}

func (p *bodyParser) root() (Node, error) {
	if gg, ok, err := p.grammarGroup(); err != nil || ok {
		return gg, err
	}
	if mg, ok, err := p.meaningGroup(); err != nil || ok {
		return mg, err
	}
	return p.noSubentry()
}

// grammarGroup: [preamble] subentry+
func (p *bodyParser) grammarGroup() (*GrammarGroup, bool, error) {
	saved := p.pos
	gg := &GrammarGroup{}

	preamble, ok := p.preamble(p.isSubentryHeader, nil)
	if !ok {
		p.pos = saved
		return nil, false, nil
	}
	gg.Preamble = preamble

	for {
		p.skipSpace()
		if !p.isSubentryHeader(p.pos) {
			break
		}
		sub, err := p.subentry()
		if err != nil {
			return nil, false, err
		}
		gg.Subentries = append(gg.Subentries, sub)
	}
	return gg, true, nil
}

// subentry: header line, terminology lines, then a meaning group or a plain
// definition.
func (p *bodyParser) subentry() (GrammarSubentry, error) {
	mark := grammarMarkBlack
	if strings.HasPrefix(p.rest(), grammarMarkWhite) {
		mark = grammarMarkWhite
	}
	p.pos += len(mark)

	start := p.pos
	for !p.atEnd() {
		r, size := utf8.DecodeRuneInString(p.rest())
		if !isKanjiNumeralGlyph(r) {
			break
		}
		p.pos += size
	}
	number, err := p.num.kanji.lookupWord(p.src[start:p.pos])
	if err != nil {
		return GrammarSubentry{}, err
	}
	p.pos += len(mark)

	sub := GrammarSubentry{Number: number, Text: strings.TrimSpace(p.restOfLine())}

	for {
		term, ok := p.termLine()
		if !ok {
			break
		}
		sub.Terms = append(sub.Terms, term)
	}

	mg, ok, err := p.meaningGroup()
	if err != nil {
		return GrammarSubentry{}, err
	}
	if ok {
		sub.Content = mg
		return sub, nil
	}
	sub.Content, err = p.noSubentry()
	if err != nil {
		return GrammarSubentry{}, err
	}
	return sub, nil
}

// termLine matches a line consisting of a single 〔…〕 gloss.
func (p *bodyParser) termLine() (string, bool) {
	saved := p.pos
	p.skipSpace()
	if !p.literal(termOpen) {
		p.pos = saved
		return "", false
	}
	end := strings.Index(p.rest(), termClose)
	if end < 0 {
		p.pos = saved
		return "", false
	}
	term := p.rest()[:end]
	p.pos += end + len(termClose)
	if !p.lineEnd() {
		p.pos = saved
		return "", false
	}
	return term, true
}

// meaningGroup: [preamble] item+ where item is a ❶ line optionally followed
// by a plain definition.
func (p *bodyParser) meaningGroup() (*MeaningGroup, bool, error) {
	saved := p.pos
	mg := &MeaningGroup{}

	preamble, ok := p.preamble(p.isCircledMarker, p.isSubentryHeader)
	if !ok {
		p.pos = saved
		return nil, false, nil
	}
	mg.Preamble = preamble

	for {
		p.skipSpace()
		if !p.isCircledMarker(p.pos) {
			break
		}
		r, size := utf8.DecodeRuneInString(p.rest())
		number, err := p.num.circled.lookup(r)
		if err != nil {
			return nil, false, err
		}
		p.pos += size

		item := MeaningItem{Number: number, Head: extractExamples(p.restOfLine())}
		p.lineEnd()

		if !p.itemEndsHere() {
			item.Content, err = p.noSubentry()
			if err != nil {
				return nil, false, err
			}
		}
		mg.Items = append(mg.Items, item)
	}
	return mg, true, nil
}

// itemEndsHere reports whether a meaning item line is followed directly by
// another item, an enclosing subentry, a trailer or the end of the body.
func (p *bodyParser) itemEndsHere() bool {
	i := p.skipSpaceFrom(p.pos)
	return i >= len(p.src) || p.isCircledMarker(i) || p.isSubentryHeader(i) || p.isTrailer(i)
}

func (p *bodyParser) noSubentry() (Node, error) {
	md, ok, err := p.multiDefinition()
	if err != nil || ok {
		return md, err
	}
	block, err := p.definitionBlock()
	if err != nil {
		return nil, err
	}
	return &SingleDefinition{Block: block}, nil
}

// multiDefinition: [preamble] (（n） block)+
func (p *bodyParser) multiDefinition() (*MultiDefinition, bool, error) {
	saved := p.pos
	md := &MultiDefinition{}

	preamble, ok := p.preamble(p.isDefinitionNumber, p.isEnclosingMarker)
	if !ok {
		p.pos = saved
		return nil, false, nil
	}
	md.Preamble = preamble

	for {
		before := p.pos
		p.skipSpace()
		digits, end, ok := p.definitionNumberAt(p.pos)
		if !ok {
			p.pos = before
			break
		}
		number, err := p.num.wideNumber(digits)
		if err != nil {
			return nil, false, err
		}
		p.pos = end

		block, err := p.definitionBlock()
		if err != nil {
			return nil, false, err
		}
		md.Items = append(md.Items, NumberedDefinition{Number: number, Block: block})
	}
	return md, true, nil
}

// definitionBlock consumes text up to the next line-start marker, a trailer,
// or the end of the body.
func (p *bodyParser) definitionBlock() (DefinitionBlock, error) {
	p.skipSpace()
	end := p.blockEnd(p.pos)
	text := p.src[p.pos:end]
	p.pos = end
	return p.num.splitDefinition(text)
}

func (p *bodyParser) blockEnd(from int) int {
	i := from
	if p.atLineStart(i) && p.isStructuralMarker(i) {
		return i
	}
	for {
		lineEnd := len(p.src)
		if j := strings.IndexByte(p.src[i:], '\n'); j >= 0 {
			lineEnd = i + j
		}
		if j := indexTrailer(p.src[i:lineEnd]); j >= 0 {
			return i + j
		}
		if lineEnd == len(p.src) {
			return lineEnd
		}
		next := lineEnd + 1
		if p.isStructuralMarker(p.skipBlanks(next)) {
			return next
		}
		i = next
	}
}

// preamble returns the text before the first line-start position accepted by
// target. It matches empty when target holds at the current position. The scan
// gives up at a line starting with a bound marker or a trailer.
func (p *bodyParser) preamble(target, bound func(int) bool) (string, bool) {
	p.skipSpace()
	start := p.pos
	if target(start) {
		return "", true
	}
	i := start
	for {
		j := strings.IndexByte(p.src[i:], '\n')
		if j < 0 {
			p.fail("numbered item")
			return "", false
		}
		next := i + j + 1
		k := p.skipBlanks(next)
		if target(k) {
			p.pos = k
			return strings.TrimSpace(p.src[start:next]), true
		}
		if (bound != nil && bound(k)) || p.isTrailer(k) {
			p.fail("numbered item")
			return "", false
		}
		i = next
	}
}

// trailer matches open … close; withRest also consumes the remainder of the line.
func (p *bodyParser) trailer(open, close string, withRest bool) (string, bool) {
	saved := p.pos
	p.skipSpace()
	if !p.literal(open) {
		p.pos = saved
		return "", false
	}
	end := strings.Index(p.rest(), close)
	if end < 0 {
		p.fail(close)
		p.pos = saved
		return "", false
	}
	caption := p.rest()[:end]
	p.pos += end + len(close)
	if withRest {
		p.restOfLine()
	}
	return caption, true
}

func (p *bodyParser) isStructuralMarker(i int) bool {
	return p.isDefinitionNumber(i) || p.isCircledMarker(i) || p.isSubentryHeader(i)
}

func (p *bodyParser) isEnclosingMarker(i int) bool {
	return p.isCircledMarker(i) || p.isSubentryHeader(i)
}

func (p *bodyParser) isDefinitionNumber(i int) bool {
	_, _, ok := p.definitionNumberAt(i)
	return ok
}

// definitionNumberAt matches （digits） with full-width digits.
func (p *bodyParser) definitionNumberAt(i int) (string, int, bool) {
	if i >= len(p.src) || !strings.HasPrefix(p.src[i:], subdefOpen) {
		return "", 0, false
	}
	start := i + len(subdefOpen)
	j := start
	for j < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[j:])
		if !isWideDigit(r) {
			break
		}
		j += size
	}
	if j == start || !strings.HasPrefix(p.src[j:], subdefClose) {
		return "", 0, false
	}
	return p.src[start:j], j + len(subdefClose), true
}

func (p *bodyParser) isCircledMarker(i int) bool {
	if i >= len(p.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(p.src[i:])
	return p.num.circled.contains(r)
}

// isSubentryHeader matches ■n■ or □n□ where n is a run of kanji numerals.
func (p *bodyParser) isSubentryHeader(i int) bool {
	if i >= len(p.src) {
		return false
	}
	for _, mark := range [...]string{grammarMarkBlack, grammarMarkWhite} {
		if !strings.HasPrefix(p.src[i:], mark) {
			continue
		}
		j := i + len(mark)
		start := j
		for j < len(p.src) {
			r, size := utf8.DecodeRuneInString(p.src[j:])
			if !isKanjiNumeralGlyph(r) {
				break
			}
			j += size
		}
		return j > start && strings.HasPrefix(p.src[j:], mark)
	}
	return false
}

func (p *bodyParser) isTrailer(i int) bool {
	return i < len(p.src) &&
		(strings.HasPrefix(p.src[i:], figureOpen) || strings.HasPrefix(p.src[i:], audioOpen))
}

func indexTrailer(line string) int {
	fig := strings.Index(line, figureOpen)
	wav := strings.Index(line, audioOpen)
	switch {
	case fig < 0:
		return wav
	case wav < 0:
		return fig
	default:
		return min(fig, wav)
	}
}

// atLineStart reports whether only blanks separate i from the previous newline.
func (p *bodyParser) atLineStart(i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch p.src[j] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (p *bodyParser) rest() string { return p.src[p.pos:] }

func (p *bodyParser) atEnd() bool { return p.pos >= len(p.src) }

func (p *bodyParser) literal(s string) bool {
	if strings.HasPrefix(p.rest(), s) {
		p.pos += len(s)
		return true
	}
	return false
}

// restOfLine consumes up to, not including, the next newline.
func (p *bodyParser) restOfLine() string {
	start := p.pos
	if j := strings.IndexByte(p.rest(), '\n'); j >= 0 {
		p.pos += j
	} else {
		p.pos = len(p.src)
	}
	return p.src[start:p.pos]
}

// lineEnd matches optional blanks and a newline or the end of the body.
func (p *bodyParser) lineEnd() bool {
	i := p.skipBlanks(p.pos)
	if i >= len(p.src) {
		p.pos = i
		return true
	}
	if p.src[i] == '\n' {
		p.pos = i + 1
		return true
	}
	return false
}

func (p *bodyParser) skipSpace() { p.pos = p.skipSpaceFrom(p.pos) }

func (p *bodyParser) skipSpaceFrom(i int) int {
	for i < len(p.src) {
		switch p.src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func (p *bodyParser) skipBlanks(i int) int {
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	return i
}

func (p *bodyParser) fail(expected string) *SyntaxError {
	if p.err == nil || p.pos >= p.err.Offset {
		p.err = syntaxErrorAt(p.src, p.pos, expected)
	}
	return p.err
}
