package daijirin

import (
	"strings"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

const (
	quoteOpen       = "「"
	quoteClose      = "」"
	citationDivider = "/"
)

// DefinitionBlock is a terminal definition: a head passage and the lettered
// sub-senses （ア）（イ）… that follow it.
type DefinitionBlock struct {
	Head           Passage
	Subdefinitions []Subdefinition
}

type Subdefinition struct {
	Number  int
	Passage Passage
}

// Passage is definition text with its trailing usage examples lifted out.
type Passage struct {
	Text     string
	Examples []domain.Example
}

// IsEmpty reports whether the block carries neither text nor examples.
func (b DefinitionBlock) IsEmpty() bool {
	return b.Head.Text == "" && len(b.Head.Examples) == 0 && len(b.Subdefinitions) == 0
}

// splitDefinition escapes protected spans, splits the block on unescaped
// subdefinition markers and extracts examples from every span.
func (n *numerals) splitDefinition(text string) (DefinitionBlock, error) {
	escaped := Escape(text)

	type span struct {
		letter rune
		start  int
		end    int
	}
	var spans []span
	headEnd := len(escaped)

	for i := 0; i < len(escaped); {
		letter, size, ok := subdefinitionMarkerAt(escaped, i)
		if !ok {
			i++
			continue
		}
		if len(spans) == 0 {
			headEnd = i
		} else {
			spans[len(spans)-1].end = i
		}
		spans = append(spans, span{letter: letter, start: i + size, end: len(escaped)})
		i += size
	}

	block := DefinitionBlock{Head: leafPassage(escaped[:headEnd])}
	for _, s := range spans {
		number, err := n.kana.lookup(s.letter)
		if err != nil {
			return DefinitionBlock{}, err
		}
		block.Subdefinitions = append(block.Subdefinitions, Subdefinition{
			Number:  number,
			Passage: leafPassage(escaped[s.start:s.end]),
		})
	}
	return block, nil
}

func leafPassage(span string) Passage {
	return extractExamples(Unescape(strings.TrimRight(span, " \t\r\n")))
}

// extractExamples lifts out every run of quotes that ends a line. The quote
// text before the first "/" is kept; the citation after it is dropped. The
// remaining text has the runs excised.
func extractExamples(text string) Passage {
	var (
		b        strings.Builder
		examples []domain.Example
		lo       int
	)
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], quoteOpen) {
			if quotes, end, ok := exampleRunAt(text, i); ok {
				b.WriteString(text[lo:i])
				for _, q := range quotes {
					examples = append(examples, domain.Example{
						Type:       domain.ExampleTypeUnknown,
						Expression: stripCitation(q),
					})
				}
				lo, i = end, end
				continue
			}
		}
		i++
	}
	b.WriteString(text[lo:])

	return Passage{Text: strings.TrimSpace(b.String()), Examples: examples}
}

// exampleRunAt matches 「…」 quotes separated by blanks and followed by the
// end of the line.
func exampleRunAt(text string, i int) ([]string, int, bool) {
	var quotes []string
	j := i
	for strings.HasPrefix(text[j:], quoteOpen) {
		start := j + len(quoteOpen)
		k := strings.Index(text[start:], quoteClose)
		if k < 0 {
			break
		}
		quotes = append(quotes, text[start:start+k])
		j = start + k + len(quoteClose)

		next := j
		for next < len(text) && (text[next] == ' ' || text[next] == '\t') {
			next++
		}
		if !strings.HasPrefix(text[next:], quoteOpen) {
			break
		}
		j = next
	}
	if len(quotes) == 0 {
		return nil, 0, false
	}

	end := j
	for end < len(text) && (text[end] == ' ' || text[end] == '\t' || text[end] == '\r') {
		end++
	}
	if end < len(text) && text[end] != '\n' {
		return nil, 0, false
	}
	return quotes, end, true
}

func stripCitation(quote string) string {
	if i := strings.Index(quote, citationDivider); i >= 0 {
		return quote[:i]
	}
	return quote
}
