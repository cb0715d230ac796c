// Package daijirin parses entries of a Daijirin text dump into normalized
// dictionary documents.
package daijirin

import (
	"strings"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// Grammar holds the numbering tables of the dump format. It is immutable
// after New and safe for concurrent use.
type Grammar struct {
	num numerals
}

func New() *Grammar {
	return &Grammar{num: newNumerals()}
}

// Entry is the parse result of one entry block.
type Entry struct {
	Header Header
	Body   Body
}

// ParseEntry parses a raw entry block: the header line and the body lines
// below it. CRLF line ends are accepted.
func (g *Grammar) ParseEntry(block string) (Entry, error) {
	block = strings.ReplaceAll(block, "\r\n", "\n")

	headerLine, bodyText, _ := strings.Cut(block, "\n")

	header, err := g.ParseHeader(headerLine)
	if err != nil {
		return Entry{}, err
	}
	body, err := g.ParseBody(bodyText)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Header: header, Body: body}, nil
}

// Convert parses a raw entry block and builds its normalized document.
func (g *Grammar) Convert(block string) (domain.NormalizedEntry, error) {
	entry, err := g.ParseEntry(block)
	if err != nil {
		return domain.NormalizedEntry{}, err
	}
	return Build(entry.Header, entry.Body), nil
}
