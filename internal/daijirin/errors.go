package daijirin

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// excerptLen is the number of runes of input quoted in syntax errors.
const excerptLen = 24

// SyntaxError is the "no match" result of a grammar production. It is a
// value, not a failure of the run: ordered and exclusive choices inspect it
// and try their other alternatives.
type SyntaxError struct {
	Offset   int
	Expected string
	Near     string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("offset %d: expected %s at end of input", e.Offset, e.Expected)
	}
	return fmt.Sprintf("offset %d: expected %s near %q", e.Offset, e.Expected, e.Near)
}

func syntaxErrorAt(src string, offset int, expected string) *SyntaxError {
	return &SyntaxError{Offset: offset, Expected: expected, Near: excerpt(src, offset)}
}

func excerpt(src string, offset int) string {
	if offset >= len(src) {
		return ""
	}
	rest := src[offset:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	if utf8.RuneCountInString(rest) > excerptLen {
		rest = string([]rune(rest)[:excerptLen]) + "…"
	}
	return rest
}

// HeaderParseError reports a header line that did not match exactly one of
// the two alternative header grammars.
type HeaderParseError struct {
	Line string
	// Ambiguous is set when both alternatives matched. That points at the
	// grammar, not at the input.
	Ambiguous bool
	Form1     error
	Form2     error
}

func (e *HeaderParseError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("header: both header forms match %q", e.Line)
	}
	return fmt.Sprintf("header: no header form matches (form1: %v; form2: %v)", e.Form1, e.Form2)
}

func (e *HeaderParseError) Unwrap() []error {
	if e.Ambiguous {
		return []error{domain.ErrHeaderParse, domain.ErrGrammarAmbiguous}
	}
	return []error{domain.ErrHeaderParse}
}

// BodyParseError reports an entry body the body grammar could not consume
// completely.
type BodyParseError struct {
	Cause *SyntaxError
}

func (e *BodyParseError) Error() string {
	return fmt.Sprintf("body: %v", e.Cause)
}

func (e *BodyParseError) Unwrap() error { return domain.ErrBodyParse }

// NumeralMappingError reports a numbering glyph outside its mapping table.
type NumeralMappingError struct {
	Class string
	Glyph string
}

func (e *NumeralMappingError) Error() string {
	return fmt.Sprintf("numeral: %s %q has no mapping", e.Class, e.Glyph)
}

func (e *NumeralMappingError) Unwrap() error { return domain.ErrNumeralMapping }

// MissingMetadataError reports a metadata block without a required key.
type MissingMetadataError struct {
	Key string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("metadata: no %s line before the first entry", e.Key)
}

func (e *MissingMetadataError) Unwrap() error { return domain.ErrMissingMetadata }
