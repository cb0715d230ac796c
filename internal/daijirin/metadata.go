package daijirin

import (
	"strings"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// Metadata keys recognised in the dump preamble.
const (
	MetaKeyTitle   = "TITLE"
	MetaKeyVersion = "VERSION"
	MetaKeyFormat  = "FORMAT"
)

const metadataSeparator = ": "

// ParseMetadata reads "KEY: value" lines preceding the first entry. Lines
// without the separator and unknown keys are ignored. A missing TITLE is a
// *MissingMetadataError.
func ParseMetadata(lines []string, converterVersion string) (domain.DictionaryMetadata, error) {
	meta := domain.DictionaryMetadata{ConverterVersion: converterVersion}
	hasTitle := false

	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimRight(line, " \t\r\n"), metadataSeparator)
		if !ok {
			continue
		}
		switch key {
		case MetaKeyTitle:
			meta.Title = value
			hasTitle = true
		case MetaKeyVersion:
			meta.DumpVersion = value
		case MetaKeyFormat:
			// Describes the dump markup itself, which is fixed.
		}
	}

	if !hasTitle {
		return domain.DictionaryMetadata{}, &MissingMetadataError{Key: MetaKeyTitle}
	}
	return meta, nil
}
