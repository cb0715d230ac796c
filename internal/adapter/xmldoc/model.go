package xmldoc

import (
	"encoding/xml"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

type xmlMeta struct {
	XMLName        xml.Name `xml:"dictionary_meta"`
	Name           string   `xml:"name"`
	DumpVersion    string   `xml:"dump_version,omitempty"`
	ConvertVersion string   `xml:"convert_version"`
}

type xmlEntry struct {
	XMLName    xml.Name      `xml:"entry"`
	Format     string        `xml:"format,attr"`
	Kana       string        `xml:"kana"`
	Kanji      []string      `xml:"kanji"`
	Accent     string        `xml:"accent,omitempty"`
	Definition xmlDefinition `xml:"definition"`
}

// xmlDefinition keeps the child order of the schema: text, usage examples,
// then nested definitions.
type xmlDefinition struct {
	Group    string          `xml:"group,attr,omitempty"`
	Number   int             `xml:"number,attr,omitempty"`
	Text     string          `xml:"definition_text,omitempty"`
	Examples []xmlExample    `xml:"usage_example"`
	Children []xmlDefinition `xml:"definition"`
}

type xmlExample struct {
	Type       string `xml:"type,attr"`
	Expression string `xml:"expression"`
}

func toXMLMeta(m domain.DictionaryMetadata) xmlMeta {
	return xmlMeta{
		Name:           m.Title,
		DumpVersion:    m.DumpVersion,
		ConvertVersion: m.ConverterVersion,
	}
}

func toXMLEntry(e domain.NormalizedEntry) xmlEntry {
	format := e.Format
	if format == "" {
		format = domain.EntryFormatJJ1
	}
	return xmlEntry{
		Format:     format,
		Kana:       e.Kana,
		Kanji:      e.Kanji,
		Accent:     e.Accent,
		Definition: toXMLDefinition(e.Definition),
	}
}

func toXMLDefinition(d domain.Definition) xmlDefinition {
	out := xmlDefinition{
		Group:  string(d.Group),
		Number: d.Number,
		Text:   d.Text,
	}
	if len(d.Examples) > 0 {
		out.Examples = make([]xmlExample, len(d.Examples))
		for i, ex := range d.Examples {
			typ := ex.Type
			if typ == "" {
				typ = domain.ExampleTypeUnknown
			}
			out.Examples[i] = xmlExample{Type: typ, Expression: ex.Expression}
		}
	}
	if len(d.Children) > 0 {
		out.Children = make([]xmlDefinition, len(d.Children))
		for i, c := range d.Children {
			out.Children[i] = toXMLDefinition(c)
		}
	}
	return out
}
