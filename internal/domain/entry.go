package domain

// EntryFormatJJ1 is the format tag carried by every entry converted from a
// monolingual Japanese dictionary dump.
const EntryFormatJJ1 = "J-J1"

// ExampleTypeUnknown is used for usage examples whose kind (phrase, sentence,
// quotation) is not recoverable from the source markup.
const ExampleTypeUnknown = "UNKNOWN"

// NormalizedEntry is one dictionary entry in the normalized document model.
// Kana is always non-empty. Kanji is only populated when the header carried
// surface forms; romanized spellings are stored there as well.
type NormalizedEntry struct {
	Format     string     `json:"format"`
	Kana       string     `json:"kana"`
	Kanji      []string   `json:"kanji,omitempty"`
	Accent     string     `json:"accent,omitempty"`
	Definition Definition `json:"definition"`
}

// HasAccent reports whether the header carried a pitch-accent pattern.
func (e *NormalizedEntry) HasAccent() bool {
	return e.Accent != ""
}

// Definition is a node of the normalized definition tree.
// Number is the plain integer a numbering glyph was mapped to; zero means
// the node was unnumbered.
type Definition struct {
	Group    GroupTag     `json:"group,omitempty"`
	Number   int          `json:"number,omitempty"`
	Text     string       `json:"text,omitempty"`
	Examples []Example    `json:"examples,omitempty"`
	Children []Definition `json:"children,omitempty"`
}

// Walk visits d and all of its descendants depth-first, parents before children.
// depth is 0 for d itself.
func (d *Definition) Walk(fn func(def *Definition, depth int)) {
	d.walk(fn, 0)
}

func (d *Definition) walk(fn func(def *Definition, depth int), depth int) {
	fn(d, depth)
	for i := range d.Children {
		d.Children[i].walk(fn, depth+1)
	}
}

// Example is a literal usage string with its source citation removed.
type Example struct {
	Type       string `json:"type"`
	Expression string `json:"expression"`
}

// DictionaryMetadata describes the dump being converted.
type DictionaryMetadata struct {
	Title            string `json:"title"`
	DumpVersion      string `json:"dump_version,omitempty"`
	ConverterVersion string `json:"converter_version"`
}
