package daijirin

import (
	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// Build turns a parsed entry into its normalized document. It does not
// retain or modify the parse trees.
func Build(h Header, b Body) domain.NormalizedEntry {
	entry := domain.NormalizedEntry{
		Format:     domain.EntryFormatJJ1,
		Kana:       h.Kana,
		Definition: buildNode(b.Root),
	}
	if h.Form != nil {
		entry.Kanji = append([]string(nil), h.Form.Spellings()...)
		entry.Accent = h.Form.AccentPattern().String()
	}
	return entry
}

func buildNode(n Node) domain.Definition {
	switch n := n.(type) {
	case *GrammarGroup:
		return buildGrammarGroup(n)
	case *MeaningGroup:
		return buildMeaningGroup(n)
	case *MultiDefinition:
		return buildMultiDefinition(n)
	case *SingleDefinition:
		return buildBlock(n.Block)
	default:
		return domain.Definition{}
	}
}

func buildGrammarGroup(gg *GrammarGroup) domain.Definition {
	def := domain.Definition{Group: domain.GroupGrammar, Text: gg.Preamble}
	for _, sub := range gg.Subentries {
		text := sub.Text
		for _, term := range sub.Terms {
			text += termOpen + term + termClose
		}
		child := domain.Definition{Group: domain.GroupSubgrammar, Number: sub.Number, Text: text}
		if sub.Content != nil {
			child.Children = []domain.Definition{buildNode(sub.Content)}
		}
		def.Children = append(def.Children, child)
	}
	return def
}

func buildMeaningGroup(mg *MeaningGroup) domain.Definition {
	def := domain.Definition{Group: domain.GroupMeaning, Text: mg.Preamble}
	for _, item := range mg.Items {
		child := domain.Definition{
			Group:    domain.GroupSubmeaning,
			Number:   item.Number,
			Text:     item.Head.Text,
			Examples: copyExamples(item.Head.Examples),
		}
		if item.Content != nil {
			child.Children = []domain.Definition{buildNode(item.Content)}
		}
		def.Children = append(def.Children, child)
	}
	return def
}

func buildMultiDefinition(md *MultiDefinition) domain.Definition {
	def := domain.Definition{Group: domain.GroupMultiDefinition, Text: md.Preamble}
	for _, item := range md.Items {
		child := buildBlock(item.Block)
		child.Number = item.Number
		def.Children = append(def.Children, child)
	}
	return def
}

// buildBlock maps a terminal block to a leaf, or to a subdefinition node when
// it has lettered sub-senses.
func buildBlock(b DefinitionBlock) domain.Definition {
	def := domain.Definition{Text: b.Head.Text, Examples: copyExamples(b.Head.Examples)}
	if len(b.Subdefinitions) == 0 {
		return def
	}
	def.Group = domain.GroupSubdefinition
	for _, sd := range b.Subdefinitions {
		def.Children = append(def.Children, domain.Definition{
			Group:    domain.GroupSubsubdefinition,
			Number:   sd.Number,
			Text:     sd.Passage.Text,
			Examples: copyExamples(sd.Passage.Examples),
		})
	}
	return def
}

func copyExamples(in []domain.Example) []domain.Example {
	if len(in) == 0 {
		return nil
	}
	return append([]domain.Example(nil), in...)
}
