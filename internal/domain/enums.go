package domain

// GroupTag classifies a definition node by the structure it was built from.
// Plain definitions carry no tag.
type GroupTag string

const (
	GroupNone             GroupTag = ""
	GroupGrammar          GroupTag = "grammar"
	GroupSubgrammar       GroupTag = "subgrammar"
	GroupMeaning          GroupTag = "meaning"
	GroupSubmeaning       GroupTag = "submeaning"
	GroupMultiDefinition  GroupTag = "multidefinition"
	GroupSubdefinition    GroupTag = "subdefinition"
	GroupSubsubdefinition GroupTag = "subsubdefinition"
)

func (g GroupTag) String() string { return string(g) }

func (g GroupTag) IsValid() bool {
	switch g {
	case GroupNone, GroupGrammar, GroupSubgrammar, GroupMeaning, GroupSubmeaning,
		GroupMultiDefinition, GroupSubdefinition, GroupSubsubdefinition:
		return true
	}
	return false
}

func (k FailureKind) String() string { return string(k) }

func (k FailureKind) IsValid() bool {
	switch k {
	case FailureMalformedInput, FailureCoverageGap, FailureGrammarDefect:
		return true
	}
	return false
}
