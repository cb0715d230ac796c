package domain

import (
	"errors"
)

// Sentinel errors used across all layers.
var (
	// Entry-level: the entry is skipped and logged, the run continues.
	ErrHeaderParse      = errors.New("header parse error")
	ErrBodyParse        = errors.New("body parse error")
	ErrNumeralMapping   = errors.New("numeral mapping error")
	ErrGrammarAmbiguous = errors.New("grammar ambiguity")

	// Run-level: the conversion aborts.
	ErrMissingMetadata = errors.New("missing metadata")

	// Storage.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// FailureKind classifies an entry-level error for reporting.
type FailureKind string

const (
	// FailureMalformedInput means the entry text does not follow the markup.
	FailureMalformedInput FailureKind = "malformed_input"
	// FailureCoverageGap means a numbering glyph fell outside the mapping tables;
	// usually the tables need extending rather than the input fixing.
	FailureCoverageGap FailureKind = "coverage_gap"
	// FailureGrammarDefect means both alternative header grammars matched.
	FailureGrammarDefect FailureKind = "grammar_defect"
)

// ClassifyFailure maps an entry-level error to its FailureKind.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNumeralMapping):
		return FailureCoverageGap
	case errors.Is(err, ErrGrammarAmbiguous):
		return FailureGrammarDefect
	default:
		return FailureMalformedInput
	}
}
