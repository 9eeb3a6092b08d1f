// Package analysis extracts the structured verdict the assistant produces
// for a work item from its free-form output.
package analysis

import (
	"errors"
	"strings"
)

// ErrMalformed is returned when no parseable JSON object can be found in
// the assistant's output.
var ErrMalformed = errors.New("no parseable analysis JSON found in assistant output")

// Confidence levels the assistant may report.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Complexity estimates the assistant may report.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Analysis is the structured verdict extracted from the assistant's first
// response: whether the item is auto-resolvable, and how.
type Analysis struct {
	CanResolve          bool   `json:"canResolve"`
	Confidence          string `json:"confidence"`
	Reason              string `json:"reason"`
	Approach            string `json:"approach"`
	EstimatedComplexity string `json:"estimatedComplexity"`
}

// Normalize converts escaped newline sequences inside string fields to
// literal newlines so the text reads correctly in posted comments.
func (a *Analysis) Normalize() {
	a.Reason = unescapeNewlines(a.Reason)
	a.Approach = unescapeNewlines(a.Approach)
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
