package analysis

import "strings"

// Severity is a risk level for one category or for the overall assessment.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
	// SeverityUnknown means the model's answer could not be read. The model
	// is never asked to produce it.
	SeverityUnknown Severity = "Unknown"
)

// ParseSeverity canonicalizes a raw string from a model reply.
// Anything that is not recognizably Low/Medium/High is Unknown.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	default:
		return SeverityUnknown
	}
}

// Aggregate applies the rubric's overall rule to three category severities:
// High iff at least two are High, Low iff all three are Low, Medium otherwise.
// Unknown inputs land in the Medium fall-through.
func Aggregate(a, b, c Severity) Severity {
	high := 0
	low := 0
	for _, s := range []Severity{a, b, c} {
		switch s {
		case SeverityHigh:
			high++
		case SeverityLow:
			low++
		}
	}
	if high >= 2 {
		return SeverityHigh
	}
	if low == 3 {
		return SeverityLow
	}
	return SeverityMedium
}
