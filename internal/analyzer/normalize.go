package analyzer

import "github.com/privascope-ai/privascope/internal/analysis"

// NormalizeSummary builds a fixed-shape Summary from a parsed model reply.
// Fields that are absent or not the expected JSON string keep their defaults
// ("Not specified" / Unknown). It never fails: a nil object yields an
// all-defaults Summary. The overall risk is the model's stated value,
// canonicalized but never recomputed here.
func NormalizeSummary(obj map[string]any) analysis.Summary {
	return analysis.Summary{
		DataCollecting:     normalizeCategory(obj, analysis.CategoryDataCollecting),
		DataSharing:        normalizeCategory(obj, analysis.CategoryDataSharing),
		DataRetention:      normalizeCategory(obj, analysis.CategoryDataRetention),
		OverallPrivacyRisk: normalizeOverall(obj),
	}
}

func normalizeCategory(obj map[string]any, key string) analysis.CategoryJudgment {
	out := analysis.CategoryJudgment{
		Details:  analysis.DefaultDetails,
		Severity: analysis.SeverityUnknown,
	}
	m, ok := obj[key].(map[string]any)
	if !ok {
		return out
	}
	if s, ok := m["details"].(string); ok {
		out.Details = s
	}
	if s, ok := m["severity"].(string); ok {
		out.Severity = analysis.ParseSeverity(s)
	}
	return out
}

func normalizeOverall(obj map[string]any) analysis.Severity {
	if s, ok := obj[analysis.KeyOverallPrivacyRisk].(string); ok {
		return analysis.ParseSeverity(s)
	}
	return analysis.SeverityUnknown
}
