package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/privascope-ai/privascope/internal/analysis"
)

func mustParse(t *testing.T, raw string) map[string]any {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return obj
}

func TestNormalizeSummaryComplete(t *testing.T) {
	obj := mustParse(t, `{
		"data_collecting": {"details": "Email and usage data", "severity": "Medium"},
		"data_sharing": {"details": "Shared with partners", "severity": "high"},
		"data_retention": {"details": "90 days", "severity": "Low"},
		"overall_privacy_risk": "medium"
	}`)

	got := NormalizeSummary(obj)

	if got.DataCollecting.Details != "Email and usage data" || got.DataCollecting.Severity != analysis.SeverityMedium {
		t.Fatalf("data_collecting = %+v", got.DataCollecting)
	}
	if got.DataSharing.Severity != analysis.SeverityHigh {
		t.Fatalf("severity not canonicalized: %+v", got.DataSharing)
	}
	if got.DataRetention.Details != "90 days" || got.DataRetention.Severity != analysis.SeverityLow {
		t.Fatalf("data_retention = %+v", got.DataRetention)
	}
	if got.OverallPrivacyRisk != analysis.SeverityMedium {
		t.Fatalf("overall = %q", got.OverallPrivacyRisk)
	}
}

func TestNormalizeSummaryMissingPieces(t *testing.T) {
	obj := mustParse(t, `{
		"data_collecting": {"severity": "Low"},
		"data_sharing": {"details": "Shared with partners"}
	}`)

	got := NormalizeSummary(obj)

	if got.DataCollecting.Details != analysis.DefaultDetails {
		t.Fatalf("missing details should default, got %q", got.DataCollecting.Details)
	}
	if got.DataSharing.Severity != analysis.SeverityUnknown {
		t.Fatalf("missing severity should be Unknown, got %q", got.DataSharing.Severity)
	}
	if got.DataRetention.Details != analysis.DefaultDetails || got.DataRetention.Severity != analysis.SeverityUnknown {
		t.Fatalf("absent category should be all defaults: %+v", got.DataRetention)
	}
	if got.OverallPrivacyRisk != analysis.SeverityUnknown {
		t.Fatalf("absent overall should be Unknown, got %q", got.OverallPrivacyRisk)
	}
}

func TestNormalizeSummaryWrongTypes(t *testing.T) {
	obj := mustParse(t, `{
		"data_collecting": "lots",
		"data_sharing": {"details": 42, "severity": 3},
		"data_retention": {"details": "ok", "severity": "Critical"},
		"overall_privacy_risk": true
	}`)

	got := NormalizeSummary(obj)

	if got.DataCollecting.Details != analysis.DefaultDetails || got.DataCollecting.Severity != analysis.SeverityUnknown {
		t.Fatalf("non-object category should be defaults: %+v", got.DataCollecting)
	}
	if got.DataSharing.Details != analysis.DefaultDetails || got.DataSharing.Severity != analysis.SeverityUnknown {
		t.Fatalf("wrong-typed fields should be defaults: %+v", got.DataSharing)
	}
	if got.DataRetention.Severity != analysis.SeverityUnknown {
		t.Fatalf("unrecognized severity should be Unknown: %+v", got.DataRetention)
	}
	if got.OverallPrivacyRisk != analysis.SeverityUnknown {
		t.Fatalf("non-string overall should be Unknown, got %q", got.OverallPrivacyRisk)
	}
}

func TestNormalizeSummaryNilObject(t *testing.T) {
	got := NormalizeSummary(nil)

	want := analysis.Summary{
		DataCollecting:     analysis.CategoryJudgment{Details: analysis.DefaultDetails, Severity: analysis.SeverityUnknown},
		DataSharing:        analysis.CategoryJudgment{Details: analysis.DefaultDetails, Severity: analysis.SeverityUnknown},
		DataRetention:      analysis.CategoryJudgment{Details: analysis.DefaultDetails, Severity: analysis.SeverityUnknown},
		OverallPrivacyRisk: analysis.SeverityUnknown,
	}
	if got != want {
		t.Fatalf("nil object = %+v, want all defaults", got)
	}
}

func TestNormalizeSummaryKeepsStatedOverall(t *testing.T) {
	// Categories say Low across the board but the model states High.
	// Normalization keeps the stated value; consistency is tracked separately.
	obj := mustParse(t, `{
		"data_collecting": {"details": "None", "severity": "Low"},
		"data_sharing": {"details": "None", "severity": "Low"},
		"data_retention": {"details": "None", "severity": "Low"},
		"overall_privacy_risk": "High"
	}`)

	got := NormalizeSummary(obj)

	if got.OverallPrivacyRisk != analysis.SeverityHigh {
		t.Fatalf("overall = %q, want the stated High", got.OverallPrivacyRisk)
	}
	if got.Consistent() {
		t.Fatalf("summary should be flagged inconsistent")
	}
}
