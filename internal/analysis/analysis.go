// Package analysis holds the normalized result model for privacy-policy
// risk assessments.
package analysis

// Keys as they appear in model replies and in the response body.
const (
	CategoryDataCollecting = "data_collecting"
	CategoryDataSharing    = "data_sharing"
	CategoryDataRetention  = "data_retention"
	KeyOverallPrivacyRisk  = "overall_privacy_risk"
)

// DefaultDetails is substituted whenever a reply omits a details field.
const DefaultDetails = "Not specified"

// CategoryJudgment is the model's verdict for one category.
type CategoryJudgment struct {
	Details  string   `json:"details"`
	Severity Severity `json:"severity"`
}

// Summary is the normalized assessment. All four fields are always present
// after normalization, regardless of what the model actually returned.
type Summary struct {
	DataCollecting     CategoryJudgment `json:"data_collecting"`
	DataSharing        CategoryJudgment `json:"data_sharing"`
	DataRetention      CategoryJudgment `json:"data_retention"`
	OverallPrivacyRisk Severity         `json:"overall_privacy_risk"`
}

// Consistent reports whether the overall risk the model stated matches the
// rubric aggregation of its own category severities. The stated value is
// kept either way; callers only use this for observability.
func (s Summary) Consistent() bool {
	return s.OverallPrivacyRisk == Aggregate(
		s.DataCollecting.Severity,
		s.DataSharing.Severity,
		s.DataRetention.Severity,
	)
}
