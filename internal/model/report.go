package model

import "time"

// CoverageReport states how much of the expected-category taxonomy the
// verified findings confirmed present.
type CoverageReport struct {
	Found     []string `json:"found"`     // Categories confirmed present
	NotFound  []string `json:"not_found"` // Categories with no matching finding
	Uncertain []string `json:"uncertain"` // Targeted search returned UNCERTAIN

	CoveragePercentage float64 `json:"coverage_percentage"` // found / total * 100
	Threshold          float64 `json:"threshold"`
	IsBelowThreshold   bool    `json:"is_below_threshold"`
}

// VerificationMetadata is the audit trail of one verification run.
type VerificationMetadata struct {
	Passes         int         `json:"passes"`
	PassTimestamps []time.Time `json:"pass_timestamps,omitempty"` // Completion time per pass

	FindingsBeforeVerification int `json:"findings_before_verification"`
	FindingsAfterVerification  int `json:"findings_after_verification"`
	HallucinationsDetected     int `json:"hallucinations_detected"`

	ConflictsFound    int `json:"conflicts_found"`
	ConflictsResolved int `json:"conflicts_resolved"`

	AverageConfidence float64       `json:"average_confidence"`
	Elapsed           time.Duration `json:"elapsed_ns"`

	Chunks    int `json:"chunks"`
	EstTokens int `json:"est_tokens"`
}

// VerifiedAnalysisResult is the single immutable artifact of one run:
// the base first-pass result plus four verified-finding lists, run metadata,
// coverage report, and conflict resolutions. Round-trip safe through JSON.
type VerifiedAnalysisResult struct {
	BaseResult AnalysisResult `json:"base_result"`

	VerifiedClauses          []VerifiedFinding `json:"verified_clauses"`
	VerifiedRisks            []VerifiedFinding `json:"verified_risks"`
	VerifiedComplianceIssues []VerifiedFinding `json:"verified_compliance_issues"`
	VerifiedRedlining        []VerifiedFinding `json:"verified_redlining_suggestions"`

	Metadata  VerificationMetadata `json:"verification_metadata"`
	Coverage  CoverageReport       `json:"coverage_report"`
	Conflicts []ConflictResolution `json:"conflicts"`
}

// AllVerified returns every verified finding across the four kind lists.
func (r VerifiedAnalysisResult) AllVerified() []VerifiedFinding {
	out := make([]VerifiedFinding, 0,
		len(r.VerifiedClauses)+len(r.VerifiedRisks)+len(r.VerifiedComplianceIssues)+len(r.VerifiedRedlining))
	out = append(out, r.VerifiedClauses...)
	out = append(out, r.VerifiedRisks...)
	out = append(out, r.VerifiedComplianceIssues...)
	out = append(out, r.VerifiedRedlining...)
	return out
}
