package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func sampleResult() VerifiedAnalysisResult {
	clause := Finding{
		Type:   FindingTypeClause,
		Clause: &ClausePayload{Category: "Termination", Text: "Either party may terminate.", Explanation: "Mutual exit."},
		Chunk:  0,
		Pass:   1,
	}
	risk := Finding{
		Type: FindingTypeRisk,
		Risk: &RiskPayload{Category: "Unlimited liability", Description: "No cap.", Severity: "high"},
		Pass: 2,
	}

	return VerifiedAnalysisResult{
		BaseResult: AnalysisResult{
			Clauses: []Finding{clause},
			Risks:   []Finding{risk},
		},
		VerifiedClauses: []VerifiedFinding{{
			Finding:           clause,
			Confidence:        1.0,
			Status:            PresencePresent,
			PassesFound:       3,
			TotalPasses:       3,
			Verified:          true,
			SupportingExcerpt: "Either party may terminate.",
			SourceChunks:      []int{0},
		}},
		VerifiedRisks: []VerifiedFinding{{
			Finding:      risk,
			Confidence:   0.4,
			Status:       PresenceUncertain,
			PassesFound:  1,
			TotalPasses:  3,
			Hallucinated: true,
		}},
		Metadata: VerificationMetadata{
			Passes:                     3,
			PassTimestamps:             []time.Time{time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
			FindingsBeforeVerification: 6,
			FindingsAfterVerification:  2,
			HallucinationsDetected:     1,
			ConflictsFound:             1,
			ConflictsResolved:          1,
			AverageConfidence:          0.7,
			Elapsed:                    42 * time.Second,
			Chunks:                     2,
			EstTokens:                  1500,
		},
		Coverage: CoverageReport{
			Found:              []string{"Termination"},
			NotFound:           []string{"Force Majeure"},
			Uncertain:          []string{"Assignment"},
			CoveragePercentage: 33.3,
			Threshold:          50,
			IsBelowThreshold:   true,
		},
		Conflicts: []ConflictResolution{{
			Resolved: true,
			Winner: &VerifiedFinding{
				Finding:     clause,
				Confidence:  0.85,
				Status:      PresencePresent,
				PassesFound: 1,
				TotalPasses: 3,
				Verified:    true,
			},
			Method:      ResolutionLLMArbitration,
			Explanation: "document supports pass 1",
		}},
	}
}

func TestVerifiedAnalysisResultRoundTrip(t *testing.T) {
	original := sampleResult()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded VerifiedAnalysisResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip changed the result\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
}

func TestFindingPayloadDispatch(t *testing.T) {
	tests := []struct {
		f           Finding
		wantLabel   string
		wantContent string
	}{
		{
			Finding{Type: FindingTypeClause, Clause: &ClausePayload{Category: "Termination", Text: "30 days."}},
			"Termination", "30 days.",
		},
		{
			Finding{Type: FindingTypeRisk, Risk: &RiskPayload{Category: "Liability", Description: "No cap."}},
			"Liability", "No cap.",
		},
		{
			Finding{Type: FindingTypeCompliance, Compliance: &CompliancePayload{Requirement: "GDPR", Detail: "No DPA."}},
			"GDPR", "No DPA.",
		},
		{
			Finding{Type: FindingTypeRedlining, Redlining: &RedliningPayload{Target: "Section 8", Suggestion: "Cap liability."}},
			"Section 8", "Cap liability.",
		},
		// Mismatched payload: Label and Content return empty, never panic.
		{
			Finding{Type: FindingTypeClause, Risk: &RiskPayload{Category: "x"}},
			"", "",
		},
	}

	for _, tt := range tests {
		if got := tt.f.Label(); got != tt.wantLabel {
			t.Errorf("Label(%s) = %q, want %q", tt.f.Type, got, tt.wantLabel)
		}
		if got := tt.f.Content(); got != tt.wantContent {
			t.Errorf("Content(%s) = %q, want %q", tt.f.Type, got, tt.wantContent)
		}
	}
}

func TestAnalysisResultAddAndAll(t *testing.T) {
	var r AnalysisResult
	r.Add(Finding{Type: FindingTypeClause, Clause: &ClausePayload{Category: "a"}})
	r.Add(Finding{Type: FindingTypeRisk, Risk: &RiskPayload{Category: "b"}})
	r.Add(Finding{Type: FindingTypeCompliance, Compliance: &CompliancePayload{Requirement: "c"}})
	r.Add(Finding{Type: FindingTypeRedlining, Redlining: &RedliningPayload{Target: "d"}})

	if len(r.Clauses) != 1 || len(r.Risks) != 1 || len(r.ComplianceIssues) != 1 || len(r.Redlining) != 1 {
		t.Fatalf("Add misrouted findings: %+v", r)
	}
	if got := len(r.All()); got != 4 {
		t.Errorf("All() = %d findings, want 4", got)
	}
}
