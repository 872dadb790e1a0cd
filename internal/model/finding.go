package model

// FindingType is the closed set of finding kinds produced by an analysis pass.
// Dispatch on it with Payload/Label so a missing case is caught in one place.
type FindingType string

const (
	FindingTypeClause     FindingType = "clause"
	FindingTypeRisk       FindingType = "risk"
	FindingTypeCompliance FindingType = "compliance"
	FindingTypeRedlining  FindingType = "redlining"
)

// FindingTypes lists every finding kind in report order.
var FindingTypes = []FindingType{
	FindingTypeClause,
	FindingTypeRisk,
	FindingTypeCompliance,
	FindingTypeRedlining,
}

// ClausePayload describes one extracted contract clause
type ClausePayload struct {
	Category    string `json:"category"`              // e.g., "Termination", "Indemnification"
	Text        string `json:"text"`                  // Clause text as found in the document
	Explanation string `json:"explanation,omitempty"` // Plain-language reading
}

// RiskPayload describes one identified risk
type RiskPayload struct {
	Category    string `json:"category"`           // e.g., "Unlimited liability"
	Description string `json:"description"`        // What the risk is
	Severity    string `json:"severity,omitempty"` // low, medium, high
}

// CompliancePayload describes one compliance issue
type CompliancePayload struct {
	Requirement string `json:"requirement"`      // Obligation or regulation at issue
	Status      string `json:"status,omitempty"` // met, unmet, unclear
	Detail      string `json:"detail,omitempty"`
}

// RedliningPayload describes one suggested edit
type RedliningPayload struct {
	Target     string `json:"target"`              // Clause or passage to change
	Suggestion string `json:"suggestion"`          // Proposed replacement wording
	Rationale  string `json:"rationale,omitempty"`
}

// Finding is one extracted item from one pass over one chunk. Exactly one
// payload pointer matching Type is set; the others stay nil.
type Finding struct {
	Type       FindingType        `json:"type"`
	Clause     *ClausePayload     `json:"clause,omitempty"`
	Risk       *RiskPayload       `json:"risk,omitempty"`
	Compliance *CompliancePayload `json:"compliance,omitempty"`
	Redlining  *RedliningPayload  `json:"redlining,omitempty"`

	Chunk int `json:"chunk"` // Originating chunk index (0-based)
	Pass  int `json:"pass"`  // Originating pass number (1-based)
}

// Label returns the raw category label for the finding, used for identity
// keys and taxonomy classification.
func (f Finding) Label() string {
	switch f.Type {
	case FindingTypeClause:
		if f.Clause != nil {
			return f.Clause.Category
		}
	case FindingTypeRisk:
		if f.Risk != nil {
			return f.Risk.Category
		}
	case FindingTypeCompliance:
		if f.Compliance != nil {
			return f.Compliance.Requirement
		}
	case FindingTypeRedlining:
		if f.Redlining != nil {
			return f.Redlining.Target
		}
	}
	return ""
}

// Content returns the substantive text of the finding, used for material
// content comparison across passes and for verification prompts.
func (f Finding) Content() string {
	switch f.Type {
	case FindingTypeClause:
		if f.Clause != nil {
			return f.Clause.Text
		}
	case FindingTypeRisk:
		if f.Risk != nil {
			return f.Risk.Description
		}
	case FindingTypeCompliance:
		if f.Compliance != nil {
			return f.Compliance.Detail
		}
	case FindingTypeRedlining:
		if f.Redlining != nil {
			return f.Redlining.Suggestion
		}
	}
	return ""
}

// AnalysisResult holds the findings of one pass (or one merged pass) grouped
// by kind. Lists may contain duplicates from chunk overlap regions.
type AnalysisResult struct {
	Clauses          []Finding `json:"clauses"`
	Risks            []Finding `json:"risks"`
	ComplianceIssues []Finding `json:"compliance_issues"`
	Redlining        []Finding `json:"redlining_suggestions"`
}

// All returns every finding across the four lists in report order.
func (r AnalysisResult) All() []Finding {
	out := make([]Finding, 0, len(r.Clauses)+len(r.Risks)+len(r.ComplianceIssues)+len(r.Redlining))
	out = append(out, r.Clauses...)
	out = append(out, r.Risks...)
	out = append(out, r.ComplianceIssues...)
	out = append(out, r.Redlining...)
	return out
}

// Add appends a finding to the list matching its type.
func (r *AnalysisResult) Add(f Finding) {
	switch f.Type {
	case FindingTypeClause:
		r.Clauses = append(r.Clauses, f)
	case FindingTypeRisk:
		r.Risks = append(r.Risks, f)
	case FindingTypeCompliance:
		r.ComplianceIssues = append(r.ComplianceIssues, f)
	case FindingTypeRedlining:
		r.Redlining = append(r.Redlining, f)
	}
}
