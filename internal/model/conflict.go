package model

// ConflictKind classifies what the passes disagree about.
type ConflictKind string

const (
	ConflictPresence ConflictKind = "presence" // Some passes see it, some do not
	ConflictContent  ConflictKind = "content"  // Same identity key, materially different content
	ConflictSeverity ConflictKind = "severity" // Same finding, different severity assessment
)

// Conflict records a disagreement between passes about findings sharing an
// identity key. The lowest pass number is stored first in Passes iteration
// order by convention but is never auto-selected as winner.
type Conflict struct {
	Kind        ConflictKind    `json:"kind"`
	FindingType FindingType     `json:"finding_type"`
	Passes      map[int]Finding `json:"passes"` // Pass number -> that pass's version
	Description string          `json:"description"`
}

// ResolutionMethod records how a conflict was (or was not) settled.
type ResolutionMethod string

const (
	ResolutionLLMArbitration ResolutionMethod = "llm_arbitration" // Completion service picked a winner
	ResolutionUnresolved     ResolutionMethod = "unresolved"      // All versions surfaced for manual review
)

// ConflictResolution is the outcome of resolving one Conflict. When Resolved
// is true, Winner holds the arbitrated finding; otherwise Alternatives holds
// every pass's version for manual review.
type ConflictResolution struct {
	Resolved     bool              `json:"resolved"`
	Winner       *VerifiedFinding  `json:"winner,omitempty"`
	Alternatives []VerifiedFinding `json:"alternatives,omitempty"`
	Method       ResolutionMethod  `json:"method"`
	Explanation  string            `json:"explanation,omitempty"`
}
