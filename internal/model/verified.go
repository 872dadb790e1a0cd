package model

// PresenceStatus states how confidently a finding is considered present in
// the source document.
type PresenceStatus string

const (
	PresencePresent   PresenceStatus = "PRESENT"
	PresenceAbsent    PresenceStatus = "ABSENT"
	PresenceUncertain PresenceStatus = "UNCERTAIN"
)

// VerifiedFinding wraps a Finding with cross-pass agreement and verification
// signals. Rescoring replaces the value, it never mutates in place.
type VerifiedFinding struct {
	Finding Finding `json:"finding"`

	Confidence float64        `json:"confidence"` // In [0,1]
	Status     PresenceStatus `json:"status"`

	PassesFound int `json:"passes_found"` // Passes the finding appeared in
	TotalPasses int `json:"total_passes"`

	Verified          bool   `json:"verified"`                     // Confirmed against source text
	SupportingExcerpt string `json:"supporting_excerpt,omitempty"` // Quoted evidence when verified
	Hallucinated      bool   `json:"hallucinated"`                 // Unsupported by the source document

	SourceChunks []int `json:"source_chunks,omitempty"` // Chunk indices the finding came from
}
