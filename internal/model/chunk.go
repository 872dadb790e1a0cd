package model

// DocumentChunk is a bounded, overlap-safe slice of document text sized to a
// completion-service request budget.
//
// Invariant: chunks cover the whole document contiguously; adjacent chunks
// overlap by a fixed character amount so boundary-spanning content is fully
// visible in at least one chunk. Stripping OverlapBefore from every chunk and
// concatenating the remainders reconstructs the original text exactly.
type DocumentChunk struct {
	Index         int    `json:"index"`          // 0-based position
	Total         int    `json:"total"`          // Total chunk count for the document
	Text          string `json:"text"`           // Chunk text including overlap
	StartOffset   int    `json:"start_offset"`   // Character offset of Text[0] in the document
	EndOffset     int    `json:"end_offset"`     // Character offset one past the last rune
	OverlapBefore int    `json:"overlap_before"` // Characters shared with the previous chunk
	OverlapAfter  int    `json:"overlap_after"`  // Characters shared with the next chunk
	EstTokens     int    `json:"est_tokens"`     // Deterministic token estimate
}
