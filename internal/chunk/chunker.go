package chunk

import (
	"github.com/ppiankov/veridoc/internal/model"
)

// charsPerToken is the deterministic token estimate used throughout: no
// external tokenizer, so chunking is replayable across runs and machines.
const charsPerToken = 4

// Chunker splits document text into overlapping, token-budgeted windows and
// merges per-chunk analysis results back together.
type Chunker struct {
	maxTokens int
	overlap   int
}

// NewChunker creates a chunker with the given per-chunk token budget and
// fixed character overlap between adjacent chunks.
func NewChunker(maxTokens, overlap int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	if overlap < 0 {
		overlap = 0
	}
	// Overlap on both sides must leave room for actual content.
	if overlap*2 >= maxTokens*charsPerToken {
		overlap = maxTokens * charsPerToken / 4
	}
	return &Chunker{maxTokens: maxTokens, overlap: overlap}
}

// EstimateTokens estimates the token count of text as a deterministic
// function of character count.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Split splits text into ordered chunks. The chunk cores partition the text
// exactly; each chunk additionally carries up to the configured overlap on
// both sides so boundary-spanning content is fully visible in at least one
// chunk. A document within the token budget yields a single chunk with zero
// overlap.
func (c *Chunker) Split(text string) []model.DocumentChunk {
	n := len(text)

	if EstimateTokens(text) <= c.maxTokens {
		return []model.DocumentChunk{{
			Index:       0,
			Total:       1,
			Text:        text,
			StartOffset: 0,
			EndOffset:   n,
			EstTokens:   EstimateTokens(text),
		}}
	}

	// Core size leaves room for overlap on both sides within the budget.
	coreChars := c.maxTokens*charsPerToken - 2*c.overlap

	var chunks []model.DocumentChunk
	for start := 0; start < n; start += coreChars {
		coreEnd := start + coreChars
		if coreEnd > n {
			coreEnd = n
		}

		before := c.overlap
		if before > start {
			before = start
		}
		after := c.overlap
		if after > n-coreEnd {
			after = n - coreEnd
		}

		textStart := start - before
		textEnd := coreEnd + after

		chunks = append(chunks, model.DocumentChunk{
			Index:         len(chunks),
			Text:          text[textStart:textEnd],
			StartOffset:   textStart,
			EndOffset:     textEnd,
			OverlapBefore: before,
			OverlapAfter:  after,
			EstTokens:     EstimateTokens(text[textStart:textEnd]),
		})
	}

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}

	return chunks
}

// Merge concatenates per-chunk results into one AnalysisResult, stamping
// each finding with its originating chunk index. It does not deduplicate:
// overlap regions can produce the same finding from two chunks, and callers
// must tolerate that.
func (c *Chunker) Merge(perChunk []model.AnalysisResult, chunks []model.DocumentChunk) model.AnalysisResult {
	var merged model.AnalysisResult

	for i, result := range perChunk {
		chunkIdx := i
		if i < len(chunks) {
			chunkIdx = chunks[i].Index
		}
		for _, f := range result.All() {
			f.Chunk = chunkIdx
			merged.Add(f)
		}
	}

	return merged
}
