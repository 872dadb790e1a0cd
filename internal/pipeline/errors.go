package pipeline

import (
	"fmt"
	"strings"
)

// ChunkAnalysisError records one failed chunk analysis within a pass. It is
// collected, not fatal: the pass continues with the remaining chunks.
type ChunkAnalysisError struct {
	Pass  int
	Chunk int
	Err   error
}

func (e *ChunkAnalysisError) Error() string {
	return fmt.Sprintf("pass %d chunk %d: %v", e.Pass, e.Chunk, e.Err)
}

func (e *ChunkAnalysisError) Unwrap() error {
	return e.Err
}

// TotalAnalysisFailure is returned when every chunk of every pass failed and
// there is nothing to verify. It aggregates the per-chunk errors into one
// diagnostic.
type TotalAnalysisFailure struct {
	Passes int
	Chunks int
	Errors []*ChunkAnalysisError
}

func (e *TotalAnalysisFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d chunks failed across %d passes", e.Chunks, e.Passes)
	for _, ce := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(ce.Error())
	}
	return b.String()
}
