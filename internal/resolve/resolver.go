package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/veridoc/internal/llm"
	"github.com/ppiankov/veridoc/internal/model"
)

// sliceWindow bounds the document slice sent with an arbitration prompt.
const sliceWindow = 4000

// Resolver uses targeted completion calls to pick a winner among conflicting
// pass findings, or surfaces every version for manual review.
type Resolver struct {
	provider llm.Provider
}

// NewResolver creates a resolver backed by the given completion provider.
func NewResolver(provider llm.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// ResolveAll resolves each conflict independently. One conflict's call
// failure never aborts the others: it becomes an unresolved resolution with
// an explanatory message. Once the context is canceled the remaining
// conflicts become unresolved entries without further calls. The output
// always has one entry per input conflict, in input order.
func (r *Resolver) ResolveAll(ctx context.Context, conflicts []model.Conflict, documentText string) []model.ConflictResolution {
	resolutions := make([]model.ConflictResolution, 0, len(conflicts))
	for _, conflict := range conflicts {
		if err := ctx.Err(); err != nil {
			resolutions = append(resolutions, r.unresolved(conflict, sortedPasses(conflict),
				fmt.Sprintf("arbitration skipped: %v", err)))
			continue
		}
		resolutions = append(resolutions, r.Resolve(ctx, conflict, documentText))
	}
	return resolutions
}

// Resolve sends all competing pass versions plus the relevant document slice
// to the completion service and asks it to pick a winner with confidence and
// explanation. An unresolved or failed arbitration emits every pass's
// version as a separate uncertain finding for manual review.
func (r *Resolver) Resolve(ctx context.Context, conflict model.Conflict, documentText string) model.ConflictResolution {
	passes := sortedPasses(conflict)
	if len(passes) == 0 {
		return model.ConflictResolution{
			Resolved:    false,
			Method:      model.ResolutionUnresolved,
			Explanation: "conflict carries no pass versions",
		}
	}

	var versions strings.Builder
	for _, pass := range passes {
		f := conflict.Passes[pass]
		fmt.Fprintf(&versions, "Pass %d: %s: %s\n", pass, f.Label(), f.Content())
	}

	slice := documentText
	if len(slice) > sliceWindow {
		slice = relevantConflictSlice(conflict, documentText)
	}

	systemPrompt := `You arbitrate between conflicting versions of a contract-analysis finding.
Answer with JSON only: {"winner_pass": int or 0 if undecidable, "confidence": 0.0-1.0, "explanation": "one sentence"}.
Pick the version the document text actually supports. Use 0 when the document supports neither.`

	userPrompt := fmt.Sprintf(`Conflicting %s versions of %q (%s disagreement):
%s
Document excerpt:
%s

Which pass is correct?`, conflict.FindingType, firstLabel(conflict), conflict.Kind, versions.String(), slice)

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return r.unresolved(conflict, passes, fmt.Sprintf("arbitration call failed: %v", err))
	}

	var parsed struct {
		WinnerPass  int     `json:"winner_pass"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
	}
	if err := llm.ParseJSON(resp.Text, &parsed); err != nil {
		return r.unresolved(conflict, passes, fmt.Sprintf("unparsable arbitration reply: %v", err))
	}

	winner, ok := conflict.Passes[parsed.WinnerPass]
	if !ok {
		explanation := parsed.Explanation
		if explanation == "" {
			explanation = "arbitration could not pick a winner"
		}
		return r.unresolved(conflict, passes, explanation)
	}

	confidence := clamp01(parsed.Confidence)
	status := model.PresenceUncertain
	if confidence >= 0.7 {
		status = model.PresencePresent
	}

	return model.ConflictResolution{
		Resolved: true,
		Winner: &model.VerifiedFinding{
			Finding:      winner,
			Confidence:   confidence,
			Status:       status,
			PassesFound:  1,
			TotalPasses:  len(passes),
			Verified:     true,
			SourceChunks: []int{winner.Chunk},
		},
		Method:      model.ResolutionLLMArbitration,
		Explanation: parsed.Explanation,
	}
}

// unresolved emits every pass's version as a separate confidence-0.5,
// uncertain, unverified finding for manual review.
func (r *Resolver) unresolved(conflict model.Conflict, passes []int, explanation string) model.ConflictResolution {
	alternatives := make([]model.VerifiedFinding, 0, len(passes))
	for _, pass := range passes {
		f := conflict.Passes[pass]
		alternatives = append(alternatives, model.VerifiedFinding{
			Finding:      f,
			Confidence:   0.5,
			Status:       model.PresenceUncertain,
			PassesFound:  1,
			TotalPasses:  len(passes),
			Verified:     false,
			SourceChunks: []int{f.Chunk},
		})
	}

	return model.ConflictResolution{
		Resolved:     false,
		Alternatives: alternatives,
		Method:       model.ResolutionUnresolved,
		Explanation:  explanation,
	}
}

// relevantConflictSlice centers a window on the first pass version's label,
// falling back to the document head.
func relevantConflictSlice(conflict model.Conflict, documentText string) string {
	label := strings.ToLower(strings.TrimSpace(firstLabel(conflict)))
	if label != "" {
		if idx := strings.Index(strings.ToLower(documentText), label); idx >= 0 {
			start := idx - sliceWindow/2
			if start < 0 {
				start = 0
			}
			end := start + sliceWindow
			if end > len(documentText) {
				end = len(documentText)
				start = end - sliceWindow
			}
			return documentText[start:end]
		}
	}
	return documentText[:sliceWindow]
}

// sortedPasses returns the conflict's pass numbers ascending, so the lowest
// pass is always presented first.
func sortedPasses(conflict model.Conflict) []int {
	passes := make([]int, 0, len(conflict.Passes))
	for pass := range conflict.Passes {
		passes = append(passes, pass)
	}
	sort.Ints(passes)
	return passes
}

func firstLabel(conflict model.Conflict) string {
	passes := sortedPasses(conflict)
	if len(passes) == 0 {
		return ""
	}
	return conflict.Passes[passes[0]].Label()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
