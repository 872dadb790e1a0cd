package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veridoc/internal/llm"
	"github.com/ppiankov/veridoc/internal/model"
)

// excerptWindow is the slice of document text sent with a verification
// prompt when key-phrase search finds nothing.
const excerptWindow = 4000

// FindingVerification is the outcome of checking one finding against the
// source text.
type FindingVerification struct {
	IsVerified           bool    `json:"is_verified"`
	SupportingExcerpt    string  `json:"supporting_excerpt,omitempty"`
	ConfidenceAdjustment float64 `json:"confidence_adjustment"`
	Explanation          string  `json:"explanation,omitempty"`
}

// HallucinationCheck is the outcome of probing one finding for fabrication.
type HallucinationCheck struct {
	IsHallucinated bool    `json:"is_hallucinated"`
	Reason         string  `json:"reason,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// AnswerStatus grades a free-form answer against the source document.
type AnswerStatus string

const (
	AnswerVerified          AnswerStatus = "verified"
	AnswerPartiallyVerified AnswerStatus = "partially_verified"
	AnswerUnverified        AnswerStatus = "unverified"
	AnswerNotFound          AnswerStatus = "not_found"
)

// AnswerVerification is the outcome of checking a free-form answer with
// source references.
type AnswerVerification struct {
	IsVerified         bool         `json:"is_verified"`
	Status             AnswerStatus `json:"status"`
	VerifiedPortions   []string     `json:"verified_portions,omitempty"`
	UnverifiedPortions []string     `json:"unverified_portions,omitempty"`
	SourceReferences   []string     `json:"source_references,omitempty"`
}

// Verifier calls the completion service to verify findings against source
// text, detect hallucination, and verify free-form answers. The three checks
// are independent, stateless, and retryable; a failure in one never affects
// the others. Every failure degrades to a safe default rather than
// propagating: a finding is never presumed hallucinated because the
// infrastructure failed.
type Verifier struct {
	provider llm.Provider
}

// NewVerifier creates a verifier backed by the given completion provider.
func NewVerifier(provider llm.Provider) *Verifier {
	return &Verifier{provider: provider}
}

// VerifyFinding checks whether finding is supported by documentText. On any
// call or parse failure it degrades to not-verified with a small negative
// confidence adjustment.
func (v *Verifier) VerifyFinding(ctx context.Context, finding model.Finding, documentText string) FindingVerification {
	degraded := FindingVerification{
		IsVerified:           false,
		ConfidenceAdjustment: -0.05,
	}

	excerpt := relevantSlice(finding, documentText)

	systemPrompt := `You verify findings from a contract analysis against the source document.
Answer with JSON only: {"is_verified": bool, "supporting_excerpt": "exact quote from the document or empty", "explanation": "one sentence"}.
A finding is verified only when the document text supports it. Quote the supporting passage verbatim.`

	userPrompt := fmt.Sprintf(`Finding (%s): %s
Details: %s

Document excerpt:
%s

Is this finding supported by the document?`, finding.Type, finding.Label(), finding.Content(), excerpt)

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		degraded.Explanation = fmt.Sprintf("verification call failed: %v", err)
		return degraded
	}

	var parsed struct {
		IsVerified        bool   `json:"is_verified"`
		SupportingExcerpt string `json:"supporting_excerpt"`
		Explanation       string `json:"explanation"`
	}
	if err := llm.ParseJSON(resp.Text, &parsed); err != nil {
		degraded.Explanation = fmt.Sprintf("unparsable verification reply: %v", err)
		return degraded
	}

	result := FindingVerification{
		IsVerified:        parsed.IsVerified,
		SupportingExcerpt: strings.TrimSpace(parsed.SupportingExcerpt),
		Explanation:       parsed.Explanation,
	}
	if parsed.IsVerified {
		result.ConfidenceAdjustment = 0.1
	} else {
		result.ConfidenceAdjustment = -0.1
	}
	return result
}

// DetectHallucination probes whether finding is fabricated. On any call or
// parse failure it degrades to not-hallucinated with confidence 0: never
// assume guilt on infrastructure failure.
func (v *Verifier) DetectHallucination(ctx context.Context, finding model.Finding, documentText string) HallucinationCheck {
	excerpt := relevantSlice(finding, documentText)

	systemPrompt := `You detect hallucinated findings in a contract analysis: findings that the source document does not contain.
Answer with JSON only: {"is_hallucinated": bool, "reason": "one sentence", "confidence": 0.0-1.0}.
Only mark a finding hallucinated when you are confident the document does not support it.`

	userPrompt := fmt.Sprintf(`Finding (%s): %s
Details: %s

Document excerpt:
%s

Is this finding hallucinated?`, finding.Type, finding.Label(), finding.Content(), excerpt)

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return HallucinationCheck{IsHallucinated: false, Confidence: 0,
			Reason: fmt.Sprintf("hallucination check failed: %v", err)}
	}

	var parsed struct {
		IsHallucinated bool    `json:"is_hallucinated"`
		Reason         string  `json:"reason"`
		Confidence     float64 `json:"confidence"`
	}
	if err := llm.ParseJSON(resp.Text, &parsed); err != nil {
		return HallucinationCheck{IsHallucinated: false, Confidence: 0,
			Reason: fmt.Sprintf("unparsable hallucination reply: %v", err)}
	}

	return HallucinationCheck{
		IsHallucinated: parsed.IsHallucinated,
		Reason:         parsed.Reason,
		Confidence:     clamp01(parsed.Confidence),
	}
}

// VerifyAnswer checks a free-form answer to a query against documentText and
// collects source references. Degrades to unverified on failure.
func (v *Verifier) VerifyAnswer(ctx context.Context, query, answer, documentText string) AnswerVerification {
	degraded := AnswerVerification{Status: AnswerUnverified}

	excerpt := documentText
	if len(excerpt) > excerptWindow*2 {
		excerpt = excerpt[:excerptWindow*2]
	}

	systemPrompt := `You verify an answer about a document against the document text.
Answer with JSON only:
{"status": "verified|partially_verified|unverified|not_found",
 "verified_portions": ["..."], "unverified_portions": ["..."],
 "source_references": ["exact quotes supporting the verified portions"]}`

	userPrompt := fmt.Sprintf(`Question: %s
Answer to verify: %s

Document:
%s`, query, answer, excerpt)

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return degraded
	}

	var parsed struct {
		Status             string   `json:"status"`
		VerifiedPortions   []string `json:"verified_portions"`
		UnverifiedPortions []string `json:"unverified_portions"`
		SourceReferences   []string `json:"source_references"`
	}
	if err := llm.ParseJSON(resp.Text, &parsed); err != nil {
		return degraded
	}

	status := AnswerStatus(strings.ToLower(strings.TrimSpace(parsed.Status)))
	switch status {
	case AnswerVerified, AnswerPartiallyVerified, AnswerUnverified, AnswerNotFound:
	default:
		status = AnswerUnverified
	}

	return AnswerVerification{
		IsVerified:         status == AnswerVerified,
		Status:             status,
		VerifiedPortions:   parsed.VerifiedPortions,
		UnverifiedPortions: parsed.UnverifiedPortions,
		SourceReferences:   parsed.SourceReferences,
	}
}

// relevantSlice locates the most relevant slice of documentText for a
// finding: substring search on key phrases from the finding, falling back to
// a fixed window from the start of the document.
func relevantSlice(finding model.Finding, documentText string) string {
	if len(documentText) <= excerptWindow {
		return documentText
	}

	lowerDoc := strings.ToLower(documentText)
	for _, phrase := range keyPhrases(finding) {
		idx := strings.Index(lowerDoc, phrase)
		if idx < 0 {
			continue
		}
		start := idx - excerptWindow/2
		if start < 0 {
			start = 0
		}
		end := start + excerptWindow
		if end > len(documentText) {
			end = len(documentText)
			start = end - excerptWindow
		}
		return documentText[start:end]
	}

	return documentText[:excerptWindow]
}

// keyPhrases extracts search phrases from a finding: the full label first,
// then its longer individual words.
func keyPhrases(finding model.Finding) []string {
	var phrases []string

	label := strings.ToLower(strings.TrimSpace(finding.Label()))
	if label != "" {
		phrases = append(phrases, label)
	}

	for _, source := range []string{label, strings.ToLower(finding.Content())} {
		for _, word := range strings.Fields(source) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if len(word) > 4 {
				phrases = append(phrases, word)
			}
		}
	}

	return phrases
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
