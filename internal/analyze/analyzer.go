package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veridoc/internal/llm"
	"github.com/ppiankov/veridoc/internal/model"
)

const systemPrompt = `You are a contract analyst. Extract findings from the document excerpt.
Respond with JSON only, no prose, in this shape:
{
  "clauses": [{"category": "...", "text": "...", "explanation": "..."}],
  "risks": [{"category": "...", "description": "...", "severity": "low|medium|high"}],
  "compliance_issues": [{"requirement": "...", "status": "met|unmet|unclear", "detail": "..."}],
  "redlining_suggestions": [{"target": "...", "suggestion": "...", "rationale": "..."}]
}
Quote clause text verbatim from the excerpt. Report only what the excerpt supports.
Empty lists are valid. Do not invent findings.`

// Analyzer extracts findings from one chunk with a single completion call.
type Analyzer struct {
	provider llm.Provider
}

// NewAnalyzer creates an analyzer backed by the given completion provider.
func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// rawResult mirrors the reply wire shape before findings are stamped with
// their type, chunk, and pass.
type rawResult struct {
	Clauses          []model.ClausePayload     `json:"clauses"`
	Risks            []model.RiskPayload       `json:"risks"`
	ComplianceIssues []model.CompliancePayload `json:"compliance_issues"`
	Redlining        []model.RedliningPayload  `json:"redlining_suggestions"`
}

// AnalyzeChunk runs one extraction pass over one chunk. A reply that fails
// to parse gets a single repair round before the chunk is reported failed.
func (a *Analyzer) AnalyzeChunk(ctx context.Context, chunk model.DocumentChunk, pass int) (model.AnalysisResult, error) {
	// The pass number varies the prompt so passes stay independent even when
	// replies are cached.
	userPrompt := fmt.Sprintf("Analysis pass %d.\nDocument excerpt (part %d of %d):\n\n%s",
		pass, chunk.Index+1, chunk.Total, chunk.Text)

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("chunk %d analysis: %w", chunk.Index, err)
	}

	var raw rawResult
	if err := llm.ParseJSON(resp.Text, &raw); err != nil {
		raw, err = a.repair(ctx, resp.Text)
		if err != nil {
			return model.AnalysisResult{}, fmt.Errorf("chunk %d analysis: unparseable reply: %w", chunk.Index, err)
		}
	}

	return raw.toResult(chunk.Index, pass), nil
}

// repair sends a malformed reply back once and asks for valid JSON.
func (a *Analyzer) repair(ctx context.Context, badReply string) (rawResult, error) {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: "You fix malformed JSON. Respond with the corrected JSON only.",
		UserPrompt:   "This response should have been valid JSON but is not. Output the corrected JSON:\n\n" + badReply,
	})
	if err != nil {
		return rawResult{}, err
	}

	var raw rawResult
	if err := llm.ParseJSON(resp.Text, &raw); err != nil {
		return rawResult{}, err
	}
	return raw, nil
}

func (r rawResult) toResult(chunk, pass int) model.AnalysisResult {
	var out model.AnalysisResult
	for i := range r.Clauses {
		p := r.Clauses[i]
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		out.Add(model.Finding{Type: model.FindingTypeClause, Clause: &p, Chunk: chunk, Pass: pass})
	}
	for i := range r.Risks {
		p := r.Risks[i]
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		out.Add(model.Finding{Type: model.FindingTypeRisk, Risk: &p, Chunk: chunk, Pass: pass})
	}
	for i := range r.ComplianceIssues {
		p := r.ComplianceIssues[i]
		if strings.TrimSpace(p.Requirement) == "" {
			continue
		}
		out.Add(model.Finding{Type: model.FindingTypeCompliance, Compliance: &p, Chunk: chunk, Pass: pass})
	}
	for i := range r.Redlining {
		p := r.Redlining[i]
		if strings.TrimSpace(p.Target) == "" {
			continue
		}
		out.Add(model.Finding{Type: model.FindingTypeRedlining, Redlining: &p, Chunk: chunk, Pass: pass})
	}
	return out
}
