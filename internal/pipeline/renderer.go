package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/veridoc/internal/model"
)

// Renderer writes verified analysis results as JSON, Markdown, and a
// stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result as indented JSON to path.
func (r *Renderer) RenderJSON(result *model.VerifiedAnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report to path.
func (r *Renderer) RenderMarkdown(result *model.VerifiedAnalysisResult, name, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Verified Analysis: %s\n\n", name)

	meta := result.Metadata
	fmt.Fprintf(&b, "Passes: %d | Findings: %d verified of %d raw | Hallucinations: %d | Average confidence: %.2f\n\n",
		meta.Passes, meta.FindingsAfterVerification, meta.FindingsBeforeVerification,
		meta.HallucinationsDetected, meta.AverageConfidence)

	sections := []struct {
		title    string
		findings []model.VerifiedFinding
	}{
		{"Clauses", result.VerifiedClauses},
		{"Risks", result.VerifiedRisks},
		{"Compliance Issues", result.VerifiedComplianceIssues},
		{"Redlining Suggestions", result.VerifiedRedlining},
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		if len(s.findings) == 0 {
			b.WriteString("None.\n\n")
			continue
		}
		for _, vf := range s.findings {
			fmt.Fprintf(&b, "- **%s** [%s, %.2f] (%d/%d passes)",
				vf.Finding.Label(), vf.Status, vf.Confidence, vf.PassesFound, vf.TotalPasses)
			if vf.Hallucinated {
				b.WriteString(" ⚠ flagged as unsupported")
			}
			b.WriteByte('\n')
			if content := vf.Finding.Content(); content != "" {
				fmt.Fprintf(&b, "  - %s\n", content)
			}
			if vf.SupportingExcerpt != "" {
				fmt.Fprintf(&b, "  - Evidence: %q\n", truncate(vf.SupportingExcerpt, 200))
			}
		}
		b.WriteByte('\n')
	}

	b.WriteString("## Coverage\n\n")
	cov := result.Coverage
	fmt.Fprintf(&b, "%.1f%% of expected categories found (threshold %.0f%%)\n\n", cov.CoveragePercentage, cov.Threshold)
	if len(cov.NotFound) > 0 {
		fmt.Fprintf(&b, "Not found: %s\n\n", strings.Join(cov.NotFound, ", "))
	}
	if len(cov.Uncertain) > 0 {
		fmt.Fprintf(&b, "Uncertain: %s\n\n", strings.Join(cov.Uncertain, ", "))
	}

	if len(result.Conflicts) > 0 {
		b.WriteString("## Conflicts\n\n")
		for _, c := range result.Conflicts {
			if c.Resolved && c.Winner != nil {
				fmt.Fprintf(&b, "- Resolved (%s): %s\n", c.Method, c.Winner.Finding.Label())
			} else {
				fmt.Fprintf(&b, "- Unresolved: %d versions surfaced for review\n", len(c.Alternatives))
			}
			if c.Explanation != "" {
				fmt.Fprintf(&b, "  - %s\n", c.Explanation)
			}
		}
		b.WriteByte('\n')
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\nGenerated by veridoc on %s in %s\n",
			time.Now().UTC().Format(time.RFC3339), meta.Elapsed.Round(time.Millisecond))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a one-screen summary to stdout.
func (r *Renderer) RenderSummary(result *model.VerifiedAnalysisResult, name string) {
	meta := result.Metadata
	fmt.Printf("\n%s\n", name)
	fmt.Printf("  Passes:         %d\n", meta.Passes)
	fmt.Printf("  Findings:       %d verified (%d raw)\n", meta.FindingsAfterVerification, meta.FindingsBeforeVerification)
	fmt.Printf("  Hallucinations: %d\n", meta.HallucinationsDetected)
	fmt.Printf("  Conflicts:      %d found, %d resolved\n", meta.ConflictsFound, meta.ConflictsResolved)
	fmt.Printf("  Confidence:     %.2f average\n", meta.AverageConfidence)
	fmt.Printf("  Coverage:       %.1f%%", result.Coverage.CoveragePercentage)
	if result.Coverage.IsBelowThreshold {
		fmt.Printf(" (below %.0f%% threshold)", result.Coverage.Threshold)
	}
	fmt.Printf("\n  Elapsed:        %s\n", meta.Elapsed.Round(time.Millisecond))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
