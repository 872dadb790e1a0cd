package coverage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veridoc/internal/llm"
	"github.com/ppiankov/veridoc/internal/model"
)

// Category is one taxonomy entry: a canonical name, a curated alias-phrase
// list for classification, and a description used in targeted searches.
type Category struct {
	Name        string
	Aliases     []string
	Description string
}

// StandardTaxonomy is the fixed set of clause categories a complete contract
// analysis is expected to surface.
var StandardTaxonomy = []Category{
	{
		Name:        "Termination",
		Aliases:     []string{"termination", "terminate", "cancellation", "expiry", "expiration"},
		Description: "conditions under which the agreement can be ended by either party",
	},
	{
		Name:        "Payment Terms",
		Aliases:     []string{"payment", "fees", "invoice", "compensation", "pricing"},
		Description: "amounts, schedules, and conditions of payment",
	},
	{
		Name:        "Limitation of Liability",
		Aliases:     []string{"liability", "limitation of liability", "liability cap", "damages cap"},
		Description: "caps or exclusions on what each party can be held liable for",
	},
	{
		Name:        "Indemnification",
		Aliases:     []string{"indemnification", "indemnify", "indemnity", "hold harmless"},
		Description: "obligations to cover the other party's losses from claims",
	},
	{
		Name:        "Confidentiality",
		Aliases:     []string{"confidentiality", "confidential", "non-disclosure", "nda", "secrecy"},
		Description: "duties to protect non-public information",
	},
	{
		Name:        "Intellectual Property",
		Aliases:     []string{"intellectual property", "ip ownership", "copyright", "patent", "license grant"},
		Description: "ownership and licensing of intellectual property",
	},
	{
		Name:        "Dispute Resolution",
		Aliases:     []string{"dispute", "arbitration", "mediation", "litigation"},
		Description: "how disagreements between the parties are settled",
	},
	{
		Name:        "Governing Law",
		Aliases:     []string{"governing law", "jurisdiction", "venue", "applicable law"},
		Description: "which law governs the agreement and where claims are brought",
	},
	{
		Name:        "Force Majeure",
		Aliases:     []string{"force majeure", "act of god", "beyond reasonable control"},
		Description: "relief from obligations during events outside either party's control",
	},
	{
		Name:        "Warranties",
		Aliases:     []string{"warranty", "warranties", "representations", "disclaimer"},
		Description: "promises about quality and fitness, and their disclaimers",
	},
	{
		Name:        "Assignment",
		Aliases:     []string{"assignment", "assign", "transfer of rights", "change of control"},
		Description: "whether and how the agreement can be transferred to a third party",
	},
	{
		Name:        "Term and Renewal",
		Aliases:     []string{"term", "renewal", "auto-renew", "initial term", "duration"},
		Description: "how long the agreement runs and how it renews",
	},
}

// Checker tracks a fixed taxonomy of expected finding categories and
// performs targeted searches for gaps.
type Checker struct {
	taxonomy  []Category
	threshold float64
	provider  llm.Provider // nil disables targeted search
}

// NewChecker creates a coverage checker over the standard taxonomy. provider
// may be nil, which disables targeted gap searches.
func NewChecker(cfg model.CoverageConfig, provider llm.Provider) *Checker {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 50
	}
	if !cfg.TargetedSearch {
		provider = nil
	}
	return &Checker{
		taxonomy:  StandardTaxonomy,
		threshold: threshold,
		provider:  provider,
	}
}

// NewCheckerWithTaxonomy creates a checker over a custom taxonomy.
func NewCheckerWithTaxonomy(taxonomy []Category, threshold float64, provider llm.Provider) *Checker {
	if threshold <= 0 {
		threshold = 50
	}
	return &Checker{taxonomy: taxonomy, threshold: threshold, provider: provider}
}

// CheckCoverage classifies each PRESENT finding's raw label against the
// taxonomy and reports found, not-found, and uncertain categories. When
// documentText is non-empty and a provider is configured, every not-found
// category gets a targeted search against the source text before the report
// is assembled.
func (c *Checker) CheckCoverage(ctx context.Context, findings []model.VerifiedFinding, documentText string) model.CoverageReport {
	found := make(map[string]bool)

	for _, vf := range findings {
		if vf.Status != model.PresencePresent {
			continue
		}
		if name, ok := c.Classify(vf.Finding.Label()); ok {
			found[name] = true
		}
	}

	report := model.CoverageReport{Threshold: c.threshold}

	var uncertain []string
	for _, cat := range c.taxonomy {
		if found[cat.Name] {
			report.Found = append(report.Found, cat.Name)
			continue
		}

		if c.provider != nil && documentText != "" {
			switch c.PerformTargetedSearch(ctx, cat, documentText) {
			case model.PresencePresent:
				report.Found = append(report.Found, cat.Name)
				continue
			case model.PresenceUncertain:
				uncertain = append(uncertain, cat.Name)
				continue
			}
			// ABSENT falls through to not-found
		}

		report.NotFound = append(report.NotFound, cat.Name)
	}
	report.Uncertain = uncertain

	total := len(c.taxonomy)
	if total > 0 {
		report.CoveragePercentage = float64(len(report.Found)) / float64(total) * 100
	}
	report.IsBelowThreshold = report.CoveragePercentage < c.threshold

	return report
}

// Classify maps a raw finding label to a taxonomy category by
// case-insensitive substring match against the alias lists. First match
// wins, in taxonomy order.
func (c *Checker) Classify(label string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return "", false
	}

	for _, cat := range c.taxonomy {
		for _, alias := range cat.Aliases {
			if strings.Contains(normalized, alias) {
				return cat.Name, true
			}
		}
	}

	return "", false
}

// PerformTargetedSearch asks the completion service whether a category the
// passes missed is actually present in the document. Call or parse failures
// degrade to ABSENT so a dead backend never inflates coverage.
func (c *Checker) PerformTargetedSearch(ctx context.Context, cat Category, documentText string) model.PresenceStatus {
	systemPrompt := `You search a contract for a specific clause category.
Answer with JSON only: {"status": "PRESENT|ABSENT|UNCERTAIN", "evidence": "quote or empty"}.
PRESENT only when the document clearly contains the category.`

	excerpt := documentText
	if len(excerpt) > 8000 {
		excerpt = excerpt[:8000]
	}

	userPrompt := fmt.Sprintf(`Category: %s (%s)

Document:
%s

Is this category present in the document?`, cat.Name, cat.Description, excerpt)

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: targeted search for %q failed: %v\n", cat.Name, err)
		return model.PresenceAbsent
	}

	var parsed struct {
		Status   string `json:"status"`
		Evidence string `json:"evidence"`
	}
	if err := llm.ParseJSON(resp.Text, &parsed); err != nil {
		return model.PresenceAbsent
	}

	switch model.PresenceStatus(strings.ToUpper(strings.TrimSpace(parsed.Status))) {
	case model.PresencePresent:
		return model.PresencePresent
	case model.PresenceUncertain:
		return model.PresenceUncertain
	default:
		return model.PresenceAbsent
	}
}
