package compare

import (
	"testing"

	"github.com/ppiankov/veridoc/internal/model"
)

func clause(category, text string, chunk int) model.Finding {
	return model.Finding{
		Type:   model.FindingTypeClause,
		Clause: &model.ClausePayload{Category: category, Text: text},
		Chunk:  chunk,
	}
}

func risk(category, description, severity string) model.Finding {
	return model.Finding{
		Type: model.FindingTypeRisk,
		Risk: &model.RiskPayload{Category: category, Description: description, Severity: severity},
	}
}

func newTestComparator() *Comparator {
	return NewComparator(model.DefaultConfig().Compare)
}

func TestIdentityKey_Normalization(t *testing.T) {
	a := clause("Termination  For　Convenience", "x", 0)
	b := clause("termination for convenience", "y", 1)

	// Whitespace runs collapse and case folds; same key despite cosmetic
	// label differences.
	ka := IdentityKey(clause("Termination   For Convenience", "x", 0))
	kb := IdentityKey(b)
	if ka != kb {
		t.Errorf("Expected identical keys, got %q and %q", ka, kb)
	}

	if IdentityKey(a) == IdentityKey(risk("Termination  For　Convenience", "x", "high")) {
		t.Errorf("Different finding types must never share an identity key")
	}
}

func TestComparator_Compare_Consensus(t *testing.T) {
	c := newTestComparator()

	perPass := []model.AnalysisResult{
		{Clauses: []model.Finding{clause("Termination", "Either party may terminate with 30 days notice", 0)}},
		{Clauses: []model.Finding{clause("termination", "Either party may terminate with 30 days notice", 0)}},
	}

	result := c.Compare(perPass)

	if len(result.Consensus) != 1 {
		t.Fatalf("Expected 1 consensus group, got %d", len(result.Consensus))
	}
	if len(result.Flagged) != 0 || len(result.Conflicts) != 0 {
		t.Errorf("Expected no flagged or conflicting groups")
	}

	g := result.Consensus[0]
	if len(g.Passes) != 2 || g.Passes[0] != 1 || g.Passes[1] != 2 {
		t.Errorf("Expected passes [1 2], got %v", g.Passes)
	}
	if g.Finding.Pass != 1 {
		t.Errorf("Representative should come from the lowest pass, got pass %d", g.Finding.Pass)
	}
}

func TestComparator_Compare_Flagged(t *testing.T) {
	c := newTestComparator()

	perPass := []model.AnalysisResult{
		{Clauses: []model.Finding{
			clause("Termination", "30 days notice", 0),
			clause("Indemnification", "Supplier indemnifies buyer", 0),
		}},
		{Clauses: []model.Finding{
			clause("Termination", "30 days notice", 0),
		}},
	}

	result := c.Compare(perPass)

	if len(result.Consensus) != 1 {
		t.Errorf("Expected 1 consensus group, got %d", len(result.Consensus))
	}
	if len(result.Flagged) != 1 {
		t.Fatalf("Expected 1 flagged group, got %d", len(result.Flagged))
	}
	if result.Flagged[0].Finding.Label() != "Indemnification" {
		t.Errorf("Wrong flagged group: %s", result.Flagged[0].Finding.Label())
	}
	// Subset presence is flagged, never a Conflict.
	if len(result.Conflicts) != 0 {
		t.Errorf("Expected no conflicts, got %d", len(result.Conflicts))
	}
}

func TestComparator_Compare_ContentConflict(t *testing.T) {
	c := newTestComparator()

	perPass := []model.AnalysisResult{
		{Clauses: []model.Finding{clause("Termination", "Either party may terminate with 30 days written notice", 0)}},
		{Clauses: []model.Finding{clause("Termination", "Supplier waives all liability for data loss", 0)}},
	}

	result := c.Compare(perPass)

	if len(result.Conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(result.Conflicts))
	}

	conflict := result.Conflicts[0]
	if conflict.Kind != model.ConflictContent {
		t.Errorf("Expected content conflict, got %s", conflict.Kind)
	}
	if conflict.FindingType != model.FindingTypeClause {
		t.Errorf("Expected clause conflict, got %s", conflict.FindingType)
	}
	if len(conflict.Passes) != 2 {
		t.Errorf("Expected both pass versions recorded, got %d", len(conflict.Passes))
	}
	if _, ok := conflict.Passes[1]; !ok {
		t.Errorf("Pass 1 version missing from conflict")
	}

	// Conflicting keys never also appear as consensus or flagged.
	if len(result.Consensus) != 0 || len(result.Flagged) != 0 {
		t.Errorf("Conflicting group leaked into consensus/flagged")
	}
}

func TestComparator_Compare_SeverityConflict(t *testing.T) {
	c := newTestComparator()

	perPass := []model.AnalysisResult{
		{Risks: []model.Finding{risk("Unlimited liability", "Liability is uncapped under clause 9", "high")}},
		{Risks: []model.Finding{risk("Unlimited liability", "Liability is uncapped under clause 9", "low")}},
	}

	result := c.Compare(perPass)

	if len(result.Conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].Kind != model.ConflictSeverity {
		t.Errorf("Expected severity conflict, got %s", result.Conflicts[0].Kind)
	}
}

func TestComparator_Compare_OverlapDuplicatesCollapse(t *testing.T) {
	c := newTestComparator()

	// The same finding from two chunks of one pass collapses to one entry
	// with both chunks recorded.
	perPass := []model.AnalysisResult{
		{Clauses: []model.Finding{
			clause("Termination", "30 days notice", 1),
			clause("Termination", "30 days notice", 2),
		}},
		{Clauses: []model.Finding{clause("Termination", "30 days notice", 1)}},
	}

	result := c.Compare(perPass)

	if len(result.Consensus) != 1 {
		t.Fatalf("Expected 1 consensus group, got %d", len(result.Consensus))
	}
	g := result.Consensus[0]
	if len(g.Chunks) != 2 {
		t.Errorf("Expected chunks [1 2], got %v", g.Chunks)
	}
}

func TestComparator_Compare_ThreePassesEndToEnd(t *testing.T) {
	c := newTestComparator()

	// Pass 1 finds {A, B}, pass 2 finds {A, C}: A is consensus, B and C are
	// flagged at 1/2 passes each.
	perPass := []model.AnalysisResult{
		{Clauses: []model.Finding{
			clause("A", "shared content", 0),
			clause("B", "only pass one", 0),
		}},
		{Clauses: []model.Finding{
			clause("A", "shared content", 0),
			clause("C", "only pass two", 0),
		}},
	}

	result := c.Compare(perPass)

	if len(result.Consensus) != 1 || result.Consensus[0].Finding.Label() != "A" {
		t.Errorf("Expected A as sole consensus group")
	}
	if len(result.Flagged) != 2 {
		t.Errorf("Expected B and C flagged, got %d groups", len(result.Flagged))
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Expected no conflicts, got %d", len(result.Conflicts))
	}
}
