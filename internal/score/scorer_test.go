package score

import (
	"testing"

	"github.com/ppiankov/veridoc/internal/model"
)

func defaultScorer() *Scorer {
	return NewScorer(model.DefaultConfig().Scoring)
}

func TestScorer_Confidence_Formula(t *testing.T) {
	scorer := defaultScorer()

	tests := []struct {
		name         string
		passesFound  int
		totalPasses  int
		verified     bool
		hallucinated bool
		want         float64
	}{
		{"all passes unverified", 3, 3, false, false, 0.9},
		{"all passes verified", 3, 3, true, false, 1.0},
		{"two thirds unverified", 2, 3, false, false, 0.6},
		{"half verified", 1, 2, true, false, 0.55},
		{"hallucinated full agreement", 3, 3, false, true, 0.4},
		{"hallucinated overrides verified bonus", 3, 3, true, true, 0.4},
		{"zero passes", 0, 3, false, false, 0.0},
		{"zero total passes", 2, 0, false, false, 0.0},
		{"negative total passes", 2, -1, false, false, 0.0},
		{"found exceeds total clamped", 5, 3, false, false, 0.9},
		{"negative found clamped", -1, 3, false, false, 0.0},
	}

	for _, tt := range tests {
		got := scorer.Confidence(tt.passesFound, tt.totalPasses, tt.verified, tt.hallucinated)
		if !almostEqual(got, tt.want) {
			t.Errorf("%s: Confidence() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScorer_Confidence_MonotonicInPasses(t *testing.T) {
	scorer := defaultScorer()

	prev := -1.0
	for found := 0; found <= 5; found++ {
		got := scorer.Confidence(found, 5, false, false)
		if got < prev {
			t.Errorf("Confidence decreased from %v to %v at passesFound=%d", prev, got, found)
		}
		if got < 0 || got > 1 {
			t.Errorf("Confidence %v outside [0,1] at passesFound=%d", got, found)
		}
		prev = got
	}
}

func TestScorer_PresenceStatus_Ladder(t *testing.T) {
	scorer := defaultScorer()

	tests := []struct {
		name         string
		confidence   float64
		passesFound  int
		totalPasses  int
		hasConflicts bool
		want         model.PresenceStatus
	}{
		{"conflicts win first", 0.95, 3, 3, true, model.PresenceUncertain},
		{"zero passes absent", 0.0, 0, 3, false, model.PresenceAbsent},
		{"high confidence all passes", 0.9, 3, 3, false, model.PresencePresent},
		{"low confidence uncertain", 0.4, 2, 3, false, model.PresenceUncertain},
		{"majority with decent confidence", 0.7, 2, 3, false, model.PresencePresent},
		{"middling confidence minority", 0.6, 1, 3, false, model.PresenceUncertain},
		{"decent confidence but no majority", 0.75, 1, 2, false, model.PresenceUncertain},
	}

	for _, tt := range tests {
		got := scorer.PresenceStatus(tt.confidence, tt.passesFound, tt.totalPasses, tt.hasConflicts)
		if got != tt.want {
			t.Errorf("%s: PresenceStatus() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestScorer_AdjustForChunkAgreement(t *testing.T) {
	scorer := defaultScorer()

	// Single-chunk documents get no adjustment.
	if got := scorer.AdjustForChunkAgreement(0.6, 1, 1); got != 0.6 {
		t.Errorf("Expected no-op for single chunk, got %v", got)
	}
	if got := scorer.AdjustForChunkAgreement(0.6, 0, 0); got != 0.6 {
		t.Errorf("Expected no-op for zero chunks, got %v", got)
	}

	// Full agreement hits the cap exactly.
	if got := scorer.AdjustForChunkAgreement(0.6, 4, 4); !almostEqual(got, 0.65) {
		t.Errorf("Expected 0.65 at full chunk agreement, got %v", got)
	}

	// Partial agreement scales within the cap.
	if got := scorer.AdjustForChunkAgreement(0.6, 2, 4); !almostEqual(got, 0.625) {
		t.Errorf("Expected 0.625 at half chunk agreement, got %v", got)
	}

	// Result stays clamped to [0,1].
	if got := scorer.AdjustForChunkAgreement(0.99, 4, 4); got > 1 {
		t.Errorf("Adjusted confidence exceeded 1: %v", got)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
