package score

import (
	"github.com/ppiankov/veridoc/internal/model"
)

// Scorer computes per-finding confidence and presence status from pass
// agreement plus verification and hallucination signals. All constants are
// configurable policy; defaults match model.DefaultConfig.
type Scorer struct {
	baseFactor           float64
	verificationBonus    float64
	hallucinationPenalty float64
	chunkAgreementCap    float64
}

// NewScorer creates a scorer with the given formula constants.
func NewScorer(cfg model.ScoringConfig) *Scorer {
	s := &Scorer{
		baseFactor:           cfg.BaseFactor,
		verificationBonus:    cfg.VerificationBonus,
		hallucinationPenalty: cfg.HallucinationPenalty,
		chunkAgreementCap:    cfg.ChunkAgreementCap,
	}
	if s.baseFactor <= 0 {
		s.baseFactor = 0.9
	}
	if s.verificationBonus <= 0 {
		s.verificationBonus = 0.1
	}
	if s.hallucinationPenalty <= 0 {
		s.hallucinationPenalty = 0.5
	}
	if s.chunkAgreementCap <= 0 {
		s.chunkAgreementCap = 0.05
	}
	return s
}

// Confidence computes a confidence value in [0,1]:
// base = (passesFound / totalPasses) * baseFactor, plus the verification
// bonus when verified and not hallucinated, minus the hallucination penalty
// when hallucinated, clamped to [0,1].
//
// totalPasses <= 0 returns 0.0; passesFound is clamped to [0, totalPasses].
func (s *Scorer) Confidence(passesFound, totalPasses int, verified, hallucinated bool) float64 {
	if totalPasses <= 0 {
		return 0.0
	}
	if passesFound < 0 {
		passesFound = 0
	}
	if passesFound > totalPasses {
		passesFound = totalPasses
	}

	confidence := float64(passesFound) / float64(totalPasses) * s.baseFactor

	if verified && !hallucinated {
		confidence += s.verificationBonus
	}
	if hallucinated {
		confidence -= s.hallucinationPenalty
	}

	return clamp01(confidence)
}

// PresenceStatus evaluates the presence ladder in this exact order:
// conflicts, zero passes, high confidence in all passes, low confidence,
// majority agreement, else uncertain.
func (s *Scorer) PresenceStatus(confidence float64, passesFound, totalPasses int, hasConflicts bool) model.PresenceStatus {
	if hasConflicts {
		return model.PresenceUncertain
	}
	if passesFound <= 0 {
		return model.PresenceAbsent
	}
	if confidence >= 0.8 && passesFound >= totalPasses {
		return model.PresencePresent
	}
	if confidence < 0.5 {
		return model.PresenceUncertain
	}
	if confidence >= 0.7 && passesFound*2 > totalPasses {
		return model.PresencePresent
	}
	return model.PresenceUncertain
}

// AdjustForChunkAgreement boosts confidence when a finding shows up in
// several chunks independently. The boost is the agreement fraction scaled
// into the configured cap; a single-chunk document gets no adjustment.
func (s *Scorer) AdjustForChunkAgreement(confidence float64, chunksFound, totalChunks int) float64 {
	if totalChunks <= 1 {
		return clamp01(confidence)
	}
	if chunksFound < 0 {
		chunksFound = 0
	}
	if chunksFound > totalChunks {
		chunksFound = totalChunks
	}

	boost := float64(chunksFound) / float64(totalChunks) * s.chunkAgreementCap

	return clamp01(confidence + boost)
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
