package scoring

import (
	"fmt"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
)

// poorReputationCutoff is where the reputation reason clause kicks in.
// Score contribution is linear regardless; the clause only calls out
// clearly poor standings.
const poorReputationCutoff = -0.4

// Scorer computes risk and confidence scores from an enriched profile,
// its classification tags, and the anomaly flags raised for the
// transaction. Factors sum linearly and the total is clamped to [0,1].
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a scorer with the given weights
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the risk score in [0,1] and the reason clauses that
// contributed, in factor evaluation order: classification tags,
// sanctions, anomalies, jurisdiction, reputation.
func (s *Scorer) Score(profile *models.EntityProfile, tags []models.EntityType, flags []models.AnomalyFlag) (float64, []string) {
	var score float64
	var reasons []string

	for _, tag := range tags {
		weight, ok := s.cfg.TypeWeights[string(tag)]
		if !ok {
			weight = s.cfg.TypeWeights[string(models.EntityTypeUnknown)]
		}
		score += weight
		switch tag {
		case models.EntityTypeShellCompany:
			reasons = append(reasons, "Entity is classified as a shell company")
		case models.EntityTypeFinancialInstitution:
			reasons = append(reasons, "Entity is a financial institution")
		}
	}

	if profile.Sanctioned {
		score += s.cfg.SanctionsWeight
		clause := "Entity is on sanctions list"
		if profile.SanctionsProgram != "" {
			clause = fmt.Sprintf("Entity is on sanctions list (%s)", profile.SanctionsProgram)
		}
		reasons = append(reasons, clause)
	}

	for _, flag := range flags {
		score += s.cfg.AnomalyWeight
		reasons = append(reasons, "Anomaly detected: "+flag.Description)
	}

	if band, ok := s.cfg.JurisdictionRisk[profile.Jurisdiction]; ok {
		switch band {
		case "high":
			score += s.cfg.JurisdictionBands.High
			reasons = append(reasons, fmt.Sprintf("Entity is based in a high-risk jurisdiction (%s)", profile.Jurisdiction))
		case "medium":
			score += s.cfg.JurisdictionBands.Medium
			reasons = append(reasons, fmt.Sprintf("Entity is based in an elevated-risk jurisdiction (%s)", profile.Jurisdiction))
		case "low":
			score += s.cfg.JurisdictionBands.Low
		}
	}

	// Inverse of reputation: -1 contributes the full weight, +1 subtracts it
	score += -profile.ReputationScore * s.cfg.ReputationWeight
	if profile.ReputationScore < poorReputationCutoff {
		reasons = append(reasons, "Entity has poor reputation based on news analysis")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Risk score based on standard entity assessment")
	}

	return clamp01(score), reasons
}

// Confidence returns the confidence score implied by the distinct
// evidence sources backing an assessment, capped at 1.0
func (s *Scorer) Confidence(sources []models.EvidenceSource) float64 {
	distinct := make(map[models.EvidenceSource]bool, len(sources))
	for _, src := range sources {
		distinct[src] = true
	}
	c := s.cfg.ConfidenceBase + s.cfg.ConfidencePerSource*float64(len(distinct))
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// Severity bands a risk score into an alert severity
func (s *Scorer) Severity(score float64) models.AlertSeverity {
	switch {
	case score >= 0.9:
		return models.AlertSeverityCritical
	case score >= 0.8:
		return models.AlertSeverityHigh
	case score >= s.cfg.AlertThreshold:
		return models.AlertSeverityMedium
	default:
		return models.AlertSeverityLow
	}
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
