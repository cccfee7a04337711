// Package risk turns metadata findings into a privacy risk score.
package risk

import "metascrub/internal/domain/model"

const (
	WeightGPS    = 40
	WeightAuthor = 30
	WeightAI     = 30

	MaxScore = 100

	HighThreshold   = 60
	MediumThreshold = 30
)

// Score is deterministic: details always follow GPS, author, AI order.
func Score(s model.MetadataSummary) model.RiskScore {
	score := 0
	details := make([]model.RiskTag, 0, 3)
	if s.HasGPS {
		score += WeightGPS
		details = append(details, model.TagGPS)
	}
	if s.HasAuthor {
		score += WeightAuthor
		details = append(details, model.TagAuthor)
	}
	if s.HasAIMarker {
		score += WeightAI
		details = append(details, model.TagAI)
	}
	if score > MaxScore {
		score = MaxScore
	}
	return model.RiskScore{Score: score, Details: details, Severity: SeverityOf(score)}
}

func SeverityOf(score int) model.RiskLevel {
	switch {
	case score >= HighThreshold:
		return model.RiskHigh
	case score >= MediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
