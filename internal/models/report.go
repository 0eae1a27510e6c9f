package models

import (
	"math"
	"strings"
)

type SectionTier string

const (
	TierHigh   SectionTier = "High"
	TierMedium SectionTier = "Medium"
	TierLow    SectionTier = "Low"
)

// Sections scored by the model, in prompt order.
var Sections = []string{"Education", "Experience", "Skills", "Projects"}

// Value maps a tier onto the 0-100 scale used for the overall score.
func (t SectionTier) Value() int {
	switch t {
	case TierHigh:
		return 90
	case TierMedium:
		return 70
	case TierLow:
		return 50
	default:
		return 0
	}
}

// NormalizeTier folds case and whitespace ("high ", "MEDIUM") onto a known
// tier. Unknown values come back unchanged.
func NormalizeTier(raw string) SectionTier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return TierHigh
	case "medium":
		return TierMedium
	case "low":
		return TierLow
	}
	return SectionTier(raw)
}

type JDMatch struct {
	SimilarityScore        int      `json:"similarityScore"`
	QualificationScore     int      `json:"qualificationScore"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// AnalysisReport is the scored result of one successful pipeline run.
type AnalysisReport struct {
	ATSScore      int                    `json:"atsScore"`
	SectionScores map[string]SectionTier `json:"sectionScores"`
	MissingInfo   []string               `json:"missingInfo"`
	Corrections   []string               `json:"corrections"`
	JDMatch       *JDMatch               `json:"jdMatch,omitempty"`
}

// DeriveATSScore averages the tier values of the sections present, rounded
// to the nearest integer. Returns 0 when no known tier is present.
func DeriveATSScore(sections map[string]SectionTier) int {
	total, count := 0, 0
	for _, tier := range sections {
		if v := tier.Value(); v > 0 {
			total += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

// ClampScore rounds a model-provided score and clamps it to 0-100.
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
