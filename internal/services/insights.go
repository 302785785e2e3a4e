package services

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Analysis is the serialized blob stored alongside each score. Field names
// are part of the wire format and must stay stable.
type Analysis struct {
	Category        string   `json:"category"`
	Score           float64  `json:"score"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	KeyFindings     []string `json:"keyFindings"`
	Timestamp       string   `json:"timestamp"`
}

// PersonalizedAnalysis wraps Analysis with patient-profile additions.
type PersonalizedAnalysis struct {
	Analysis
	PersonalizedNote string   `json:"personalizedNote"`
	FollowUpActions  []string `json:"followUpActions"`
}

type insightBand struct {
	threshold       float64
	category        string
	recommendations []string
}

// insightBands is evaluated top-down; the first band whose threshold the
// score meets wins.
var insightBands = []insightBand{
	{80, "Excellent", []string{
		"Your quality of life indicators are excellent",
		"Continue maintaining your current lifestyle habits",
		"Regular check-ups are recommended to maintain this level",
	}},
	{60, "Good", []string{
		"Your quality of life is good with room for improvement",
		"Consider incorporating more physical activity",
		"Focus on stress management techniques",
		"Maintain regular sleep schedule",
	}},
	{40, "Fair", []string{
		"Several areas need attention",
		"Consult with your healthcare provider",
		"Consider lifestyle modifications",
		"Explore support groups or counseling",
	}},
	{math.Inf(-1), "Needs Attention", []string{
		"Multiple areas require immediate attention",
		"Schedule an appointment with your healthcare provider soon",
		"Consider mental health support services",
		"Discuss treatment options with your doctor",
	}},
}

var followUpActions = []string{
	"Review recommendations with your healthcare provider",
	"Track your progress over time",
	"Complete follow-up questionnaire in 3 months",
}

// InsightService derives the rule-based analysis attached to each score.
type InsightService struct {
	now func() time.Time
}

func NewInsightService() *InsightService {
	return &InsightService{now: func() time.Time { return time.Now().UTC() }}
}

// AnalyzeResponses maps the normalized score into a band and extracts key
// findings from the per-answer scores.
func (s *InsightService) AnalyzeResponses(answers []ScoredAnswer, summary *ScoreSummary) *Analysis {
	total, _ := strconv.ParseFloat(summary.TotalScore, 64)
	band := insightBands[len(insightBands)-1]
	for _, b := range insightBands {
		if total >= b.threshold {
			band = b
			break
		}
	}
	return &Analysis{
		Category:        band.category,
		Score:           total,
		Summary:         fmt.Sprintf("Based on your responses, your quality of life is rated as %s with a score of %s/100.", band.category, strconv.FormatFloat(total, 'f', -1, 64)),
		Recommendations: band.recommendations,
		KeyFindings:     ExtractKeyFindings(answers),
		Timestamp:       s.now().Format(time.RFC3339),
	}
}

// ExtractKeyFindings counts low (<=2) and high (>=4) scoring answers.
// Answers without a derived score count as neutral.
func ExtractKeyFindings(answers []ScoredAnswer) []string {
	low, high := 0, 0
	for _, a := range answers {
		score := 3
		if a.Score != nil {
			score = *a.Score
		}
		if score <= 2 {
			low++
		}
		if score >= 4 {
			high++
		}
	}
	findings := []string{}
	if low > 0 {
		findings = append(findings, fmt.Sprintf("%d areas identified as needing attention", low))
	}
	if high > 0 {
		findings = append(findings, fmt.Sprintf("%d areas showing positive indicators", high))
	}
	if len(findings) == 0 {
		return []string{"No specific patterns identified"}
	}
	return findings
}

// GeneratePersonalizedInsights adds the patient-profile note and fixed
// follow-up actions on top of the band analysis. age is nil when the patient
// declined to state it.
func (s *InsightService) GeneratePersonalizedInsights(age *int, answers []ScoredAnswer, summary *ScoreSummary) *PersonalizedAnalysis {
	ageLabel := "unknown"
	if age != nil {
		ageLabel = strconv.Itoa(*age)
	}
	return &PersonalizedAnalysis{
		Analysis:         *s.AnalyzeResponses(answers, summary),
		PersonalizedNote: fmt.Sprintf("Recommendations tailored for patient profile (Age: %s)", ageLabel),
		FollowUpActions:  followUpActions,
	}
}
