package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPointsPerQuestion caps the contribution of a single answer.
const MaxPointsPerQuestion = 5

// ErrNoResponses is returned when a score is requested for an empty submission.
var ErrNoResponses = NewInvalidError("no responses provided for scoring")

// The three lookup tables are tried in order before any numeric parsing.
// An answer equal to a key in an earlier table always wins.
var answerTables = []map[string]int{
	{ // frequency
		"never":     5,
		"rarely":    4,
		"sometimes": 3,
		"often":     2,
		"always":    1,
	},
	{ // quality
		"excellent": 5,
		"very good": 4,
		"good":      3,
		"fair":      2,
		"poor":      1,
	},
	{ // agreement
		"strongly agree":    5,
		"agree":             4,
		"neutral":           3,
		"disagree":          2,
		"strongly disagree": 1,
	},
}

// ScoreForAnswer maps a free-text answer onto the 1..5 scale. Unmatched
// answers fall back to literal integers 1..5, then to the neutral 3.
func ScoreForAnswer(answer string) int {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, table := range answerTables {
		if score, ok := table[normalized]; ok {
			return score
		}
	}
	if n, err := strconv.Atoi(normalized); err == nil && n >= 1 && n <= 5 {
		return n
	}
	return 3
}

// ScoredAnswer is the slice element consumed by CalculateScore. Score, when
// set, takes precedence over re-deriving from the answer text.
type ScoredAnswer struct {
	Answer string
	Score  *int
}

// ScoreSummary is the aggregate emitted for one submission.
type ScoreSummary struct {
	TotalScore        string `json:"totalScore"`
	RawScore          int    `json:"rawScore"`
	MaxPossibleScore  int    `json:"maxPossibleScore"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

// CalculateScore sums per-answer scores and normalizes to a 0-100 percentage
// with exactly two decimals, rounding half away from zero.
func CalculateScore(answers []ScoredAnswer) (*ScoreSummary, error) {
	if len(answers) == 0 {
		return nil, ErrNoResponses
	}
	raw := 0
	for _, a := range answers {
		if a.Score != nil {
			raw += *a.Score
		} else {
			raw += ScoreForAnswer(a.Answer)
		}
	}
	max := len(answers) * MaxPointsPerQuestion
	normalized := float64(raw) / float64(max) * 100
	return &ScoreSummary{
		TotalScore:        FormatScore(normalized),
		RawScore:          raw,
		MaxPossibleScore:  max,
		NumberOfQuestions: len(answers),
	}, nil
}

// FormatScore renders a normalized score with two decimals, half away from zero.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.2f", math.Round(v*100)/100)
}
