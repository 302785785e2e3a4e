package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportStore abstracts persistence operations required by ReportService.
type ReportStore interface {
	GetPatient(id int64) (*Patient, error)
	GetScore(id int64) (*Score, error)
	ListResponsesByPatient(patientID int64) ([]*Response, error)
	LatestScoreByPatient(patientID int64) (*Score, error)
}

// ReportPatient is the patient snapshot embedded in a report.
type ReportPatient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

// ReportScore is the score snapshot embedded in a report.
type ReportScore struct {
	TotalScore   string `json:"totalScore"`
	ScoreID      int64  `json:"scoreId"`
	CalculatedAt string `json:"calculatedAt"`
}

// ReportResponse is one question/answer/score triple in a report.
type ReportResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    *int   `json:"score"`
}

// Report joins patient, score and response records into a single view.
// llmAnalysis passes the stored blob through untouched so rows written by
// earlier versions of the portal read back unchanged.
type Report struct {
	ReportID           string          `json:"reportId"`
	GeneratedAt        string          `json:"generatedAt"`
	Patient            ReportPatient   `json:"patient"`
	QualityOfLifeScore ReportScore     `json:"qualityOfLifeScore"`
	LLMAnalysis        json.RawMessage `json:"llmAnalysis"`
	Responses          []ReportResponse `json:"responses"`
	Summary            string          `json:"summary"`
	Recommendations    []string        `json:"recommendations"`
}

// reportBands is the report assembler's own recommendation rule set. It is
// intentionally independent from the insight generator's bands; the portal
// has always maintained both.
type reportBand struct {
	below           float64
	recommendations []string
}

var reportBands = []reportBand{
	{40, []string{
		"Immediate consultation with healthcare provider recommended",
		"Consider comprehensive health assessment",
	}},
	{60, []string{
		"Schedule follow-up with healthcare provider",
		"Implement lifestyle modifications",
	}},
	{80, []string{
		"Maintain current health practices",
		"Regular monitoring recommended",
	}},
}

var topReportRecommendations = []string{
	"Continue excellent health practices",
	"Annual check-ups recommended",
}

type ReportService struct {
	store ReportStore
	now   func() time.Time
	idGen func() string
}

func NewReportService(store ReportStore) *ReportService {
	s := &ReportService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	s.idGen = func() string {
		return fmt.Sprintf("RPT-%d-%s", s.now().UnixMilli(), shortID(6))
	}
	return s
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// GenerateReport assembles the full report for a patient/score pair. The
// score row is fetched by id only; ownership by the patient is not checked.
func (s *ReportService) GenerateReport(patientID, scoreID int64) (*Report, error) {
	patient, err := s.store.GetPatient(patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, NewNotFoundError("Patient not found")
	}
	score, err := s.store.GetScore(scoreID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, NewNotFoundError("Score not found")
	}
	responses, err := s.store.ListResponsesByPatient(patientID)
	if err != nil {
		return nil, err
	}

	rs := make([]ReportResponse, 0, len(responses))
	for _, r := range responses {
		rs = append(rs, ReportResponse{Question: r.QuestionText, Answer: r.Answer, Score: r.Score})
	}

	var analysis json.RawMessage
	if score.AnalysisJSON != "" {
		analysis = json.RawMessage(score.AnalysisJSON)
	}

	total := FormatScore(score.TotalScore)
	return &Report{
		ReportID:    s.idGen(),
		GeneratedAt: s.now().Format(time.RFC3339),
		Patient:     ReportPatient{Name: patient.Name, Email: patient.Email, Age: patient.Age},
		QualityOfLifeScore: ReportScore{
			TotalScore:   total,
			ScoreID:      score.ID,
			CalculatedAt: score.CreatedAt.Format(time.RFC3339),
		},
		LLMAnalysis:     analysis,
		Responses:       rs,
		Summary:         fmt.Sprintf("This report is based on %d questionnaire responses with an overall quality of life score of %s/100.", len(rs), total),
		Recommendations: reportRecommendations(score.TotalScore),
	}, nil
}

// LatestReport assembles a report for the patient's most recent score.
func (s *ReportService) LatestReport(patientID int64) (*Report, error) {
	latest, err := s.store.LatestScoreByPatient(patientID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, NewNotFoundError("No scores found for patient")
	}
	return s.GenerateReport(patientID, latest.ID)
}

func reportRecommendations(score float64) []string {
	for _, b := range reportBands {
		if score < b.below {
			return b.recommendations
		}
	}
	return topReportRecommendations
}
