package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

type stubReportStore struct {
	patients  map[int64]*Patient
	scores    map[int64]*Score
	responses map[int64][]*Response
}

func newStubReportStore() *stubReportStore {
	return &stubReportStore{
		patients:  map[int64]*Patient{},
		scores:    map[int64]*Score{},
		responses: map[int64][]*Response{},
	}
}

func (s *stubReportStore) GetPatient(id int64) (*Patient, error) {
	return s.patients[id], nil
}

func (s *stubReportStore) GetScore(id int64) (*Score, error) {
	return s.scores[id], nil
}

func (s *stubReportStore) ListResponsesByPatient(patientID int64) ([]*Response, error) {
	return s.responses[patientID], nil
}

func (s *stubReportStore) LatestScoreByPatient(patientID int64) (*Score, error) {
	var latest *Score
	for _, sc := range s.scores {
		if sc.PatientID != patientID {
			continue
		}
		if latest == nil || sc.CreatedAt.After(latest.CreatedAt) {
			latest = sc
		}
	}
	return latest, nil
}

func fixedReportService(store ReportStore) *ReportService {
	svc := NewReportService(store)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	svc.idGen = func() string { return "RPT-TEST" }
	return svc
}

func seedReportStore() *stubReportStore {
	store := newStubReportStore()
	store.patients[1] = &Patient{ID: 1, Name: "Ann", Email: "ann@example.com", Age: intPtr(34)}
	analysis, _ := json.Marshal(Analysis{Category: "Excellent", Summary: "all good"})
	store.scores[10] = &Score{ID: 10, PatientID: 1, TotalScore: 100, AnalysisJSON: string(analysis), CreatedAt: time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)}
	for i := 0; i < 9; i++ {
		store.responses[1] = append(store.responses[1], &Response{
			PatientID:    1,
			QuestionID:   "q1",
			QuestionText: "How often do you sleep well?",
			Answer:       "never",
			Score:        intPtr(5),
		})
	}
	return store
}

func TestGenerateReportUnknownPatient(t *testing.T) {
	svc := fixedReportService(seedReportStore())
	_, err := svc.GenerateReport(99, 10)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound || se.Message != "Patient not found" {
		t.Fatalf("expected patient not found, got %v", err)
	}
}

func TestGenerateReportUnknownScore(t *testing.T) {
	svc := fixedReportService(seedReportStore())
	_, err := svc.GenerateReport(1, 99)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound || se.Message != "Score not found" {
		t.Fatalf("expected score not found, got %v", err)
	}
}

// Ownership of the score by the patient in the URL is not checked; a report
// for patient A can embed patient B's score. Kept as-is deliberately.
func TestGenerateReportDoesNotCheckScoreOwnership(t *testing.T) {
	store := seedReportStore()
	store.patients[2] = &Patient{ID: 2, Name: "Bob", Email: "bob@example.com"}
	svc := fixedReportService(store)

	report, err := svc.GenerateReport(2, 10)
	if err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}
	if report.Patient.Name != "Bob" || report.QualityOfLifeScore.ScoreID != 10 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestGenerateReportContent(t *testing.T) {
	svc := fixedReportService(seedReportStore())
	report, err := svc.GenerateReport(1, 10)
	if err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}
	if report.ReportID != "RPT-TEST" {
		t.Fatalf("report id=%q", report.ReportID)
	}
	if report.QualityOfLifeScore.TotalScore != "100.00" {
		t.Fatalf("total score=%q", report.QualityOfLifeScore.TotalScore)
	}
	want := "This report is based on 9 questionnaire responses with an overall quality of life score of 100.00/100."
	if report.Summary != want {
		t.Fatalf("summary=%q", report.Summary)
	}
	if len(report.Responses) != 9 {
		t.Fatalf("%d responses in report", len(report.Responses))
	}
	if len(report.LLMAnalysis) == 0 {
		t.Fatalf("expected analysis blob in report")
	}
	if len(report.Recommendations) != 2 || report.Recommendations[0] != "Continue excellent health practices" {
		t.Fatalf("recommendations=%v", report.Recommendations)
	}
}

func TestReportRecommendationBands(t *testing.T) {
	cases := []struct {
		score float64
		first string
	}{
		{10, "Immediate consultation with healthcare provider recommended"},
		{39.99, "Immediate consultation with healthcare provider recommended"},
		{40, "Schedule follow-up with healthcare provider"},
		{59.99, "Schedule follow-up with healthcare provider"},
		{60, "Maintain current health practices"},
		{79.99, "Maintain current health practices"},
		{80, "Continue excellent health practices"},
		{100, "Continue excellent health practices"},
	}
	for _, c := range cases {
		recs := reportRecommendations(c.score)
		if len(recs) != 2 || recs[0] != c.first {
			t.Fatalf("score %v: recommendations=%v", c.score, recs)
		}
	}
}

func TestLatestReport(t *testing.T) {
	store := seedReportStore()
	store.scores[11] = &Score{ID: 11, PatientID: 1, TotalScore: 55.5, CreatedAt: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)}
	svc := fixedReportService(store)

	report, err := svc.LatestReport(1)
	if err != nil {
		t.Fatalf("LatestReport error: %v", err)
	}
	if report.QualityOfLifeScore.ScoreID != 11 {
		t.Fatalf("latest score id=%d, want 11", report.QualityOfLifeScore.ScoreID)
	}
	if report.QualityOfLifeScore.TotalScore != "55.50" {
		t.Fatalf("total score=%q", report.QualityOfLifeScore.TotalScore)
	}
}

func TestLatestReportNoScores(t *testing.T) {
	store := newStubReportStore()
	store.patients[1] = &Patient{ID: 1, Name: "Ann", Email: "ann@example.com"}
	svc := fixedReportService(store)

	_, err := svc.LatestReport(1)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound || se.Message != "No scores found for patient" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenderReportHTML(t *testing.T) {
	store := seedReportStore()
	store.responses[1] = append(store.responses[1], &Response{
		PatientID:    1,
		QuestionText: "Anything else?",
		Answer:       "free text",
	})
	svc := fixedReportService(store)
	report, err := svc.GenerateReport(1, 10)
	if err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}

	html, err := RenderReportHTML(report)
	if err != nil {
		t.Fatalf("RenderReportHTML error: %v", err)
	}
	if !strings.Contains(html, "100.00/100") {
		t.Fatalf("HTML missing score string")
	}
	if got := strings.Count(html, "<td>"); got != 30 { // 10 rows x 3 cells
		t.Fatalf("%d table cells, want 30", got)
	}
	if !strings.Contains(html, "N/A") {
		t.Fatalf("HTML missing N/A for unscored response")
	}
	if !strings.Contains(html, "<strong>Category:</strong> Excellent") {
		t.Fatalf("HTML missing analysis section")
	}
	if !strings.Contains(html, "Quality of Life Assessment Report") {
		t.Fatalf("HTML missing title")
	}
}

func TestRenderReportHTMLWithoutAnalysis(t *testing.T) {
	store := seedReportStore()
	store.scores[10].AnalysisJSON = ""
	svc := fixedReportService(store)
	report, err := svc.GenerateReport(1, 10)
	if err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}
	html, err := RenderReportHTML(report)
	if err != nil {
		t.Fatalf("RenderReportHTML error: %v", err)
	}
	if strings.Contains(html, "<h2>Analysis</h2>") {
		t.Fatalf("analysis section rendered without a stored blob")
	}
}
