package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Patient is a portal patient. Created on first submission for an email,
// never mutated afterwards.
type Patient struct {
	ID        int64
	Name      string
	Email     string
	Age       *int
	CreatedAt time.Time
}

// Response is a single answered question belonging to a patient.
type Response struct {
	ID           int64
	PatientID    int64
	QuestionID   string
	QuestionText string
	Answer       string
	Score        *int
	CreatedAt    time.Time
}

// Score is one quality-of-life score row, including the serialized analysis.
type Score struct {
	ID           int64
	PatientID    int64
	TotalScore   float64
	AnalysisJSON string
	CreatedAt    time.Time
}

// QuestionnaireStore abstracts persistence required by the submission workflow.
type QuestionnaireStore interface {
	GetPatientByEmail(email string) (*Patient, error)
	CreatePatient(p *Patient) (*Patient, error)
	AddResponses(rs []*Response) ([]*Response, error)
	CreateScore(sc *Score) (*Score, error)
}

// SubmissionAnswer mirrors one inbound response payload element.
type SubmissionAnswer struct {
	QuestionID   string
	QuestionText string
	Answer       string
}

// SubmissionRequest transports the sanitized handler input into the service layer.
type SubmissionRequest struct {
	PatientName  string
	PatientEmail string
	PatientAge   *int
	Answers      []SubmissionAnswer
}

// SubmissionResult collects the data needed to emit the HTTP response.
type SubmissionResult struct {
	PatientID int64
	ScoreID   int64
	Score     string
	Analysis  *PersonalizedAnalysis
}

// QuestionnaireService hosts the submission workflow: find-or-create patient,
// score answers, persist responses, aggregate, analyze, persist score.
type QuestionnaireService struct {
	store    QuestionnaireStore
	insights *InsightService
	now      func() time.Time
}

func NewQuestionnaireService(store QuestionnaireStore) *QuestionnaireService {
	return &QuestionnaireService{
		store:    store,
		insights: NewInsightService(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs the full submission pipeline. Responses that were inserted
// before a storage failure are not rolled back; callers must treat a storage
// error as "submission state unknown".
func (s *QuestionnaireService) Submit(req SubmissionRequest) (*SubmissionResult, error) {
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.PatientEmail) == "" || len(req.Answers) == 0 {
		return nil, NewInvalidError("Missing required fields: patientName, patientEmail, responses")
	}

	patient, err := s.findOrCreatePatient(req)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	responses := make([]*Response, 0, len(req.Answers))
	for _, a := range req.Answers {
		score := ScoreForAnswer(a.Answer)
		responses = append(responses, &Response{
			PatientID:    patient.ID,
			QuestionID:   a.QuestionID,
			QuestionText: a.QuestionText,
			Answer:       a.Answer,
			Score:        &score,
			CreatedAt:    submittedAt,
		})
	}
	if _, err := s.store.AddResponses(responses); err != nil {
		return nil, err
	}

	answers := make([]ScoredAnswer, 0, len(responses))
	for _, r := range responses {
		answers = append(answers, ScoredAnswer{Answer: r.Answer, Score: r.Score})
	}
	summary, err := CalculateScore(answers)
	if err != nil {
		return nil, err
	}

	analysis := s.insights.GeneratePersonalizedInsights(patient.Age, answers, summary)
	blob, err := json.Marshal(analysis)
	if err != nil {
		return nil, err
	}

	total, _ := strconv.ParseFloat(summary.TotalScore, 64)
	score, err := s.store.CreateScore(&Score{
		PatientID:    patient.ID,
		TotalScore:   total,
		AnalysisJSON: string(blob),
		CreatedAt:    submittedAt,
	})
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{
		PatientID: patient.ID,
		ScoreID:   score.ID,
		Score:     summary.TotalScore,
		Analysis:  analysis,
	}, nil
}

// findOrCreatePatient reuses an existing row for the email. Losing the race
// between the existence check and the insert is recovered by re-fetching.
func (s *QuestionnaireService) findOrCreatePatient(req SubmissionRequest) (*Patient, error) {
	existing, err := s.store.GetPatientByEmail(req.PatientEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	created, err := s.store.CreatePatient(&Patient{
		Name:      req.PatientName,
		Email:     req.PatientEmail,
		Age:       req.PatientAge,
		CreatedAt: s.now(),
	})
	if err != nil {
		if se, ok := AsServiceError(err); ok && se.Code == ErrorConflict {
			winner, ferr := s.store.GetPatientByEmail(req.PatientEmail)
			if ferr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}
	return created, nil
}
