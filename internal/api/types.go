package api

import (
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by Store.CreatePatient when the email column's
// uniqueness constraint rejects the insert.
var ErrDuplicateEmail = errors.New("email already exists")

// Patient is created on first questionnaire submission for an email and never
// mutated or deleted afterwards.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// Response is one answered question. Score is nil when no 1..5 value was
// derived for the answer.
type Response struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	Answer       string    `json:"answer"`
	Score        *int      `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// Score is one quality-of-life score row. AnalysisJSON carries the serialized
// analysis blob; patients accumulate score rows over time.
type Score struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	TotalScore   float64   `json:"total_score"`
	AnalysisJSON string    `json:"llm_analysis,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConsentRecord states whether one score's report may be shared with a doctor.
type ConsentRecord struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	ScoreID      int64     `json:"score_id"`
	DoctorEmail  string    `json:"doctor_email"`
	ConsentGiven bool      `json:"consent_given"`
	ConsentDate  time.Time `json:"consent_date"`
}
