package api

import (
	"errors"

	"github.com/wellfolio/qolportal/internal/services"
)

type questionnaireStoreAdapter struct {
	store Store
}

func newQuestionnaireStoreAdapter(store Store) services.QuestionnaireStore {
	return &questionnaireStoreAdapter{store: store}
}

func (a *questionnaireStoreAdapter) GetPatientByEmail(email string) (*services.Patient, error) {
	p, err := a.store.GetPatientByEmail(email)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServicePatient(p), nil
}

func (a *questionnaireStoreAdapter) CreatePatient(p *services.Patient) (*services.Patient, error) {
	created, err := a.store.CreatePatient(&Patient{
		Name:      p.Name,
		Email:     p.Email,
		Age:       p.Age,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, services.NewConflictError("Email already exists")
		}
		return nil, services.NewStorageError(err.Error())
	}
	return toServicePatient(created), nil
}

func (a *questionnaireStoreAdapter) AddResponses(rs []*services.Response) ([]*services.Response, error) {
	rows := make([]*Response, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, &Response{
			PatientID:    r.PatientID,
			QuestionID:   r.QuestionID,
			QuestionText: r.QuestionText,
			Answer:       r.Answer,
			Score:        r.Score,
			CreatedAt:    r.CreatedAt,
		})
	}
	inserted, err := a.store.AddResponses(rows)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	out := make([]*services.Response, 0, len(inserted))
	for _, r := range inserted {
		out = append(out, toServiceResponse(r))
	}
	return out, nil
}

func (a *questionnaireStoreAdapter) CreateScore(sc *services.Score) (*services.Score, error) {
	created, err := a.store.CreateScore(&Score{
		PatientID:    sc.PatientID,
		TotalScore:   sc.TotalScore,
		AnalysisJSON: sc.AnalysisJSON,
		CreatedAt:    sc.CreatedAt,
	})
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServiceScore(created), nil
}

func toServicePatient(p *Patient) *services.Patient {
	if p == nil {
		return nil
	}
	return &services.Patient{ID: p.ID, Name: p.Name, Email: p.Email, Age: p.Age, CreatedAt: p.CreatedAt}
}

func toServiceResponse(r *Response) *services.Response {
	if r == nil {
		return nil
	}
	return &services.Response{
		ID:           r.ID,
		PatientID:    r.PatientID,
		QuestionID:   r.QuestionID,
		QuestionText: r.QuestionText,
		Answer:       r.Answer,
		Score:        r.Score,
		CreatedAt:    r.CreatedAt,
	}
}

func toServiceScore(sc *Score) *services.Score {
	if sc == nil {
		return nil
	}
	return &services.Score{
		ID:           sc.ID,
		PatientID:    sc.PatientID,
		TotalScore:   sc.TotalScore,
		AnalysisJSON: sc.AnalysisJSON,
		CreatedAt:    sc.CreatedAt,
	}
}

var _ services.QuestionnaireStore = (*questionnaireStoreAdapter)(nil)
