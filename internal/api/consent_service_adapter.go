package api

import "github.com/wellfolio/qolportal/internal/services"

type consentStoreAdapter struct {
	store Store
}

func newConsentStoreAdapter(store Store) services.ConsentStore {
	return &consentStoreAdapter{store: store}
}

func (a *consentStoreAdapter) GetPatient(id int64) (*services.Patient, error) {
	p, err := a.store.GetPatient(id)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServicePatient(p), nil
}

func (a *consentStoreAdapter) GetScore(id int64) (*services.Score, error) {
	sc, err := a.store.GetScore(id)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServiceScore(sc), nil
}

func (a *consentStoreAdapter) CreateConsent(cr *services.ConsentRecord) (*services.ConsentRecord, error) {
	created, err := a.store.CreateConsent(&ConsentRecord{
		PatientID:    cr.PatientID,
		ScoreID:      cr.ScoreID,
		DoctorEmail:  cr.DoctorEmail,
		ConsentGiven: cr.ConsentGiven,
		ConsentDate:  cr.ConsentDate,
	})
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return &services.ConsentRecord{
		ID:           created.ID,
		PatientID:    created.PatientID,
		ScoreID:      created.ScoreID,
		DoctorEmail:  created.DoctorEmail,
		ConsentGiven: created.ConsentGiven,
		ConsentDate:  created.ConsentDate,
	}, nil
}

var _ services.ConsentStore = (*consentStoreAdapter)(nil)
