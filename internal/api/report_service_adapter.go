package api

import "github.com/wellfolio/qolportal/internal/services"

type reportStoreAdapter struct {
	store Store
}

func newReportStoreAdapter(store Store) services.ReportStore {
	return &reportStoreAdapter{store: store}
}

func (a *reportStoreAdapter) GetPatient(id int64) (*services.Patient, error) {
	p, err := a.store.GetPatient(id)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServicePatient(p), nil
}

func (a *reportStoreAdapter) GetScore(id int64) (*services.Score, error) {
	sc, err := a.store.GetScore(id)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServiceScore(sc), nil
}

func (a *reportStoreAdapter) ListResponsesByPatient(patientID int64) ([]*services.Response, error) {
	rows, err := a.store.ListResponsesByPatient(patientID)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	out := make([]*services.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, toServiceResponse(r))
	}
	return out, nil
}

func (a *reportStoreAdapter) LatestScoreByPatient(patientID int64) (*services.Score, error) {
	sc, err := a.store.LatestScoreByPatient(patientID)
	if err != nil {
		return nil, services.NewStorageError(err.Error())
	}
	return toServiceScore(sc), nil
}

var _ services.ReportStore = (*reportStoreAdapter)(nil)
