package api

// Store is the persistence surface the router and service adapters depend on.
// Lookups by id return (nil, nil) when no row exists.
type Store interface {
	CreatePatient(p *Patient) (*Patient, error) // ErrDuplicateEmail on a duplicate email
	GetPatient(id int64) (*Patient, error)
	GetPatientByEmail(email string) (*Patient, error)

	AddResponses(rs []*Response) ([]*Response, error)
	ListResponsesByPatient(patientID int64) ([]*Response, error)

	CreateScore(sc *Score) (*Score, error)
	GetScore(id int64) (*Score, error)
	ListScoresByPatient(patientID int64) ([]*Score, error)
	LatestScoreByPatient(patientID int64) (*Score, error)

	CreateConsent(cr *ConsentRecord) (*ConsentRecord, error)
	GetConsentByScore(scoreID int64) (*ConsentRecord, error)
	ListConsentsByPatient(patientID int64) ([]*ConsentRecord, error)
}
