package services

import (
	"strings"
	"time"
)

// ConsentRecord captures a patient's decision on sharing one score's report
// with a named doctor.
type ConsentRecord struct {
	ID           int64
	PatientID    int64
	ScoreID      int64
	DoctorEmail  string
	ConsentGiven bool
	ConsentDate  time.Time
}

// ConsentStore abstracts persistence operations required by ConsentService.
type ConsentStore interface {
	GetPatient(id int64) (*Patient, error)
	GetScore(id int64) (*Score, error)
	CreateConsent(cr *ConsentRecord) (*ConsentRecord, error)
}

// ShareTokenSigner issues a report-access token for a granted consent.
type ShareTokenSigner func(patientID, scoreID int64, doctorEmail string, ttl time.Duration) (string, error)

type ConsentRequest struct {
	PatientID    int64
	ScoreID      int64
	DoctorEmail  string
	ConsentGiven *bool
}

type ConsentResult struct {
	Message    string
	Consent    *ConsentRecord
	ShareToken string
}

type ConsentService struct {
	store     ConsentStore
	signToken ShareTokenSigner
	now       func() time.Time
	tokenTTL  time.Duration
}

func NewConsentService(store ConsentStore, signer ShareTokenSigner) *ConsentService {
	return &ConsentService{
		store:     store,
		signToken: signer,
		now:       func() time.Time { return time.Now().UTC() },
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// Submit records the consent decision. The referenced patient and score must
// already exist. A granted consent additionally carries a share token the
// doctor can use to fetch the report.
func (s *ConsentService) Submit(req ConsentRequest) (*ConsentResult, error) {
	if req.PatientID == 0 || req.ScoreID == 0 || strings.TrimSpace(req.DoctorEmail) == "" || req.ConsentGiven == nil {
		return nil, NewInvalidError("Missing required fields: patientId, scoreId, doctorEmail, consentGiven")
	}
	patient, err := s.store.GetPatient(req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, NewNotFoundError("Patient not found")
	}
	score, err := s.store.GetScore(req.ScoreID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, NewNotFoundError("Score not found")
	}

	consent, err := s.store.CreateConsent(&ConsentRecord{
		PatientID:    req.PatientID,
		ScoreID:      req.ScoreID,
		DoctorEmail:  req.DoctorEmail,
		ConsentGiven: *req.ConsentGiven,
		ConsentDate:  s.now(),
	})
	if err != nil {
		return nil, err
	}

	result := &ConsentResult{Consent: consent}
	if consent.ConsentGiven {
		result.Message = "Consent granted. Report will be shared with doctor."
		if s.signToken != nil {
			token, err := s.signToken(consent.PatientID, consent.ScoreID, consent.DoctorEmail, s.tokenTTL)
			if err != nil {
				return nil, err
			}
			result.ShareToken = token
		}
	} else {
		result.Message = "Consent declined."
	}
	return result, nil
}
