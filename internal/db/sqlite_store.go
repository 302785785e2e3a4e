package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/wellfolio/qolportal/internal/api"
)

// SQLiteStore implements api.Store on a single SQLite file. Concurrency
// safety relies on SQLite's own serialization; there is no application-level
// locking.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func fromNullInt(ns sql.NullInt64) *int {
	if !ns.Valid {
		return nil
	}
	v := int(ns.Int64)
	return &v
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func (s *SQLiteStore) CreatePatient(p *api.Patient) (*api.Patient, error) {
	created := *p
	created.CreatedAt = orNow(p.CreatedAt)
	res, err := s.db.Exec(
		`INSERT INTO patients (name, email, age, created_at) VALUES (?, ?, ?, ?)`,
		created.Name, created.Email, toNullInt(created.Age), created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, api.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	created.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return &created, nil
}

func (s *SQLiteStore) GetPatient(id int64) (*api.Patient, error) {
	return s.scanPatient(s.db.QueryRow(
		`SELECT id, name, email, age, created_at FROM patients WHERE id = ?`, id))
}

func (s *SQLiteStore) GetPatientByEmail(email string) (*api.Patient, error) {
	return s.scanPatient(s.db.QueryRow(
		`SELECT id, name, email, age, created_at FROM patients WHERE email = ?`, email))
}

func (s *SQLiteStore) scanPatient(row *sql.Row) (*api.Patient, error) {
	var p api.Patient
	var age sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Email, &age, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	p.Age = fromNullInt(age)
	return &p, nil
}

// AddResponses inserts the batch sequentially. Rows inserted before a failure
// are not rolled back; the returned slice holds what made it in and the error
// wraps the first failure.
func (s *SQLiteStore) AddResponses(rs []*api.Response) ([]*api.Response, error) {
	stmt, err := s.db.Prepare(
		`INSERT INTO questionnaire_responses (patient_id, question_id, question_text, answer, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare response insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]*api.Response, 0, len(rs))
	for _, r := range rs {
		row := *r
		row.CreatedAt = orNow(r.CreatedAt)
		res, err := stmt.Exec(row.PatientID, row.QuestionID, row.QuestionText, row.Answer, toNullInt(row.Score), row.CreatedAt)
		if err != nil {
			return inserted, fmt.Errorf("insert response %q: %w", row.QuestionID, err)
		}
		row.ID, err = res.LastInsertId()
		if err != nil {
			return inserted, fmt.Errorf("insert response %q: %w", row.QuestionID, err)
		}
		inserted = append(inserted, &row)
	}
	return inserted, nil
}

func (s *SQLiteStore) ListResponsesByPatient(patientID int64) ([]*api.Response, error) {
	rows, err := s.db.Query(
		`SELECT id, patient_id, question_id, question_text, answer, score, created_at
		 FROM questionnaire_responses WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []*api.Response
	for rows.Next() {
		var r api.Response
		var score sql.NullInt64
		if err := rows.Scan(&r.ID, &r.PatientID, &r.QuestionID, &r.QuestionText, &r.Answer, &score, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Score = fromNullInt(score)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateScore(sc *api.Score) (*api.Score, error) {
	created := *sc
	created.CreatedAt = orNow(sc.CreatedAt)
	res, err := s.db.Exec(
		`INSERT INTO quality_of_life_scores (patient_id, total_score, llm_analysis, created_at) VALUES (?, ?, ?, ?)`,
		created.PatientID, created.TotalScore, toNullString(created.AnalysisJSON), created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	created.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	return &created, nil
}

func (s *SQLiteStore) GetScore(id int64) (*api.Score, error) {
	return s.scanScore(s.db.QueryRow(
		`SELECT id, patient_id, total_score, llm_analysis, created_at FROM quality_of_life_scores WHERE id = ?`, id))
}

func (s *SQLiteStore) LatestScoreByPatient(patientID int64) (*api.Score, error) {
	return s.scanScore(s.db.QueryRow(
		`SELECT id, patient_id, total_score, llm_analysis, created_at FROM quality_of_life_scores
		 WHERE patient_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, patientID))
}

func (s *SQLiteStore) scanScore(row *sql.Row) (*api.Score, error) {
	var sc api.Score
	var analysis sql.NullString
	err := row.Scan(&sc.ID, &sc.PatientID, &sc.TotalScore, &analysis, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan score: %w", err)
	}
	sc.AnalysisJSON = analysis.String
	return &sc, nil
}

func (s *SQLiteStore) ListScoresByPatient(patientID int64) ([]*api.Score, error) {
	rows, err := s.db.Query(
		`SELECT id, patient_id, total_score, llm_analysis, created_at FROM quality_of_life_scores
		 WHERE patient_id = ? ORDER BY created_at DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []*api.Score
	for rows.Next() {
		var sc api.Score
		var analysis sql.NullString
		if err := rows.Scan(&sc.ID, &sc.PatientID, &sc.TotalScore, &analysis, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		sc.AnalysisJSON = analysis.String
		out = append(out, &sc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateConsent(cr *api.ConsentRecord) (*api.ConsentRecord, error) {
	created := *cr
	created.ConsentDate = orNow(cr.ConsentDate)
	res, err := s.db.Exec(
		`INSERT INTO consent_records (patient_id, score_id, doctor_email, consent_given, consent_date) VALUES (?, ?, ?, ?, ?)`,
		created.PatientID, created.ScoreID, created.DoctorEmail, created.ConsentGiven, created.ConsentDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert consent: %w", err)
	}
	created.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert consent: %w", err)
	}
	return &created, nil
}

func (s *SQLiteStore) GetConsentByScore(scoreID int64) (*api.ConsentRecord, error) {
	var cr api.ConsentRecord
	err := s.db.QueryRow(
		`SELECT id, patient_id, score_id, doctor_email, consent_given, consent_date
		 FROM consent_records WHERE score_id = ? ORDER BY id LIMIT 1`, scoreID).
		Scan(&cr.ID, &cr.PatientID, &cr.ScoreID, &cr.DoctorEmail, &cr.ConsentGiven, &cr.ConsentDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan consent: %w", err)
	}
	return &cr, nil
}

func (s *SQLiteStore) ListConsentsByPatient(patientID int64) ([]*api.ConsentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, patient_id, score_id, doctor_email, consent_given, consent_date
		 FROM consent_records WHERE patient_id = ? ORDER BY consent_date DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var out []*api.ConsentRecord
	for rows.Next() {
		var cr api.ConsentRecord
		if err := rows.Scan(&cr.ID, &cr.PatientID, &cr.ScoreID, &cr.DoctorEmail, &cr.ConsentGiven, &cr.ConsentDate); err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		out = append(out, &cr)
	}
	return out, rows.Err()
}

var _ api.Store = (*SQLiteStore)(nil)
