package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wellfolio/qolportal/internal/api"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	sqlDB, err := Open(filepath.Join(t.TempDir(), "portal.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	// Pragmas are per connection; a single-connection pool keeps them applied.
	sqlDB.SetMaxOpenConns(1)
	if err := InitSchema(sqlDB); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	store, err := NewSQLiteStore(sqlDB)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func testPatient(t *testing.T, store *SQLiteStore, email string) *api.Patient {
	t.Helper()
	p, err := store.CreatePatient(&api.Patient{Name: "Test Patient", Email: email})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func intPtr(v int) *int { return &v }

func TestCreatePatientDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	testPatient(t, store, "dup@example.com")

	_, err := store.CreatePatient(&api.Patient{Name: "Other", Email: "dup@example.com"})
	if !errors.Is(err, api.ErrDuplicateEmail) {
		t.Fatalf("err=%v, want ErrDuplicateEmail", err)
	}
}

func TestAddResponsesInsertsBatch(t *testing.T) {
	store := newTestStore(t)
	patient := testPatient(t, store, "batch@example.com")

	batch := []*api.Response{
		{PatientID: patient.ID, QuestionID: "q1", QuestionText: "Sleep quality?", Answer: "good", Score: intPtr(3)},
		{PatientID: patient.ID, QuestionID: "q2", QuestionText: "Energy level?", Answer: "excellent", Score: intPtr(5)},
	}
	inserted, err := store.AddResponses(batch)
	if err != nil {
		t.Fatalf("add responses: %v", err)
	}
	if len(inserted) != 2 || inserted[0].ID == 0 || inserted[1].ID == 0 {
		t.Fatalf("inserted=%+v", inserted)
	}

	rows, err := store.ListResponsesByPatient(patient.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(rows) != 2 || rows[0].QuestionID != "q1" || rows[1].QuestionID != "q2" {
		t.Fatalf("rows=%+v", rows)
	}
}

// A failure mid-batch leaves the earlier rows in place and reports which
// row failed. There is no transaction wrapping the batch.
func TestAddResponsesKeepsRowsInsertedBeforeFailure(t *testing.T) {
	store := newTestStore(t)
	patient := testPatient(t, store, "partial@example.com")

	batch := []*api.Response{
		{PatientID: patient.ID, QuestionID: "q1", QuestionText: "Sleep quality?", Answer: "good", Score: intPtr(3)},
		{PatientID: patient.ID + 999, QuestionID: "q2", QuestionText: "Energy level?", Answer: "poor", Score: intPtr(1)},
		{PatientID: patient.ID, QuestionID: "q3", QuestionText: "Mood?", Answer: "fair", Score: intPtr(2)},
	}
	inserted, err := store.AddResponses(batch)
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown patient")
	}
	if !strings.Contains(err.Error(), `"q2"`) {
		t.Fatalf("err=%v, want it to name q2", err)
	}
	if len(inserted) != 1 || inserted[0].QuestionID != "q1" {
		t.Fatalf("inserted=%+v, want only q1", inserted)
	}

	rows, err := store.ListResponsesByPatient(patient.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(rows) != 1 || rows[0].QuestionID != "q1" {
		t.Fatalf("rows=%+v, want only q1 persisted", rows)
	}
}
