package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/wellfolio/qolportal/internal/middleware"
	"github.com/wellfolio/qolportal/internal/services"
)

// Router wires the questionnaire, consent and report workflows onto an
// http.ServeMux. All state lives behind the injected Store.
type Router struct {
	store          Store
	questionnaires *services.QuestionnaireService
	consents       *services.ConsentService
	reports        *services.ReportService
}

func NewRouter(store Store) *Router {
	return &Router{
		store:          store,
		questionnaires: services.NewQuestionnaireService(newQuestionnaireStoreAdapter(store)),
		consents:       services.NewConsentService(newConsentStoreAdapter(store), middleware.SignShareToken),
		reports:        services.NewReportService(newReportStoreAdapter(store)),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questionnaire/submit", rt.handleSubmit)          // POST
	mux.HandleFunc("/api/questionnaire/patient/", rt.handlePatientData)   // GET .../responses | .../scores
	mux.HandleFunc("/api/consent/submit", rt.handleConsentSubmit)         // POST
	mux.HandleFunc("/api/consent/patient/", rt.handleConsentsByPatient)   // GET
	mux.HandleFunc("/api/consent/score/", rt.handleConsentByScore)        // GET
	mux.HandleFunc("/api/report/patient/", rt.handleReport)               // GET .../score/{id}[/html] | .../latest
	mux.HandleFunc("/api/report/shared/", rt.handleSharedReport)          // GET
	mux.HandleFunc("/api/health", rt.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid, services.ErrorConflict:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorStorage:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseID(w http.ResponseWriter, raw, label string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid " + label})
		return 0, false
	}
	return id, true
}

// POST /api/questionnaire/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		PatientName  string `json:"patientName"`
		PatientEmail string `json:"patientEmail"`
		PatientAge   *int   `json:"patientAge"`
		Responses    []struct {
			QuestionID   string `json:"questionId"`
			QuestionText string `json:"questionText"`
			Answer       string `json:"answer"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	answers := make([]services.SubmissionAnswer, 0, len(req.Responses))
	for _, a := range req.Responses {
		answers = append(answers, services.SubmissionAnswer{QuestionID: a.QuestionID, QuestionText: a.QuestionText, Answer: a.Answer})
	}
	res, err := rt.questionnaires.Submit(services.SubmissionRequest{
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientAge:   req.PatientAge,
		Answers:      answers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Questionnaire submitted successfully",
		"patientId": res.PatientID,
		"scoreId":   res.ScoreID,
		"score":     res.Score,
		"analysis":  res.Analysis,
	})
}

// GET /api/questionnaire/patient/{id}/responses
// GET /api/questionnaire/patient/{id}/scores
func (rt *Router) handlePatientData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/questionnaire/patient/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	patientID, ok := parseID(w, parts[0], "patient id")
	if !ok {
		return
	}
	switch parts[1] {
	case "responses":
		responses, err := rt.store.ListResponsesByPatient(patientID)
		if err != nil {
			writeError(w, err)
			return
		}
		if responses == nil {
			responses = []*Response{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"patientId": patientID, "responses": responses})
	case "scores":
		scores, err := rt.store.ListScoresByPatient(patientID)
		if err != nil {
			writeError(w, err)
			return
		}
		if scores == nil {
			scores = []*Score{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"patientId": patientID, "scores": scores})
	default:
		http.NotFound(w, r)
	}
}

// POST /api/consent/submit
func (rt *Router) handleConsentSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		PatientID    int64  `json:"patientId"`
		ScoreID      int64  `json:"scoreId"`
		DoctorEmail  string `json:"doctorEmail"`
		ConsentGiven *bool  `json:"consentGiven"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := rt.consents.Submit(services.ConsentRequest{
		PatientID:    req.PatientID,
		ScoreID:      req.ScoreID,
		DoctorEmail:  req.DoctorEmail,
		ConsentGiven: req.ConsentGiven,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := map[string]any{
		"message":   res.Message,
		"consentId": res.Consent.ID,
		"consent":   toAPIConsent(res.Consent),
	}
	if res.ShareToken != "" {
		body["shareToken"] = res.ShareToken
	}
	writeJSON(w, http.StatusCreated, body)
}

// GET /api/consent/patient/{id}
func (rt *Router) handleConsentsByPatient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/consent/patient/")
	patientID, ok := parseID(w, raw, "patient id")
	if !ok {
		return
	}
	consents, err := rt.store.ListConsentsByPatient(patientID)
	if err != nil {
		writeError(w, err)
		return
	}
	if consents == nil {
		consents = []*ConsentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"patientId": patientID, "consents": consents})
}

// GET /api/consent/score/{id}
func (rt *Router) handleConsentByScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/consent/score/")
	scoreID, ok := parseID(w, raw, "score id")
	if !ok {
		return
	}
	consent, err := rt.store.GetConsentByScore(scoreID)
	if err != nil {
		writeError(w, err)
		return
	}
	if consent == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No consent found for this score"})
		return
	}
	writeJSON(w, http.StatusOK, consent)
}

// GET /api/report/patient/{pid}/score/{sid}
// GET /api/report/patient/{pid}/score/{sid}/html
// GET /api/report/patient/{pid}/latest
func (rt *Router) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/report/patient/")
	parts := strings.Split(rest, "/")
	patientID, ok := parseID(w, parts[0], "patient id")
	if !ok {
		return
	}

	if len(parts) == 2 && parts[1] == "latest" {
		report, err := rt.reports.LatestReport(patientID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	if len(parts) < 3 || parts[1] != "score" {
		http.NotFound(w, r)
		return
	}
	scoreID, ok := parseID(w, parts[2], "score id")
	if !ok {
		return
	}
	wantHTML := len(parts) == 4 && parts[3] == "html"
	if !wantHTML && len(parts) != 3 {
		http.NotFound(w, r)
		return
	}
	report, err := rt.reports.GenerateReport(patientID, scoreID)
	if err != nil {
		writeError(w, err)
		return
	}
	if wantHTML {
		rt.writeHTMLReport(w, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /api/report/shared/{token} serves the HTML report to a doctor holding
// a consent share token.
func (rt *Router) handleSharedReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/api/report/shared/")
	claims, err := middleware.ParseShareToken(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired share token"})
		return
	}
	report, err := rt.reports.GenerateReport(claims.PatientID, claims.ScoreID)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.writeHTMLReport(w, report)
}

func (rt *Router) writeHTMLReport(w http.ResponseWriter, report *services.Report) {
	html, err := services.RenderReportHTML(report)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// GET /api/health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Patient questionnaire portal is running",
	})
}

func toAPIConsent(cr *services.ConsentRecord) *ConsentRecord {
	return &ConsentRecord{
		ID:           cr.ID,
		PatientID:    cr.PatientID,
		ScoreID:      cr.ScoreID,
		DoctorEmail:  cr.DoctorEmail,
		ConsentGiven: cr.ConsentGiven,
		ConsentDate:  cr.ConsentDate,
	}
}
