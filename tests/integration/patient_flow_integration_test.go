//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("QOLPORTAL_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:3000"
}

func TestPatientJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	patientEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())

	responses := make([]map[string]any, 0, 9)
	for i := 1; i <= 9; i++ {
		responses = append(responses, map[string]any{
			"questionId":   fmt.Sprintf("qol_q%d", i),
			"questionText": "How often do you struggle with daily activities?",
			"answer":       "never",
		})
	}

	var submitResp struct {
		PatientID int64  `json:"patientId"`
		ScoreID   int64  `json:"scoreId"`
		Score     string `json:"score"`
		Analysis  struct {
			Category string `json:"category"`
		} `json:"analysis"`
	}
	doPost(t, client, base+"/api/questionnaire/submit", map[string]any{
		"patientName":  "Integration Patient",
		"patientEmail": patientEmail,
		"patientAge":   42,
		"responses":    responses,
	}, &submitResp)
	if submitResp.PatientID == 0 || submitResp.ScoreID == 0 {
		t.Fatalf("unexpected submit response: %+v", submitResp)
	}
	if submitResp.Score != "100.00" {
		t.Fatalf("score = %q, want 100.00", submitResp.Score)
	}
	if submitResp.Analysis.Category != "Excellent" {
		t.Fatalf("category = %q, want Excellent", submitResp.Analysis.Category)
	}

	var report struct {
		ReportID           string `json:"reportId"`
		QualityOfLifeScore struct {
			TotalScore string `json:"totalScore"`
		} `json:"qualityOfLifeScore"`
		Responses []map[string]any `json:"responses"`
	}
	reportURL := fmt.Sprintf("%s/api/report/patient/%d/score/%d", base, submitResp.PatientID, submitResp.ScoreID)
	doGet(t, client, reportURL, &report)
	if report.ReportID == "" || report.QualityOfLifeScore.TotalScore != "100.00" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Responses) != 9 {
		t.Fatalf("report has %d responses, want 9", len(report.Responses))
	}

	htmlReq, err := http.NewRequest(http.MethodGet, reportURL+"/html", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	htmlResp, err := client.Do(htmlReq)
	if err != nil {
		t.Fatalf("html report request failed: %v", err)
	}
	defer htmlResp.Body.Close()
	if htmlResp.StatusCode != http.StatusOK {
		t.Fatalf("html report status %d", htmlResp.StatusCode)
	}
	htmlBytes, err := io.ReadAll(htmlResp.Body)
	if err != nil {
		t.Fatalf("read html report: %v", err)
	}
	html := string(htmlBytes)
	if !strings.Contains(html, "100.00/100") {
		t.Fatalf("html report missing score; body=%s", html)
	}

	var consentResp struct {
		Message    string `json:"message"`
		ConsentID  int64  `json:"consentId"`
		ShareToken string `json:"shareToken"`
	}
	doPost(t, client, base+"/api/consent/submit", map[string]any{
		"patientId":    submitResp.PatientID,
		"scoreId":      submitResp.ScoreID,
		"doctorEmail":  "doctor@example.com",
		"consentGiven": true,
	}, &consentResp)
	if consentResp.ConsentID == 0 || consentResp.ShareToken == "" {
		t.Fatalf("unexpected consent response: %+v", consentResp)
	}
	if consentResp.Message != "Consent granted. Report will be shared with doctor." {
		t.Fatalf("consent message = %q", consentResp.Message)
	}

	sharedReq, err := http.NewRequest(http.MethodGet, base+"/api/report/shared/"+consentResp.ShareToken, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	sharedResp, err := client.Do(sharedReq)
	if err != nil {
		t.Fatalf("shared report request failed: %v", err)
	}
	defer sharedResp.Body.Close()
	if sharedResp.StatusCode != http.StatusOK {
		t.Fatalf("shared report status %d", sharedResp.StatusCode)
	}
}

func doPost(t *testing.T, client *http.Client, url string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
