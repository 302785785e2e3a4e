package services

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
	"time"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Quality of Life Report</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1 { color: #2c3e50; }
        .section { margin: 20px 0; padding: 15px; background: #f8f9fa; border-radius: 5px; }
        .score { font-size: 48px; font-weight: bold; color: #27ae60; }
        .recommendations { background: #fff3cd; padding: 10px; border-left: 4px solid #ffc107; }
        table { width: 100%; border-collapse: collapse; margin: 10px 0; }
        th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #3498db; color: white; }
    </style>
</head>
<body>
    <h1>Quality of Life Assessment Report</h1>

    <div class="section">
        <h2>Patient Information</h2>
        <p><strong>Name:</strong> {{.Patient.Name}}</p>
        <p><strong>Report ID:</strong> {{.ReportID}}</p>
        <p><strong>Generated:</strong> {{.GeneratedDisplay}}</p>
    </div>

    <div class="section">
        <h2>Quality of Life Score</h2>
        <div class="score">{{.TotalScore}}/100</div>
        <p>{{.Summary}}</p>
    </div>
{{if .Analysis}}
    <div class="section">
        <h2>Analysis</h2>
        <p><strong>Category:</strong> {{.Analysis.Category}}</p>
        <p><strong>Summary:</strong> {{.Analysis.Summary}}</p>
    </div>
{{end}}
    <div class="section recommendations">
        <h2>Recommendations</h2>
        <ul>
{{range .Recommendations}}            <li>{{.}}</li>
{{end}}        </ul>
    </div>

    <div class="section">
        <h2>Response Summary</h2>
        <table>
            <thead>
                <tr>
                    <th>Question</th>
                    <th>Answer</th>
                    <th>Score</th>
                </tr>
            </thead>
            <tbody>
{{range .Rows}}                <tr>
                    <td>{{.Question}}</td>
                    <td>{{.Answer}}</td>
                    <td>{{.Score}}</td>
                </tr>
{{end}}            </tbody>
        </table>
    </div>

    <div class="section">
        <p><em>This report is for informational purposes only and should be discussed with your healthcare provider.</em></p>
    </div>
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type reportAnalysisView struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

type reportRowView struct {
	Question string
	Answer   string
	Score    string
}

type reportView struct {
	ReportID         string
	GeneratedDisplay string
	Patient          ReportPatient
	TotalScore       string
	Summary          string
	Analysis         *reportAnalysisView
	Recommendations  []string
	Rows             []reportRowView
}

// RenderReportHTML produces the self-contained HTML variant of a report.
// Responses without a derived score render as "N/A".
func RenderReportHTML(r *Report) (string, error) {
	view := reportView{
		ReportID:        r.ReportID,
		Patient:         r.Patient,
		TotalScore:      r.QualityOfLifeScore.TotalScore,
		Summary:         r.Summary,
		Recommendations: r.Recommendations,
	}
	if t, err := time.Parse(time.RFC3339, r.GeneratedAt); err == nil {
		view.GeneratedDisplay = t.Format("January 2, 2006 15:04 MST")
	} else {
		view.GeneratedDisplay = r.GeneratedAt
	}
	if len(r.LLMAnalysis) > 0 {
		var av reportAnalysisView
		if err := json.Unmarshal(r.LLMAnalysis, &av); err == nil {
			view.Analysis = &av
		}
	}
	for _, resp := range r.Responses {
		score := "N/A"
		if resp.Score != nil {
			score = strconv.Itoa(*resp.Score)
		}
		view.Rows = append(view.Rows, reportRowView{Question: resp.Question, Answer: resp.Answer, Score: score})
	}

	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}
