// Package notify composes the result messages of a finished interview and
// delivers them by email and SMS.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"dokter-remaja/internal/care"
	"dokter-remaja/pkg"
)

// AppName appears in subjects and greetings.
const AppName = "AI Dokter Remaja"

// DefaultName greets students who left the name field empty.
const DefaultName = "Siswa"

// Report holds the rendered outbound messages for one session.
type Report struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	SMS     string `json:"sms"`
}

var reportHTML = template.Must(template.New("report").Parse(
	`<p>Halo <b>{{.Name}}</b>,</p>` +
		`<p>Berikut hasil analisis <b>{{.App}}</b>:</p>` +
		`<div style="border:1px solid #eee;padding:12px;border-radius:8px;white-space:pre-wrap;font-family:system-ui,Segoe UI,Arial;">{{.Selected}}</div>` +
		`<div style="height:10px"></div>` +
		`<div style="border:1px solid #eee;padding:12px;border-radius:8px;font-family:system-ui,Segoe UI,Arial;">{{.Plan}}</div>` +
		`<p style="color:#666"><i>{{.Disclaimer}}</i></p>`))

// NewReport renders the email and SMS bodies from the selected analysis
// sections and the care plan.
func NewReport(bio pkg.Biography, selected string, plan care.Plan) Report {
	name := strings.TrimSpace(bio.Name)
	if name == "" {
		name = DefaultName
	}
	subject := fmt.Sprintf("Hasil %s — %s", AppName, name)

	var text strings.Builder
	fmt.Fprintf(&text, "Halo %s,\n\n", name)
	fmt.Fprintf(&text, "Berikut hasil analisis %s:\n\n", AppName)
	text.WriteString(selected + "\n\n")
	text.WriteString("-----\n")
	text.WriteString(plan.Title + "\n")
	for _, b := range plan.Bullets {
		text.WriteString("- " + b + "\n")
	}
	text.WriteString("\n")
	for _, s := range plan.Safety {
		text.WriteString("- " + s + "\n")
	}
	text.WriteString("\n" + pkg.Disclaimer)

	var html bytes.Buffer
	err := reportHTML.Execute(&html, struct {
		Name       string
		App        string
		Selected   string
		Plan       template.HTML
		Disclaimer string
	}{name, AppName, selected, template.HTML(plan.HTML), pkg.Disclaimer})
	if err != nil {
		html.Reset()
	}

	return Report{
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
		SMS: fmt.Sprintf("Halo %s, hasil %s sudah dikirim ke email Anda. Silakan cek inbox/SPAM dengan subjek: '%s'.",
			name, AppName, subject),
	}
}
