package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

// TemplateData is what every appointment email can reference
type TemplateData struct {
	AppointmentID  string
	CompanyName    string
	PatientName    string
	DoctorName     string
	Hospital       string
	Date           string
	TimeSlot       string
	Amount         float64
	Status         string
	Reason         string
	TransactionRef string
}

type emailTemplate struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

const htmlLayout = `<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h2>{{template "heading" .}}</h2>
<table cellpadding="4">
<tr><td><b>Patient</b></td><td>{{.PatientName}}</td></tr>
<tr><td><b>Doctor</b></td><td>{{.DoctorName}}{{if .Hospital}} ({{.Hospital}}){{end}}</td></tr>
<tr><td><b>Date</b></td><td>{{.Date}} {{.TimeSlot}}</td></tr>
<tr><td><b>Amount</b></td><td>{{printf "%.2f" .Amount}}</td></tr>
<tr><td><b>Status</b></td><td>{{.Status}}</td></tr>
</table>
{{template "detail" .}}
<p style="color: #888; font-size: 12px;">Reference {{.AppointmentID}}</p>
</body></html>`

const textLayout = `{{template "heading" .}}

Patient: {{.PatientName}}
Doctor:  {{.DoctorName}}{{if .Hospital}} ({{.Hospital}}){{end}}
Date:    {{.Date}} {{.TimeSlot}}
Amount:  {{printf "%.2f" .Amount}}
Status:  {{.Status}}
{{template "detail" .}}
Reference {{.AppointmentID}}
`

var templateParts = map[entities.AppointmentEventType]struct {
	subject, heading, detail string
}{
	entities.AppointmentEventCreated: {
		subject: "Appointment booked for {{.PatientName}}",
		heading: "Your appointment request has been received",
		detail:  "The appointment is pending confirmation.",
	},
	entities.AppointmentEventConfirmed: {
		subject: "Appointment confirmed for {{.PatientName}}",
		heading: "Your appointment is confirmed",
		detail:  "Payment {{.TransactionRef}} has been recorded.",
	},
	entities.AppointmentEventCancelled: {
		subject: "Appointment cancelled for {{.PatientName}}",
		heading: "Your appointment has been cancelled",
		detail:  "Reason: {{.Reason}}",
	},
	entities.AppointmentEventUpdated: {
		subject: "Appointment updated for {{.PatientName}}",
		heading: "Your appointment details have changed",
		detail:  "Please review the updated details above.",
	},
	entities.AppointmentEventStatusChanged: {
		subject: "Appointment status changed to {{.Status}}",
		heading: "Your appointment status has changed",
		detail:  "The appointment is now {{.Status}}.",
	},
}

// Renderer renders appointment emails from parsed templates
type Renderer struct {
	templates map[entities.AppointmentEventType]emailTemplate
}

// NewRenderer parses every template once
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[entities.AppointmentEventType]emailTemplate, len(templateParts))}

	for eventType, parts := range templateParts {
		defs := fmt.Sprintf(`{{define "heading"}}%s{{end}}{{define "detail"}}%s{{end}}`, parts.heading, parts.detail)

		html, err := htmltemplate.New(string(eventType)).Parse(htmlLayout + defs)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html template %s: %w", eventType, err)
		}
		text, err := texttemplate.New(string(eventType)).Parse(textLayout + defs)
		if err != nil {
			return nil, fmt.Errorf("failed to parse text template %s: %w", eventType, err)
		}
		r.templates[eventType] = emailTemplate{subject: parts.subject, html: html, text: text}
	}
	return r, nil
}

// Render builds the email for eventType addressed to recipients
func (r *Renderer) Render(eventType entities.AppointmentEventType, data TemplateData, recipients ...string) (*providers.EmailMessage, error) {
	tmpl, ok := r.templates[eventType]
	if !ok {
		return nil, fmt.Errorf("no email template for %s", eventType)
	}

	subject, err := texttemplate.New("subject").Parse(tmpl.subject)
	if err != nil {
		return nil, err
	}

	var subjectBuf, htmlBuf, textBuf bytes.Buffer
	if err := subject.Execute(&subjectBuf, data); err != nil {
		return nil, err
	}
	if err := tmpl.html.Execute(&htmlBuf, data); err != nil {
		return nil, err
	}
	if err := tmpl.text.Execute(&textBuf, data); err != nil {
		return nil, err
	}

	return &providers.EmailMessage{
		To:       recipients,
		Subject:  subjectBuf.String(),
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}, nil
}
