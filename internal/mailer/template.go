package mailer

import (
	"html/template"
	"strings"
	"time"
)

// notificationTemplate renders the internal contact notification. Job data
// is sanitized before it reaches the queue, and html/template escapes on
// top of that.
var notificationTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Contact Form Submission - Tesseract Integrations</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #25FC11, #0C8102); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
    .content { background: #f9f9f9; padding: 20px; border-radius: 10px; }
    .field { margin-bottom: 15px; }
    .label { font-weight: bold; color: #0C8102; }
    .value { margin-top: 5px; padding: 10px; background: white; border-radius: 5px; border-left: 4px solid #25FC11; }
    .footer { margin-top: 20px; padding: 15px; background: #eee; border-radius: 5px; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>New Contact Form Submission</h1>
      <p>Tesseract Integrations - AI Transformation Inquiry</p>
    </div>
    <div class="content">
      <div class="field">
        <div class="label">Name:</div>
        <div class="value">{{.Name}}</div>
      </div>
      <div class="field">
        <div class="label">Email:</div>
        <div class="value">{{.Email}}</div>
      </div>
      <div class="field">
        <div class="label">Company:</div>
        <div class="value">{{.Company}}</div>
      </div>
      <div class="field">
        <div class="label">Message:</div>
        <div class="value">{{.Message}}</div>
      </div>
    </div>
    <div class="footer">
      <p><strong>Submission Details:</strong></p>
      <p>Date: {{.SubmittedAt}}</p>
      <p>IP Address: {{.CallerIP}}</p>
      <p>Source: Tesseract Integrations Website Contact Form</p>
    </div>
  </div>
</body>
</html>`))

type templateData struct {
	Name        string
	Email       string
	Company     string
	Message     template.HTML
	SubmittedAt string
	CallerIP    string
}

// RenderNotification produces the HTML body for a contact notification
func RenderNotification(job Job) (string, error) {
	// Preserve line breaks in the message body. The input had angle
	// brackets stripped during sanitization, so escaping then inserting
	// <br> tags is safe.
	escaped := template.HTMLEscapeString(job.Data.Message)
	withBreaks := strings.ReplaceAll(escaped, "\n", "<br>")

	var b strings.Builder
	err := notificationTemplate.Execute(&b, templateData{
		Name:        job.Data.Name,
		Email:       job.Data.Email,
		Company:     job.Data.Company,
		Message:     template.HTML(withBreaks), //nolint:gosec // escaped above
		SubmittedAt: job.SubmittedAt.Format(time.RFC1123),
		CallerIP:    job.CallerIP,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
