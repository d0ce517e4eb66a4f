package models

import "strings"

// ContactFormRequest represents a contact form submission
type ContactFormRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Company string `json:"company" binding:"required,min=2,max=100"`
	Message string `json:"message" binding:"required,min=10,max=2000"`
}

// Sanitize returns a copy safe for downstream use: angle brackets are
// stripped from text fields and the email is normalized. The original
// request is left untouched.
func (r ContactFormRequest) Sanitize() ContactFormRequest {
	return ContactFormRequest{
		Name:    stripAngleBrackets(r.Name),
		Email:   strings.ToLower(strings.TrimSpace(r.Email)),
		Company: stripAngleBrackets(r.Company),
		Message: stripAngleBrackets(r.Message),
	}
}

func stripAngleBrackets(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// ContactFormResponse is returned to the contact form caller
type ContactFormResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
}
