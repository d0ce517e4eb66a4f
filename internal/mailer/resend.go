package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers contact notifications through the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
	to     string
}

// NewResendSender creates a sender for the configured mailbox
func NewResendSender(apiKey, from, to string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

// Send renders and delivers one notification email
func (s *ResendSender) Send(ctx context.Context, job Job) error {
	html, err := RenderNotification(job)
	if err != nil {
		return fmt.Errorf("failed to render notification email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		ReplyTo: job.Data.Email,
		Subject: fmt.Sprintf("New contact form submission from %s (%s)", job.Data.Name, job.Data.Company),
		Html:    html,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
