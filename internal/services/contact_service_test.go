package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/mailer"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
)

// stubLimiter scripts the rate limit verdict and records checked keys
type stubLimiter struct {
	allow bool
	keys  []string
}

func (l *stubLimiter) Allow(key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

// stubDispatcher collects enqueued jobs without draining anything
type stubDispatcher struct {
	jobs []mailer.Job
}

func (d *stubDispatcher) Enqueue(job mailer.Job) {
	d.jobs = append(d.jobs, job)
}

func validContactRequest() models.ContactFormRequest {
	return models.ContactFormRequest{
		Name:    "Ada Lovelace",
		Email:   "Ada@Example.com",
		Company: "Analytical Engines",
		Message: "We would like help automating our reporting.",
	}
}

func TestContactService_SubmitQueuesSanitizedJob(t *testing.T) {
	limiter := &stubLimiter{allow: true}
	dispatcher := &stubDispatcher{}
	svc := services.NewContactService(limiter, dispatcher)

	req := validContactRequest()
	req.Name = "Ada <script>Lovelace</script>"
	req.Message = "Need automation for <b>invoices</b> and reporting."

	resp, err := svc.Submit(req, "203.0.113.7")

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Thank you for your message! We'll get back to you within 24 hours.", resp.Message)
	assert.NotEmpty(t, resp.Timestamp)

	assert.Equal(t, []string{"203.0.113.7"}, limiter.keys)
	assert.Len(t, dispatcher.jobs, 1)
	job := dispatcher.jobs[0]
	assert.Equal(t, "Ada scriptLovelace/script", job.Data.Name)
	assert.Equal(t, "Need automation for binvoices/b and reporting.", job.Data.Message)
	assert.Equal(t, "ada@example.com", job.Data.Email)
	assert.Equal(t, "203.0.113.7", job.CallerIP)
}

func TestContactService_SubmitRejectsRateLimitedCaller(t *testing.T) {
	limiter := &stubLimiter{allow: false}
	dispatcher := &stubDispatcher{}
	svc := services.NewContactService(limiter, dispatcher)

	resp, err := svc.Submit(validContactRequest(), "203.0.113.7")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errors.ErrRateLimited)
	assert.Empty(t, dispatcher.jobs, "rate-limited submissions must not be queued")
}
