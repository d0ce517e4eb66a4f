package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/tesseract-integrations/tesseract-api/internal/mailer"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/ratelimit"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
)

// contactConfirmation is the message returned on every accepted submission.
const contactConfirmation = "Thank you for your message! We'll get back to you within 24 hours."

// ContactService accepts contact form submissions: rate limit by caller IP,
// sanitize, then hand off to the email queue. The HTTP response does not
// wait for delivery.
type ContactService struct {
	limiter ratelimit.Limiter
	queue   mailer.Dispatcher
	now     func() time.Time
}

func NewContactService(limiter ratelimit.Limiter, queue mailer.Dispatcher) *ContactService {
	return &ContactService{
		limiter: limiter,
		queue:   queue,
		now:     time.Now,
	}
}

// Submit processes a validated contact form request. The request is
// sanitized only after passing the rate limit check; queueing cannot fail,
// so an accepted submission always gets the confirmation response.
func (s *ContactService) Submit(req models.ContactFormRequest, callerIP string) (*models.ContactFormResponse, error) {
	if !s.limiter.Allow(callerIP) {
		metrics.ContactFormSubmissions.WithLabelValues("rate_limited").Inc()
		logger.Warn("Contact form rate limit exceeded", zap.String("caller_ip", callerIP))
		return nil, errors.ErrRateLimited
	}

	req = req.Sanitize()

	submittedAt := s.now().UTC()
	s.queue.Enqueue(mailer.Job{
		Data:        req,
		CallerIP:    callerIP,
		SubmittedAt: submittedAt,
	})

	metrics.ContactFormSubmissions.WithLabelValues("accepted").Inc()
	logger.Info("Contact form submission queued",
		zap.String("email", req.Email),
		zap.String("company", req.Company))

	return &models.ContactFormResponse{
		Success:   true,
		Message:   contactConfirmation,
		Timestamp: submittedAt.Format(time.RFC3339),
	}, nil
}
