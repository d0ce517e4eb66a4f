// Package mailer delivers contact-form notification emails through an
// in-process FIFO queue.
package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"go.uber.org/zap"
)

// Job is one queued email send. Fields are already sanitized by the time
// a job is created.
type Job struct {
	Data        models.ContactFormRequest
	CallerIP    string
	SubmittedAt time.Time
}

// Sender delivers a single job. Implementations must be safe for use from
// the drain goroutine.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Dispatcher is the capability interface handlers depend on, so the
// process-local queue can later be swapped for a durable one.
type Dispatcher interface {
	Enqueue(job Job)
}

// Queue is a process-wide FIFO with an at-most-one-drain guarantee. The
// draining flag plus mutex ensure two enqueues arriving back to back never
// start overlapping drain loops; each job is attempted exactly once and
// send failures are logged, never retried.
type Queue struct {
	mu       sync.Mutex
	jobs     []Job
	draining bool
	sender   Sender
	timeout  time.Duration

	wg sync.WaitGroup // drain loop tracking, used by Wait
}

// NewQueue creates an email queue backed by the given sender
func NewQueue(sender Sender) *Queue {
	return &Queue{
		sender:  sender,
		timeout: 30 * time.Second,
	}
}

// Enqueue appends the job to the tail and starts the drain loop unless one
// is already running. It never blocks on delivery.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	metrics.EmailQueueDepth.Set(float64(len(q.jobs)))
	start := !q.draining
	if start {
		q.draining = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// drain pops jobs from the head strictly in FIFO order, one at a time,
// until the queue is empty, then releases the flag.
func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.draining = false
			metrics.EmailQueueDepth.Set(0)
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		metrics.EmailQueueDepth.Set(float64(len(q.jobs)))
		q.mu.Unlock()

		q.process(job)
	}
}

func (q *Queue) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.sender.Send(ctx, job); err != nil {
		metrics.EmailSendTotal.WithLabelValues("error").Inc()
		logger.Error("Email send failed",
			zap.String("email", job.Data.Email),
			zap.Error(err))
		return
	}

	metrics.EmailSendTotal.WithLabelValues("success").Inc()
	logger.Info("Contact notification email sent",
		zap.String("name", job.Data.Name),
		zap.String("company", job.Data.Company))
}

// Wait blocks until any running drain loop finishes. Used during shutdown
// and by tests.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Depth returns the number of jobs currently waiting
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
