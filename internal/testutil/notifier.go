package testutil

import (
	"context"
	"sync"

	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
)

// CaptureNotifier is a test double for port/notifier.ContactNotifier.
// Every call is recorded and also sent on Delivered so tests can wait for
// asynchronous dispatch.
type CaptureNotifier struct {
	Err       error
	Delivered chan domaincontact.Submission

	mu    sync.Mutex
	calls []domaincontact.Submission
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{Delivered: make(chan domaincontact.Submission, 16)}
}

func (c *CaptureNotifier) NotifyContact(_ context.Context, s domaincontact.Submission) error {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
	c.Delivered <- s
	return c.Err
}

// Calls returns a copy of every submission delivered so far.
func (c *CaptureNotifier) Calls() []domaincontact.Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domaincontact.Submission(nil), c.calls...)
}
