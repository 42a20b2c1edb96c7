package email

import (
	"context"
	"time"
)

// SendRequest is one outbound message.
type SendRequest struct {
	To      []string
	From    string // falls back to the sender's default when empty
	Subject string
	HTML    string
}

// SendResult is the provider's acknowledgement of one message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers confirmation emails for bulk badge registrations.
type Sender interface {
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
