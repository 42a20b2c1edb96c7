package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs messages instead of delivering them. Used when no Resend key is configured.
type NoopSender struct{}

// NewNoopSender returns a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// SendBatch logs each recipient and returns synthetic message IDs.
// POST: len(results) == len(reqs)
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	now := time.Now()
	results := make([]SendResult, 0, len(reqs))
	for i, req := range reqs {
		slog.Info("confirmation_skipped", "index", i, "to_count", len(req.To), "subject", req.Subject)
		results = append(results, SendResult{
			MessageID: fmt.Sprintf("noop-%d-%d", now.UnixNano(), i),
			SentAt:    now,
		})
	}
	return results, nil
}
