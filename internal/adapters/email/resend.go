package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// maxBatch is the Resend batch API limit per call.
const maxBatch = 100

// ResendSender delivers confirmations through the Resend batch API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender returns a sender using apiKey and the default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
}

// SendBatch sends reqs in chunks of maxBatch.
// PRE: every request has at least one recipient
// POST: on error, results holds the IDs of the chunks already accepted
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var results []SendResult
	for start := 0; start < len(reqs); start += maxBatch {
		chunk := reqs[start:min(start+maxBatch, len(reqs))]

		batch := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, req := range chunk {
			batch = append(batch, s.params(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			slog.Error("confirmation_batch_failed", "error", err, "batch_size", len(chunk))
			return results, fmt.Errorf("resend batch: %w", err)
		}
		now := time.Now()
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: now})
		}
		slog.Info("confirmation_batch_sent", "count", len(chunk), "total_sent", len(results))
	}
	return results, nil
}
