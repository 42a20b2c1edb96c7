package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"badgecreator/internal/domain/submission"
)

// SubmissionLog records the outcome of every submit attempt.
type SubmissionLog interface {
	Save(ctx context.Context, r submission.Record) error
}

// LogDeps holds the shared dependencies for writing submission log records.
// A nil Log disables the log.
type LogDeps struct {
	Log        SubmissionLog
	GenerateID func() string
	Now        func() time.Time
}

// writeLog completes r from err and saves it. Failures are logged and never returned:
// the user-facing outcome does not depend on the log.
func (d LogDeps) writeLog(ctx context.Context, r submission.Record, msgs submission.Messages, err error) {
	if d.Log == nil {
		return
	}
	r.ID = d.GenerateID()
	r.SubmittedAt = d.Now()
	r.Outcome = submission.OutcomeOf(err)
	r.StatusCode = submission.StatusCodeOf(err)
	if err == nil {
		r.StatusCode = 200
		r.Message = msgs.Success
	} else {
		r.Message = msgs.UserMessage(err)
	}
	if saveErr := d.Log.Save(ctx, r); saveErr != nil {
		slog.Warn("submission_log_failed", "kind", r.Kind, "error", saveErr)
	}
}
