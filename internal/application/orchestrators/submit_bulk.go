package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"badgecreator/internal/adapters/email"
	"badgecreator/internal/domain/affiliation"
	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/submission"
)

// BulkSubmitter posts a batch of entries to the bulk endpoint.
type BulkSubmitter interface {
	SubmitBulk(ctx context.Context, entries []bulk.Entry) error
}

// SubmitBulkInput carries input for the submit bulk orchestrator.
type SubmitBulkInput struct {
	Draft *bulk.Draft
}

// SubmitBulkDeps holds dependencies for SubmitBulk.
type SubmitBulkDeps struct {
	Bulk BulkSubmitter
	// Mailer sends registration confirmations after a successful submit. Nil disables it.
	Mailer    email.Sender
	EventName string
	LogDeps
}

// SubmitBulkResult reports what a successful bulk submit posted.
type SubmitBulkResult struct {
	Submitted int
	// SuspectRows are 1-based complete rows whose email looks malformed. They were posted anyway.
	SuspectRows []int
}

// SuspectEmailWarning formats a non-blocking notice for rows with odd-looking addresses.
// Returns "" when there is nothing to report.
func (r SubmitBulkResult) SuspectEmailWarning() string {
	if len(r.SuspectRows) == 0 {
		return ""
	}
	rows := make([]string, len(r.SuspectRows))
	for i, n := range r.SuspectRows {
		rows[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("The email address in row %s may be malformed; please double-check it.", strings.Join(rows, ", "))
}

// ExecuteSubmitBulk resolves the shared affiliation, filters complete rows and posts them.
// PRE: input.Draft is non-nil
// POST: a *submission.ValidationError means no HTTP call was made; the sheet is never cleared
// POST: every complete row is posted; email syntax only produces a warning
func ExecuteSubmitBulk(ctx context.Context, input SubmitBulkInput, deps SubmitBulkDeps) (SubmitBulkResult, error) {
	d := input.Draft
	aff := strings.TrimSpace(affiliation.Resolve(d.Selected, d.Affiliation))
	rec := submission.Record{Kind: submission.KindBulk, EventID: entry.EventID, Affiliation: aff}

	entries, err := bulkEntries(d, aff)
	if err != nil {
		slog.Info("bulk_event", "event", "bulk_invalid", "rows", d.Sheet.Len(), "error", err)
		deps.writeLog(ctx, rec, submission.BulkMessages, err)
		return SubmitBulkResult{}, err
	}
	rec.Entries = len(entries)
	suspect := d.Sheet.InvalidEmails()
	if len(suspect) > 0 {
		slog.Warn("bulk_event", "event", "bulk_suspect_emails", "rows", suspect)
	}

	err = deps.Bulk.SubmitBulk(ctx, entries)
	deps.writeLog(ctx, rec, submission.BulkMessages, err)
	if err != nil {
		slog.Error("bulk_event", "event", "bulk_failed", "entries", len(entries), "status", submission.StatusCodeOf(err), "error", err)
		return SubmitBulkResult{}, err
	}
	slog.Info("bulk_event", "event", "bulk_submitted", "entries", len(entries), "affiliation", aff)

	if deps.Mailer != nil {
		notify(ctx, deps.Mailer, deps.EventName, deliverable(entries))
	}
	return SubmitBulkResult{Submitted: len(entries), SuspectRows: suspect}, nil
}

func bulkEntries(d *bulk.Draft, aff string) ([]bulk.Entry, error) {
	if aff == "" {
		return nil, &submission.ValidationError{Message: "Please provide an affiliation."}
	}
	entries := d.Sheet.Entries(aff)
	if len(entries) == 0 {
		return nil, &submission.ValidationError{Message: "Please provide at least one valid entry."}
	}
	return entries, nil
}

// deliverable drops entries whose address would bounce at the mail provider.
func deliverable(entries []bulk.Entry) []bulk.Entry {
	var out []bulk.Entry
	for _, e := range entries {
		if bulk.ValidEmail(e.Email) {
			out = append(out, e)
		}
	}
	return out
}

// notify sends confirmations. Delivery problems are logged only; the batch is already accepted.
func notify(ctx context.Context, mailer email.Sender, event string, entries []bulk.Entry) {
	reqs, err := email.BulkConfirmations(event, entries)
	if err != nil {
		slog.Error("bulk_event", "event", "confirmation_render_failed", "error", err)
		return
	}
	if len(reqs) == 0 {
		return
	}
	if _, err := mailer.SendBatch(ctx, reqs); err != nil {
		slog.Error("bulk_event", "event", "confirmation_failed", "count", len(reqs), "error", err)
	}
}
