package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/submission"
)

// PersonFetcher loads an existing attendee record.
type PersonFetcher interface {
	GetPerson(ctx context.Context, personID string) (entry.Person, error)
}

// PrefillInput carries input for the prefill orchestrator.
type PrefillInput struct {
	PersonID string
	Draft    *entry.Draft
}

// PrefillDeps holds dependencies for Prefill.
type PrefillDeps struct {
	Persons PersonFetcher
}

// ExecutePrefill loads the person and copies their record into the draft.
// PRE: input.PersonID is non-empty; input.Draft is non-nil
// POST: on success the draft holds the record; on failure the draft is untouched
func ExecutePrefill(ctx context.Context, input PrefillInput, deps PrefillDeps) error {
	p, err := deps.Persons.GetPerson(ctx, input.PersonID)
	if err != nil {
		slog.Warn("prefill_event", "event", "prefill_failed", "person_id", input.PersonID, "error", err)
		return err
	}
	input.Draft.Prefill(p)
	slog.Info("prefill_event", "event", "prefill_loaded", "person_id", input.PersonID, "role", input.Draft.Role)
	return nil
}

// PrefillMessage renders a prefill failure for the user.
func PrefillMessage(err error) string {
	var herr *submission.HTTPError
	if errors.As(err, &herr) {
		return "Failed to fetch existing badge data"
	}
	return "Error fetching badge data: " + err.Error()
}
