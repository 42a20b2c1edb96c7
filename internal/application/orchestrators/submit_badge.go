package orchestrators

import (
	"context"
	"log/slog"

	"badgecreator/internal/adapters/badgeapi"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
	"badgecreator/internal/domain/submission"
)

// BadgeCreator posts a badge to the backend.
type BadgeCreator interface {
	CreateBadge(ctx context.Context, br badgeapi.BadgeRequest) error
}

// SubmitBadgeInput carries input for the submit badge orchestrator.
type SubmitBadgeInput struct {
	Draft *entry.Draft
}

// SubmitBadgeDeps holds dependencies for SubmitBadge.
type SubmitBadgeDeps struct {
	Badges BadgeCreator
	LogDeps
}

// ExecuteSubmitBadge validates the draft and creates the badge.
// PRE: input.Draft is non-nil
// POST: a *submission.ValidationError means no HTTP call was made; the draft is never cleared
func ExecuteSubmitBadge(ctx context.Context, input SubmitBadgeInput, deps SubmitBadgeDeps) error {
	d := input.Draft
	rec := submission.Record{
		Kind:        submission.KindBadge,
		EventID:     entry.EventID,
		PersonID:    d.SubmissionPersonID(),
		Role:        string(d.Role),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Affiliation: d.Affiliation,
	}

	if err := d.Validate(); err != nil {
		slog.Info("badge_event", "event", "badge_invalid", "error", err)
		deps.writeLog(ctx, rec, submission.BadgeMessages, err)
		return err
	}
	rec.FirstName, rec.LastName, rec.Affiliation = d.FirstName, d.LastName, d.Affiliation

	png, err := photo.EncodePNG(d.Cropped)
	if err != nil {
		slog.Error("badge_event", "event", "badge_photo_encode_failed", "person_id", rec.PersonID, "error", err)
		deps.writeLog(ctx, rec, submission.BadgeMessages, err)
		return err
	}

	err = deps.Badges.CreateBadge(ctx, badgeapi.BadgeRequest{
		PersonID:    d.SubmissionPersonID(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Affiliation: d.Affiliation,
		Role:        string(d.Role),
		EventID:     entry.EventID,
		PhotoPNG:    png,
	})
	deps.writeLog(ctx, rec, submission.BadgeMessages, err)
	if err != nil {
		slog.Error("badge_event", "event", "badge_failed", "person_id", rec.PersonID, "status", submission.StatusCodeOf(err), "error", err)
		return err
	}
	slog.Info("badge_event", "event", "badge_created", "person_id", rec.PersonID, "role", rec.Role)
	return nil
}
