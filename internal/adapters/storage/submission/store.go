package submission

import (
	"context"

	domain "badgecreator/internal/domain/submission"
)

// Store persists the submission log.
type Store interface {
	// Save appends one record.
	// PRE: r.ID is unique
	// POST: record is persisted
	Save(ctx context.Context, r domain.Record) error

	// Recent returns the newest records first.
	// PRE: limit > 0
	Recent(ctx context.Context, limit int) ([]domain.Record, error)
}
