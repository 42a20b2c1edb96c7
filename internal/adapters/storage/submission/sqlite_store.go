package submission

import (
	"context"
	"fmt"
	"time"

	"badgecreator/internal/adapters/storage"
	domain "badgecreator/internal/domain/submission"
)

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Save inserts a row into submission_log.
func (s *sqliteStore) Save(ctx context.Context, r domain.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submission_log (
			id, kind, outcome, event_id, person_id, first_name, last_name,
			role, affiliation, entries, status_code, message, submitted_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID,
		string(r.Kind),
		string(r.Outcome),
		r.EventID,
		r.PersonID,
		r.FirstName,
		r.LastName,
		r.Role,
		r.Affiliation,
		r.Entries,
		r.StatusCode,
		r.Message,
		r.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("submission log save: %w", err)
	}
	return nil
}

// Recent lists the newest records first.
func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, outcome, event_id, person_id, first_name, last_name,
		       role, affiliation, entries, status_code, message, submitted_at
		FROM submission_log ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("submission log list: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		var kind, outcome, submittedAt string
		if err := rows.Scan(
			&r.ID, &kind, &outcome, &r.EventID, &r.PersonID, &r.FirstName, &r.LastName,
			&r.Role, &r.Affiliation, &r.Entries, &r.StatusCode, &r.Message, &submittedAt,
		); err != nil {
			return nil, fmt.Errorf("submission log scan: %w", err)
		}
		r.Kind = domain.Kind(kind)
		r.Outcome = domain.Outcome(outcome)
		r.SubmittedAt, _ = time.Parse(time.RFC3339Nano, submittedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
