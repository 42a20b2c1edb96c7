package projections

import (
	"context"
	"fmt"

	"badgecreator/internal/domain/submission"
)

// SubmissionLogReader reads the newest submission log records.
type SubmissionLogReader interface {
	Recent(ctx context.Context, limit int) ([]submission.Record, error)
}

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// GetSubmissionLogQuery carries query parameters.
type GetSubmissionLogQuery struct {
	Limit int             // 0 selects the default; capped at 1000
	Kind  submission.Kind // empty matches both kinds
}

// GetSubmissionLogDeps holds dependencies for GetSubmissionLog.
type GetSubmissionLogDeps struct {
	Reader SubmissionLogReader
}

// SubmissionLog is the operator view of recent submit attempts.
type SubmissionLog struct {
	Records []submission.Record
	Counts  map[submission.Outcome]int
	Limit   int
}

// Count returns the number of returned records with the named outcome.
func (l SubmissionLog) Count(outcome string) int {
	return l.Counts[submission.Outcome(outcome)]
}

// QueryGetSubmissionLog returns recent records, newest first, with per-outcome counts.
// PRE: deps.Reader is non-nil
// POST: Counts covers exactly the returned Records
func QueryGetSubmissionLog(ctx context.Context, query GetSubmissionLogQuery, deps GetSubmissionLogDeps) (SubmissionLog, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxLogLimit)

	records, err := deps.Reader.Recent(ctx, limit)
	if err != nil {
		return SubmissionLog{}, fmt.Errorf("read submission log: %w", err)
	}

	out := SubmissionLog{Counts: make(map[submission.Outcome]int), Limit: limit}
	for _, r := range records {
		if query.Kind != "" && r.Kind != query.Kind {
			continue
		}
		out.Records = append(out.Records, r)
		out.Counts[r.Outcome]++
	}
	return out, nil
}
