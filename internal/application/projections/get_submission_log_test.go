package projections

import (
	"context"
	"errors"
	"testing"

	"badgecreator/internal/domain/submission"
)

type mockLogReader struct {
	records []submission.Record
	err     error
	limit   int
}

func (m *mockLogReader) Recent(_ context.Context, limit int) ([]submission.Record, error) {
	m.limit = limit
	return m.records, m.err
}

func TestQueryGetSubmissionLog(t *testing.T) {
	reader := &mockLogReader{records: []submission.Record{
		{ID: "3", Kind: submission.KindBulk, Outcome: submission.OutcomeSuccess},
		{ID: "2", Kind: submission.KindBadge, Outcome: submission.OutcomeHTTP},
		{ID: "1", Kind: submission.KindBadge, Outcome: submission.OutcomeSuccess},
	}}

	got, err := QueryGetSubmissionLog(context.Background(), GetSubmissionLogQuery{}, GetSubmissionLogDeps{Reader: reader})
	if err != nil {
		t.Fatalf("QueryGetSubmissionLog: %v", err)
	}
	if reader.limit != 100 || got.Limit != 100 {
		t.Errorf("limit = %d, want default 100", reader.limit)
	}
	if len(got.Records) != 3 || got.Records[0].ID != "3" {
		t.Errorf("records = %+v", got.Records)
	}
	if got.Counts[submission.OutcomeSuccess] != 2 || got.Counts[submission.OutcomeHTTP] != 1 {
		t.Errorf("counts = %v", got.Counts)
	}

	got, _ = QueryGetSubmissionLog(context.Background(), GetSubmissionLogQuery{Limit: 5000, Kind: submission.KindBadge}, GetSubmissionLogDeps{Reader: reader})
	if reader.limit != 1000 {
		t.Errorf("limit = %d, want cap 1000", reader.limit)
	}
	if len(got.Records) != 2 || got.Counts[submission.OutcomeSuccess] != 1 {
		t.Errorf("filtered = %+v counts = %v", got.Records, got.Counts)
	}
}

func TestQueryGetSubmissionLog_ReadError(t *testing.T) {
	reader := &mockLogReader{err: errors.New("disk gone")}
	if _, err := QueryGetSubmissionLog(context.Background(), GetSubmissionLogQuery{}, GetSubmissionLogDeps{Reader: reader}); err == nil {
		t.Fatal("want error")
	}
}
