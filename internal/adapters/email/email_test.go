package email

import (
	"context"
	"strings"
	"testing"

	"badgecreator/internal/domain/bulk"
)

func TestBulkConfirmations(t *testing.T) {
	entries := []bulk.Entry{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Affiliation: "Admin"},
		{FirstName: "No", LastName: "Mail", Affiliation: "Admin"},
		{FirstName: "<b>", LastName: "X", Email: "x@example.com", Affiliation: "Bar Staff"},
	}
	reqs, err := BulkConfirmations("Badge Faire", entries)
	if err != nil {
		t.Fatalf("BulkConfirmations: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	if reqs[0].To[0] != "ada@example.com" || !strings.Contains(reqs[0].HTML, "Ada Lovelace") {
		t.Errorf("first request = %+v", reqs[0])
	}
	if !strings.Contains(reqs[0].Subject, "Badge Faire") {
		t.Errorf("subject = %q", reqs[0].Subject)
	}
	if strings.Contains(reqs[1].HTML, "<b>") {
		t.Errorf("name not escaped: %q", reqs[1].HTML)
	}
}

func TestNoopSender_SendBatch(t *testing.T) {
	var s Sender = NewNoopSender()
	results, err := s.SendBatch(context.Background(), []SendRequest{
		{To: []string{"a@example.com"}, Subject: "a"},
		{To: []string{"b@example.com"}, Subject: "b"},
	})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 2 || results[0].MessageID == results[1].MessageID {
		t.Errorf("results = %+v", results)
	}
}

func TestResendSender_Params(t *testing.T) {
	s := NewResendSender("re_test", "Badges <badges@example.com>")
	p := s.params(SendRequest{To: []string{"a@example.com"}, Subject: "s", HTML: "<p>h</p>"})
	if p.From != "Badges <badges@example.com>" {
		t.Errorf("From = %q, want default", p.From)
	}
	p = s.params(SendRequest{From: "other@example.com", To: []string{"a@example.com"}})
	if p.From != "other@example.com" {
		t.Errorf("From = %q, want override", p.From)
	}
}
