// Package badgeapi talks to the ticket web service that owns badges and people.
package badgeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/submission"
)

// maxErrorBody bounds how much of a failed response is echoed back to the user.
const maxErrorBody = 4 << 10

// Client calls the badge backend.
type Client struct {
	BaseURL    string // ends with "/"; badges are posted to BaseURL + "badge"
	BulkURL    string
	PersonURL  string // people are fetched from PersonURL + "/" + id
	HTTPClient *http.Client
}

// NewClient returns a backend client.
func NewClient(baseURL, bulkURL, personURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    baseURL,
		BulkURL:    bulkURL,
		PersonURL:  personURL,
		HTTPClient: httpClient,
	}
}

// BadgeRequest is the multipart payload for one badge.
type BadgeRequest struct {
	PersonID    string
	FirstName   string
	LastName    string
	Affiliation string
	Role        string
	EventID     string
	PhotoPNG    []byte
}

// newBadgeRequest builds the multipart POST for a single badge.
func (c *Client) newBadgeRequest(ctx context.Context, br BadgeRequest) (*http.Request, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := []struct{ name, value string }{
		{"person_id", br.PersonID},
		{"first_name", br.FirstName},
		{"last_name", br.LastName},
		{"affiliation", br.Affiliation},
		{"role", br.Role},
		{"event_id", br.EventID},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	part, err := mw.CreateFormFile("photo", "photo.png")
	if err != nil {
		return nil, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(br.PhotoPNG); err != nil {
		return nil, fmt.Errorf("write photo part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"badge", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

// CreateBadge posts one badge as multipart form data.
// PRE: br.PhotoPNG is a PNG-encoded image
// POST: nil on HTTP 200; *submission.HTTPError or *submission.NetworkError otherwise
func (c *Client) CreateBadge(ctx context.Context, br BadgeRequest) error {
	req, err := c.newBadgeRequest(ctx, br)
	if err != nil {
		return &submission.NetworkError{Op: "create badge", Err: err}
	}
	return c.do(req, "create badge")
}

type bulkPayload struct {
	Entries []bulk.Entry `json:"entries"`
}

// newBulkRequest builds the JSON POST for a batch of attendees.
func (c *Client) newBulkRequest(ctx context.Context, entries []bulk.Entry) (*http.Request, error) {
	data, err := json.Marshal(bulkPayload{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("marshal entries: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BulkURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// SubmitBulk posts all entries in one JSON request. The batch succeeds or fails as a whole.
// PRE: len(entries) > 0
// POST: nil on HTTP 200; *submission.HTTPError or *submission.NetworkError otherwise
func (c *Client) SubmitBulk(ctx context.Context, entries []bulk.Entry) error {
	req, err := c.newBulkRequest(ctx, entries)
	if err != nil {
		return &submission.NetworkError{Op: "submit bulk", Err: err}
	}
	return c.do(req, "submit bulk")
}

// GetPerson fetches an existing badge record.
// PRE: personID is non-empty
// POST: returns the record with PersonID set, or a typed submission error
func (c *Client) GetPerson(ctx context.Context, personID string) (entry.Person, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PersonURL+"/"+url.PathEscape(personID), nil)
	if err != nil {
		return entry.Person{}, &submission.NetworkError{Op: "get person", Err: err}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return entry.Person{}, &submission.NetworkError{Op: "get person", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return entry.Person{}, &submission.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	var p entry.Person
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return entry.Person{}, &submission.NetworkError{Op: "get person", Err: fmt.Errorf("parse response: %w", err)}
	}
	p.PersonID = personID
	return p, nil
}

// do sends req and maps the answer onto the submission error taxonomy.
func (c *Client) do(req *http.Request, op string) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Error("badge_backend_unreachable", "op", op, "error", err.Error())
		return &submission.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode != http.StatusOK {
		slog.Warn("badge_backend_rejected", "op", op, "status", resp.StatusCode)
		return &submission.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
