// Package affiliation fetches candidate affiliation names for a role from the fair data API.
package affiliation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	domain "badgecreator/internal/domain/affiliation"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/submission"
)

// Client looks up affiliations. It never caches: every call hits the upstream.
type Client struct {
	VendorURL        string
	EntertainmentURL string
	HTTPClient       *http.Client
}

// NewClient returns a Client for the two lookup endpoints.
func NewClient(vendorURL, entertainmentURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		VendorURL:        vendorURL,
		EntertainmentURL: entertainmentURL,
		HTTPClient:       httpClient,
	}
}

// sourceFor returns the remote endpoint for role, or "" when the role has none.
func (c *Client) sourceFor(role entry.Role) string {
	switch role {
	case entry.RoleVendor:
		return c.VendorURL
	case entry.RoleEntertainment:
		return c.EntertainmentURL
	}
	return ""
}

type namedItem struct {
	Name string `json:"Name"`
}

// Fetch returns the affiliation names for role in source order.
// Roles without a remote source get the static list with no HTTP call. A non-200 answer
// also yields the static list, whatever the role.
// PRE: ctx is valid
// POST: on transport or decode failure returns a *submission.NetworkError and nil names
func (c *Client) Fetch(ctx context.Context, role entry.Role) ([]string, error) {
	url := c.sourceFor(role)
	if url == "" {
		return domain.Fallback(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &submission.NetworkError{Op: "affiliation lookup", Err: fmt.Errorf("build request: %w", err)}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Error("affiliation_lookup_failed", "role", string(role), "error", err.Error())
		return nil, &submission.NetworkError{Op: "affiliation lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		slog.Warn("affiliation_lookup_status", "role", string(role), "status", resp.StatusCode)
		return domain.Fallback(), nil
	}

	var items []namedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		slog.Error("affiliation_lookup_decode_failed", "role", string(role), "error", err.Error())
		return nil, &submission.NetworkError{Op: "affiliation lookup", Err: fmt.Errorf("parse response: %w", err)}
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}
