package submission

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports required input that was missing before any network call was made.
// INVARIANT: Message is user-facing text; Missing lists field labels in form order.
type ValidationError struct {
	Message string
	Missing []string
}

// Error returns the combined user-facing message.
func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (missing: %s)", e.Message, strings.Join(e.Missing, ", "))
}

// HTTPError reports a non-200 answer from an upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error returns the response body text, which is what the user sees.
func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return body
}

// NetworkError reports a transport failure, or a response that could not be parsed.
type NetworkError struct {
	Op  string
	Err error
}

// Error returns the underlying transport message.
func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

// Unwrap exposes the transport error for errors.Is / errors.As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Messages holds the user-facing prefixes for one kind of submission.
type Messages struct {
	Success       string
	HTTPFailure   string // followed by the response body
	NetworkFailed string // followed by the transport message
}

// BadgeMessages is the wording of the single-entry form.
var BadgeMessages = Messages{
	Success:       "Badge created successfully!",
	HTTPFailure:   "Failed to submit entry: ",
	NetworkFailed: "An error occurred: ",
}

// BulkMessages is the wording of the bulk-entry form.
var BulkMessages = Messages{
	Success:       "Bulk data submitted successfully!",
	HTTPFailure:   "Failed to submit bulk data: ",
	NetworkFailed: "An error occurred: ",
}

// UserMessage renders err for the person filling in the form.
// PRE: err is non-nil
// POST: returns text that never includes Go type names
func (m Messages) UserMessage(err error) string {
	var verr *ValidationError
	var herr *HTTPError
	var nerr *NetworkError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &herr):
		return m.HTTPFailure + herr.Error()
	case errors.As(err, &nerr):
		return m.NetworkFailed + nerr.Error()
	default:
		return m.NetworkFailed + err.Error()
	}
}
