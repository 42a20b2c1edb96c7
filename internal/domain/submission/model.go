package submission

import (
	"errors"
	"time"
)

// Kind distinguishes the two submission paths.
type Kind string

const (
	KindBadge Kind = "badge"
	KindBulk  Kind = "bulk"
)

// Outcome is the result of one submit attempt.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeValidation Outcome = "validation"
	OutcomeHTTP       Outcome = "http"
	OutcomeNetwork    Outcome = "network"
)

// Record is one line of the submission log kept for operators.
// INVARIANT: photos and attendee emails are never stored in a Record.
type Record struct {
	ID          string
	Kind        Kind
	Outcome     Outcome
	EventID     string
	PersonID    string
	FirstName   string
	LastName    string
	Role        string
	Affiliation string
	Entries     int
	StatusCode  int
	Message     string
	SubmittedAt time.Time
}

// OutcomeOf classifies the error returned by a submit attempt.
// PRE: none
// POST: nil maps to OutcomeSuccess; unknown errors map to OutcomeNetwork
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return OutcomeValidation
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		return OutcomeHTTP
	}
	return OutcomeNetwork
}

// StatusCodeOf returns the upstream status code carried by err, or 0.
func StatusCodeOf(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}
