package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes for a single search term
var (
	ErrTransport        = errors.New("transport error")
	ErrMalformedFeed    = errors.New("malformed feed")
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
)

// StatusError is returned when the feed endpoint answers with a non-2xx status
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.Code)
	}
	return fmt.Sprintf("unexpected status: %d %s", e.Code, status)
}

// Unwrap makes every status failure a transport failure
func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// Retryable reports whether the server signalled a transient condition
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// TermError attaches the search term and feed URL to a failure
type TermError struct {
	Term string
	URL  string
	Err  error
}

func (e *TermError) Error() string {
	return fmt.Sprintf("term %q: %v", e.Term, e.Err)
}

func (e *TermError) Unwrap() error {
	return e.Err
}
