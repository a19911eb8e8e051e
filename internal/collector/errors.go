package collector

import "fmt"

// Error represents a failure fetching one file from the source. It carries
// the HTTP status so the error classifier can map it onto the taxonomy.
type Error struct {
	Path       string
	StatusCode int
	RetryAfter int // seconds, from a 429 Retry-After header; 0 if unset
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus exposes the status code for error classification.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// RetryAfterSeconds exposes the server-provided backoff hint.
func (e *Error) RetryAfterSeconds() int {
	return e.RetryAfter
}
