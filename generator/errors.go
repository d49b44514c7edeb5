package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrGeneration      = errors.New("generation failed")
	ErrEmptyCompletion = errors.New("empty completion")
)

// Error wraps a transport or api failure from a model provider. StatusCode
// is 0 when no http response was received.
type Error struct {
	Provider   string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == ErrGeneration }

// IsAuth reports a rejected or unauthorized credential.
func (e *Error) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Temporary reports failures worth retrying: rate limits, server errors and
// transport errors.
func (e *Error) Temporary() bool {
	switch {
	case errors.Is(e.Cause, ErrEmptyCompletion):
		return false
	case errors.Is(e.Cause, context.Canceled), errors.Is(e.Cause, context.DeadlineExceeded):
		return false
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// IsAuth reports whether err carries an authentication failure.
func IsAuth(err error) bool {
	var genErr *Error
	return errors.As(err, &genErr) && genErr.IsAuth()
}

// IsTemporary reports whether err carries a retryable failure.
func IsTemporary(err error) bool {
	var genErr *Error
	return errors.As(err, &genErr) && genErr.Temporary()
}
