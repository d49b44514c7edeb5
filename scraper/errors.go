package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrFetch = errors.New("fetch failed")
	ErrParse = errors.New("parse failed")
)

// FetchError reports a network, status or body failure for the whole page.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports one entity that matched the container selector but
// lacked a field. It never aborts a scrape.
type ParseError struct {
	Index int
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("entity %d: missing %s", e.Index, e.Field)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
