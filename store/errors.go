package store

import (
	"errors"
	"fmt"
)

var (
	ErrWrite              = errors.New("store write failed")
	ErrCollectionNotFound = errors.New("collection not found")
)

// WriteError reports a failed embed, create or insert during a replace.
// The partially built generation has already been discarded.
type WriteError struct {
	Collection string
	Op         string
	Cause      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s collection %q: %v", e.Op, e.Collection, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
