// Package errors provides structured error types for Mission Control.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("service unavailable")
)

// StoreError represents a failure inside a persistence layer.
type StoreError struct {
	Store string // e.g. "codebase", "eventlog", "inbox"
	Op    string // e.g. "persist", "load"
	Path  string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s store: %s %s: %v", e.Store, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s store: %s: %v", e.Store, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new store error.
func NewStoreError(store, op, path string, err error) *StoreError {
	return &StoreError{Store: store, Op: op, Path: path, Err: err}
}

// Is reports whether err matches target, unwrapping as needed.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
