package minify

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a pipeline run could not produce minified output.
// Every kind maps to the fallback terminal state; kinds exist so callers and
// metrics can tell the failure modes apart.
type ErrorKind string

const (
	// KindMalformedInput indicates the extractor could not find a balanced
	// match (unterminated string, regex, comment or calc expression).
	KindMalformedInput ErrorKind = "malformed_input"
	// KindSizeLimitExceeded indicates the raw text was larger than the
	// configured threshold and no stage was attempted.
	KindSizeLimitExceeded ErrorKind = "size_limit_exceeded"
	// KindExcluded indicates the asset handle matched an exclusion pattern
	// and was routed straight to fallback.
	KindExcluded ErrorKind = "excluded_asset"
)

// Error is the error type for all pipeline failures.
type Error struct {
	Kind    ErrorKind
	Message string
	// Original error for debugging (never shown to asset consumers)
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the error unwrapping interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewMalformedInputError creates a new malformed input error.
func NewMalformedInputError(message string) *Error {
	return &Error{Kind: KindMalformedInput, Message: message}
}

// NewSizeLimitError creates a new size limit error.
func NewSizeLimitError(size, limit int) *Error {
	return &Error{
		Kind:    KindSizeLimitExceeded,
		Message: fmt.Sprintf("input is %d bytes, limit is %d", size, limit),
	}
}

// NewExcludedError creates a new exclusion error for the given handle.
func NewExcludedError(handle string) *Error {
	return &Error{
		Kind:    KindExcluded,
		Message: fmt.Sprintf("handle %q matches an exclusion pattern", handle),
	}
}

// KindOf returns the error kind of err, or the empty string if err is not a
// pipeline error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
